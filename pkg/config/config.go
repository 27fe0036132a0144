package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Typesense TypesenseConfig
	SMTP      SMTPConfig
	Booking   BookingConfig
	Cache     CacheConfig
	Payments  PaymentsConfig
	OTEL      OTELConfig
	Env       string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// SMTPConfig holds outbound email configuration. When Host or From is
// empty the mail sender runs in no-op mode and only logs messages.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// BookingConfig holds booking engine policy configuration
type BookingConfig struct {
	// AllowOversubscription keeps the original assignment policy: when every
	// schedule-eligible pharmacist is already busy at the requested time, the
	// first candidate is assigned anyway and the booking is left for admin
	// reconciliation. When false the booking is created unassigned instead.
	AllowOversubscription bool

	// AssignmentRetries bounds how many times a create is retried after the
	// active-booking uniqueness constraint rejects an assignment.
	AssignmentRetries int
}

// CacheConfig holds reference-data cache TTLs in seconds
type CacheConfig struct {
	TreatmentTTL int
	LocationTTL  int
	ResponseTTL  int
}

// PaymentsConfig holds payment webhook configuration
type PaymentsConfig struct {
	WebhookSecret string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "pharmacy_booking"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:    getEnv("TYPESENSE_URL", ""),
			APIKey: getEnv("TYPESENSE_API_KEY", ""),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
		Booking: BookingConfig{
			AllowOversubscription: getEnvAsBool("ALLOW_OVERSUBSCRIPTION", true),
			AssignmentRetries:     getEnvAsInt("ASSIGNMENT_RETRIES", 3),
		},
		Cache: CacheConfig{
			TreatmentTTL: getEnvAsInt("CACHE_TREATMENT_TTL", 300),
			LocationTTL:  getEnvAsInt("CACHE_LOCATION_TTL", 300),
			ResponseTTL:  getEnvAsInt("CACHE_RESPONSE_TTL", 180),
		},
		Payments: PaymentsConfig{
			WebhookSecret: getEnv("PAYMENT_WEBHOOK_SECRET", ""),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "pharmacy-booking"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Env: getEnv("APP_ENV", "development"),
	}, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Addr returns the server listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Enabled reports whether the SMTP sender is fully configured
func (c *SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
