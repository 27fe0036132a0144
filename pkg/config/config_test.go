package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, "pharmacy_booking", cfg.Database.Database)
	assert.True(t, cfg.Booking.AllowOversubscription)
	assert.Equal(t, 3, cfg.Booking.AssignmentRetries)
	assert.Equal(t, 300, cfg.Cache.TreatmentTTL)
	assert.False(t, cfg.OTEL.Enabled)
	assert.False(t, cfg.SMTP.Enabled())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("ALLOW_OVERSUBSCRIPTION", "false")
	t.Setenv("ASSIGNMENT_RETRIES", "5")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_FROM", "bookings@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.False(t, cfg.Booking.AllowOversubscription)
	assert.Equal(t, 5, cfg.Booking.AssignmentRetries)
	assert.True(t, cfg.SMTP.Enabled())
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")
	t.Setenv("ALLOW_OVERSUBSCRIPTION", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Booking.AllowOversubscription)
}

func TestDatabaseDSN(t *testing.T) {
	c := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "postgres",
		Password: "secret", Database: "pharmacy_booking", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=secret dbname=pharmacy_booking sslmode=disable",
		c.DatabaseDSN(),
	)
}
