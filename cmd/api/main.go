package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/twilightpharmacy/booking-backend/internal/adapters/cache"
	"github.com/twilightpharmacy/booking-backend/internal/adapters/database"
	"github.com/twilightpharmacy/booking-backend/internal/adapters/events"
	"github.com/twilightpharmacy/booking-backend/internal/adapters/search"
	"github.com/twilightpharmacy/booking-backend/internal/api/handlers"
	"github.com/twilightpharmacy/booking-backend/internal/api/middleware"
	"github.com/twilightpharmacy/booking-backend/internal/api/routes"
	"github.com/twilightpharmacy/booking-backend/internal/application/services"
	"github.com/twilightpharmacy/booking-backend/internal/domain/providers"
	"github.com/twilightpharmacy/booking-backend/internal/domain/repositories"
	"github.com/twilightpharmacy/booking-backend/internal/infrastructure/clients/postgres"
	"github.com/twilightpharmacy/booking-backend/internal/infrastructure/clients/redis"
	"github.com/twilightpharmacy/booking-backend/internal/infrastructure/clients/typesense"
	"github.com/twilightpharmacy/booking-backend/internal/infrastructure/notifications"
	"github.com/twilightpharmacy/booking-backend/internal/infrastructure/observability"
	"github.com/twilightpharmacy/booking-backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - the application can work without caching
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	// Initialize Typesense client
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Printf("Warning: Failed to initialize Typesense client: %v", err)
	} else {
		log.Println("Typesense client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize event bus
	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Println("Event bus initialized successfully")
	} else {
		log.Println("Event bus disabled (Redis not available)")
	}

	// Initialize adapters

	baseTreatmentAdapter := database.NewTreatmentAdapter(pgClient)
	baseLocationAdapter := database.NewLocationAdapter(pgClient)
	pharmacistAdapter := database.NewPharmacistAdapter(pgClient)
	bookingAdapter := database.NewBookingAdapter(pgClient)

	// Wrap reference repositories with caching when Redis is available
	var treatmentAdapter repositories.TreatmentRepository = baseTreatmentAdapter
	var locationAdapter repositories.LocationRepository = baseLocationAdapter
	if cacheProvider != nil {
		treatmentAdapter = database.NewCachedTreatmentAdapter(baseTreatmentAdapter, cacheProvider, cfg.Cache.TreatmentTTL)
		locationAdapter = database.NewCachedLocationAdapter(baseLocationAdapter, cacheProvider, cfg.Cache.LocationTTL)
		log.Println("Reference adapters wrapped with caching layer")
	} else {
		log.Println("Reference adapters running without cache (Redis unavailable)")
	}

	var searchRepo repositories.TreatmentSearchRepository
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient)
		if err := adapter.InitSchema(context.Background()); err != nil {
			log.Printf("Warning: Failed to init Typesense schema: %v", err)
		}
		searchRepo = adapter
	}

	// Initialize cache invalidation service
	var cacheInvalidationService *services.CacheInvalidationService
	if cacheProvider != nil && eventBus != nil {
		cacheInvalidationService = services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := cacheInvalidationService.Start(); err != nil {
			log.Printf("Warning: Failed to start cache invalidation service: %v", err)
		} else {
			log.Println("Cache invalidation service started successfully")
		}
	}

	// Initialize services

	emailSender := notifications.NewEmailSender(&cfg.SMTP)
	notificationService := services.NewNotificationService(emailSender)

	assignmentService := services.NewAssignmentService(
		pharmacistAdapter,
		bookingAdapter,
		cfg.Booking.AllowOversubscription,
		metrics,
	)

	bookingService := services.NewBookingService(
		bookingAdapter,
		treatmentAdapter,
		locationAdapter,
		assignmentService,
		notificationService,
		eventBus,
		cfg.Booking.AssignmentRetries,
		metrics,
	)

	availabilityService := services.NewAvailabilityService(
		treatmentAdapter,
		locationAdapter,
		pharmacistAdapter,
		bookingAdapter,
	)

	treatmentService := services.NewTreatmentService(treatmentAdapter, pharmacistAdapter, searchRepo)
	locationService := services.NewLocationService(locationAdapter, pharmacistAdapter, bookingAdapter, eventBus)

	// Start cache warming service for improved read performance
	if cacheProvider != nil {
		warmingService := services.NewCacheWarmingService(
			baseTreatmentAdapter,
			baseLocationAdapter,
			cacheProvider,
			cfg.Cache.TreatmentTTL,
			cfg.Cache.LocationTTL,
		)
		go warmingService.StartPeriodicWarming(ctx, 5*time.Minute)
		log.Println("Cache warming service started (refreshes every 5 minutes)")
	}

	// Initialize handlers

	treatmentHandler := handlers.NewTreatmentHandler(treatmentService)
	locationHandler := handlers.NewLocationHandler(locationService)
	pharmacistHandler := handlers.NewPharmacistHandler(pharmacistAdapter)
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	paymentWebhookHandler := handlers.NewPaymentWebhookHandler(bookingService, cfg.Payments.WebhookSecret)

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
		log.Println("Cache middleware initialized successfully")
	}

	// Set up router
	router := routes.NewRouter(
		treatmentHandler,
		locationHandler,
		pharmacistHandler,
		availabilityHandler,
		bookingHandler,
		paymentWebhookHandler,
		cacheMiddleware,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := cfg.Server.Addr()
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}

	if cacheInvalidationService != nil {
		cacheInvalidationService.Stop()
	}

	log.Println("Server stopped")
}
