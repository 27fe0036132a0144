package routes

import (
	"net/http"

	"github.com/twilightpharmacy/booking-backend/internal/api/handlers"
	"github.com/twilightpharmacy/booking-backend/internal/api/middleware"
	"github.com/twilightpharmacy/booking-backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	treatmentHandler      *handlers.TreatmentHandler
	locationHandler       *handlers.LocationHandler
	pharmacistHandler     *handlers.PharmacistHandler
	availabilityHandler   *handlers.AvailabilityHandler
	bookingHandler        *handlers.BookingHandler
	paymentWebhookHandler *handlers.PaymentWebhookHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	treatmentHandler *handlers.TreatmentHandler,
	locationHandler *handlers.LocationHandler,
	pharmacistHandler *handlers.PharmacistHandler,
	availabilityHandler *handlers.AvailabilityHandler,
	bookingHandler *handlers.BookingHandler,
	paymentWebhookHandler *handlers.PaymentWebhookHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		treatmentHandler:      treatmentHandler,
		locationHandler:       locationHandler,
		pharmacistHandler:     pharmacistHandler,
		availabilityHandler:   availabilityHandler,
		bookingHandler:        bookingHandler,
		paymentWebhookHandler: paymentWebhookHandler,

		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Treatment endpoints
	r.mux.HandleFunc("GET /api/treatments", r.treatmentHandler.ListTreatments)
	r.mux.HandleFunc("GET /api/treatments/search", r.treatmentHandler.SearchTreatments)
	r.mux.HandleFunc("GET /api/treatments/{id}", r.treatmentHandler.GetTreatment)
	r.mux.HandleFunc("GET /api/treatments/{id}/locations", r.treatmentHandler.GetTreatmentLocations)
	r.mux.HandleFunc("GET /api/treatments/{id}/pharmacists", r.treatmentHandler.GetTreatmentPharmacists)

	// Location endpoints
	r.mux.HandleFunc("GET /api/locations", r.locationHandler.ListLocations)
	r.mux.HandleFunc("GET /api/locations/{id}", r.locationHandler.GetLocation)

	// Pharmacist endpoints
	r.mux.HandleFunc("GET /api/pharmacists", r.pharmacistHandler.ListPharmacists)
	r.mux.HandleFunc("GET /api/pharmacists/{id}", r.pharmacistHandler.GetPharmacist)

	// Availability endpoint
	r.mux.HandleFunc("GET /api/availability", r.availabilityHandler.GetAvailability)

	// Booking endpoints
	r.mux.HandleFunc("POST /api/bookings", r.bookingHandler.CreateBooking)
	r.mux.HandleFunc("GET /api/bookings/{id}", r.bookingHandler.GetBooking)

	// Admin endpoints
	r.mux.HandleFunc("GET /api/admin/bookings", r.bookingHandler.ListBookings)
	r.mux.HandleFunc("PATCH /api/admin/bookings/{id}", r.bookingHandler.UpdateBooking)
	r.mux.HandleFunc("GET /api/admin/locations/{id}/blocks", r.locationHandler.ListBlocks)
	r.mux.HandleFunc("POST /api/admin/locations/{id}/blocks", r.locationHandler.CreateBlock)
	r.mux.HandleFunc("DELETE /api/admin/locations/{id}/blocks/{blockId}", r.locationHandler.DeleteBlock)
	r.mux.HandleFunc("GET /api/admin/locations/{id}/calendar", r.locationHandler.GetCalendar)
	r.mux.HandleFunc("POST /api/admin/treatments/reindex", r.treatmentHandler.ReindexTreatments)

	// Payment webhook endpoint
	if r.paymentWebhookHandler != nil {
		r.mux.HandleFunc("POST /api/webhooks/payments", r.paymentWebhookHandler.HandleWebhook)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	// Response cache applies only to the reference list routes
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(handler)

	return handler
}
