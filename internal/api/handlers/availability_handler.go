package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/twilightpharmacy/booking-backend/internal/application/services"
	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
)

// AvailabilityResolver defines the interface for availability queries
type AvailabilityResolver interface {
	GetAvailableSlots(ctx context.Context, query services.AvailabilityQuery) ([]entities.AvailableSlot, error)
}

// AvailabilityHandler handles availability requests
type AvailabilityHandler struct {
	service AvailabilityResolver
}

// NewAvailabilityHandler creates a new availability handler
func NewAvailabilityHandler(service AvailabilityResolver) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// GetAvailability handles GET /api/availability
//
// Query parameters: treatmentId, locationId, date (YYYY-MM-DD), and an
// optional pharmacistId. Without pharmacistId the response groups slots by
// time with a count of free pharmacists.
func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	treatmentID := q.Get("treatmentId")
	locationID := q.Get("locationId")
	dateStr := q.Get("date")
	if treatmentID == "" || locationID == "" || dateStr == "" {
		respondWithError(w, http.StatusBadRequest, "treatmentId, locationId and date are required")
		return
	}

	date, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	slots, err := h.service.GetAvailableSlots(r.Context(), services.AvailabilityQuery{
		TreatmentID:  treatmentID,
		LocationID:   locationID,
		Date:         date,
		PharmacistID: q.Get("pharmacistId"),
	})
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"date":  dateStr,
		"slots": slots,
		"count": len(slots),
	})
}
