package handlers

import (
	"net/http"

	"github.com/twilightpharmacy/booking-backend/internal/domain/repositories"
)

// PharmacistHandler handles pharmacist directory requests
type PharmacistHandler struct {
	pharmacistRepo repositories.PharmacistRepository
}

// NewPharmacistHandler creates a new pharmacist handler
func NewPharmacistHandler(pharmacistRepo repositories.PharmacistRepository) *PharmacistHandler {
	return &PharmacistHandler{pharmacistRepo: pharmacistRepo}
}

// ListPharmacists handles GET /api/pharmacists
func (h *PharmacistHandler) ListPharmacists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	pharmacists, err := h.pharmacistRepo.List(r.Context(), repositories.PharmacistFilter{
		TreatmentID: q.Get("treatmentId"),
		LocationID:  q.Get("locationId"),
		ActiveOnly:  true,
	})
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"pharmacists": pharmacists,
		"count":       len(pharmacists),
	})
}

// GetPharmacist handles GET /api/pharmacists/{id}
func (h *PharmacistHandler) GetPharmacist(w http.ResponseWriter, r *http.Request) {
	pharmacistID := r.PathValue("id")
	if pharmacistID == "" {
		respondWithError(w, http.StatusBadRequest, "pharmacist ID is required")
		return
	}

	pharmacist, err := h.pharmacistRepo.GetByID(r.Context(), pharmacistID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, pharmacist)
}
