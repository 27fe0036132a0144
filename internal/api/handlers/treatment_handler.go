package handlers

import (
	"net/http"
	"strconv"

	"github.com/twilightpharmacy/booking-backend/internal/application/services"
)

// TreatmentHandler handles treatment catalogue requests
type TreatmentHandler struct {
	service *services.TreatmentService
}

// NewTreatmentHandler creates a new treatment handler
func NewTreatmentHandler(service *services.TreatmentService) *TreatmentHandler {
	return &TreatmentHandler{service: service}
}

// ListTreatments handles GET /api/treatments
func (h *TreatmentHandler) ListTreatments(w http.ResponseWriter, r *http.Request) {
	treatments, err := h.service.ListTreatments(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"treatments": treatments,
		"count":      len(treatments),
	})
}

// GetTreatment handles GET /api/treatments/{id}
func (h *TreatmentHandler) GetTreatment(w http.ResponseWriter, r *http.Request) {
	treatmentID := r.PathValue("id")
	if treatmentID == "" {
		respondWithError(w, http.StatusBadRequest, "treatment ID is required")
		return
	}

	treatment, err := h.service.GetTreatment(r.Context(), treatmentID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, treatment)
}

// SearchTreatments handles GET /api/treatments/search
func (h *TreatmentHandler) SearchTreatments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, _ = strconv.Atoi(limitStr)
	}

	treatments, err := h.service.SearchTreatments(r.Context(), query, limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"treatments": treatments,
		"count":      len(treatments),
	})
}

// GetTreatmentLocations handles GET /api/treatments/{id}/locations
func (h *TreatmentHandler) GetTreatmentLocations(w http.ResponseWriter, r *http.Request) {
	treatmentID := r.PathValue("id")
	if treatmentID == "" {
		respondWithError(w, http.StatusBadRequest, "treatment ID is required")
		return
	}

	locations, err := h.service.LocationsForTreatment(r.Context(), treatmentID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"locations": locations,
		"count":     len(locations),
	})
}

// GetTreatmentPharmacists handles GET /api/treatments/{id}/pharmacists
func (h *TreatmentHandler) GetTreatmentPharmacists(w http.ResponseWriter, r *http.Request) {
	treatmentID := r.PathValue("id")
	if treatmentID == "" {
		respondWithError(w, http.StatusBadRequest, "treatment ID is required")
		return
	}

	pharmacists, err := h.service.PharmacistsForTreatment(r.Context(), treatmentID, r.URL.Query().Get("locationId"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"pharmacists": pharmacists,
		"count":       len(pharmacists),
	})
}

// ReindexTreatments handles POST /api/admin/treatments/reindex
func (h *TreatmentHandler) ReindexTreatments(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.ReindexTreatments(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"indexed": count,
	})
}
