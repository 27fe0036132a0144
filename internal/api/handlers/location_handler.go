package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/twilightpharmacy/booking-backend/internal/application/services"
)

// LocationHandler handles location and closure block requests
type LocationHandler struct {
	service *services.LocationService
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(service *services.LocationService) *LocationHandler {
	return &LocationHandler{service: service}
}

// ListLocations handles GET /api/locations
func (h *LocationHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.service.ListLocations(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"locations": locations,
		"count":     len(locations),
	})
}

// GetLocation handles GET /api/locations/{id}
func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	locationID := r.PathValue("id")
	if locationID == "" {
		respondWithError(w, http.StatusBadRequest, "location ID is required")
		return
	}

	location, err := h.service.GetLocation(r.Context(), locationID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, location)
}

// ListBlocks handles GET /api/admin/locations/{id}/blocks
func (h *LocationHandler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	locationID := r.PathValue("id")
	if locationID == "" {
		respondWithError(w, http.StatusBadRequest, "location ID is required")
		return
	}

	blocks, err := h.service.ListBlocks(r.Context(), locationID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"blocks": blocks,
		"count":  len(blocks),
	})
}

// CreateBlock handles POST /api/admin/locations/{id}/blocks
func (h *LocationHandler) CreateBlock(w http.ResponseWriter, r *http.Request) {
	locationID := r.PathValue("id")
	if locationID == "" {
		respondWithError(w, http.StatusBadRequest, "location ID is required")
		return
	}

	var req services.CreateBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	block, err := h.service.CreateBlock(r.Context(), locationID, req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, block)
}

// DeleteBlock handles DELETE /api/admin/locations/{id}/blocks/{blockId}
func (h *LocationHandler) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	locationID := r.PathValue("id")
	blockID := r.PathValue("blockId")
	if locationID == "" || blockID == "" {
		respondWithError(w, http.StatusBadRequest, "location ID and block ID are required")
		return
	}

	if err := h.service.DeleteBlock(r.Context(), locationID, blockID); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetCalendar handles GET /api/admin/locations/{id}/calendar
func (h *LocationHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	locationID := r.PathValue("id")
	if locationID == "" {
		respondWithError(w, http.StatusBadRequest, "location ID is required")
		return
	}

	q := r.URL.Query()
	start, err := time.ParseInLocation("2006-01-02", q.Get("start"), time.Local)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
		return
	}
	end, err := time.ParseInLocation("2006-01-02", q.Get("end"), time.Local)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "end must be YYYY-MM-DD")
		return
	}

	calendar, err := h.service.GetCalendar(r.Context(), locationID, start, end)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, calendar)
}
