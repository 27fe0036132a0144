package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/twilightpharmacy/booking-backend/internal/application/services"
	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
	"github.com/twilightpharmacy/booking-backend/internal/domain/repositories"
)

// BookingCreator defines the interface for booking operations
type BookingCreator interface {
	CreateBooking(ctx context.Context, req services.CreateBookingRequest) (*entities.Booking, error)
	GetBooking(ctx context.Context, id string) (*entities.Booking, error)
	ListBookings(ctx context.Context, filter repositories.BookingFilter) ([]*entities.Booking, error)
	UpdateStatus(ctx context.Context, id string, status entities.BookingStatus, comment string) (*entities.Booking, error)
}

// BookingHandler handles booking requests
type BookingHandler struct {
	service BookingCreator
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(service BookingCreator) *BookingHandler {
	return &BookingHandler{service: service}
}

// CreateBooking handles POST /api/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req services.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, booking)
}

// GetBooking handles GET /api/bookings/{id}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := r.PathValue("id")
	if bookingID == "" {
		respondWithError(w, http.StatusBadRequest, "booking ID is required")
		return
	}

	booking, err := h.service.GetBooking(r.Context(), bookingID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, booking)
}

// ListBookings handles GET /api/admin/bookings
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repositories.BookingFilter{
		Status:     entities.BookingStatus(q.Get("status")),
		LocationID: q.Get("locationId"),
		Unassigned: q.Get("unassigned") == "true",
		Limit:      50,
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if offsetStr := q.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset > 0 {
			filter.Offset = offset
		}
	}
	if filter.Status != "" && !entities.ValidBookingStatus(filter.Status) {
		respondWithError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	bookings, err := h.service.ListBookings(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// updateBookingRequest is the admin status update payload
type updateBookingRequest struct {
	Status  entities.BookingStatus `json:"status"`
	Comment string                 `json:"comment,omitempty"`
}

// UpdateBooking handles PATCH /api/admin/bookings/{id}
func (h *BookingHandler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := r.PathValue("id")
	if bookingID == "" {
		respondWithError(w, http.StatusBadRequest, "booking ID is required")
		return
	}

	var req updateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.Status == "" {
		respondWithError(w, http.StatusBadRequest, "status is required")
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), bookingID, req.Status, req.Comment)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, booking)
}
