package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twilightpharmacy/booking-backend/internal/application/services"
	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
	"github.com/twilightpharmacy/booking-backend/internal/domain/repositories"
	apperrors "github.com/twilightpharmacy/booking-backend/pkg/errors"
)

type mockBookingCreator struct {
	createErr  error
	updateErr  error
	booking    *entities.Booking
	bookings   []*entities.Booking
	lastFilter repositories.BookingFilter
	lastStatus entities.BookingStatus
	lastNote   string
}

func (m *mockBookingCreator) CreateBooking(ctx context.Context, req services.CreateBookingRequest) (*entities.Booking, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.booking, nil
}

func (m *mockBookingCreator) GetBooking(ctx context.Context, id string) (*entities.Booking, error) {
	if m.booking == nil {
		return nil, apperrors.NewNotFoundError("booking not found")
	}
	return m.booking, nil
}

func (m *mockBookingCreator) ListBookings(ctx context.Context, filter repositories.BookingFilter) ([]*entities.Booking, error) {
	m.lastFilter = filter
	return m.bookings, nil
}

func (m *mockBookingCreator) UpdateStatus(ctx context.Context, id string, status entities.BookingStatus, comment string) (*entities.Booking, error) {
	m.lastStatus = status
	m.lastNote = comment
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return m.booking, nil
}

func TestBookingHandler_CreateBooking(t *testing.T) {
	t.Run("creates a booking", func(t *testing.T) {
		service := &mockBookingCreator{booking: &entities.Booking{ID: "booking-1", Status: entities.BookingStatusPending}}
		handler := NewBookingHandler(service)

		body, _ := json.Marshal(map[string]string{
			"treatment_id":   "t-1",
			"location_id":    "l-1",
			"customer_name":  "Jo Bloggs",
			"customer_email": "jo@example.com",
			"preferred_time": "10:00",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBuffer(body))
		rr := httptest.NewRecorder()
		handler.CreateBooking(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var resp entities.Booking
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "booking-1", resp.ID)
	})

	t.Run("rejects a malformed payload", func(t *testing.T) {
		handler := NewBookingHandler(&mockBookingCreator{})

		req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBufferString("{not json"))
		rr := httptest.NewRecorder()
		handler.CreateBooking(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("maps validation errors to 400", func(t *testing.T) {
		service := &mockBookingCreator{createErr: apperrors.NewValidationError("customer name is required")}
		handler := NewBookingHandler(service)

		req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBufferString("{}"))
		rr := httptest.NewRecorder()
		handler.CreateBooking(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("maps slot conflicts to 409", func(t *testing.T) {
		service := &mockBookingCreator{createErr: apperrors.NewConflictError("slot already taken")}
		handler := NewBookingHandler(service)

		req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBufferString("{}"))
		rr := httptest.NewRecorder()
		handler.CreateBooking(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, string(apperrors.ErrorTypeConflict), resp["type"])
	})

	t.Run("maps blocked slots to 409", func(t *testing.T) {
		service := &mockBookingCreator{createErr: apperrors.NewSlotBlockedError("the location is closed at the requested time")}
		handler := NewBookingHandler(service)

		req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBufferString("{}"))
		rr := httptest.NewRecorder()
		handler.CreateBooking(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestBookingHandler_ListBookings(t *testing.T) {
	t.Run("applies the query filters", func(t *testing.T) {
		service := &mockBookingCreator{bookings: []*entities.Booking{{ID: "booking-1"}}}
		handler := NewBookingHandler(service)

		req := httptest.NewRequest(http.MethodGet, "/api/admin/bookings?status=pending&locationId=l-1&unassigned=true&limit=10&offset=20", nil)
		rr := httptest.NewRecorder()
		handler.ListBookings(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, entities.BookingStatusPending, service.lastFilter.Status)
		assert.Equal(t, "l-1", service.lastFilter.LocationID)
		assert.True(t, service.lastFilter.Unassigned)
		assert.Equal(t, 10, service.lastFilter.Limit)
		assert.Equal(t, 20, service.lastFilter.Offset)
	})

	t.Run("defaults the page size", func(t *testing.T) {
		service := &mockBookingCreator{}
		handler := NewBookingHandler(service)

		req := httptest.NewRequest(http.MethodGet, "/api/admin/bookings", nil)
		rr := httptest.NewRecorder()
		handler.ListBookings(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 50, service.lastFilter.Limit)
	})

	t.Run("rejects an unknown status filter", func(t *testing.T) {
		handler := NewBookingHandler(&mockBookingCreator{})

		req := httptest.NewRequest(http.MethodGet, "/api/admin/bookings?status=archived", nil)
		rr := httptest.NewRecorder()
		handler.ListBookings(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestBookingHandler_UpdateBooking(t *testing.T) {
	t.Run("updates the status with a comment", func(t *testing.T) {
		service := &mockBookingCreator{booking: &entities.Booking{ID: "booking-1", Status: entities.BookingStatusConfirmed}}
		handler := NewBookingHandler(service)

		body := bytes.NewBufferString(`{"status":"confirmed","comment":"called to confirm"}`)
		req := httptest.NewRequest(http.MethodPatch, "/api/admin/bookings/booking-1", body)
		req.SetPathValue("id", "booking-1")
		rr := httptest.NewRecorder()
		handler.UpdateBooking(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, entities.BookingStatusConfirmed, service.lastStatus)
		assert.Equal(t, "called to confirm", service.lastNote)
	})

	t.Run("requires a status", func(t *testing.T) {
		handler := NewBookingHandler(&mockBookingCreator{})

		req := httptest.NewRequest(http.MethodPatch, "/api/admin/bookings/booking-1", bytes.NewBufferString(`{"comment":"hi"}`))
		req.SetPathValue("id", "booking-1")
		rr := httptest.NewRecorder()
		handler.UpdateBooking(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
