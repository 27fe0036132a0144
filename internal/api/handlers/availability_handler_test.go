package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twilightpharmacy/booking-backend/internal/application/services"
	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
	apperrors "github.com/twilightpharmacy/booking-backend/pkg/errors"
)

type mockAvailabilityResolver struct {
	lastQuery services.AvailabilityQuery
	slots     []entities.AvailableSlot
	err       error
}

func (m *mockAvailabilityResolver) GetAvailableSlots(ctx context.Context, query services.AvailabilityQuery) ([]entities.AvailableSlot, error) {
	m.lastQuery = query
	return m.slots, m.err
}

func TestAvailabilityHandler_GetAvailability(t *testing.T) {
	t.Run("returns the slots for a valid query", func(t *testing.T) {
		resolver := &mockAvailabilityResolver{slots: []entities.AvailableSlot{
			{Time: "09:00", Count: 2},
			{Time: "09:30", Count: 1},
		}}
		handler := NewAvailabilityHandler(resolver)

		req := httptest.NewRequest(http.MethodGet, "/api/availability?treatmentId=t-1&locationId=l-1&date=2026-03-02", nil)
		rr := httptest.NewRecorder()
		handler.GetAvailability(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Date  string                   `json:"date"`
			Slots []entities.AvailableSlot `json:"slots"`
			Count int                      `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "2026-03-02", resp.Date)
		assert.Equal(t, 2, resp.Count)
		assert.Equal(t, "t-1", resolver.lastQuery.TreatmentID)
		assert.Equal(t, "l-1", resolver.lastQuery.LocationID)
	})

	t.Run("passes the requested pharmacist through", func(t *testing.T) {
		resolver := &mockAvailabilityResolver{}
		handler := NewAvailabilityHandler(resolver)

		req := httptest.NewRequest(http.MethodGet, "/api/availability?treatmentId=t-1&locationId=l-1&date=2026-03-02&pharmacistId=ph-1", nil)
		rr := httptest.NewRecorder()
		handler.GetAvailability(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ph-1", resolver.lastQuery.PharmacistID)
	})

	t.Run("rejects missing parameters", func(t *testing.T) {
		handler := NewAvailabilityHandler(&mockAvailabilityResolver{})

		for _, url := range []string{
			"/api/availability",
			"/api/availability?treatmentId=t-1",
			"/api/availability?treatmentId=t-1&locationId=l-1",
			"/api/availability?locationId=l-1&date=2026-03-02",
		} {
			req := httptest.NewRequest(http.MethodGet, url, nil)
			rr := httptest.NewRecorder()
			handler.GetAvailability(rr, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code, url)
		}
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		handler := NewAvailabilityHandler(&mockAvailabilityResolver{})

		req := httptest.NewRequest(http.MethodGet, "/api/availability?treatmentId=t-1&locationId=l-1&date=02-03-2026", nil)
		rr := httptest.NewRecorder()
		handler.GetAvailability(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("maps domain errors to their status", func(t *testing.T) {
		resolver := &mockAvailabilityResolver{err: apperrors.NewOutOfSeasonError("not available")}
		handler := NewAvailabilityHandler(resolver)

		req := httptest.NewRequest(http.MethodGet, "/api/availability?treatmentId=t-1&locationId=l-1&date=2026-12-07", nil)
		rr := httptest.NewRecorder()
		handler.GetAvailability(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, string(apperrors.ErrorTypeOutOfSeason), resp["type"])
	})
}
