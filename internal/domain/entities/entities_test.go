package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTreatment_InSeason(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	seasonal := &Treatment{SeasonStart: &start, SeasonEnd: &end}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"mid season", time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC), true},
		{"first day", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"last day late in the evening", time.Date(2026, 9, 30, 23, 59, 0, 0, time.UTC), true},
		{"day before season", time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), false},
		{"day after season", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, seasonal.InSeason(tt.at))
		})
	}

	t.Run("no season window means always bookable", func(t *testing.T) {
		assert.True(t, (&Treatment{}).InSeason(time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)))
	})
}

func TestLocationBlock_Overlaps(t *testing.T) {
	block := &LocationBlock{
		StartAt: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
		EndAt:   time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC),
	}
	at := func(h, m int) time.Time { return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC) }

	assert.True(t, block.Overlaps(at(12, 0), at(12, 30)))
	assert.True(t, block.Overlaps(at(11, 30), at(12, 30)))
	assert.True(t, block.Overlaps(at(12, 30), at(13, 30)))
	assert.True(t, block.Overlaps(at(11, 0), at(14, 0)))

	// Touching a boundary is not an overlap.
	assert.False(t, block.Overlaps(at(11, 0), at(12, 0)))
	assert.False(t, block.Overlaps(at(13, 0), at(14, 0)))
}

func TestBooking_IsActive(t *testing.T) {
	assert.True(t, (&Booking{Status: BookingStatusPending}).IsActive())
	assert.True(t, (&Booking{Status: BookingStatusConfirmed}).IsActive())
	assert.False(t, (&Booking{Status: BookingStatusCompleted}).IsActive())
	assert.False(t, (&Booking{Status: BookingStatusCancelled}).IsActive())
}

func TestValidBookingStatus(t *testing.T) {
	for _, s := range []BookingStatus{BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled} {
		assert.True(t, ValidBookingStatus(s))
	}
	assert.False(t, ValidBookingStatus("archived"))
	assert.False(t, ValidBookingStatus(""))
}
