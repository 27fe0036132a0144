package repositories

import (
	"context"
	"time"

	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
)

// BookingFilter defines filters for listing bookings
type BookingFilter struct {
	Status     entities.BookingStatus
	LocationID string
	Unassigned bool
	ActiveOnly bool
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// BookingRepository defines the interface for booking data operations.
//
// Create returns a CONFLICT AppError when the active-booking uniqueness
// constraint on (pharmacist, date, time) rejects the insert; callers retry
// assignment in that case.
type BookingRepository interface {
	// Create persists a new booking
	Create(ctx context.Context, booking *entities.Booking) error

	// GetByID retrieves a booking by ID
	GetByID(ctx context.Context, id string) (*entities.Booking, error)

	// Update persists the mutable fields of a booking
	Update(ctx context.Context, booking *entities.Booking) error

	// List retrieves bookings matching the filter, newest first
	List(ctx context.Context, filter BookingFilter) ([]*entities.Booking, error)

	// BookedSlots retrieves the (pharmacist, time) pairs held by active
	// bookings for a (location, treatment, date). When pharmacistID is
	// non-nil only that pharmacist's slots are returned.
	BookedSlots(ctx context.Context, locationID, treatmentID string, date time.Time, pharmacistID *string) ([]entities.BookedSlot, error)

	// BusyPharmacists retrieves the IDs of pharmacists holding an active
	// booking at the exact (treatment, location, date, time).
	BusyPharmacists(ctx context.Context, treatmentID, locationID string, date time.Time, timeOfDay string) ([]string, error)
}
