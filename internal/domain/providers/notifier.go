package providers

import (
	"context"

	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
)

// Notifier is the outbound notification collaborator. Delivery is
// best-effort; failures are logged by callers and never surfaced to the
// customer.
type Notifier interface {
	// SendBookingConfirmation sends the booking confirmation message
	SendBookingConfirmation(ctx context.Context, booking *entities.Booking, treatment *entities.Treatment, location *entities.Location) error
}
