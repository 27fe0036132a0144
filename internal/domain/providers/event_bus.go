package providers

import (
	"context"

	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.Event) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.Event, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// Event channels
const (
	// EventChannelBookings carries booking lifecycle events
	EventChannelBookings = "bookings:updates"

	// EventChannelReference carries treatment/location/pharmacist updates,
	// consumed by the cache invalidation service
	EventChannelReference = "reference:updates"
)
