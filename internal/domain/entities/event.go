package entities

import (
	"time"
)

// EventType identifies the kind of domain event published on the event bus
type EventType string

const (
	EventBookingCreated       EventType = "booking.created"
	EventBookingStatusChanged EventType = "booking.status_changed"
	EventReferenceUpdated     EventType = "reference.updated"
)

// Event is published on the event bus when bookings or reference data
// change. Entity and EntityID name the affected record ("treatment",
// "location", "booking").
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Entity     string    `json:"entity"`
	EntityID   string    `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
