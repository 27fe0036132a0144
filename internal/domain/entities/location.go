package entities

import (
	"time"
)

// DayHours represents the opening window for a single weekday
type DayHours struct {
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
	Closed bool   `json:"closed,omitempty"`
}

// OpeningHours maps lowercase weekday names to opening windows
type OpeningHours map[string]DayHours

// Location represents a pharmacy branch
type Location struct {
	ID           string       `json:"id" db:"id"`
	Name         string       `json:"name" db:"name"`
	Code         string       `json:"code" db:"code"`
	Address      string       `json:"address" db:"address"`
	Phone        string       `json:"phone" db:"phone"`
	OpeningHours OpeningHours `json:"opening_hours" db:"opening_hours"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// LocationBlock represents an absolute interval during which a location
// accepts no bookings, regardless of pharmacist. Invariant: StartAt < EndAt.
type LocationBlock struct {
	ID         string    `json:"id" db:"id"`
	LocationID string    `json:"location_id" db:"location_id"`
	StartAt    time.Time `json:"start_at" db:"start_at"`
	EndAt      time.Time `json:"end_at" db:"end_at"`
	Reason     string    `json:"reason,omitempty" db:"reason"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Overlaps reports whether the block intersects the half-open interval
// [start, end).
func (b *LocationBlock) Overlaps(start, end time.Time) bool {
	return start.Before(b.EndAt) && b.StartAt.Before(end)
}
