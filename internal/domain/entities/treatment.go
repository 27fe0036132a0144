package entities

import (
	"time"
)

// Treatment represents a bookable pharmacy service
type Treatment struct {
	ID              string     `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	Description     string     `json:"description" db:"description"`
	Category        string     `json:"category" db:"category"`
	Price           float64    `json:"price" db:"price"`
	DurationMinutes int        `json:"duration_minutes" db:"duration_minutes"`
	IsTravel        bool       `json:"is_travel" db:"is_travel"`
	IsNHS           bool       `json:"is_nhs" db:"is_nhs"`
	ShowSlots       bool       `json:"show_slots" db:"show_slots"`
	SeasonStart     *time.Time `json:"season_start" db:"season_start"`
	SeasonEnd       *time.Time `json:"season_end" db:"season_end"`
	IsActive        bool       `json:"is_active" db:"is_active"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// InSeason reports whether the treatment is bookable on the given date.
// A treatment without a season window is always in season; the window is
// inclusive at both ends and compared at calendar-day granularity.
func (t *Treatment) InSeason(at time.Time) bool {
	if t.SeasonStart == nil || t.SeasonEnd == nil {
		return true
	}
	day := truncateToDay(at)
	return !day.Before(truncateToDay(*t.SeasonStart)) && !day.After(truncateToDay(*t.SeasonEnd))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
