package entities

import (
	"time"
)

// Pharmacist represents a staff member who performs treatments
type Pharmacist struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PharmacistSchedule is a recurring weekly availability window.
// DayOfWeek runs 0 (Sunday) through 6 (Saturday); times are "HH:MM" with
// StartTime < EndTime. A pharmacist may have several windows on one day.
type PharmacistSchedule struct {
	ID           string `json:"id" db:"id"`
	PharmacistID string `json:"pharmacist_id" db:"pharmacist_id"`
	DayOfWeek    int    `json:"day_of_week" db:"day_of_week"`
	StartTime    string `json:"start_time" db:"start_time"`
	EndTime      string `json:"end_time" db:"end_time"`
	IsActive     bool   `json:"is_active" db:"is_active"`
}

// EligiblePharmacist is a pharmacist qualified for a (treatment, location,
// weekday) query together with the schedule windows that matched.
type EligiblePharmacist struct {
	Pharmacist
	Windows []PharmacistSchedule `json:"windows"`
}
