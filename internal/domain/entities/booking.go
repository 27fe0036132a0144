package entities

import (
	"time"
)

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// ValidBookingStatus reports whether s is a known booking status
func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// PaymentStatus represents the payment state of a booking
type PaymentStatus string

const (
	PaymentStatusUnset   PaymentStatus = ""
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// TimeTBD is stored as the preferred time for treatments booked without a
// discrete slot (ShowSlots=false).
const TimeTBD = "TBD"

// Booking represents a customer appointment request
type Booking struct {
	ID            string        `json:"id" db:"id"`
	TreatmentID   string        `json:"treatment_id" db:"treatment_id"`
	LocationID    string        `json:"location_id" db:"location_id"`
	PharmacistID  *string       `json:"pharmacist_id" db:"pharmacist_id"`
	CustomerName  string        `json:"customer_name" db:"customer_name"`
	CustomerEmail string        `json:"customer_email" db:"customer_email"`
	CustomerPhone string        `json:"customer_phone" db:"customer_phone"`
	PreferredDate *time.Time    `json:"preferred_date" db:"preferred_date"`
	PreferredTime string        `json:"preferred_time" db:"preferred_time"`
	Notes         string        `json:"notes,omitempty" db:"notes"`
	Status        BookingStatus `json:"status" db:"status"`
	PaymentStatus PaymentStatus `json:"payment_status" db:"payment_status"`
	PaymentRef    *string       `json:"payment_ref,omitempty" db:"payment_ref"`
	PaidAt        *time.Time    `json:"paid_at,omitempty" db:"paid_at"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the booking still occupies its slot.
// Only pending and confirmed bookings hold their
// (pharmacist, date, time) combination exclusively.
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// AvailableSlot is one entry of an availability query result. PharmacistID
// is set when a specific pharmacist was requested; Count carries the number
// of distinct free pharmacists in don't-mind mode.
type AvailableSlot struct {
	Time         string `json:"time"`
	PharmacistID string `json:"pharmacist_id,omitempty"`
	Count        int    `json:"count,omitempty"`
}

// BookedSlot identifies a (pharmacist, time) pair held by an active booking
type BookedSlot struct {
	PharmacistID string `json:"pharmacist_id" db:"pharmacist_id"`
	Time         string `json:"time" db:"preferred_time"`
}
