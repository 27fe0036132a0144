package repositories

import (
	"context"

	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
)

// PharmacistFilter defines filters for listing pharmacists
type PharmacistFilter struct {
	TreatmentID string
	LocationID  string
	ActiveOnly  bool
}

// PharmacistRepository defines the interface for pharmacist data operations
type PharmacistRepository interface {
	// GetByID retrieves a pharmacist by ID
	GetByID(ctx context.Context, id string) (*entities.Pharmacist, error)

	// List retrieves pharmacists matching the filter
	List(ctx context.Context, filter PharmacistFilter) ([]*entities.Pharmacist, error)

	// EligibleForTreatment retrieves active pharmacists who can perform the
	// treatment, work at the location, and have at least one active schedule
	// window on the given weekday (0=Sunday..6=Saturday). Each result carries
	// its matching windows. Order is stable (name, then id); the assignment
	// engine relies on it for deterministic picks.
	EligibleForTreatment(ctx context.Context, treatmentID, locationID string, dayOfWeek int) ([]*entities.EligiblePharmacist, error)

	// SchedulesAtLocation retrieves the active weekly schedule windows of all
	// pharmacists working at a location, for the admin calendar overlay.
	SchedulesAtLocation(ctx context.Context, locationID string) ([]*entities.PharmacistSchedule, error)
}
