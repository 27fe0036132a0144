package repositories

import (
	"context"

	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
)

// TreatmentFilter defines filters for listing treatments
type TreatmentFilter struct {
	Category   string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// TreatmentRepository defines the interface for treatment data operations
type TreatmentRepository interface {
	// GetByID retrieves a treatment by ID
	GetByID(ctx context.Context, id string) (*entities.Treatment, error)

	// List retrieves treatments matching the filter
	List(ctx context.Context, filter TreatmentFilter) ([]*entities.Treatment, error)

	// Search retrieves active treatments whose name or description matches
	// the query. Used as the fallback when no search index is configured.
	Search(ctx context.Context, query string, limit int) ([]*entities.Treatment, error)

	// LocationsFor retrieves the locations offering a treatment
	LocationsFor(ctx context.Context, treatmentID string) ([]*entities.Location, error)
}

// TreatmentSearchRepository defines the interface for the search index
type TreatmentSearchRepository interface {
	// InitSchema ensures the index schema exists
	InitSchema(ctx context.Context) error

	// Index upserts treatments into the search index
	Index(ctx context.Context, treatments []*entities.Treatment) error

	// Search retrieves treatment IDs ranked by relevance
	Search(ctx context.Context, query string, limit int) ([]string, error)
}
