package repositories

import (
	"context"
	"time"

	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
)

// LocationRepository defines the interface for location data operations
type LocationRepository interface {
	// GetByID retrieves a location by ID
	GetByID(ctx context.Context, id string) (*entities.Location, error)

	// List retrieves all locations
	List(ctx context.Context) ([]*entities.Location, error)

	// CreateBlock persists a new block-out interval
	CreateBlock(ctx context.Context, block *entities.LocationBlock) error

	// DeleteBlock removes a block by ID
	DeleteBlock(ctx context.Context, locationID, blockID string) error

	// ListBlocks retrieves all blocks for a location ordered by start
	ListBlocks(ctx context.Context, locationID string) ([]*entities.LocationBlock, error)

	// BlocksOverlapping retrieves blocks intersecting [start, end)
	BlocksOverlapping(ctx context.Context, locationID string, start, end time.Time) ([]*entities.LocationBlock, error)
}
