package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
	"github.com/twilightpharmacy/booking-backend/internal/domain/repositories"
	"github.com/twilightpharmacy/booking-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/twilightpharmacy/booking-backend/pkg/errors"
)

// LocationAdapter implements the LocationRepository interface
type LocationAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewLocationAdapter creates a new location adapter
func NewLocationAdapter(client *postgres.Client) repositories.LocationRepository {
	return &LocationAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func scanLocation(row rowScanner) (*entities.Location, error) {
	location := &entities.Location{}
	var address, phone sql.NullString
	var openingHours []byte

	err := row.Scan(
		&location.ID,
		&location.Name,
		&location.Code,
		&address,
		&phone,
		&openingHours,
		&location.CreatedAt,
		&location.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	location.Address = address.String
	location.Phone = phone.String
	if len(openingHours) > 0 {
		if err := json.Unmarshal(openingHours, &location.OpeningHours); err != nil {
			return nil, fmt.Errorf("malformed opening hours for location %s: %w", location.ID, err)
		}
	}

	return location, nil
}

// GetByID retrieves a location by ID
func (a *LocationAdapter) GetByID(ctx context.Context, id string) (*entities.Location, error) {
	query, args, err := a.db.Select(
		"id", "name", "code", "address", "phone", "opening_hours", "created_at", "updated_at",
	).
		From("locations").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	location, err := scanLocation(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("location with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get location", err)
	}

	return location, nil
}

// List retrieves all locations ordered by name
func (a *LocationAdapter) List(ctx context.Context) ([]*entities.Location, error) {
	query, args, err := a.db.Select(
		"id", "name", "code", "address", "phone", "opening_hours", "created_at", "updated_at",
	).
		From("locations").
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list locations", err)
	}
	defer rows.Close()

	var locations []*entities.Location
	for rows.Next() {
		location, err := scanLocation(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan location", err)
		}
		locations = append(locations, location)
	}

	return locations, rows.Err()
}

// CreateBlock inserts a closure block for a location
func (a *LocationAdapter) CreateBlock(ctx context.Context, block *entities.LocationBlock) error {
	if block.ID == "" {
		block.ID = uuid.New().String()
	}
	block.CreatedAt = time.Now().UTC()

	query, args, err := a.db.Insert("location_blocks").
		Rows(goqu.Record{
			"id":          block.ID,
			"location_id": block.LocationID,
			"start_at":    block.StartAt,
			"end_at":      block.EndAt,
			"reason":      block.Reason,
			"created_at":  block.CreatedAt,
		}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create block", err)
	}

	return nil
}

// DeleteBlock removes a closure block from a location
func (a *LocationAdapter) DeleteBlock(ctx context.Context, locationID, blockID string) error {
	query, args, err := a.db.Delete("location_blocks").
		Where(goqu.Ex{"id": blockID, "location_id": locationID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete block", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to check delete result", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("block with id %s not found", blockID))
	}

	return nil
}

// ListBlocks retrieves all blocks for a location ordered by start time
func (a *LocationAdapter) ListBlocks(ctx context.Context, locationID string) ([]*entities.LocationBlock, error) {
	query, args, err := a.db.Select(
		"id", "location_id", "start_at", "end_at", "reason", "created_at",
	).
		From("location_blocks").
		Where(goqu.Ex{"location_id": locationID}).
		Order(goqu.I("start_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryBlocks(ctx, query, args...)
}

// BlocksOverlapping retrieves the blocks of a location that intersect [start, end)
func (a *LocationAdapter) BlocksOverlapping(ctx context.Context, locationID string, start, end time.Time) ([]*entities.LocationBlock, error) {
	query, args, err := a.db.Select(
		"id", "location_id", "start_at", "end_at", "reason", "created_at",
	).
		From("location_blocks").
		Where(
			goqu.Ex{"location_id": locationID},
			goqu.C("start_at").Lt(end),
			goqu.C("end_at").Gt(start),
		).
		Order(goqu.I("start_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryBlocks(ctx, query, args...)
}

func (a *LocationAdapter) queryBlocks(ctx context.Context, query string, args ...interface{}) ([]*entities.LocationBlock, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list blocks", err)
	}
	defer rows.Close()

	var blocks []*entities.LocationBlock
	for rows.Next() {
		block := &entities.LocationBlock{}
		var reason sql.NullString
		err := rows.Scan(
			&block.ID,
			&block.LocationID,
			&block.StartAt,
			&block.EndAt,
			&reason,
			&block.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan block", err)
		}
		block.Reason = reason.String
		blocks = append(blocks, block)
	}

	return blocks, rows.Err()
}
