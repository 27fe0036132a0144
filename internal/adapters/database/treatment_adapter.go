package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
	"github.com/twilightpharmacy/booking-backend/internal/domain/repositories"
	"github.com/twilightpharmacy/booking-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/twilightpharmacy/booking-backend/pkg/errors"
)

var treatmentColumns = []interface{}{
	"id", "name", "description", "category", "price", "duration_minutes",
	"is_travel", "is_nhs", "show_slots", "season_start", "season_end",
	"is_active", "created_at", "updated_at",
}

// TreatmentAdapter implements the TreatmentRepository interface
type TreatmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewTreatmentAdapter creates a new treatment adapter
func NewTreatmentAdapter(client *postgres.Client) repositories.TreatmentRepository {
	return &TreatmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTreatment(row rowScanner) (*entities.Treatment, error) {
	treatment := &entities.Treatment{}
	var description, category sql.NullString
	var seasonStart, seasonEnd sql.NullTime

	err := row.Scan(
		&treatment.ID,
		&treatment.Name,
		&description,
		&category,
		&treatment.Price,
		&treatment.DurationMinutes,
		&treatment.IsTravel,
		&treatment.IsNHS,
		&treatment.ShowSlots,
		&seasonStart,
		&seasonEnd,
		&treatment.IsActive,
		&treatment.CreatedAt,
		&treatment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	treatment.Description = description.String
	treatment.Category = category.String
	if seasonStart.Valid {
		treatment.SeasonStart = &seasonStart.Time
	}
	if seasonEnd.Valid {
		treatment.SeasonEnd = &seasonEnd.Time
	}

	return treatment, nil
}

// GetByID retrieves a treatment by ID
func (a *TreatmentAdapter) GetByID(ctx context.Context, id string) (*entities.Treatment, error) {
	query, args, err := a.db.Select(treatmentColumns...).
		From("treatments").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	treatment, err := scanTreatment(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("treatment with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get treatment", err)
	}

	return treatment, nil
}

// List retrieves treatments matching the filter
func (a *TreatmentAdapter) List(ctx context.Context, filter repositories.TreatmentFilter) ([]*entities.Treatment, error) {
	ds := a.db.Select(treatmentColumns...).From("treatments")

	if filter.Category != "" {
		ds = ds.Where(goqu.Ex{"category": filter.Category})
	}
	if filter.ActiveOnly {
		ds = ds.Where(goqu.Ex{"is_active": true})
	}

	ds = ds.Order(goqu.I("name").Asc())

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	return a.queryTreatments(ctx, query, args...)
}

// Search retrieves active treatments whose name or description matches the query
func (a *TreatmentAdapter) Search(ctx context.Context, query string, limit int) ([]*entities.Treatment, error) {
	pattern := "%" + query + "%"
	ds := a.db.Select(treatmentColumns...).
		From("treatments").
		Where(
			goqu.Ex{"is_active": true},
			goqu.Or(
				goqu.C("name").ILike(pattern),
				goqu.C("description").ILike(pattern),
				goqu.C("category").ILike(pattern),
			),
		).
		Order(goqu.I("name").Asc())

	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	sqlQuery, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build search query", err)
	}

	return a.queryTreatments(ctx, sqlQuery, args...)
}

// LocationsFor retrieves the locations offering a treatment
func (a *TreatmentAdapter) LocationsFor(ctx context.Context, treatmentID string) ([]*entities.Location, error) {
	query, args, err := a.db.Select(
		goqu.I("l.id"), goqu.I("l.name"), goqu.I("l.code"), goqu.I("l.address"),
		goqu.I("l.phone"), goqu.I("l.opening_hours"), goqu.I("l.created_at"), goqu.I("l.updated_at"),
	).
		From(goqu.T("locations").As("l")).
		Join(
			goqu.T("treatment_locations").As("tl"),
			goqu.On(goqu.Ex{"tl.location_id": goqu.I("l.id")}),
		).
		Where(goqu.Ex{"tl.treatment_id": treatmentID}).
		Order(goqu.I("l.name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list treatment locations", err)
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

func (a *TreatmentAdapter) queryTreatments(ctx context.Context, query string, args ...interface{}) ([]*entities.Treatment, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list treatments", err)
	}
	defer rows.Close()

	var treatments []*entities.Treatment
	for rows.Next() {
		treatment, err := scanTreatment(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan treatment", err)
		}
		treatments = append(treatments, treatment)
	}

	return treatments, rows.Err()
}
