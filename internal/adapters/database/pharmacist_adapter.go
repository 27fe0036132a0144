package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
	"github.com/twilightpharmacy/booking-backend/internal/domain/repositories"
	"github.com/twilightpharmacy/booking-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/twilightpharmacy/booking-backend/pkg/errors"
)

// PharmacistAdapter implements the PharmacistRepository interface
type PharmacistAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPharmacistAdapter creates a new pharmacist adapter
func NewPharmacistAdapter(client *postgres.Client) repositories.PharmacistRepository {
	return &PharmacistAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func scanPharmacist(row rowScanner) (*entities.Pharmacist, error) {
	pharmacist := &entities.Pharmacist{}
	var email, phone sql.NullString

	err := row.Scan(
		&pharmacist.ID,
		&pharmacist.Name,
		&email,
		&phone,
		&pharmacist.IsActive,
		&pharmacist.CreatedAt,
		&pharmacist.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	pharmacist.Email = email.String
	pharmacist.Phone = phone.String

	return pharmacist, nil
}

// GetByID retrieves a pharmacist by ID
func (a *PharmacistAdapter) GetByID(ctx context.Context, id string) (*entities.Pharmacist, error) {
	query, args, err := a.db.Select(
		"id", "name", "email", "phone", "is_active", "created_at", "updated_at",
	).
		From("pharmacists").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	pharmacist, err := scanPharmacist(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("pharmacist with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get pharmacist", err)
	}

	return pharmacist, nil
}

// List retrieves pharmacists matching the filter
func (a *PharmacistAdapter) List(ctx context.Context, filter repositories.PharmacistFilter) ([]*entities.Pharmacist, error) {
	ds := a.db.Select(
		goqu.I("p.id"), goqu.I("p.name"), goqu.I("p.email"), goqu.I("p.phone"),
		goqu.I("p.is_active"), goqu.I("p.created_at"), goqu.I("p.updated_at"),
	).
		From(goqu.T("pharmacists").As("p")).
		Distinct()

	if filter.TreatmentID != "" {
		ds = ds.Join(
			goqu.T("pharmacist_treatments").As("pt"),
			goqu.On(goqu.Ex{"pt.pharmacist_id": goqu.I("p.id")}),
		).Where(goqu.Ex{"pt.treatment_id": filter.TreatmentID})
	}
	if filter.LocationID != "" {
		ds = ds.Join(
			goqu.T("pharmacist_locations").As("pl"),
			goqu.On(goqu.Ex{"pl.pharmacist_id": goqu.I("p.id")}),
		).Where(goqu.Ex{"pl.location_id": filter.LocationID})
	}
	if filter.ActiveOnly {
		ds = ds.Where(goqu.Ex{"p.is_active": true})
	}

	query, args, err := ds.Order(goqu.I("p.name").Asc(), goqu.I("p.id").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list pharmacists", err)
	}
	defer rows.Close()

	var pharmacists []*entities.Pharmacist
	for rows.Next() {
		pharmacist, err := scanPharmacist(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan pharmacist", err)
		}
		pharmacists = append(pharmacists, pharmacist)
	}

	return pharmacists, rows.Err()
}

// EligibleForTreatment retrieves active pharmacists who can deliver a treatment at a
// location on a given weekday, together with their active schedule windows for that
// day. Results are ordered by name then id so assignment is deterministic.
func (a *PharmacistAdapter) EligibleForTreatment(ctx context.Context, treatmentID, locationID string, dayOfWeek int) ([]*entities.EligiblePharmacist, error) {
	query, args, err := a.db.Select(
		goqu.I("p.id"), goqu.I("p.name"), goqu.I("p.email"), goqu.I("p.phone"),
		goqu.I("p.is_active"), goqu.I("p.created_at"), goqu.I("p.updated_at"),
		goqu.I("ps.id"), goqu.I("ps.day_of_week"), goqu.I("ps.start_time"), goqu.I("ps.end_time"),
	).
		From(goqu.T("pharmacists").As("p")).
		Join(
			goqu.T("pharmacist_treatments").As("pt"),
			goqu.On(goqu.Ex{"pt.pharmacist_id": goqu.I("p.id")}),
		).
		Join(
			goqu.T("pharmacist_locations").As("pl"),
			goqu.On(goqu.Ex{"pl.pharmacist_id": goqu.I("p.id")}),
		).
		Join(
			goqu.T("pharmacist_schedules").As("ps"),
			goqu.On(goqu.Ex{"ps.pharmacist_id": goqu.I("p.id")}),
		).
		Where(goqu.Ex{
			"pt.treatment_id": treatmentID,
			"pl.location_id":  locationID,
			"ps.day_of_week":  dayOfWeek,
			"ps.is_active":    true,
			"p.is_active":     true,
		}).
		Order(goqu.I("p.name").Asc(), goqu.I("p.id").Asc(), goqu.I("ps.start_time").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list eligible pharmacists", err)
	}
	defer rows.Close()

	var result []*entities.EligiblePharmacist
	index := make(map[string]*entities.EligiblePharmacist)

	for rows.Next() {
		pharmacist := entities.Pharmacist{}
		schedule := entities.PharmacistSchedule{}
		var email, phone sql.NullString

		err := rows.Scan(
			&pharmacist.ID,
			&pharmacist.Name,
			&email,
			&phone,
			&pharmacist.IsActive,
			&pharmacist.CreatedAt,
			&pharmacist.UpdatedAt,
			&schedule.ID,
			&schedule.DayOfWeek,
			&schedule.StartTime,
			&schedule.EndTime,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan eligible pharmacist", err)
		}

		pharmacist.Email = email.String
		pharmacist.Phone = phone.String
		schedule.PharmacistID = pharmacist.ID
		schedule.IsActive = true

		eligible, ok := index[pharmacist.ID]
		if !ok {
			eligible = &entities.EligiblePharmacist{Pharmacist: pharmacist}
			index[pharmacist.ID] = eligible
			result = append(result, eligible)
		}
		eligible.Windows = append(eligible.Windows, schedule)
	}

	return result, rows.Err()
}

// SchedulesAtLocation retrieves the active schedules of all active pharmacists
// working at a location, keyed by pharmacist
func (a *PharmacistAdapter) SchedulesAtLocation(ctx context.Context, locationID string) ([]*entities.PharmacistSchedule, error) {
	query, args, err := a.db.Select(
		goqu.I("ps.id"), goqu.I("ps.pharmacist_id"), goqu.I("ps.day_of_week"),
		goqu.I("ps.start_time"), goqu.I("ps.end_time"), goqu.I("ps.is_active"),
	).
		From(goqu.T("pharmacist_schedules").As("ps")).
		Join(
			goqu.T("pharmacist_locations").As("pl"),
			goqu.On(goqu.Ex{"pl.pharmacist_id": goqu.I("ps.pharmacist_id")}),
		).
		Join(
			goqu.T("pharmacists").As("p"),
			goqu.On(goqu.Ex{"p.id": goqu.I("ps.pharmacist_id")}),
		).
		Where(goqu.Ex{
			"pl.location_id": locationID,
			"ps.is_active":   true,
			"p.is_active":    true,
		}).
		Order(goqu.I("ps.day_of_week").Asc(), goqu.I("ps.start_time").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list schedules", err)
	}
	defer rows.Close()

	var schedules []*entities.PharmacistSchedule
	for rows.Next() {
		schedule := &entities.PharmacistSchedule{}
		err := rows.Scan(
			&schedule.ID,
			&schedule.PharmacistID,
			&schedule.DayOfWeek,
			&schedule.StartTime,
			&schedule.EndTime,
			&schedule.IsActive,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan schedule", err)
		}
		schedules = append(schedules, schedule)
	}

	return schedules, rows.Err()
}
