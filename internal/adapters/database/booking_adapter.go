package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
	"github.com/twilightpharmacy/booking-backend/internal/domain/repositories"
	"github.com/twilightpharmacy/booking-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/twilightpharmacy/booking-backend/pkg/errors"
)

const pqUniqueViolation = "23505"

var bookingColumns = []interface{}{
	"id", "treatment_id", "location_id", "pharmacist_id",
	"customer_name", "customer_email", "customer_phone",
	"preferred_date", "preferred_time", "notes",
	"status", "payment_status", "payment_ref", "paid_at",
	"created_at", "updated_at",
}

// BookingAdapter implements the BookingRepository interface
type BookingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBookingAdapter creates a new booking adapter
func NewBookingAdapter(client *postgres.Client) repositories.BookingRepository {
	return &BookingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func scanBooking(row rowScanner) (*entities.Booking, error) {
	booking := &entities.Booking{}
	var pharmacistID, notes, paymentStatus, paymentRef sql.NullString
	var preferredDate, paidAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.TreatmentID,
		&booking.LocationID,
		&pharmacistID,
		&booking.CustomerName,
		&booking.CustomerEmail,
		&booking.CustomerPhone,
		&preferredDate,
		&booking.PreferredTime,
		&notes,
		&booking.Status,
		&paymentStatus,
		&paymentRef,
		&paidAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if pharmacistID.Valid {
		booking.PharmacistID = &pharmacistID.String
	}
	if preferredDate.Valid {
		booking.PreferredDate = &preferredDate.Time
	}
	booking.Notes = notes.String
	booking.PaymentStatus = entities.PaymentStatus(paymentStatus.String)
	if paymentRef.Valid {
		booking.PaymentRef = &paymentRef.String
	}
	if paidAt.Valid {
		booking.PaidAt = &paidAt.Time
	}

	return booking, nil
}

// Create persists a new booking. A unique violation on the active-booking
// index surfaces as a CONFLICT error so callers can retry with another
// pharmacist.
func (a *BookingAdapter) Create(ctx context.Context, booking *entities.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	query, args, err := a.db.Insert("bookings").
		Rows(goqu.Record{
			"id":             booking.ID,
			"treatment_id":   booking.TreatmentID,
			"location_id":    booking.LocationID,
			"pharmacist_id":  booking.PharmacistID,
			"customer_name":  booking.CustomerName,
			"customer_email": booking.CustomerEmail,
			"customer_phone": booking.CustomerPhone,
			"preferred_date": booking.PreferredDate,
			"preferred_time": booking.PreferredTime,
			"notes":          booking.Notes,
			"status":         booking.Status,
			"payment_status": string(booking.PaymentStatus),
			"payment_ref":    booking.PaymentRef,
			"paid_at":        booking.PaidAt,
			"created_at":     booking.CreatedAt,
			"updated_at":     booking.UpdatedAt,
		}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return apperrors.NewConflictError("slot already taken")
		}
		return apperrors.NewInternalError("failed to create booking", err)
	}

	return nil
}

// GetByID retrieves a booking by ID
func (a *BookingAdapter) GetByID(ctx context.Context, id string) (*entities.Booking, error) {
	query, args, err := a.db.Select(bookingColumns...).
		From("bookings").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	booking, err := scanBooking(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("booking with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get booking", err)
	}

	return booking, nil
}

// Update persists the mutable fields of a booking
func (a *BookingAdapter) Update(ctx context.Context, booking *entities.Booking) error {
	booking.UpdatedAt = time.Now().UTC()

	query, args, err := a.db.Update("bookings").
		Set(goqu.Record{
			"pharmacist_id":  booking.PharmacistID,
			"preferred_date": booking.PreferredDate,
			"preferred_time": booking.PreferredTime,
			"notes":          booking.Notes,
			"status":         booking.Status,
			"payment_status": string(booking.PaymentStatus),
			"payment_ref":    booking.PaymentRef,
			"paid_at":        booking.PaidAt,
			"updated_at":     booking.UpdatedAt,
		}).
		Where(goqu.Ex{"id": booking.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return apperrors.NewConflictError("slot already taken")
		}
		return apperrors.NewInternalError("failed to update booking", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to check update result", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("booking with id %s not found", booking.ID))
	}

	return nil
}

// List retrieves bookings matching the filter, newest first
func (a *BookingAdapter) List(ctx context.Context, filter repositories.BookingFilter) ([]*entities.Booking, error) {
	ds := a.db.Select(bookingColumns...).From("bookings")

	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": filter.Status})
	}
	if filter.LocationID != "" {
		ds = ds.Where(goqu.Ex{"location_id": filter.LocationID})
	}
	if filter.Unassigned {
		ds = ds.Where(goqu.C("pharmacist_id").IsNull())
	}
	if filter.ActiveOnly {
		ds = ds.Where(goqu.C("status").In(
			string(entities.BookingStatusPending),
			string(entities.BookingStatusConfirmed),
		))
	}
	if filter.From != nil {
		ds = ds.Where(goqu.C("preferred_date").Gte(*filter.From))
	}
	if filter.To != nil {
		ds = ds.Where(goqu.C("preferred_date").Lt(*filter.To))
	}

	ds = ds.Order(goqu.I("created_at").Desc())

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

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list bookings", err)
	}
	defer rows.Close()

	var bookings []*entities.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan booking", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

// BookedSlots retrieves the (pharmacist, time) pairs held by active bookings
// for a location, treatment and date
func (a *BookingAdapter) BookedSlots(ctx context.Context, locationID, treatmentID string, date time.Time, pharmacistID *string) ([]entities.BookedSlot, error) {
	ds := a.db.Select("pharmacist_id", "preferred_time").
		From("bookings").
		Where(
			goqu.Ex{
				"location_id":    locationID,
				"treatment_id":   treatmentID,
				"preferred_date": date,
			},
			goqu.C("status").In(
				string(entities.BookingStatusPending),
				string(entities.BookingStatusConfirmed),
			),
			goqu.C("pharmacist_id").IsNotNull(),
		)

	if pharmacistID != nil {
		ds = ds.Where(goqu.Ex{"pharmacist_id": *pharmacistID})
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list booked slots", err)
	}
	defer rows.Close()

	var slots []entities.BookedSlot
	for rows.Next() {
		var slot entities.BookedSlot
		if err := rows.Scan(&slot.PharmacistID, &slot.Time); err != nil {
			return nil, apperrors.NewInternalError("failed to scan booked slot", err)
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}

// BusyPharmacists retrieves pharmacists holding an active booking at the
// exact (treatment, location, date, time)
func (a *BookingAdapter) BusyPharmacists(ctx context.Context, treatmentID, locationID string, date time.Time, timeOfDay string) ([]string, error) {
	query, args, err := a.db.Select("pharmacist_id").
		From("bookings").
		Where(
			goqu.Ex{
				"treatment_id":   treatmentID,
				"location_id":    locationID,
				"preferred_date": date,
				"preferred_time": timeOfDay,
			},
			goqu.C("status").In(
				string(entities.BookingStatusPending),
				string(entities.BookingStatusConfirmed),
			),
			goqu.C("pharmacist_id").IsNotNull(),
		).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list busy pharmacists", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewInternalError("failed to scan pharmacist id", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
