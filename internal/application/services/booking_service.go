package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
	"github.com/twilightpharmacy/booking-backend/internal/domain/providers"
	"github.com/twilightpharmacy/booking-backend/internal/domain/repositories"
	"github.com/twilightpharmacy/booking-backend/internal/domain/scheduling"
	"github.com/twilightpharmacy/booking-backend/internal/infrastructure/observability"
	apperrors "github.com/twilightpharmacy/booking-backend/pkg/errors"
)

// BookingService handles booking creation and lifecycle changes
type BookingService struct {
	bookingRepo       repositories.BookingRepository
	treatmentRepo     repositories.TreatmentRepository
	locationRepo      repositories.LocationRepository
	assignmentService *AssignmentService
	notifier          providers.Notifier
	eventBus          providers.EventBus
	assignmentRetries int
	metrics           *observability.Metrics
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookingRepo repositories.BookingRepository,
	treatmentRepo repositories.TreatmentRepository,
	locationRepo repositories.LocationRepository,
	assignmentService *AssignmentService,
	notifier providers.Notifier,
	eventBus providers.EventBus,
	assignmentRetries int,
	metrics *observability.Metrics,
) *BookingService {
	return &BookingService{
		bookingRepo:       bookingRepo,
		treatmentRepo:     treatmentRepo,
		locationRepo:      locationRepo,
		assignmentService: assignmentService,
		notifier:          notifier,
		eventBus:          eventBus,
		assignmentRetries: assignmentRetries,
		metrics:           metrics,
	}
}

// CreateBookingRequest carries the customer-facing booking form
type CreateBookingRequest struct {
	TreatmentID   string     `json:"treatment_id"`
	LocationID    string     `json:"location_id"`
	PharmacistID  string     `json:"pharmacist_id,omitempty"`
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email"`
	CustomerPhone string     `json:"customer_phone"`
	PreferredDate *time.Time `json:"preferred_date,omitempty"`
	PreferredTime string     `json:"preferred_time,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

// CreateBooking validates the request, assigns a pharmacist when the
// treatment uses discrete slots and none was requested, and persists the
// booking as pending. Treatments with ShowSlots=false are stored with the
// TBD time and left unassigned for admin follow-up.
//
// A storage conflict on the (pharmacist, date, time) slot triggers
// re-assignment excluding the conflicted pharmacist, bounded by the
// configured retry count. When the candidate pool empties the booking is
// created unassigned rather than rejected.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*entities.Booking, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, apperrors.NewValidationError("customer name is required")
	}
	if strings.TrimSpace(req.CustomerEmail) == "" {
		return nil, apperrors.NewValidationError("customer email is required")
	}
	if strings.TrimSpace(req.CustomerPhone) == "" {
		return nil, apperrors.NewValidationError("customer phone is required")
	}
	if req.TreatmentID == "" {
		return nil, apperrors.NewValidationError("treatment id is required")
	}
	if req.LocationID == "" {
		return nil, apperrors.NewValidationError("location id is required")
	}

	treatment, err := s.treatmentRepo.GetByID(ctx, req.TreatmentID)
	if err != nil {
		return nil, err
	}
	location, err := s.locationRepo.GetByID(ctx, req.LocationID)
	if err != nil {
		return nil, err
	}

	seasonCheck := time.Now()
	if treatment.ShowSlots && req.PreferredDate != nil {
		seasonCheck = *req.PreferredDate
	}
	if !treatment.InSeason(seasonCheck) {
		return nil, apperrors.NewOutOfSeasonError(fmt.Sprintf("%s is not available at the requested time of year", treatment.Name))
	}

	booking := &entities.Booking{
		ID:            uuid.New().String(),
		TreatmentID:   req.TreatmentID,
		LocationID:    req.LocationID,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Notes:         req.Notes,
		Status:        entities.BookingStatusPending,
		PaymentStatus: entities.PaymentStatusUnset,
	}

	if !treatment.ShowSlots {
		booking.PreferredDate = req.PreferredDate
		booking.PreferredTime = entities.TimeTBD
		if err := s.bookingRepo.Create(ctx, booking); err != nil {
			return nil, err
		}
		s.afterCreate(ctx, booking, treatment, location)
		return booking, nil
	}

	if req.PreferredDate == nil {
		return nil, apperrors.NewValidationError("preferred date is required")
	}
	if req.PreferredTime == "" {
		return nil, apperrors.NewValidationError("preferred time is required")
	}
	if _, err := scheduling.MinuteOfDay(req.PreferredTime); err != nil {
		return nil, apperrors.NewValidationError("preferred time must be HH:MM")
	}
	booking.PreferredDate = req.PreferredDate
	booking.PreferredTime = req.PreferredTime

	if err := s.checkBlocks(ctx, req.LocationID, *req.PreferredDate, req.PreferredTime, treatment.DurationMinutes); err != nil {
		return nil, err
	}

	if req.PharmacistID != "" {
		id := req.PharmacistID
		booking.PharmacistID = &id
		// Customer chose this pharmacist; a slot conflict is surfaced, not
		// retried onto someone else.
		if err := s.bookingRepo.Create(ctx, booking); err != nil {
			return nil, err
		}
		s.afterCreate(ctx, booking, treatment, location)
		return booking, nil
	}

	var excluded []string
	assignment, err := s.assignmentService.Assign(ctx, req.TreatmentID, req.LocationID, *req.PreferredDate, req.PreferredTime, excluded)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		booking.PharmacistID = assignment.PharmacistID
		err := s.bookingRepo.Create(ctx, booking)
		if err == nil {
			break
		}
		if !apperrors.IsType(err, apperrors.ErrorTypeConflict) || assignment.PharmacistID == nil {
			return nil, err
		}
		if attempt >= s.assignmentRetries {
			return nil, err
		}
		excluded = append(excluded, *assignment.PharmacistID)
		log.Info().
			Str("booking_id", booking.ID).
			Str("pharmacist_id", *assignment.PharmacistID).
			Int("attempt", attempt+1).
			Msg("slot conflict, retrying assignment")
		assignment, err = s.assignmentService.Assign(ctx, req.TreatmentID, req.LocationID, *req.PreferredDate, req.PreferredTime, excluded)
		if err != nil {
			return nil, err
		}
	}

	s.afterCreate(ctx, booking, treatment, location)
	return booking, nil
}

func (s *BookingService) checkBlocks(ctx context.Context, locationID string, date time.Time, timeOfDay string, durationMinutes int) error {
	minute, err := scheduling.MinuteOfDay(timeOfDay)
	if err != nil {
		return apperrors.NewValidationError("preferred time must be HH:MM")
	}
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	slotStart := dayStart.Add(time.Duration(minute) * time.Minute)
	slotEnd := slotStart.Add(time.Duration(durationMinutes) * time.Minute)

	blocks, err := s.locationRepo.BlocksOverlapping(ctx, locationID, slotStart, slotEnd)
	if err != nil {
		return err
	}
	if len(blocks) > 0 {
		return apperrors.NewSlotBlockedError("the location is closed at the requested time")
	}
	return nil
}

// afterCreate runs the side effects of a created booking: metrics, event
// publication, and the fire-and-forget confirmation email.
func (s *BookingService) afterCreate(ctx context.Context, booking *entities.Booking, treatment *entities.Treatment, location *entities.Location) {
	observability.RecordBookingCreated(ctx, s.metrics, booking.TreatmentID, booking.PharmacistID != nil)

	s.publishEvent(ctx, entities.EventBookingCreated, booking.ID)

	if s.notifier != nil {
		go func(b entities.Booking, t entities.Treatment, l entities.Location) {
			bgCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.notifier.SendBookingConfirmation(bgCtx, &b, &t, &l); err != nil {
				log.Error().Err(err).Str("booking_id", b.ID).Msg("failed to send booking confirmation")
			}
		}(*booking, *treatment, *location)
	}
}

func (s *BookingService) publishEvent(ctx context.Context, eventType entities.EventType, bookingID string) {
	if s.eventBus == nil {
		return
	}
	event := &entities.Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		Entity:     "booking",
		EntityID:   bookingID,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.eventBus.Publish(ctx, providers.EventChannelBookings, event); err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to publish booking event")
	}
}

// GetBooking retrieves a booking by ID
func (s *BookingService) GetBooking(ctx context.Context, id string) (*entities.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

// ListBookings retrieves bookings matching the filter
func (s *BookingService) ListBookings(ctx context.Context, filter repositories.BookingFilter) ([]*entities.Booking, error) {
	return s.bookingRepo.List(ctx, filter)
}

// UpdateStatus sets a booking's status. An optional comment is appended to
// the booking notes with an "[Admin]" prefix.
func (s *BookingService) UpdateStatus(ctx context.Context, id string, status entities.BookingStatus, comment string) (*entities.Booking, error) {
	if !entities.ValidBookingStatus(status) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid status %q", status))
	}

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	booking.Status = status
	if comment = strings.TrimSpace(comment); comment != "" {
		note := fmt.Sprintf("[Admin] %s", comment)
		if booking.Notes == "" {
			booking.Notes = note
		} else {
			booking.Notes = booking.Notes + "\n" + note
		}
	}

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, entities.EventBookingStatusChanged, booking.ID)
	return booking, nil
}

// MarkPaid records a successful payment and confirms the booking. The
// operation is idempotent: a booking already paid is returned unchanged.
func (s *BookingService) MarkPaid(ctx context.Context, id, paymentRef string) (*entities.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.PaymentStatus == entities.PaymentStatusPaid {
		return booking, nil
	}

	now := time.Now().UTC()
	booking.PaymentStatus = entities.PaymentStatusPaid
	booking.PaidAt = &now
	booking.Status = entities.BookingStatusConfirmed
	if paymentRef != "" {
		booking.PaymentRef = &paymentRef
	}

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, entities.EventBookingStatusChanged, booking.ID)
	return booking, nil
}

// MarkPaymentFailed records a failed payment attempt. The booking stays in
// its current lifecycle status.
func (s *BookingService) MarkPaymentFailed(ctx context.Context, id, paymentRef string) (*entities.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	booking.PaymentStatus = entities.PaymentStatusFailed
	if paymentRef != "" {
		booking.PaymentRef = &paymentRef
	}

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	return booking, nil
}
