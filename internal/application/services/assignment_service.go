package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
	"github.com/twilightpharmacy/booking-backend/internal/domain/repositories"
	"github.com/twilightpharmacy/booking-backend/internal/domain/scheduling"
	"github.com/twilightpharmacy/booking-backend/internal/infrastructure/observability"
)

// AssignmentService picks the pharmacist for a booking
type AssignmentService struct {
	pharmacistRepo        repositories.PharmacistRepository
	bookingRepo           repositories.BookingRepository
	allowOversubscription bool
	metrics               *observability.Metrics
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(
	pharmacistRepo repositories.PharmacistRepository,
	bookingRepo repositories.BookingRepository,
	allowOversubscription bool,
	metrics *observability.Metrics,
) *AssignmentService {
	return &AssignmentService{
		pharmacistRepo:        pharmacistRepo,
		bookingRepo:           bookingRepo,
		allowOversubscription: allowOversubscription,
		metrics:               metrics,
	}
}

// Assignment is the outcome of an assignment attempt. PharmacistID is nil
// when no eligible pharmacist exists. Oversubscribed is set when the chosen
// pharmacist already holds a booking at the same time and the
// oversubscription policy admitted the booking anyway.
type Assignment struct {
	PharmacistID   *string
	Oversubscribed bool
}

// Assign chooses a pharmacist for (treatment, location, date, time).
//
// Candidates are the eligible pharmacists for the weekday, narrowed to those
// whose schedule window covers the time. If narrowing empties the pool, the
// full eligible set is used instead. The first candidate not already booked
// at that time wins; candidates are ordered by name then id so the choice is
// deterministic. Exclude lists pharmacists a retrying caller has already
// collided with.
func (s *AssignmentService) Assign(ctx context.Context, treatmentID, locationID string, date time.Time, timeOfDay string, exclude []string) (Assignment, error) {
	dayOfWeek := int(date.Weekday())
	eligible, err := s.pharmacistRepo.EligibleForTreatment(ctx, treatmentID, locationID, dayOfWeek)
	if err != nil {
		return Assignment{}, err
	}

	excluded := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	candidates := make([]*entities.EligiblePharmacist, 0, len(eligible))
	for _, p := range eligible {
		if excluded[p.ID] {
			continue
		}
		candidates = append(candidates, p)
	}
	if len(candidates) == 0 {
		return Assignment{}, nil
	}

	withinSchedule := make([]*entities.EligiblePharmacist, 0, len(candidates))
	for _, p := range candidates {
		for _, w := range p.Windows {
			window := scheduling.Window{Start: w.StartTime, End: w.EndTime}
			if window.Covers(timeOfDay) {
				withinSchedule = append(withinSchedule, p)
				break
			}
		}
	}
	// Widen back to every eligible pharmacist rather than reject the booking
	// when nobody's window covers the requested time.
	if len(withinSchedule) == 0 {
		withinSchedule = candidates
	}

	busy, err := s.bookingRepo.BusyPharmacists(ctx, treatmentID, locationID, date, timeOfDay)
	if err != nil {
		return Assignment{}, err
	}
	busySet := make(map[string]bool, len(busy))
	for _, id := range busy {
		busySet[id] = true
	}

	for _, p := range withinSchedule {
		if !busySet[p.ID] {
			id := p.ID
			return Assignment{PharmacistID: &id}, nil
		}
	}

	if s.allowOversubscription {
		id := withinSchedule[0].ID
		log.Warn().
			Str("pharmacist_id", id).
			Str("treatment_id", treatmentID).
			Str("time", timeOfDay).
			Msg("all eligible pharmacists busy, oversubscribing")
		observability.RecordAssignmentFallback(ctx, s.metrics, treatmentID)
		return Assignment{PharmacistID: &id, Oversubscribed: true}, nil
	}

	return Assignment{}, nil
}
