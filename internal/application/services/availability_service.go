package services

import (
	"context"
	"sort"
	"time"

	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
	"github.com/twilightpharmacy/booking-backend/internal/domain/repositories"
	"github.com/twilightpharmacy/booking-backend/internal/domain/scheduling"
)

// AvailabilityService computes the open slots for a treatment at a location
// on a date
type AvailabilityService struct {
	treatmentRepo  repositories.TreatmentRepository
	locationRepo   repositories.LocationRepository
	pharmacistRepo repositories.PharmacistRepository
	bookingRepo    repositories.BookingRepository
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(
	treatmentRepo repositories.TreatmentRepository,
	locationRepo repositories.LocationRepository,
	pharmacistRepo repositories.PharmacistRepository,
	bookingRepo repositories.BookingRepository,
) *AvailabilityService {
	return &AvailabilityService{
		treatmentRepo:  treatmentRepo,
		locationRepo:   locationRepo,
		pharmacistRepo: pharmacistRepo,
		bookingRepo:    bookingRepo,
	}
}

// AvailabilityQuery describes one availability request. PharmacistID empty
// means the customer doesn't mind who performs the treatment.
type AvailabilityQuery struct {
	TreatmentID  string
	LocationID   string
	Date         time.Time
	PharmacistID string
}

// GetAvailableSlots computes open slots for the query.
//
// Slots are tiled from each eligible pharmacist's schedule windows at the
// treatment's duration, then slots whose (pharmacist, time) pair is held by
// an active booking are dropped, then slots overlapping a location closure
// block are dropped. In don't-mind mode, slots are grouped by time with a
// count of distinct free pharmacists.
func (s *AvailabilityService) GetAvailableSlots(ctx context.Context, query AvailabilityQuery) ([]entities.AvailableSlot, error) {
	treatment, err := s.treatmentRepo.GetByID(ctx, query.TreatmentID)
	if err != nil {
		return nil, err
	}
	if !treatment.ShowSlots {
		// Slotless treatments are arranged by the pharmacy after booking.
		return []entities.AvailableSlot{}, nil
	}

	if _, err := s.locationRepo.GetByID(ctx, query.LocationID); err != nil {
		return nil, err
	}

	dayOfWeek := int(query.Date.Weekday())
	eligible, err := s.pharmacistRepo.EligibleForTreatment(ctx, query.TreatmentID, query.LocationID, dayOfWeek)
	if err != nil {
		return nil, err
	}
	if query.PharmacistID != "" {
		eligible = filterPharmacist(eligible, query.PharmacistID)
	}
	if len(eligible) == 0 {
		return []entities.AvailableSlot{}, nil
	}

	var requestedPharmacist *string
	if query.PharmacistID != "" {
		requestedPharmacist = &query.PharmacistID
	}
	booked, err := s.bookingRepo.BookedSlots(ctx, query.LocationID, query.TreatmentID, query.Date, requestedPharmacist)
	if err != nil {
		return nil, err
	}
	bookedByPharmacist := make(map[string]map[string]bool)
	for _, slot := range booked {
		if bookedByPharmacist[slot.PharmacistID] == nil {
			bookedByPharmacist[slot.PharmacistID] = make(map[string]bool)
		}
		bookedByPharmacist[slot.PharmacistID][slot.Time] = true
	}

	dayStart := time.Date(query.Date.Year(), query.Date.Month(), query.Date.Day(), 0, 0, 0, 0, query.Date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)
	blocks, err := s.locationRepo.BlocksOverlapping(ctx, query.LocationID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	type pharmacistSlot struct {
		pharmacistID string
		time         string
	}
	var open []pharmacistSlot

	for _, pharmacist := range eligible {
		windows := make([]scheduling.Window, 0, len(pharmacist.Windows))
		for _, w := range pharmacist.Windows {
			windows = append(windows, scheduling.Window{Start: w.StartTime, End: w.EndTime})
		}
		for _, window := range scheduling.MergeWindows(windows) {
			times, err := scheduling.Tile(window.Start, window.End, treatment.DurationMinutes)
			if err != nil {
				continue
			}
			for _, t := range times {
				if bookedByPharmacist[pharmacist.ID][t] {
					continue
				}
				if slotBlocked(dayStart, t, treatment.DurationMinutes, blocks) {
					continue
				}
				open = append(open, pharmacistSlot{pharmacistID: pharmacist.ID, time: t})
			}
		}
	}

	if query.PharmacistID != "" {
		slots := make([]entities.AvailableSlot, 0, len(open))
		for _, s := range open {
			slots = append(slots, entities.AvailableSlot{Time: s.time, PharmacistID: s.pharmacistID})
		}
		sort.Slice(slots, func(i, j int) bool { return slots[i].Time < slots[j].Time })
		return slots, nil
	}

	counts := make(map[string]int)
	for _, s := range open {
		counts[s.time]++
	}
	slots := make([]entities.AvailableSlot, 0, len(counts))
	for t, count := range counts {
		slots = append(slots, entities.AvailableSlot{Time: t, Count: count})
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Time < slots[j].Time })
	return slots, nil
}

func filterPharmacist(eligible []*entities.EligiblePharmacist, pharmacistID string) []*entities.EligiblePharmacist {
	for _, p := range eligible {
		if p.ID == pharmacistID {
			return []*entities.EligiblePharmacist{p}
		}
	}
	return nil
}

// slotBlocked reports whether the slot starting at timeOfDay on day overlaps
// any closure block. A slot touching a block boundary is not blocked.
func slotBlocked(dayStart time.Time, timeOfDay string, durationMinutes int, blocks []*entities.LocationBlock) bool {
	minute, err := scheduling.MinuteOfDay(timeOfDay)
	if err != nil {
		return false
	}
	slotStart := dayStart.Add(time.Duration(minute) * time.Minute)
	slotEnd := slotStart.Add(time.Duration(durationMinutes) * time.Minute)
	for _, block := range blocks {
		if block.Overlaps(slotStart, slotEnd) {
			return true
		}
	}
	return false
}
