package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
	"github.com/twilightpharmacy/booking-backend/internal/domain/providers"
	"github.com/twilightpharmacy/booking-backend/internal/domain/repositories"
	apperrors "github.com/twilightpharmacy/booking-backend/pkg/errors"
)

// LocationService serves locations and their closure blocks
type LocationService struct {
	locationRepo   repositories.LocationRepository
	pharmacistRepo repositories.PharmacistRepository
	bookingRepo    repositories.BookingRepository
	eventBus       providers.EventBus
}

// NewLocationService creates a new location service
func NewLocationService(
	locationRepo repositories.LocationRepository,
	pharmacistRepo repositories.PharmacistRepository,
	bookingRepo repositories.BookingRepository,
	eventBus providers.EventBus,
) *LocationService {
	return &LocationService{
		locationRepo:   locationRepo,
		pharmacistRepo: pharmacistRepo,
		bookingRepo:    bookingRepo,
		eventBus:       eventBus,
	}
}

// GetLocation retrieves a location by ID
func (s *LocationService) GetLocation(ctx context.Context, id string) (*entities.Location, error) {
	return s.locationRepo.GetByID(ctx, id)
}

// ListLocations retrieves all locations
func (s *LocationService) ListLocations(ctx context.Context) ([]*entities.Location, error) {
	return s.locationRepo.List(ctx)
}

// CreateBlockRequest carries an admin closure block request
type CreateBlockRequest struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
	Reason  string    `json:"reason,omitempty"`
}

// CreateBlock adds a closure block to a location. A block overlapping an
// existing one for the same location is rejected with a conflict.
func (s *LocationService) CreateBlock(ctx context.Context, locationID string, req CreateBlockRequest) (*entities.LocationBlock, error) {
	if !req.StartAt.Before(req.EndAt) {
		return nil, apperrors.NewValidationError("block start must be before block end")
	}
	if _, err := s.locationRepo.GetByID(ctx, locationID); err != nil {
		return nil, err
	}

	existing, err := s.locationRepo.BlocksOverlapping(ctx, locationID, req.StartAt, req.EndAt)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, apperrors.NewConflictError("block overlaps an existing block")
	}

	block := &entities.LocationBlock{
		LocationID: locationID,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Reason:     req.Reason,
	}
	if err := s.locationRepo.CreateBlock(ctx, block); err != nil {
		return nil, err
	}

	s.publishReferenceEvent(ctx, locationID)
	return block, nil
}

// DeleteBlock removes a closure block from a location
func (s *LocationService) DeleteBlock(ctx context.Context, locationID, blockID string) error {
	if err := s.locationRepo.DeleteBlock(ctx, locationID, blockID); err != nil {
		return err
	}
	s.publishReferenceEvent(ctx, locationID)
	return nil
}

// ListBlocks retrieves all blocks for a location
func (s *LocationService) ListBlocks(ctx context.Context, locationID string) ([]*entities.LocationBlock, error) {
	if _, err := s.locationRepo.GetByID(ctx, locationID); err != nil {
		return nil, err
	}
	return s.locationRepo.ListBlocks(ctx, locationID)
}

// LocationCalendar is the admin calendar view of a location over a range
type LocationCalendar struct {
	Location  *entities.Location             `json:"location"`
	Blocks    []*entities.LocationBlock      `json:"blocks"`
	Bookings  []*entities.Booking            `json:"bookings"`
	Schedules []*entities.PharmacistSchedule `json:"schedules"`
}

// GetCalendar retrieves blocks, active bookings and the weekly schedule
// overlay for a location over [start, end)
func (s *LocationService) GetCalendar(ctx context.Context, locationID string, start, end time.Time) (*LocationCalendar, error) {
	if !start.Before(end) {
		return nil, apperrors.NewValidationError("start must be before end")
	}

	location, err := s.locationRepo.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}

	blocks, err := s.locationRepo.BlocksOverlapping(ctx, locationID, start, end)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookingRepo.List(ctx, repositories.BookingFilter{
		LocationID: locationID,
		ActiveOnly: true,
		From:       &start,
		To:         &end,
	})
	if err != nil {
		return nil, err
	}

	schedules, err := s.pharmacistRepo.SchedulesAtLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}

	return &LocationCalendar{
		Location:  location,
		Blocks:    blocks,
		Bookings:  bookings,
		Schedules: schedules,
	}, nil
}

func (s *LocationService) publishReferenceEvent(ctx context.Context, locationID string) {
	if s.eventBus == nil {
		return
	}
	event := &entities.Event{
		ID:         uuid.New().String(),
		Type:       entities.EventReferenceUpdated,
		Entity:     "location",
		EntityID:   locationID,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.eventBus.Publish(ctx, providers.EventChannelReference, event); err != nil {
		log.Error().Err(err).Str("location_id", locationID).Msg("failed to publish reference event")
	}
}
