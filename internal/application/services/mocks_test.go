package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
	"github.com/twilightpharmacy/booking-backend/internal/domain/repositories"
)

// Mocks shared by the service tests.

type MockTreatmentRepository struct {
	mock.Mock
}

func (m *MockTreatmentRepository) GetByID(ctx context.Context, id string) (*entities.Treatment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Treatment), args.Error(1)
}

func (m *MockTreatmentRepository) List(ctx context.Context, filter repositories.TreatmentFilter) ([]*entities.Treatment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Treatment), args.Error(1)
}

func (m *MockTreatmentRepository) Search(ctx context.Context, query string, limit int) ([]*entities.Treatment, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Treatment), args.Error(1)
}

func (m *MockTreatmentRepository) LocationsFor(ctx context.Context, treatmentID string) ([]*entities.Location, error) {
	args := m.Called(ctx, treatmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Location), args.Error(1)
}

type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) GetByID(ctx context.Context, id string) (*entities.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Location), args.Error(1)
}

func (m *MockLocationRepository) List(ctx context.Context) ([]*entities.Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Location), args.Error(1)
}

func (m *MockLocationRepository) CreateBlock(ctx context.Context, block *entities.LocationBlock) error {
	args := m.Called(ctx, block)
	return args.Error(0)
}

func (m *MockLocationRepository) DeleteBlock(ctx context.Context, locationID, blockID string) error {
	args := m.Called(ctx, locationID, blockID)
	return args.Error(0)
}

func (m *MockLocationRepository) ListBlocks(ctx context.Context, locationID string) ([]*entities.LocationBlock, error) {
	args := m.Called(ctx, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LocationBlock), args.Error(1)
}

func (m *MockLocationRepository) BlocksOverlapping(ctx context.Context, locationID string, start, end time.Time) ([]*entities.LocationBlock, error) {
	args := m.Called(ctx, locationID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LocationBlock), args.Error(1)
}

type MockPharmacistRepository struct {
	mock.Mock
}

func (m *MockPharmacistRepository) GetByID(ctx context.Context, id string) (*entities.Pharmacist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Pharmacist), args.Error(1)
}

func (m *MockPharmacistRepository) List(ctx context.Context, filter repositories.PharmacistFilter) ([]*entities.Pharmacist, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Pharmacist), args.Error(1)
}

func (m *MockPharmacistRepository) EligibleForTreatment(ctx context.Context, treatmentID, locationID string, dayOfWeek int) ([]*entities.EligiblePharmacist, error) {
	args := m.Called(ctx, treatmentID, locationID, dayOfWeek)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.EligiblePharmacist), args.Error(1)
}

func (m *MockPharmacistRepository) SchedulesAtLocation(ctx context.Context, locationID string) ([]*entities.PharmacistSchedule, error) {
	args := m.Called(ctx, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PharmacistSchedule), args.Error(1)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *entities.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*entities.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Booking), args.Error(1)
}

func (m *MockBookingRepository) Update(ctx context.Context, booking *entities.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) List(ctx context.Context, filter repositories.BookingFilter) ([]*entities.Booking, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Booking), args.Error(1)
}

func (m *MockBookingRepository) BookedSlots(ctx context.Context, locationID, treatmentID string, date time.Time, pharmacistID *string) ([]entities.BookedSlot, error) {
	args := m.Called(ctx, locationID, treatmentID, date, pharmacistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.BookedSlot), args.Error(1)
}

func (m *MockBookingRepository) BusyPharmacists(ctx context.Context, treatmentID, locationID string, date time.Time, timeOfDay string) ([]string, error) {
	args := m.Called(ctx, treatmentID, locationID, date, timeOfDay)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockTreatmentSearchRepository struct {
	mock.Mock
}

func (m *MockTreatmentSearchRepository) InitSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTreatmentSearchRepository) Index(ctx context.Context, treatments []*entities.Treatment) error {
	args := m.Called(ctx, treatments)
	return args.Error(0)
}

func (m *MockTreatmentSearchRepository) Search(ctx context.Context, query string, limit int) ([]string, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.Event) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.Event, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan *entities.Event), args.Error(1)
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockEventBus) Close() error {
	args := m.Called()
	return args.Error(0)
}
