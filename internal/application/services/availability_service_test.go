package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/twilightpharmacy/booking-backend/internal/application/services"
	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
)

// monday is a fixed Monday used across the availability tests.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func slotTreatment(durationMinutes int) *entities.Treatment {
	return &entities.Treatment{
		ID:              "treatment-1",
		Name:            "Weight Loss Consultation",
		DurationMinutes: durationMinutes,
		ShowSlots:       true,
		IsActive:        true,
	}
}

func eligiblePharmacist(id, name string, windows ...[2]string) *entities.EligiblePharmacist {
	p := &entities.EligiblePharmacist{}
	p.ID = id
	p.Name = name
	p.IsActive = true
	for _, w := range windows {
		p.Windows = append(p.Windows, entities.PharmacistSchedule{
			PharmacistID: id,
			DayOfWeek:    int(monday.Weekday()),
			StartTime:    w[0],
			EndTime:      w[1],
			IsActive:     true,
		})
	}
	return p
}

func newAvailabilityFixture(t *testing.T, treatment *entities.Treatment) (*services.AvailabilityService, *MockTreatmentRepository, *MockLocationRepository, *MockPharmacistRepository, *MockBookingRepository) {
	t.Helper()
	treatmentRepo := new(MockTreatmentRepository)
	locationRepo := new(MockLocationRepository)
	pharmacistRepo := new(MockPharmacistRepository)
	bookingRepo := new(MockBookingRepository)

	treatmentRepo.On("GetByID", mock.Anything, treatment.ID).Return(treatment, nil)
	locationRepo.On("GetByID", mock.Anything, "location-1").Return(&entities.Location{ID: "location-1", Name: "Small Heath"}, nil)

	service := services.NewAvailabilityService(treatmentRepo, locationRepo, pharmacistRepo, bookingRepo)
	return service, treatmentRepo, locationRepo, pharmacistRepo, bookingRepo
}

func slotTimes(slots []entities.AvailableSlot) []string {
	times := make([]string, 0, len(slots))
	for _, s := range slots {
		times = append(times, s.Time)
	}
	return times
}

func TestAvailabilityService_GetAvailableSlots(t *testing.T) {
	query := services.AvailabilityQuery{
		TreatmentID: "treatment-1",
		LocationID:  "location-1",
		Date:        monday,
	}

	t.Run("tiles slots from schedule windows", func(t *testing.T) {
		service, _, locationRepo, pharmacistRepo, bookingRepo := newAvailabilityFixture(t, slotTreatment(30))

		pharmacistRepo.On("EligibleForTreatment", mock.Anything, "treatment-1", "location-1", 1).
			Return([]*entities.EligiblePharmacist{
				eligiblePharmacist("ph-1", "Usman Ali", [2]string{"09:00", "11:00"}),
			}, nil)
		bookingRepo.On("BookedSlots", mock.Anything, "location-1", "treatment-1", monday, mock.Anything).
			Return([]entities.BookedSlot{}, nil)
		locationRepo.On("BlocksOverlapping", mock.Anything, "location-1", mock.Anything, mock.Anything).
			Return([]*entities.LocationBlock{}, nil)

		slots, err := service.GetAvailableSlots(context.Background(), query)

		assert.NoError(t, err)
		assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30"}, slotTimes(slots))
		for _, s := range slots {
			assert.Equal(t, 1, s.Count)
		}
	})

	t.Run("excludes slots held by active bookings", func(t *testing.T) {
		service, _, locationRepo, pharmacistRepo, bookingRepo := newAvailabilityFixture(t, slotTreatment(30))

		pharmacistRepo.On("EligibleForTreatment", mock.Anything, "treatment-1", "location-1", 1).
			Return([]*entities.EligiblePharmacist{
				eligiblePharmacist("ph-1", "Usman Ali", [2]string{"09:00", "11:00"}),
			}, nil)
		bookingRepo.On("BookedSlots", mock.Anything, "location-1", "treatment-1", monday, mock.Anything).
			Return([]entities.BookedSlot{{PharmacistID: "ph-1", Time: "09:30"}}, nil)
		locationRepo.On("BlocksOverlapping", mock.Anything, "location-1", mock.Anything, mock.Anything).
			Return([]*entities.LocationBlock{}, nil)

		slots, err := service.GetAvailableSlots(context.Background(), query)

		assert.NoError(t, err)
		assert.Equal(t, []string{"09:00", "10:00", "10:30"}, slotTimes(slots))
	})

	t.Run("excludes slots overlapping a closure block", func(t *testing.T) {
		service, _, locationRepo, pharmacistRepo, bookingRepo := newAvailabilityFixture(t, slotTreatment(30))

		pharmacistRepo.On("EligibleForTreatment", mock.Anything, "treatment-1", "location-1", 1).
			Return([]*entities.EligiblePharmacist{
				eligiblePharmacist("ph-1", "Usman Ali", [2]string{"11:00", "14:00"}),
			}, nil)
		bookingRepo.On("BookedSlots", mock.Anything, "location-1", "treatment-1", monday, mock.Anything).
			Return([]entities.BookedSlot{}, nil)
		locationRepo.On("BlocksOverlapping", mock.Anything, "location-1", mock.Anything, mock.Anything).
			Return([]*entities.LocationBlock{{
				ID:         "block-1",
				LocationID: "location-1",
				StartAt:    monday.Add(12 * time.Hour),
				EndAt:      monday.Add(13 * time.Hour),
			}}, nil)

		slots, err := service.GetAvailableSlots(context.Background(), query)

		assert.NoError(t, err)
		// 11:30 ends exactly at the block start and survives; 13:00 starts
		// exactly at the block end and survives.
		assert.Equal(t, []string{"11:00", "11:30", "13:00", "13:30"}, slotTimes(slots))
	})

	t.Run("counts distinct free pharmacists per time", func(t *testing.T) {
		service, _, locationRepo, pharmacistRepo, bookingRepo := newAvailabilityFixture(t, slotTreatment(60))

		pharmacistRepo.On("EligibleForTreatment", mock.Anything, "treatment-1", "location-1", 1).
			Return([]*entities.EligiblePharmacist{
				eligiblePharmacist("ph-1", "Usman Ali", [2]string{"09:00", "11:00"}),
				eligiblePharmacist("ph-2", "Yusuf Ali", [2]string{"09:00", "11:00"}),
			}, nil)
		bookingRepo.On("BookedSlots", mock.Anything, "location-1", "treatment-1", monday, mock.Anything).
			Return([]entities.BookedSlot{{PharmacistID: "ph-2", Time: "10:00"}}, nil)
		locationRepo.On("BlocksOverlapping", mock.Anything, "location-1", mock.Anything, mock.Anything).
			Return([]*entities.LocationBlock{}, nil)

		slots, err := service.GetAvailableSlots(context.Background(), query)

		assert.NoError(t, err)
		assert.Equal(t, []entities.AvailableSlot{
			{Time: "09:00", Count: 2},
			{Time: "10:00", Count: 1},
		}, slots)
	})

	t.Run("narrows to the requested pharmacist", func(t *testing.T) {
		service, _, locationRepo, pharmacistRepo, bookingRepo := newAvailabilityFixture(t, slotTreatment(60))

		pharmacistRepo.On("EligibleForTreatment", mock.Anything, "treatment-1", "location-1", 1).
			Return([]*entities.EligiblePharmacist{
				eligiblePharmacist("ph-1", "Usman Ali", [2]string{"09:00", "11:00"}),
				eligiblePharmacist("ph-2", "Yusuf Ali", [2]string{"09:00", "17:00"}),
			}, nil)
		bookingRepo.On("BookedSlots", mock.Anything, "location-1", "treatment-1", monday, mock.Anything).
			Return([]entities.BookedSlot{}, nil)
		locationRepo.On("BlocksOverlapping", mock.Anything, "location-1", mock.Anything, mock.Anything).
			Return([]*entities.LocationBlock{}, nil)

		narrowed := query
		narrowed.PharmacistID = "ph-1"
		slots, err := service.GetAvailableSlots(context.Background(), narrowed)

		assert.NoError(t, err)
		assert.Equal(t, []string{"09:00", "10:00"}, slotTimes(slots))
		for _, s := range slots {
			assert.Equal(t, "ph-1", s.PharmacistID)
			assert.Zero(t, s.Count)
		}
	})

	t.Run("slotless treatments resolve to an empty list", func(t *testing.T) {
		treatment := slotTreatment(30)
		treatment.ShowSlots = false
		service, _, _, pharmacistRepo, _ := newAvailabilityFixture(t, treatment)

		slots, err := service.GetAvailableSlots(context.Background(), query)

		assert.NoError(t, err)
		assert.Empty(t, slots)
		assert.NotNil(t, slots)
		pharmacistRepo.AssertNotCalled(t, "EligibleForTreatment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lists out-of-season dates without gating", func(t *testing.T) {
		treatment := slotTreatment(60)
		start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2027, 3, 31, 0, 0, 0, 0, time.UTC)
		treatment.SeasonStart = &start
		treatment.SeasonEnd = &end
		service, _, locationRepo, pharmacistRepo, bookingRepo := newAvailabilityFixture(t, treatment)

		pharmacistRepo.On("EligibleForTreatment", mock.Anything, "treatment-1", "location-1", 1).
			Return([]*entities.EligiblePharmacist{
				eligiblePharmacist("ph-1", "Usman Ali", [2]string{"09:00", "11:00"}),
			}, nil)
		bookingRepo.On("BookedSlots", mock.Anything, "location-1", "treatment-1", monday, mock.Anything).
			Return([]entities.BookedSlot{}, nil)
		locationRepo.On("BlocksOverlapping", mock.Anything, "location-1", mock.Anything, mock.Anything).
			Return([]*entities.LocationBlock{}, nil)

		slots, err := service.GetAvailableSlots(context.Background(), query)

		assert.NoError(t, err)
		assert.Equal(t, []string{"09:00", "10:00"}, slotTimes(slots))
	})

	t.Run("returns empty when nobody is eligible", func(t *testing.T) {
		service, _, _, pharmacistRepo, _ := newAvailabilityFixture(t, slotTreatment(30))

		pharmacistRepo.On("EligibleForTreatment", mock.Anything, "treatment-1", "location-1", 1).
			Return([]*entities.EligiblePharmacist{}, nil)

		slots, err := service.GetAvailableSlots(context.Background(), query)

		assert.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("merges overlapping schedule windows", func(t *testing.T) {
		service, _, locationRepo, pharmacistRepo, bookingRepo := newAvailabilityFixture(t, slotTreatment(60))

		pharmacistRepo.On("EligibleForTreatment", mock.Anything, "treatment-1", "location-1", 1).
			Return([]*entities.EligiblePharmacist{
				eligiblePharmacist("ph-1", "Usman Ali", [2]string{"09:00", "11:00"}, [2]string{"10:00", "12:00"}),
			}, nil)
		bookingRepo.On("BookedSlots", mock.Anything, "location-1", "treatment-1", monday, mock.Anything).
			Return([]entities.BookedSlot{}, nil)
		locationRepo.On("BlocksOverlapping", mock.Anything, "location-1", mock.Anything, mock.Anything).
			Return([]*entities.LocationBlock{}, nil)

		slots, err := service.GetAvailableSlots(context.Background(), query)

		assert.NoError(t, err)
		// One merged 09:00-12:00 window, not duplicate slots from the overlap.
		assert.Equal(t, []string{"09:00", "10:00", "11:00"}, slotTimes(slots))
		for _, s := range slots {
			assert.Equal(t, 1, s.Count)
		}
	})
}
