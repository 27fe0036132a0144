package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/twilightpharmacy/booking-backend/internal/application/services"
	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
	"github.com/twilightpharmacy/booking-backend/internal/domain/providers"
	apperrors "github.com/twilightpharmacy/booking-backend/pkg/errors"
)

type bookingFixture struct {
	service        *services.BookingService
	bookingRepo    *MockBookingRepository
	treatmentRepo  *MockTreatmentRepository
	locationRepo   *MockLocationRepository
	pharmacistRepo *MockPharmacistRepository
	eventBus       *MockEventBus
}

func newBookingFixture(allowOversubscription bool, retries int) *bookingFixture {
	f := &bookingFixture{
		bookingRepo:    new(MockBookingRepository),
		treatmentRepo:  new(MockTreatmentRepository),
		locationRepo:   new(MockLocationRepository),
		pharmacistRepo: new(MockPharmacistRepository),
		eventBus:       new(MockEventBus),
	}
	assignment := services.NewAssignmentService(f.pharmacistRepo, f.bookingRepo, allowOversubscription, nil)
	f.service = services.NewBookingService(
		f.bookingRepo, f.treatmentRepo, f.locationRepo,
		assignment, nil, f.eventBus, retries, nil,
	)
	f.eventBus.On("Publish", mock.Anything, providers.EventChannelBookings, mock.Anything).Return(nil).Maybe()
	return f
}

func (f *bookingFixture) withCatalogue(treatment *entities.Treatment) {
	f.treatmentRepo.On("GetByID", mock.Anything, treatment.ID).Return(treatment, nil)
	f.locationRepo.On("GetByID", mock.Anything, "location-1").Return(&entities.Location{ID: "location-1", Name: "Kings Heath"}, nil)
}

func validRequest() services.CreateBookingRequest {
	date := monday
	return services.CreateBookingRequest{
		TreatmentID:   "treatment-1",
		LocationID:    "location-1",
		CustomerName:  "Jo Bloggs",
		CustomerEmail: "jo@example.com",
		CustomerPhone: "07700 900123",
		PreferredDate: &date,
		PreferredTime: "10:00",
	}
}

func TestBookingService_CreateBooking_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*services.CreateBookingRequest)
	}{
		{"missing customer name", func(r *services.CreateBookingRequest) { r.CustomerName = "  " }},
		{"missing customer email", func(r *services.CreateBookingRequest) { r.CustomerEmail = "" }},
		{"missing customer phone", func(r *services.CreateBookingRequest) { r.CustomerPhone = " " }},
		{"missing treatment id", func(r *services.CreateBookingRequest) { r.TreatmentID = "" }},
		{"missing location id", func(r *services.CreateBookingRequest) { r.LocationID = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newBookingFixture(false, 2)
			req := validRequest()
			tc.mutate(&req)

			_, err := f.service.CreateBooking(context.Background(), req)

			assert.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
			f.treatmentRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		})
	}

	t.Run("missing date for a slot treatment", func(t *testing.T) {
		f := newBookingFixture(false, 2)
		f.withCatalogue(slotTreatment(30))
		req := validRequest()
		req.PreferredDate = nil

		_, err := f.service.CreateBooking(context.Background(), req)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("malformed preferred time", func(t *testing.T) {
		f := newBookingFixture(false, 2)
		f.withCatalogue(slotTreatment(30))
		req := validRequest()
		req.PreferredTime = "25:99"

		_, err := f.service.CreateBooking(context.Background(), req)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})
}

func TestBookingService_CreateBooking(t *testing.T) {
	t.Run("assigns a pharmacist and creates a pending booking", func(t *testing.T) {
		f := newBookingFixture(false, 2)
		f.withCatalogue(slotTreatment(30))
		f.locationRepo.On("BlocksOverlapping", mock.Anything, "location-1", mock.Anything, mock.Anything).
			Return([]*entities.LocationBlock{}, nil)
		f.pharmacistRepo.On("EligibleForTreatment", mock.Anything, "treatment-1", "location-1", 1).
			Return([]*entities.EligiblePharmacist{
				eligiblePharmacist("ph-1", "Usman Ali", [2]string{"09:00", "17:00"}),
			}, nil)
		f.bookingRepo.On("BusyPharmacists", mock.Anything, "treatment-1", "location-1", monday, "10:00").
			Return([]string{}, nil)
		f.bookingRepo.On("Create", mock.Anything, mock.MatchedBy(func(b *entities.Booking) bool {
			return b.Status == entities.BookingStatusPending &&
				b.PharmacistID != nil && *b.PharmacistID == "ph-1" &&
				b.PreferredTime == "10:00"
		})).Return(nil)

		booking, err := f.service.CreateBooking(context.Background(), validRequest())

		require.NoError(t, err)
		require.NotNil(t, booking.PharmacistID)
		assert.Equal(t, "ph-1", *booking.PharmacistID)
		assert.Equal(t, entities.PaymentStatusUnset, booking.PaymentStatus)
		f.bookingRepo.AssertExpectations(t)
	})

	t.Run("leaves payment status unset until the payment webhook fires", func(t *testing.T) {
		treatment := slotTreatment(45)
		treatment.ShowSlots = false
		f := newBookingFixture(false, 2)
		f.withCatalogue(treatment)
		f.bookingRepo.On("Create", mock.Anything, mock.MatchedBy(func(b *entities.Booking) bool {
			return b.PaymentStatus == entities.PaymentStatusUnset
		})).Return(nil)

		req := validRequest()
		req.PreferredTime = ""
		booking, err := f.service.CreateBooking(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, entities.PaymentStatusUnset, booking.PaymentStatus)
	})

	t.Run("stores slotless treatments with the TBD time", func(t *testing.T) {
		treatment := slotTreatment(45)
		treatment.ShowSlots = false
		f := newBookingFixture(false, 2)
		f.withCatalogue(treatment)
		f.bookingRepo.On("Create", mock.Anything, mock.MatchedBy(func(b *entities.Booking) bool {
			return b.PreferredTime == entities.TimeTBD && b.PharmacistID == nil
		})).Return(nil)

		req := validRequest()
		req.PreferredTime = ""
		booking, err := f.service.CreateBooking(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, entities.TimeTBD, booking.PreferredTime)
		assert.Nil(t, booking.PharmacistID)
		f.pharmacistRepo.AssertNotCalled(t, "EligibleForTreatment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects out-of-season dates", func(t *testing.T) {
		treatment := slotTreatment(30)
		start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
		treatment.SeasonStart = &start
		treatment.SeasonEnd = &end
		f := newBookingFixture(false, 2)
		f.withCatalogue(treatment)

		_, err := f.service.CreateBooking(context.Background(), validRequest())

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeOutOfSeason))
	})

	t.Run("rejects times inside a closure block", func(t *testing.T) {
		f := newBookingFixture(false, 2)
		f.withCatalogue(slotTreatment(30))
		f.locationRepo.On("BlocksOverlapping", mock.Anything, "location-1", mock.Anything, mock.Anything).
			Return([]*entities.LocationBlock{{ID: "block-1"}}, nil)

		_, err := f.service.CreateBooking(context.Background(), validRequest())

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeSlotBlocked))
	})

	t.Run("retries assignment after a slot conflict", func(t *testing.T) {
		f := newBookingFixture(false, 2)
		f.withCatalogue(slotTreatment(30))
		f.locationRepo.On("BlocksOverlapping", mock.Anything, "location-1", mock.Anything, mock.Anything).
			Return([]*entities.LocationBlock{}, nil)
		f.pharmacistRepo.On("EligibleForTreatment", mock.Anything, "treatment-1", "location-1", 1).
			Return([]*entities.EligiblePharmacist{
				eligiblePharmacist("ph-1", "Hamza Ali", [2]string{"09:00", "17:00"}),
				eligiblePharmacist("ph-2", "Usman Ali", [2]string{"09:00", "17:00"}),
			}, nil)
		f.bookingRepo.On("BusyPharmacists", mock.Anything, "treatment-1", "location-1", monday, "10:00").
			Return([]string{}, nil)

		// A concurrent booking takes ph-1 between the busy check and the
		// insert; the retry must land on ph-2.
		f.bookingRepo.On("Create", mock.Anything, mock.MatchedBy(func(b *entities.Booking) bool {
			return b.PharmacistID != nil && *b.PharmacistID == "ph-1"
		})).Return(apperrors.NewConflictError("slot already taken")).Once()
		f.bookingRepo.On("Create", mock.Anything, mock.MatchedBy(func(b *entities.Booking) bool {
			return b.PharmacistID != nil && *b.PharmacistID == "ph-2"
		})).Return(nil).Once()

		booking, err := f.service.CreateBooking(context.Background(), validRequest())

		require.NoError(t, err)
		require.NotNil(t, booking.PharmacistID)
		assert.Equal(t, "ph-2", *booking.PharmacistID)
		f.bookingRepo.AssertExpectations(t)
	})

	t.Run("creates unassigned when conflicts exhaust the pool", func(t *testing.T) {
		f := newBookingFixture(false, 2)
		f.withCatalogue(slotTreatment(30))
		f.locationRepo.On("BlocksOverlapping", mock.Anything, "location-1", mock.Anything, mock.Anything).
			Return([]*entities.LocationBlock{}, nil)
		f.pharmacistRepo.On("EligibleForTreatment", mock.Anything, "treatment-1", "location-1", 1).
			Return([]*entities.EligiblePharmacist{
				eligiblePharmacist("ph-1", "Hamza Ali", [2]string{"09:00", "17:00"}),
			}, nil)
		f.bookingRepo.On("BusyPharmacists", mock.Anything, "treatment-1", "location-1", monday, "10:00").
			Return([]string{}, nil)

		f.bookingRepo.On("Create", mock.Anything, mock.MatchedBy(func(b *entities.Booking) bool {
			return b.PharmacistID != nil && *b.PharmacistID == "ph-1"
		})).Return(apperrors.NewConflictError("slot already taken")).Once()
		f.bookingRepo.On("Create", mock.Anything, mock.MatchedBy(func(b *entities.Booking) bool {
			return b.PharmacistID == nil
		})).Return(nil).Once()

		booking, err := f.service.CreateBooking(context.Background(), validRequest())

		require.NoError(t, err)
		assert.Nil(t, booking.PharmacistID)
		f.bookingRepo.AssertExpectations(t)
	})

	t.Run("surfaces a conflict on a customer-requested pharmacist", func(t *testing.T) {
		f := newBookingFixture(false, 2)
		f.withCatalogue(slotTreatment(30))
		f.locationRepo.On("BlocksOverlapping", mock.Anything, "location-1", mock.Anything, mock.Anything).
			Return([]*entities.LocationBlock{}, nil)
		f.bookingRepo.On("Create", mock.Anything, mock.Anything).
			Return(apperrors.NewConflictError("slot already taken"))

		req := validRequest()
		req.PharmacistID = "ph-1"
		_, err := f.service.CreateBooking(context.Background(), req)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
		// A named pharmacist is never swapped for another.
		f.pharmacistRepo.AssertNotCalled(t, "EligibleForTreatment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestBookingService_UpdateStatus(t *testing.T) {
	t.Run("rejects unknown statuses", func(t *testing.T) {
		f := newBookingFixture(false, 2)

		_, err := f.service.UpdateStatus(context.Background(), "booking-1", "archived", "")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("appends the admin comment to the notes", func(t *testing.T) {
		f := newBookingFixture(false, 2)
		f.bookingRepo.On("GetByID", mock.Anything, "booking-1").
			Return(&entities.Booking{ID: "booking-1", Status: entities.BookingStatusPending, Notes: "allergic to penicillin"}, nil)
		f.bookingRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

		booking, err := f.service.UpdateStatus(context.Background(), "booking-1", entities.BookingStatusConfirmed, "called to confirm")

		require.NoError(t, err)
		assert.Equal(t, entities.BookingStatusConfirmed, booking.Status)
		assert.Equal(t, "allergic to penicillin\n[Admin] called to confirm", booking.Notes)
	})
}

func TestBookingService_MarkPaid(t *testing.T) {
	t.Run("confirms the booking and records the payment", func(t *testing.T) {
		f := newBookingFixture(false, 2)
		f.bookingRepo.On("GetByID", mock.Anything, "booking-1").
			Return(&entities.Booking{ID: "booking-1", Status: entities.BookingStatusPending, PaymentStatus: entities.PaymentStatusPending}, nil)
		f.bookingRepo.On("Update", mock.Anything, mock.MatchedBy(func(b *entities.Booking) bool {
			return b.PaymentStatus == entities.PaymentStatusPaid &&
				b.Status == entities.BookingStatusConfirmed &&
				b.PaidAt != nil &&
				b.PaymentRef != nil && *b.PaymentRef == "pay_123"
		})).Return(nil)

		booking, err := f.service.MarkPaid(context.Background(), "booking-1", "pay_123")

		require.NoError(t, err)
		assert.Equal(t, entities.BookingStatusConfirmed, booking.Status)
		f.bookingRepo.AssertExpectations(t)
	})

	t.Run("is idempotent for already-paid bookings", func(t *testing.T) {
		f := newBookingFixture(false, 2)
		f.bookingRepo.On("GetByID", mock.Anything, "booking-1").
			Return(&entities.Booking{ID: "booking-1", Status: entities.BookingStatusConfirmed, PaymentStatus: entities.PaymentStatusPaid}, nil)

		booking, err := f.service.MarkPaid(context.Background(), "booking-1", "pay_456")

		require.NoError(t, err)
		assert.Equal(t, entities.PaymentStatusPaid, booking.PaymentStatus)
		f.bookingRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
