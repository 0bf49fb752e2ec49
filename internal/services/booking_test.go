package services

import (
	"testing"
	"time"

	"github.com/Thinura66/VehicleRental-Backend/internal/models"
	"github.com/Thinura66/VehicleRental-Backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockBookingStore is a mock implementation of the BookingStore interface
type MockBookingStore struct {
	mock.Mock
}

func (m *MockBookingStore) Create(booking *models.Booking) (*models.Booking, error) {
	args := m.Called(booking)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingStore) FindByID(id string) (*models.Booking, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingStore) CountOverlapping(vehicleID string, start, end time.Time, excludeID string) (int64, error) {
	args := m.Called(vehicleID, start, end, excludeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingStore) Find(q *repository.BookingQuery) ([]*models.Booking, int64, error) {
	args := m.Called(q)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Booking), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookingStore) UpdateStatus(id string, from, to models.BookingStatus, adminNotes string) (*models.Booking, error) {
	args := m.Called(id, from, to, adminNotes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingStore) Cancel(id, reason string) (*models.Booking, error) {
	args := m.Called(id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingStore) StatsByStatus() ([]repository.StatusStat, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.StatusStat), args.Error(1)
}

func (m *MockBookingStore) HasCompletedBooking(userID, vehicleID string) (bool, error) {
	args := m.Called(userID, vehicleID)
	return args.Bool(0), args.Error(1)
}

// MockVehicleStore is a mock implementation of the VehicleStore interface
type MockVehicleStore struct {
	mock.Mock
}

func (m *MockVehicleStore) FindByID(id string) (*models.Vehicle, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleStore) AdvanceBookingVersion(id string, version int64) error {
	args := m.Called(id, version)
	return args.Error(0)
}

func availableVehicle() *models.Vehicle {
	return &models.Vehicle{
		ID:             primitive.NewObjectID(),
		OwnerID:        primitive.NewObjectID(),
		Name:           "City Car",
		Category:       "car",
		PricePerDay:    100,
		Availability:   true,
		BookingVersion: 3,
	}
}

func validCreateRequest(vehicleID string) *CreateBookingRequest {
	start := time.Now().Add(48 * time.Hour)
	return &CreateBookingRequest{
		VehicleID:       vehicleID,
		StartDate:       start,
		EndDate:         start.Add(72 * time.Hour),
		PickupLocation:  "Airport",
		DropoffLocation: "Downtown",
	}
}

func TestCalculateTotalPrice(t *testing.T) {
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		duration time.Duration
		price    float64
		want     float64
	}{
		{"three full days", 72 * time.Hour, 100, 300},
		{"one full day", 24 * time.Hour, 100, 100},
		{"25 hours charges one night", 25 * time.Hour, 100, 100},
		{"under a day charges one night", 6 * time.Hour, 80, 80},
		{"47 hours charges one night", 47 * time.Hour, 100, 100},
		{"48 hours charges two nights", 48 * time.Hour, 50.5, 101},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateTotalPrice(base, base.Add(tt.duration), tt.price)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateBooking_Success(t *testing.T) {
	bookings := new(MockBookingStore)
	vehicles := new(MockVehicleStore)
	service := NewBookingService(bookings, vehicles)

	vehicle := availableVehicle()
	userID := primitive.NewObjectID().Hex()
	req := validCreateRequest(vehicle.ID.Hex())

	vehicles.On("FindByID", vehicle.ID.Hex()).Return(vehicle, nil)
	bookings.On("CountOverlapping", vehicle.ID.Hex(), req.StartDate, req.EndDate, "").Return(int64(0), nil)
	vehicles.On("AdvanceBookingVersion", vehicle.ID.Hex(), int64(3)).Return(nil)
	bookings.On("Create", mock.AnythingOfType("*models.Booking")).Return(&models.Booking{}, nil)

	_, err := service.CreateBooking(userID, req)
	require.NoError(t, err)

	created := bookings.Calls[len(bookings.Calls)-1].Arguments.Get(0).(*models.Booking)
	assert.Equal(t, models.BookingPending, created.Status)
	assert.Equal(t, models.PaymentPending, created.PaymentStatus)
	assert.Equal(t, float64(300), created.TotalPrice)
	assert.Equal(t, userID, created.UserID.Hex())

	bookings.AssertExpectations(t)
	vehicles.AssertExpectations(t)
	bookings.AssertNumberOfCalls(t, "CountOverlapping", 2)
}

func TestCreateBooking_PastStartDate(t *testing.T) {
	service := NewBookingService(new(MockBookingStore), new(MockVehicleStore))

	req := validCreateRequest(primitive.NewObjectID().Hex())
	req.StartDate = time.Now().Add(-time.Hour)

	_, err := service.CreateBooking(primitive.NewObjectID().Hex(), req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateBooking_EndBeforeStart(t *testing.T) {
	service := NewBookingService(new(MockBookingStore), new(MockVehicleStore))

	req := validCreateRequest(primitive.NewObjectID().Hex())
	req.EndDate = req.StartDate.Add(-time.Hour)

	_, err := service.CreateBooking(primitive.NewObjectID().Hex(), req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateBooking_VehicleNotFound(t *testing.T) {
	bookings := new(MockBookingStore)
	vehicles := new(MockVehicleStore)
	service := NewBookingService(bookings, vehicles)

	id := primitive.NewObjectID().Hex()
	vehicles.On("FindByID", id).Return(nil, assert.AnError)

	_, err := service.CreateBooking(primitive.NewObjectID().Hex(), validCreateRequest(id))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateBooking_VehicleUnavailable(t *testing.T) {
	bookings := new(MockBookingStore)
	vehicles := new(MockVehicleStore)
	service := NewBookingService(bookings, vehicles)

	vehicle := availableVehicle()
	vehicle.Availability = false
	vehicles.On("FindByID", vehicle.ID.Hex()).Return(vehicle, nil)

	_, err := service.CreateBooking(primitive.NewObjectID().Hex(), validCreateRequest(vehicle.ID.Hex()))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateBooking_DatesTaken(t *testing.T) {
	bookings := new(MockBookingStore)
	vehicles := new(MockVehicleStore)
	service := NewBookingService(bookings, vehicles)

	vehicle := availableVehicle()
	req := validCreateRequest(vehicle.ID.Hex())

	vehicles.On("FindByID", vehicle.ID.Hex()).Return(vehicle, nil)
	bookings.On("CountOverlapping", vehicle.ID.Hex(), req.StartDate, req.EndDate, "").Return(int64(1), nil)

	_, err := service.CreateBooking(primitive.NewObjectID().Hex(), req)
	assert.ErrorIs(t, err, ErrConflict)
	bookings.AssertNotCalled(t, "Create", mock.Anything)
}

func TestCreateBooking_LosesVersionRace(t *testing.T) {
	bookings := new(MockBookingStore)
	vehicles := new(MockVehicleStore)
	service := NewBookingService(bookings, vehicles)

	vehicle := availableVehicle()
	req := validCreateRequest(vehicle.ID.Hex())

	vehicles.On("FindByID", vehicle.ID.Hex()).Return(vehicle, nil)
	bookings.On("CountOverlapping", vehicle.ID.Hex(), req.StartDate, req.EndDate, "").Return(int64(0), nil)
	vehicles.On("AdvanceBookingVersion", vehicle.ID.Hex(), int64(3)).Return(repository.ErrVersionConflict)

	_, err := service.CreateBooking(primitive.NewObjectID().Hex(), req)
	assert.ErrorIs(t, err, ErrConflict)
	bookings.AssertNotCalled(t, "Create", mock.Anything)
}

func TestCreateBooking_RecheckCatchesRace(t *testing.T) {
	bookings := new(MockBookingStore)
	vehicles := new(MockVehicleStore)
	service := NewBookingService(bookings, vehicles)

	vehicle := availableVehicle()
	req := validCreateRequest(vehicle.ID.Hex())

	vehicles.On("FindByID", vehicle.ID.Hex()).Return(vehicle, nil)
	// first check passes, the re-check after the version bump finds the
	// winner's booking
	bookings.On("CountOverlapping", vehicle.ID.Hex(), req.StartDate, req.EndDate, "").Return(int64(0), nil).Once()
	vehicles.On("AdvanceBookingVersion", vehicle.ID.Hex(), int64(3)).Return(nil)
	bookings.On("CountOverlapping", vehicle.ID.Hex(), req.StartDate, req.EndDate, "").Return(int64(1), nil).Once()

	_, err := service.CreateBooking(primitive.NewObjectID().Hex(), req)
	assert.ErrorIs(t, err, ErrConflict)
	bookings.AssertNotCalled(t, "Create", mock.Anything)
}

func TestGetBookings_NonAdminScopedToSelf(t *testing.T) {
	bookings := new(MockBookingStore)
	service := NewBookingService(bookings, new(MockVehicleStore))

	callerID := primitive.NewObjectID().Hex()
	otherID := primitive.NewObjectID().Hex()

	bookings.On("Find", mock.MatchedBy(func(q *repository.BookingQuery) bool {
		return q.UserID == callerID
	})).Return([]*models.Booking{}, int64(0), nil)

	_, _, err := service.GetBookings(&BookingListQuery{UserID: otherID}, callerID, false)
	require.NoError(t, err)
	bookings.AssertExpectations(t)
}

func TestGetBookings_AdminKeepsFilter(t *testing.T) {
	bookings := new(MockBookingStore)
	service := NewBookingService(bookings, new(MockVehicleStore))

	otherID := primitive.NewObjectID().Hex()

	bookings.On("Find", mock.MatchedBy(func(q *repository.BookingQuery) bool {
		return q.UserID == otherID
	})).Return([]*models.Booking{}, int64(0), nil)

	_, _, err := service.GetBookings(&BookingListQuery{UserID: otherID}, primitive.NewObjectID().Hex(), true)
	require.NoError(t, err)
	bookings.AssertExpectations(t)
}

func TestGetBookings_RejectsUnknownStatus(t *testing.T) {
	service := NewBookingService(new(MockBookingStore), new(MockVehicleStore))

	_, _, err := service.GetBookings(&BookingListQuery{Status: "shipped"}, primitive.NewObjectID().Hex(), true)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetBooking_ForbiddenForStranger(t *testing.T) {
	bookings := new(MockBookingStore)
	service := NewBookingService(bookings, new(MockVehicleStore))

	booking := &models.Booking{ID: primitive.NewObjectID(), UserID: primitive.NewObjectID()}
	bookings.On("FindByID", booking.ID.Hex()).Return(booking, nil)

	_, err := service.GetBooking(booking.ID.Hex(), primitive.NewObjectID().Hex(), false)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = service.GetBooking(booking.ID.Hex(), primitive.NewObjectID().Hex(), true)
	assert.NoError(t, err)
}

func TestUpdateBookingStatus_InvalidTransition(t *testing.T) {
	bookings := new(MockBookingStore)
	service := NewBookingService(bookings, new(MockVehicleStore))

	booking := &models.Booking{ID: primitive.NewObjectID(), Status: models.BookingCompleted}
	bookings.On("FindByID", booking.ID.Hex()).Return(booking, nil)

	_, err := service.UpdateBookingStatus(booking.ID.Hex(), &UpdateBookingStatusRequest{Status: models.BookingActive})
	assert.ErrorIs(t, err, ErrInvalidState)
	bookings.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateBookingStatus_UnknownStatus(t *testing.T) {
	service := NewBookingService(new(MockBookingStore), new(MockVehicleStore))

	_, err := service.UpdateBookingStatus(primitive.NewObjectID().Hex(), &UpdateBookingStatusRequest{Status: "shipped"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateBookingStatus_ApprovalRevalidatesCalendar(t *testing.T) {
	bookings := new(MockBookingStore)
	vehicles := new(MockVehicleStore)
	service := NewBookingService(bookings, vehicles)

	vehicle := availableVehicle()
	booking := &models.Booking{
		ID:        primitive.NewObjectID(),
		VehicleID: vehicle.ID,
		Status:    models.BookingPending,
		StartDate: time.Now().Add(24 * time.Hour),
		EndDate:   time.Now().Add(96 * time.Hour),
	}

	bookings.On("FindByID", booking.ID.Hex()).Return(booking, nil)
	vehicles.On("FindByID", vehicle.ID.Hex()).Return(vehicle, nil)
	vehicles.On("AdvanceBookingVersion", vehicle.ID.Hex(), int64(3)).Return(nil)
	bookings.On("CountOverlapping", vehicle.ID.Hex(), booking.StartDate, booking.EndDate, booking.ID.Hex()).Return(int64(1), nil)

	_, err := service.UpdateBookingStatus(booking.ID.Hex(), &UpdateBookingStatusRequest{Status: models.BookingApproved})
	assert.ErrorIs(t, err, ErrConflict)
	bookings.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateBookingStatus_ApprovalSucceeds(t *testing.T) {
	bookings := new(MockBookingStore)
	vehicles := new(MockVehicleStore)
	service := NewBookingService(bookings, vehicles)

	vehicle := availableVehicle()
	booking := &models.Booking{
		ID:        primitive.NewObjectID(),
		VehicleID: vehicle.ID,
		Status:    models.BookingPending,
		StartDate: time.Now().Add(24 * time.Hour),
		EndDate:   time.Now().Add(96 * time.Hour),
	}

	bookings.On("FindByID", booking.ID.Hex()).Return(booking, nil)
	vehicles.On("FindByID", vehicle.ID.Hex()).Return(vehicle, nil)
	vehicles.On("AdvanceBookingVersion", vehicle.ID.Hex(), int64(3)).Return(nil)
	bookings.On("CountOverlapping", vehicle.ID.Hex(), booking.StartDate, booking.EndDate, booking.ID.Hex()).Return(int64(0), nil)
	bookings.On("UpdateStatus", booking.ID.Hex(), models.BookingPending, models.BookingApproved, "ok").Return(booking, nil)

	_, err := service.UpdateBookingStatus(booking.ID.Hex(), &UpdateBookingStatusRequest{Status: models.BookingApproved, AdminNotes: "ok"})
	require.NoError(t, err)
	bookings.AssertExpectations(t)
	vehicles.AssertExpectations(t)
}

func TestUpdateBookingStatus_ConcurrentCancelNotOverwritten(t *testing.T) {
	bookings := new(MockBookingStore)
	vehicles := new(MockVehicleStore)
	service := NewBookingService(bookings, vehicles)

	vehicle := availableVehicle()
	booking := &models.Booking{
		ID:        primitive.NewObjectID(),
		VehicleID: vehicle.ID,
		Status:    models.BookingPending,
		StartDate: time.Now().Add(24 * time.Hour),
		EndDate:   time.Now().Add(96 * time.Hour),
	}

	bookings.On("FindByID", booking.ID.Hex()).Return(booking, nil)
	vehicles.On("FindByID", vehicle.ID.Hex()).Return(vehicle, nil)
	vehicles.On("AdvanceBookingVersion", vehicle.ID.Hex(), int64(3)).Return(nil)
	bookings.On("CountOverlapping", vehicle.ID.Hex(), booking.StartDate, booking.EndDate, booking.ID.Hex()).Return(int64(0), nil)
	// the owner's cancel committed between the admin's read and the write,
	// so the filtered update misses
	bookings.On("UpdateStatus", booking.ID.Hex(), models.BookingPending, models.BookingApproved, "").Return(nil, repository.ErrStatusChanged)

	_, err := service.UpdateBookingStatus(booking.ID.Hex(), &UpdateBookingStatusRequest{Status: models.BookingApproved})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCancelBooking(t *testing.T) {
	ownerID := primitive.NewObjectID()

	t.Run("owner cancels pending booking", func(t *testing.T) {
		bookings := new(MockBookingStore)
		service := NewBookingService(bookings, new(MockVehicleStore))

		booking := &models.Booking{ID: primitive.NewObjectID(), UserID: ownerID, Status: models.BookingPending}
		bookings.On("FindByID", booking.ID.Hex()).Return(booking, nil)
		bookings.On("Cancel", booking.ID.Hex(), "changed plans").Return(booking, nil)

		_, err := service.CancelBooking(booking.ID.Hex(), "changed plans", ownerID.Hex(), false)
		assert.NoError(t, err)
	})

	t.Run("stranger cannot cancel", func(t *testing.T) {
		bookings := new(MockBookingStore)
		service := NewBookingService(bookings, new(MockVehicleStore))

		booking := &models.Booking{ID: primitive.NewObjectID(), UserID: ownerID, Status: models.BookingPending}
		bookings.On("FindByID", booking.ID.Hex()).Return(booking, nil)

		_, err := service.CancelBooking(booking.ID.Hex(), "", primitive.NewObjectID().Hex(), false)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("active booking cannot be cancelled", func(t *testing.T) {
		bookings := new(MockBookingStore)
		service := NewBookingService(bookings, new(MockVehicleStore))

		booking := &models.Booking{ID: primitive.NewObjectID(), UserID: ownerID, Status: models.BookingActive}
		bookings.On("FindByID", booking.ID.Hex()).Return(booking, nil)

		_, err := service.CancelBooking(booking.ID.Hex(), "", ownerID.Hex(), false)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("repo race maps to invalid state", func(t *testing.T) {
		bookings := new(MockBookingStore)
		service := NewBookingService(bookings, new(MockVehicleStore))

		booking := &models.Booking{ID: primitive.NewObjectID(), UserID: ownerID, Status: models.BookingApproved}
		bookings.On("FindByID", booking.ID.Hex()).Return(booking, nil)
		bookings.On("Cancel", booking.ID.Hex(), "").Return(nil, repository.ErrNotCancellable)

		_, err := service.CancelBooking(booking.ID.Hex(), "", ownerID.Hex(), false)
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestGetStats(t *testing.T) {
	bookings := new(MockBookingStore)
	service := NewBookingService(bookings, new(MockVehicleStore))

	bookings.On("StatsByStatus").Return([]repository.StatusStat{
		{Status: models.BookingPending, Count: 4, Revenue: 400},
		{Status: models.BookingApproved, Count: 2, Revenue: 500},
		{Status: models.BookingActive, Count: 1, Revenue: 250},
		{Status: models.BookingCompleted, Count: 3, Revenue: 900},
		{Status: models.BookingCancelled, Count: 2, Revenue: 300},
	}, nil)

	stats, err := service.GetStats()
	require.NoError(t, err)

	assert.Equal(t, int64(12), stats.TotalBookings)
	// pending and cancelled revenue does not count
	assert.Equal(t, float64(1650), stats.TotalRevenue)
}
