package services

import (
	"testing"

	"github.com/Thinura66/VehicleRental-Backend/internal/models"
	"github.com/Thinura66/VehicleRental-Backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockReviewStore is a mock implementation of the ReviewStore interface
type MockReviewStore struct {
	mock.Mock
}

func (m *MockReviewStore) Create(review *models.Review) (*models.Review, error) {
	args := m.Called(review)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewStore) FindByID(id string) (*models.Review, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewStore) FindByVehicle(vehicleID string, page, limit int64) ([]*models.Review, int64, error) {
	args := m.Called(vehicleID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewStore) Update(id string, review *models.Review) (*models.Review, error) {
	args := m.Called(id, review)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewStore) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockReviewStore) RatingSummary(vehicleID string) (float64, int, error) {
	args := m.Called(vehicleID)
	return args.Get(0).(float64), args.Int(1), args.Error(2)
}

// MockRatingSink is a mock implementation of the RatingSink interface
type MockRatingSink struct {
	mock.Mock
}

func (m *MockRatingSink) RefreshRating(vehicleID string, averageRating float64, totalReviews int) error {
	args := m.Called(vehicleID, averageRating, totalReviews)
	return args.Error(0)
}

func TestRoundRating(t *testing.T) {
	assert.Equal(t, 4.0, RoundRating(4.0))
	assert.Equal(t, 4.0, RoundRating((5.0+4.0+3.0)/3.0))
	assert.Equal(t, 4.5, RoundRating(4.5))
	assert.Equal(t, 4.3, RoundRating(4.333333))
	assert.Equal(t, 4.7, RoundRating(4.666666))
	assert.Equal(t, 3.5, RoundRating(3.45))
}

func completedBookingFixture(userID primitive.ObjectID) *models.Booking {
	return &models.Booking{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		VehicleID: primitive.NewObjectID(),
		Status:    models.BookingCompleted,
	}
}

func TestCreateReview_Success(t *testing.T) {
	reviews := new(MockReviewStore)
	bookings := new(MockBookingStore)
	ratings := new(MockRatingSink)
	service := NewReviewService(reviews, bookings, ratings)

	userID := primitive.NewObjectID()
	booking := completedBookingFixture(userID)

	bookings.On("FindByID", booking.ID.Hex()).Return(booking, nil)
	bookings.On("HasCompletedBooking", userID.Hex(), booking.VehicleID.Hex()).Return(true, nil)
	reviews.On("Create", mock.AnythingOfType("*models.Review")).Return(&models.Review{}, nil)
	reviews.On("RatingSummary", booking.VehicleID.Hex()).Return((5.0+4.0+3.0)/3.0, 3, nil)
	ratings.On("RefreshRating", booking.VehicleID.Hex(), 4.0, 3).Return(nil)

	_, err := service.CreateReview(userID.Hex(), &CreateReviewRequest{
		BookingID: booking.ID.Hex(),
		Rating:    5,
		Comment:   "Smooth rental",
	})
	require.NoError(t, err)

	ratings.AssertExpectations(t)
	reviews.AssertExpectations(t)
}

func TestCreateReview_RequiresCompletedBooking(t *testing.T) {
	reviews := new(MockReviewStore)
	bookings := new(MockBookingStore)
	ratings := new(MockRatingSink)
	service := NewReviewService(reviews, bookings, ratings)

	userID := primitive.NewObjectID()
	booking := completedBookingFixture(userID)

	bookings.On("FindByID", booking.ID.Hex()).Return(booking, nil)
	bookings.On("HasCompletedBooking", userID.Hex(), booking.VehicleID.Hex()).Return(false, nil)

	_, err := service.CreateReview(userID.Hex(), &CreateReviewRequest{BookingID: booking.ID.Hex(), Rating: 4})
	assert.ErrorIs(t, err, ErrValidation)
	reviews.AssertNotCalled(t, "Create", mock.Anything)
}

func TestCreateReview_BookingOwnedByOther(t *testing.T) {
	reviews := new(MockReviewStore)
	bookings := new(MockBookingStore)
	service := NewReviewService(reviews, bookings, new(MockRatingSink))

	booking := completedBookingFixture(primitive.NewObjectID())
	bookings.On("FindByID", booking.ID.Hex()).Return(booking, nil)

	_, err := service.CreateReview(primitive.NewObjectID().Hex(), &CreateReviewRequest{BookingID: booking.ID.Hex(), Rating: 4})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateReview_DuplicateMapsToValidation(t *testing.T) {
	reviews := new(MockReviewStore)
	bookings := new(MockBookingStore)
	ratings := new(MockRatingSink)
	service := NewReviewService(reviews, bookings, ratings)

	userID := primitive.NewObjectID()
	booking := completedBookingFixture(userID)

	bookings.On("FindByID", booking.ID.Hex()).Return(booking, nil)
	bookings.On("HasCompletedBooking", userID.Hex(), booking.VehicleID.Hex()).Return(true, nil)
	reviews.On("Create", mock.AnythingOfType("*models.Review")).Return(nil, repository.ErrDuplicateReview)

	_, err := service.CreateReview(userID.Hex(), &CreateReviewRequest{BookingID: booking.ID.Hex(), Rating: 4})
	assert.ErrorIs(t, err, ErrValidation)
	ratings.AssertNotCalled(t, "RefreshRating", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteReview_RefreshesRollup(t *testing.T) {
	reviews := new(MockReviewStore)
	ratings := new(MockRatingSink)
	service := NewReviewService(reviews, new(MockBookingStore), ratings)

	ownerID := primitive.NewObjectID()
	review := &models.Review{
		ID:        primitive.NewObjectID(),
		UserID:    ownerID,
		VehicleID: primitive.NewObjectID(),
		Rating:    3,
	}

	reviews.On("FindByID", review.ID.Hex()).Return(review, nil)
	reviews.On("Delete", review.ID.Hex()).Return(nil)
	reviews.On("RatingSummary", review.VehicleID.Hex()).Return(4.5, 2, nil)
	ratings.On("RefreshRating", review.VehicleID.Hex(), 4.5, 2).Return(nil)

	err := service.DeleteReview(review.ID.Hex(), ownerID.Hex(), false)
	require.NoError(t, err)
	ratings.AssertExpectations(t)
}

func TestDeleteReview_LastReviewResetsRollup(t *testing.T) {
	reviews := new(MockReviewStore)
	ratings := new(MockRatingSink)
	service := NewReviewService(reviews, new(MockBookingStore), ratings)

	ownerID := primitive.NewObjectID()
	review := &models.Review{
		ID:        primitive.NewObjectID(),
		UserID:    ownerID,
		VehicleID: primitive.NewObjectID(),
		Rating:    5,
	}

	reviews.On("FindByID", review.ID.Hex()).Return(review, nil)
	reviews.On("Delete", review.ID.Hex()).Return(nil)
	reviews.On("RatingSummary", review.VehicleID.Hex()).Return(0.0, 0, nil)
	ratings.On("RefreshRating", review.VehicleID.Hex(), 0.0, 0).Return(nil)

	err := service.DeleteReview(review.ID.Hex(), ownerID.Hex(), false)
	require.NoError(t, err)
	ratings.AssertExpectations(t)
}

func TestDeleteReview_StrangerForbiddenAdminAllowed(t *testing.T) {
	ownerID := primitive.NewObjectID()
	review := &models.Review{
		ID:        primitive.NewObjectID(),
		UserID:    ownerID,
		VehicleID: primitive.NewObjectID(),
	}

	t.Run("stranger", func(t *testing.T) {
		reviews := new(MockReviewStore)
		service := NewReviewService(reviews, new(MockBookingStore), new(MockRatingSink))
		reviews.On("FindByID", review.ID.Hex()).Return(review, nil)

		err := service.DeleteReview(review.ID.Hex(), primitive.NewObjectID().Hex(), false)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin", func(t *testing.T) {
		reviews := new(MockReviewStore)
		ratings := new(MockRatingSink)
		service := NewReviewService(reviews, new(MockBookingStore), ratings)
		reviews.On("FindByID", review.ID.Hex()).Return(review, nil)
		reviews.On("Delete", review.ID.Hex()).Return(nil)
		reviews.On("RatingSummary", review.VehicleID.Hex()).Return(0.0, 0, nil)
		ratings.On("RefreshRating", review.VehicleID.Hex(), 0.0, 0).Return(nil)

		err := service.DeleteReview(review.ID.Hex(), primitive.NewObjectID().Hex(), true)
		assert.NoError(t, err)
	})
}

func TestUpdateReview_OwnerOnlyAndRollup(t *testing.T) {
	reviews := new(MockReviewStore)
	ratings := new(MockRatingSink)
	service := NewReviewService(reviews, new(MockBookingStore), ratings)

	ownerID := primitive.NewObjectID()
	review := &models.Review{
		ID:        primitive.NewObjectID(),
		UserID:    ownerID,
		VehicleID: primitive.NewObjectID(),
		Rating:    2,
	}

	reviews.On("FindByID", review.ID.Hex()).Return(review, nil)
	reviews.On("Update", review.ID.Hex(), mock.AnythingOfType("*models.Review")).Return(review, nil)
	reviews.On("RatingSummary", review.VehicleID.Hex()).Return(4.0, 1, nil)
	ratings.On("RefreshRating", review.VehicleID.Hex(), 4.0, 1).Return(nil)

	_, err := service.UpdateReview(review.ID.Hex(), ownerID.Hex(), &UpdateReviewRequest{Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, review.Rating)

	_, err = service.UpdateReview(review.ID.Hex(), primitive.NewObjectID().Hex(), &UpdateReviewRequest{Rating: 1})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRespondToReview_DoesNotTouchRollup(t *testing.T) {
	reviews := new(MockReviewStore)
	ratings := new(MockRatingSink)
	service := NewReviewService(reviews, new(MockBookingStore), ratings)

	review := &models.Review{
		ID:        primitive.NewObjectID(),
		UserID:    primitive.NewObjectID(),
		VehicleID: primitive.NewObjectID(),
	}

	reviews.On("FindByID", review.ID.Hex()).Return(review, nil)
	reviews.On("Update", review.ID.Hex(), mock.AnythingOfType("*models.Review")).Return(review, nil)

	updated, err := service.RespondToReview(review.ID.Hex(), "Thanks for the feedback")
	require.NoError(t, err)
	assert.Equal(t, "Thanks for the feedback", updated.AdminResponse)
	ratings.AssertNotCalled(t, "RefreshRating", mock.Anything, mock.Anything, mock.Anything)
}
