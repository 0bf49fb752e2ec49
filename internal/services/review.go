package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Thinura66/VehicleRental-Backend/internal/models"
	"github.com/Thinura66/VehicleRental-Backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReviewStore is the persistence surface the review service needs.
type ReviewStore interface {
	Create(review *models.Review) (*models.Review, error)
	FindByID(id string) (*models.Review, error)
	FindByVehicle(vehicleID string, page, limit int64) ([]*models.Review, int64, error)
	Update(id string, review *models.Review) (*models.Review, error)
	Delete(id string) error
	RatingSummary(vehicleID string) (float64, int, error)
}

// RatingSink receives recomputed rollups; the vehicle service implements
// it.
type RatingSink interface {
	RefreshRating(vehicleID string, averageRating float64, totalReviews int) error
}

// CompletedBookingChecker gates review creation on a completed rental.
type CompletedBookingChecker interface {
	HasCompletedBooking(userID, vehicleID string) (bool, error)
	FindByID(id string) (*models.Booking, error)
}

type ReviewService struct {
	reviews  ReviewStore
	bookings CompletedBookingChecker
	ratings  RatingSink
}

func NewReviewService(reviews ReviewStore, bookings CompletedBookingChecker, ratings RatingSink) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		bookings: bookings,
		ratings:  ratings,
	}
}

type CreateReviewRequest struct {
	BookingID string `json:"bookingId" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment,omitempty" validate:"omitempty,max=500"`
}

type UpdateReviewRequest struct {
	Rating  int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"omitempty,max=500"`
}

// RoundRating rounds a mean rating to one decimal place.
func RoundRating(mean float64) float64 {
	return math.Round(mean*10) / 10
}

// CreateReview posts a review against a completed booking. One review per
// (user, booking) pair; the unique index backs up the service check. The
// vehicle's rollup is recomputed synchronously before the call returns.
func (s *ReviewService) CreateReview(userID string, req *CreateReviewRequest) (*models.Review, error) {
	booking, err := s.bookings.FindByID(req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, req.BookingID)
	}

	if booking.UserID.Hex() != userID {
		return nil, fmt.Errorf("%w: booking belongs to another user", ErrForbidden)
	}

	completed, err := s.bookings.HasCompletedBooking(userID, booking.VehicleID.Hex())
	if err != nil {
		return nil, err
	}
	if !completed {
		return nil, fmt.Errorf("%w: a completed booking is required before reviewing", ErrValidation)
	}

	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user ID", ErrValidation)
	}

	review := &models.Review{
		ID:        primitive.NewObjectID(),
		UserID:    uid,
		VehicleID: booking.VehicleID,
		BookingID: booking.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	created, err := s.reviews.Create(review)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, fmt.Errorf("%w: you have already reviewed this booking", ErrValidation)
		}
		return nil, err
	}

	if err := s.recomputeRollup(booking.VehicleID.Hex()); err != nil {
		return nil, err
	}

	return created, nil
}

func (s *ReviewService) GetVehicleReviews(vehicleID string, page, limit int64) ([]*models.Review, int64, error) {
	return s.reviews.FindByVehicle(vehicleID, page, limit)
}

// UpdateReview edits the caller's own review and refreshes the rollup.
func (s *ReviewService) UpdateReview(id, callerID string, req *UpdateReviewRequest) (*models.Review, error) {
	review, err := s.reviews.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: review %s", ErrNotFound, id)
	}

	if review.UserID.Hex() != callerID {
		return nil, fmt.Errorf("%w: review belongs to another user", ErrForbidden)
	}

	if req.Rating != 0 {
		review.Rating = req.Rating
	}
	if req.Comment != "" {
		review.Comment = req.Comment
	}
	review.UpdatedAt = time.Now()

	updated, err := s.reviews.Update(id, review)
	if err != nil {
		return nil, err
	}

	if err := s.recomputeRollup(review.VehicleID.Hex()); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteReview removes a review (owner or admin) and refreshes the
// rollup, resetting it to (0, 0) when the last review goes.
func (s *ReviewService) DeleteReview(id, callerID string, isAdmin bool) error {
	review, err := s.reviews.FindByID(id)
	if err != nil {
		return fmt.Errorf("%w: review %s", ErrNotFound, id)
	}

	if !isAdmin && review.UserID.Hex() != callerID {
		return fmt.Errorf("%w: review belongs to another user", ErrForbidden)
	}

	if err := s.reviews.Delete(id); err != nil {
		return err
	}

	return s.recomputeRollup(review.VehicleID.Hex())
}

// RespondToReview attaches an admin response; it does not touch the
// rollup.
func (s *ReviewService) RespondToReview(id, response string) (*models.Review, error) {
	review, err := s.reviews.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: review %s", ErrNotFound, id)
	}

	review.AdminResponse = response
	review.UpdatedAt = time.Now()

	return s.reviews.Update(id, review)
}

// recomputeRollup recalculates the vehicle's average rating and review
// count from scratch and pushes it to the vehicle record. Full
// recomputation makes concurrent writers last-write-wins safe.
func (s *ReviewService) recomputeRollup(vehicleID string) error {
	mean, count, err := s.reviews.RatingSummary(vehicleID)
	if err != nil {
		return err
	}

	average := 0.0
	if count > 0 {
		average = RoundRating(mean)
	}

	return s.ratings.RefreshRating(vehicleID, average, count)
}
