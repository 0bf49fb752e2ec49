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

// BookingStore is the persistence surface the booking engine needs. The
// Mongo-backed repository satisfies it; tests substitute mocks.
type BookingStore interface {
	Create(booking *models.Booking) (*models.Booking, error)
	FindByID(id string) (*models.Booking, error)
	CountOverlapping(vehicleID string, start, end time.Time, excludeID string) (int64, error)
	Find(q *repository.BookingQuery) ([]*models.Booking, int64, error)
	UpdateStatus(id string, from, to models.BookingStatus, adminNotes string) (*models.Booking, error)
	Cancel(id, reason string) (*models.Booking, error)
	StatsByStatus() ([]repository.StatusStat, error)
	HasCompletedBooking(userID, vehicleID string) (bool, error)
}

// VehicleStore is the slice of the vehicle repository the booking engine
// uses: lookups plus the version compare-and-swap guarding writes.
type VehicleStore interface {
	FindByID(id string) (*models.Vehicle, error)
	AdvanceBookingVersion(id string, version int64) error
}

type BookingService struct {
	bookings BookingStore
	vehicles VehicleStore
}

func NewBookingService(bookings BookingStore, vehicles VehicleStore) *BookingService {
	return &BookingService{
		bookings: bookings,
		vehicles: vehicles,
	}
}

type CreateBookingRequest struct {
	VehicleID       string    `json:"vehicleId" validate:"required"`
	StartDate       time.Time `json:"startDate" validate:"required"`
	EndDate         time.Time `json:"endDate" validate:"required"`
	PickupLocation  string    `json:"pickupLocation" validate:"required,max=200"`
	DropoffLocation string    `json:"dropoffLocation" validate:"required,max=200"`
	SpecialRequests string    `json:"specialRequests,omitempty" validate:"omitempty,max=500"`
}

type UpdateBookingStatusRequest struct {
	Status     models.BookingStatus `json:"status" validate:"required"`
	AdminNotes string               `json:"adminNotes,omitempty" validate:"omitempty,max=500"`
}

type CancelBookingRequest struct {
	CancellationReason string `json:"cancellationReason,omitempty" validate:"omitempty,max=200"`
}

// BookingListQuery carries listing filters from the HTTP layer.
type BookingListQuery struct {
	Status    models.BookingStatus
	UserID    string
	VehicleID string
	Page      int64
	Limit     int64
	Sort      string
}

// CalculateTotalPrice prices a booking by nights. A night is a full
// 24-hour period; anything shorter still pays for one night, and a spare
// hour on top of a whole night does not start a new one.
func CalculateTotalPrice(start, end time.Time, pricePerDay float64) float64 {
	nights := math.Floor(end.Sub(start).Hours() / 24)
	if nights < 1 {
		nights = 1
	}
	return nights * pricePerDay
}

// CheckAvailability reports whether [start, end) is free of approved or
// active bookings on the vehicle, excluding excludeID when re-validating
// an existing booking.
func (s *BookingService) CheckAvailability(vehicleID string, start, end time.Time, excludeID string) (bool, error) {
	count, err := s.bookings.CountOverlapping(vehicleID, start, end, excludeID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// CreateBooking validates the request, prices it and writes the booking
// with status pending. Availability is checked twice: once up front for a
// fast rejection and again after the vehicle's booking version has been
// advanced, so a request that lost a concurrent race fails with a conflict
// instead of double-booking.
func (s *BookingService) CreateBooking(userID string, req *CreateBookingRequest) (*models.Booking, error) {
	now := time.Now()
	if !req.StartDate.After(now) {
		return nil, fmt.Errorf("%w: start date must be in the future", ErrValidation)
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, fmt.Errorf("%w: end date must be after start date", ErrValidation)
	}

	vehicle, err := s.vehicles.FindByID(req.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("%w: vehicle %s", ErrNotFound, req.VehicleID)
	}
	if !vehicle.Availability {
		return nil, fmt.Errorf("%w: vehicle is not available for booking", ErrValidation)
	}

	available, err := s.CheckAvailability(req.VehicleID, req.StartDate, req.EndDate, "")
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, fmt.Errorf("%w: vehicle is already booked for these dates", ErrConflict)
	}

	if err := s.vehicles.AdvanceBookingVersion(req.VehicleID, vehicle.BookingVersion); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, fmt.Errorf("%w: another booking for this vehicle was just submitted", ErrConflict)
		}
		return nil, err
	}

	// Re-check inside the guarded section.
	available, err = s.CheckAvailability(req.VehicleID, req.StartDate, req.EndDate, "")
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, fmt.Errorf("%w: vehicle is already booked for these dates", ErrConflict)
	}

	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user ID", ErrValidation)
	}

	booking := &models.Booking{
		ID:              primitive.NewObjectID(),
		UserID:          uid,
		VehicleID:       vehicle.ID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		TotalPrice:      CalculateTotalPrice(req.StartDate, req.EndDate, vehicle.PricePerDay),
		Status:          models.BookingPending,
		PaymentStatus:   models.PaymentPending,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		SpecialRequests: req.SpecialRequests,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	return s.bookings.Create(booking)
}

// GetBookings lists bookings. Non-admin callers are always scoped to their
// own bookings regardless of the userId filter they pass.
func (s *BookingService) GetBookings(q *BookingListQuery, callerID string, isAdmin bool) ([]*models.Booking, int64, error) {
	if q.Status != "" && !models.ValidBookingStatus(q.Status) {
		return nil, 0, fmt.Errorf("%w: unknown booking status %q", ErrValidation, q.Status)
	}

	userID := q.UserID
	if !isAdmin {
		userID = callerID
	}

	return s.bookings.Find(&repository.BookingQuery{
		UserID:    userID,
		VehicleID: q.VehicleID,
		Status:    q.Status,
		Page:      q.Page,
		Limit:     q.Limit,
		Sort:      q.Sort,
	})
}

// GetBooking returns a booking to its owner or an admin.
func (s *BookingService) GetBooking(id, callerID string, isAdmin bool) (*models.Booking, error) {
	booking, err := s.bookings.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, id)
	}

	if !isAdmin && booking.UserID.Hex() != callerID {
		return nil, fmt.Errorf("%w: booking belongs to another user", ErrForbidden)
	}

	return booking, nil
}

// UpdateBookingStatus applies an admin transition. Every move is checked
// against the status graph, and approval re-validates the calendar under
// the vehicle's version guard so two pending bookings for the same dates
// cannot both be approved.
func (s *BookingService) UpdateBookingStatus(id string, req *UpdateBookingStatusRequest) (*models.Booking, error) {
	if !models.ValidBookingStatus(req.Status) {
		return nil, fmt.Errorf("%w: unknown booking status %q", ErrValidation, req.Status)
	}

	booking, err := s.bookings.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, id)
	}

	if !models.CanTransition(booking.Status, req.Status) {
		return nil, fmt.Errorf("%w: cannot move booking from %s to %s", ErrInvalidState, booking.Status, req.Status)
	}

	if req.Status == models.BookingApproved {
		vehicle, err := s.vehicles.FindByID(booking.VehicleID.Hex())
		if err != nil {
			return nil, fmt.Errorf("%w: vehicle %s", ErrNotFound, booking.VehicleID.Hex())
		}

		if err := s.vehicles.AdvanceBookingVersion(vehicle.ID.Hex(), vehicle.BookingVersion); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return nil, fmt.Errorf("%w: concurrent booking update on this vehicle", ErrConflict)
			}
			return nil, err
		}

		available, err := s.CheckAvailability(booking.VehicleID.Hex(), booking.StartDate, booking.EndDate, id)
		if err != nil {
			return nil, err
		}
		if !available {
			return nil, fmt.Errorf("%w: dates were taken by another approved booking", ErrConflict)
		}
	}

	updated, err := s.bookings.UpdateStatus(id, booking.Status, req.Status, req.AdminNotes)
	if err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, fmt.Errorf("%w: booking status changed concurrently", ErrConflict)
		}
		return nil, err
	}

	return updated, nil
}

// CancelBooking cancels a pending or approved booking on behalf of its
// owner or an admin.
func (s *BookingService) CancelBooking(id, reason, callerID string, isAdmin bool) (*models.Booking, error) {
	booking, err := s.bookings.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, id)
	}

	if !isAdmin && booking.UserID.Hex() != callerID {
		return nil, fmt.Errorf("%w: booking belongs to another user", ErrForbidden)
	}

	if !models.Cancellable(booking.Status) {
		return nil, fmt.Errorf("%w: booking in status %s cannot be cancelled", ErrInvalidState, booking.Status)
	}

	cancelled, err := s.bookings.Cancel(id, reason)
	if err != nil {
		if errors.Is(err, repository.ErrNotCancellable) {
			return nil, fmt.Errorf("%w: booking left the cancellable window", ErrInvalidState)
		}
		return nil, err
	}

	return cancelled, nil
}

// BookingStats is the admin dashboard aggregate.
type BookingStats struct {
	ByStatus      []repository.StatusStat `json:"byStatus"`
	TotalBookings int64                   `json:"totalBookings"`
	TotalRevenue  float64                 `json:"totalRevenue"`
}

func (s *BookingService) GetStats() (*BookingStats, error) {
	rows, err := s.bookings.StatsByStatus()
	if err != nil {
		return nil, err
	}

	stats := &BookingStats{ByStatus: rows}
	for _, row := range rows {
		stats.TotalBookings += row.Count
		// Revenue only counts bookings that got past approval.
		switch row.Status {
		case models.BookingApproved, models.BookingActive, models.BookingCompleted:
			stats.TotalRevenue += row.Revenue
		}
	}

	return stats, nil
}
