package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingRejected  BookingStatus = "rejected"
	BookingActive    BookingStatus = "active"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type Booking struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID             primitive.ObjectID `bson:"user_id" json:"userId"`
	VehicleID          primitive.ObjectID `bson:"vehicle_id" json:"vehicleId"`
	StartDate          time.Time          `bson:"start_date" json:"startDate"`
	EndDate            time.Time          `bson:"end_date" json:"endDate"`
	TotalPrice         float64            `bson:"total_price" json:"totalPrice"`
	Status             BookingStatus      `bson:"status" json:"status"`
	PaymentStatus      PaymentStatus      `bson:"payment_status" json:"paymentStatus"`
	PickupLocation     string             `bson:"pickup_location" json:"pickupLocation"`
	DropoffLocation    string             `bson:"dropoff_location" json:"dropoffLocation"`
	SpecialRequests    string             `bson:"special_requests,omitempty" json:"specialRequests,omitempty"`
	CancellationReason string             `bson:"cancellation_reason,omitempty" json:"cancellationReason,omitempty"`
	AdminNotes         string             `bson:"admin_notes,omitempty" json:"adminNotes,omitempty"`
	CreatedAt          time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Overlaps reports whether the booking's [StartDate, EndDate) interval
// intersects [start, end). Intervals are half-open, so a booking ending
// exactly when another starts does not overlap it.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartDate.Before(end) && b.EndDate.After(start)
}

// ConflictStatuses are the statuses that hold a vehicle's calendar. Only
// approved and active bookings block other bookings on the same dates.
var ConflictStatuses = []BookingStatus{BookingApproved, BookingActive}

// bookingTransitions is the allowed status graph. Terminal states map to
// an empty slice.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingApproved, BookingRejected, BookingCancelled},
	BookingApproved:  {BookingActive, BookingCancelled},
	BookingActive:    {BookingCompleted},
	BookingRejected:  {},
	BookingCompleted: {},
	BookingCancelled: {},
}

// ValidBookingStatus reports whether s is one of the known statuses.
func ValidBookingStatus(s BookingStatus) bool {
	_, ok := bookingTransitions[s]
	return ok
}

// CanTransition reports whether a booking may move from one status to
// another.
func CanTransition(from, to BookingStatus) bool {
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s.
func IsTerminal(s BookingStatus) bool {
	return len(bookingTransitions[s]) == 0
}

// Cancellable reports whether a booking in status s may still be cancelled
// by its owner or an admin.
func Cancellable(s BookingStatus) bool {
	return s == BookingPending || s == BookingApproved
}
