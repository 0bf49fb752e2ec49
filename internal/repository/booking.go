package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Thinura66/VehicleRental-Backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotCancellable is returned when a cancel misses because the booking
// already left the pending/approved window.
var ErrNotCancellable = errors.New("booking is not cancellable")

// ErrStatusChanged is returned when a status update misses because the
// booking no longer holds the status the caller validated against.
var ErrStatusChanged = errors.New("booking status changed")

type BookingRepository struct {
	collection *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{
		collection: db.Collection("bookings"),
	}
}

// BookingQuery is an explicit query specification for booking listings.
type BookingQuery struct {
	UserID    string
	VehicleID string
	Status    models.BookingStatus
	Page      int64
	Limit     int64
	Sort      string
}

func (q *BookingQuery) filter() (bson.M, error) {
	filter := bson.M{}

	if q.UserID != "" {
		userID, err := primitive.ObjectIDFromHex(q.UserID)
		if err != nil {
			return nil, errors.New("invalid user ID")
		}
		filter["user_id"] = userID
	}
	if q.VehicleID != "" {
		vehicleID, err := primitive.ObjectIDFromHex(q.VehicleID)
		if err != nil {
			return nil, errors.New("invalid vehicle ID")
		}
		filter["vehicle_id"] = vehicleID
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}

	return filter, nil
}

func (q *BookingQuery) sort() bson.D {
	switch q.Sort {
	case "start_date":
		return bson.D{{Key: "start_date", Value: 1}}
	case "start_date_desc":
		return bson.D{{Key: "start_date", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

func (r *BookingRepository) Create(booking *models.Booking) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return nil, err
	}

	booking.ID = result.InsertedID.(primitive.ObjectID)
	return booking, nil
}

func (r *BookingRepository) FindByID(id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New("invalid booking ID")
	}

	var booking models.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("booking not found")
		}
		return nil, err
	}

	return &booking, nil
}

// CountOverlapping counts bookings on the vehicle whose [start_date,
// end_date) interval intersects [start, end) under half-open semantics and
// whose status holds the calendar (approved or active). excludeID, when
// non-empty, leaves the caller's own booking out of the count.
func (r *BookingRepository) CountOverlapping(vehicleID string, start, end time.Time, excludeID string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	vid, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return 0, errors.New("invalid vehicle ID")
	}

	filter := bson.M{
		"vehicle_id": vid,
		"status":     bson.M{"$in": models.ConflictStatuses},
		"start_date": bson.M{"$lt": end},
		"end_date":   bson.M{"$gt": start},
	}

	if excludeID != "" {
		oid, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return 0, errors.New("invalid booking ID")
		}
		filter["_id"] = bson.M{"$ne": oid}
	}

	return r.collection.CountDocuments(ctx, filter)
}

// Find returns the page of bookings matching the query plus the total
// match count.
func (r *BookingRepository) Find(q *BookingQuery) ([]*models.Booking, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter, err := q.filter()
	if err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(q.sort())
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
		if q.Page > 1 {
			opts.SetSkip((q.Page - 1) * q.Limit)
		}
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var bookings []*models.Booking
	for cursor.Next(ctx) {
		var booking models.Booking
		if err := cursor.Decode(&booking); err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, &booking)
	}

	return bookings, total, nil
}

// UpdateStatus moves a booking from one status to another. The caller
// validates the transition against a read of the booking; putting the
// expected from-status in the update filter means a transition that
// committed in between (an owner's cancel, another admin's move) misses
// instead of being overwritten.
func (r *BookingRepository) UpdateStatus(id string, from, to models.BookingStatus, adminNotes string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New("invalid booking ID")
	}

	set := bson.M{
		"status":     to,
		"updated_at": time.Now(),
	}
	if adminNotes != "" {
		set["admin_notes"] = adminNotes
	}

	result := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID, "status": from},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated models.Booking
	if err := result.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrStatusChanged
		}
		return nil, err
	}

	return &updated, nil
}

// Cancel marks a booking cancelled only while its status still permits
// cancellation; the status check lives in the update filter so a racing
// admin transition cannot be overwritten.
func (r *BookingRepository) Cancel(id, reason string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New("invalid booking ID")
	}

	filter := bson.M{
		"_id":    objectID,
		"status": bson.M{"$in": []models.BookingStatus{models.BookingPending, models.BookingApproved}},
	}
	set := bson.M{
		"status":     models.BookingCancelled,
		"updated_at": time.Now(),
	}
	if reason != "" {
		set["cancellation_reason"] = reason
	}

	result := r.collection.FindOneAndUpdate(
		ctx,
		filter,
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated models.Booking
	if err := result.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotCancellable
		}
		return nil, err
	}

	return &updated, nil
}

// StatusStat is one row of the admin stats aggregation.
type StatusStat struct {
	Status  models.BookingStatus `bson:"_id" json:"status"`
	Count   int64                `bson:"count" json:"count"`
	Revenue float64              `bson:"revenue" json:"revenue"`
}

// StatsByStatus groups bookings by status with counts and summed revenue.
func (r *BookingRepository) StatsByStatus() ([]StatusStat, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pipeline := []bson.M{
		{
			"$group": bson.M{
				"_id":     "$status",
				"count":   bson.M{"$sum": 1},
				"revenue": bson.M{"$sum": "$total_price"},
			},
		},
		{
			"$sort": bson.M{"_id": 1},
		},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stats []StatusStat
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, err
	}

	return stats, nil
}

// HasCompletedBooking reports whether the user has at least one completed
// booking on the vehicle, which gates review creation.
func (r *BookingRepository) HasCompletedBooking(userID, vehicleID string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, errors.New("invalid user ID")
	}
	vid, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return false, errors.New("invalid vehicle ID")
	}

	filter := bson.M{
		"user_id":    uid,
		"vehicle_id": vid,
		"status":     models.BookingCompleted,
	}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
