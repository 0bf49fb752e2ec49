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

// ErrVersionConflict is returned when a compare-and-swap on a vehicle's
// booking version loses to a concurrent writer.
var ErrVersionConflict = errors.New("vehicle booking version conflict")

type VehicleRepository struct {
	collection *mongo.Collection
}

func NewVehicleRepository(db *mongo.Database) *VehicleRepository {
	return &VehicleRepository{
		collection: db.Collection("vehicles"),
	}
}

// VehicleQuery is an explicit query specification: each optional field
// maps to one predicate in the Mongo filter.
type VehicleQuery struct {
	Category  string
	MinPrice  *float64
	MaxPrice  *float64
	Available *bool
	OwnerID   string
	Search    string
	Near      *GeoFilter
	Page      int64
	Limit     int64
	Sort      string
}

// GeoFilter selects vehicles within RadiusKm of a point. The bounding box
// approximation the fleet used is kept; a degree of latitude is ~111 km.
type GeoFilter struct {
	Longitude float64
	Latitude  float64
	RadiusKm  float64
}

func (q *VehicleQuery) filter() (bson.M, error) {
	filter := bson.M{}

	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		filter["price_per_day"] = price
	}
	if q.Available != nil {
		filter["availability"] = *q.Available
	}
	if q.OwnerID != "" {
		ownerID, err := primitive.ObjectIDFromHex(q.OwnerID)
		if err != nil {
			return nil, errors.New("invalid owner ID")
		}
		filter["owner_id"] = ownerID
	}
	if q.Search != "" {
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": q.Search, "$options": "i"}},
			{"description": bson.M{"$regex": q.Search, "$options": "i"}},
		}
	}
	if q.Near != nil {
		latRange := q.Near.RadiusKm / 111.0
		lngRange := q.Near.RadiusKm / (111.0 * 0.7)
		filter["location.latitude"] = bson.M{
			"$gte": q.Near.Latitude - latRange,
			"$lte": q.Near.Latitude + latRange,
		}
		filter["location.longitude"] = bson.M{
			"$gte": q.Near.Longitude - lngRange,
			"$lte": q.Near.Longitude + lngRange,
		}
	}

	return filter, nil
}

func (q *VehicleQuery) sort() bson.D {
	switch q.Sort {
	case "price_asc":
		return bson.D{{Key: "price_per_day", Value: 1}}
	case "price_desc":
		return bson.D{{Key: "price_per_day", Value: -1}}
	case "rating":
		return bson.D{{Key: "average_rating", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

func (r *VehicleRepository) Create(vehicle *models.Vehicle) (*models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, vehicle)
	if err != nil {
		return nil, err
	}

	vehicle.ID = result.InsertedID.(primitive.ObjectID)
	return vehicle, nil
}

func (r *VehicleRepository) FindByID(id string) (*models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New("invalid vehicle ID")
	}

	var vehicle models.Vehicle
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&vehicle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("vehicle not found")
		}
		return nil, err
	}

	return &vehicle, nil
}

// Search returns the page of vehicles matching the query plus the total
// match count for pagination.
func (r *VehicleRepository) Search(q *VehicleQuery) ([]*models.Vehicle, int64, error) {
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

	var vehicles []*models.Vehicle
	for cursor.Next(ctx) {
		var vehicle models.Vehicle
		if err := cursor.Decode(&vehicle); err != nil {
			return nil, 0, err
		}
		vehicles = append(vehicles, &vehicle)
	}

	return vehicles, total, nil
}

// editableVehicleFields builds the $set document for a listing edit.
// booking_version, average_rating and total_reviews have their own guarded
// writers; writing them back from a read taken before the edit would
// silently revert a concurrent version bump or rating rollup.
func editableVehicleFields(vehicle *models.Vehicle) bson.M {
	return bson.M{
		"name":          vehicle.Name,
		"description":   vehicle.Description,
		"category":      vehicle.Category,
		"price_per_day": vehicle.PricePerDay,
		"location":      vehicle.Location,
		"availability":  vehicle.Availability,
		"images":        vehicle.Images,
		"updated_at":    time.Now(),
	}
}

func (r *VehicleRepository) Update(id string, vehicle *models.Vehicle) (*models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New("invalid vehicle ID")
	}

	result := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": editableVehicleFields(vehicle)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated models.Vehicle
	if err := result.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("vehicle not found")
		}
		return nil, err
	}

	return &updated, nil
}

// UpdateRating writes a recomputed rating rollup in a single $set so the
// average and count never disagree.
func (r *VehicleRepository) UpdateRating(id string, averageRating float64, totalReviews int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.New("invalid vehicle ID")
	}

	update := bson.M{
		"$set": bson.M{
			"average_rating": averageRating,
			"total_reviews":  totalReviews,
			"updated_at":     time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return errors.New("vehicle not found")
	}

	return nil
}

// AdvanceBookingVersion performs the compare-and-swap that serializes
// booking writes per vehicle. It matches the version the caller read and
// increments it; a concurrent writer that committed first leaves nothing
// to match and the caller gets ErrVersionConflict.
func (r *VehicleRepository) AdvanceBookingVersion(id string, version int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.New("invalid vehicle ID")
	}

	filter := bson.M{"_id": objectID, "booking_version": version}
	update := bson.M{"$inc": bson.M{"booking_version": 1}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return ErrVersionConflict
	}

	return nil
}

func (r *VehicleRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.New("invalid vehicle ID")
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return errors.New("vehicle not found")
	}

	return nil
}

func (r *VehicleRepository) Count() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{})
}
