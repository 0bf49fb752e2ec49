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

// ErrDuplicateReview is returned when the unique (user_id, booking_id)
// index rejects a second review for the same booking.
var ErrDuplicateReview = errors.New("review already exists for this booking")

type ReviewRepository struct {
	collection *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{
		collection: db.Collection("reviews"),
	}
}

func (r *ReviewRepository) Create(review *models.Review) (*models.Review, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateReview
		}
		return nil, err
	}

	review.ID = result.InsertedID.(primitive.ObjectID)
	return review, nil
}

func (r *ReviewRepository) FindByID(id string) (*models.Review, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New("invalid review ID")
	}

	var review models.Review
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&review)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("review not found")
		}
		return nil, err
	}

	return &review, nil
}

func (r *ReviewRepository) FindByVehicle(vehicleID string, page, limit int64) ([]*models.Review, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	vid, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return nil, 0, errors.New("invalid vehicle ID")
	}

	filter := bson.M{"vehicle_id": vid}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
		if page > 1 {
			opts.SetSkip((page - 1) * limit)
		}
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var reviews []*models.Review
	for cursor.Next(ctx) {
		var review models.Review
		if err := cursor.Decode(&review); err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, &review)
	}

	return reviews, total, nil
}

func (r *ReviewRepository) Update(id string, review *models.Review) (*models.Review, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New("invalid review ID")
	}

	review.UpdatedAt = time.Now()

	result := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": review},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated models.Review
	if err := result.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("review not found")
		}
		return nil, err
	}

	return &updated, nil
}

func (r *ReviewRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.New("invalid review ID")
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return errors.New("review not found")
	}

	return nil
}

// RatingSummary recomputes the vehicle's rating rollup from scratch via
// aggregation. Zero reviews yields (0, 0).
func (r *ReviewRepository) RatingSummary(vehicleID string) (float64, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	vid, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return 0, 0, errors.New("invalid vehicle ID")
	}

	pipeline := []bson.M{
		{"$match": bson.M{"vehicle_id": vid}},
		{
			"$group": bson.M{
				"_id":     nil,
				"average": bson.M{"$avg": "$rating"},
				"count":   bson.M{"$sum": 1},
			},
		},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var result struct {
		Average float64 `bson:"average"`
		Count   int     `bson:"count"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, 0, err
		}
	}

	return result.Average, result.Count, nil
}
