package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Vehicle struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID       primitive.ObjectID `bson:"owner_id" json:"ownerId"`
	Name          string             `bson:"name" json:"name" validate:"required"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Category      string             `bson:"category" json:"category" validate:"required,oneof=car bike scooter bicycle truck van"`
	PricePerDay   float64            `bson:"price_per_day" json:"pricePerDay" validate:"min=0"`
	Location      Location           `bson:"location" json:"location"`
	Availability  bool               `bson:"availability" json:"availability"`
	AverageRating float64            `bson:"average_rating" json:"averageRating"`
	TotalReviews  int                `bson:"total_reviews" json:"totalReviews"`
	Images        []VehicleImage     `bson:"images" json:"images"`
	// BookingVersion guards the booking write path. Creation and approval
	// compare-and-swap against it so concurrent writers for the same vehicle
	// cannot both commit.
	BookingVersion int64     `bson:"booking_version" json:"-"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updatedAt"`
}

type Location struct {
	Longitude float64 `bson:"longitude" json:"longitude" validate:"min=-180,max=180"`
	Latitude  float64 `bson:"latitude" json:"latitude" validate:"min=-90,max=90"`
	Address   string  `bson:"address,omitempty" json:"address,omitempty"`
}

type VehicleImage struct {
	URL      string `bson:"url" json:"url"`
	Filename string `bson:"filename" json:"filename"`
}

var VehicleCategories = []string{"car", "bike", "scooter", "bicycle", "truck", "van"}
