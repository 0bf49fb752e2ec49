package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"userId"`
	VehicleID     primitive.ObjectID `bson:"vehicle_id" json:"vehicleId"`
	BookingID     primitive.ObjectID `bson:"booking_id" json:"bookingId"`
	Rating        int                `bson:"rating" json:"rating" validate:"required,min=1,max=5"`
	Comment       string             `bson:"comment,omitempty" json:"comment,omitempty" validate:"max=500"`
	AdminResponse string             `bson:"admin_response,omitempty" json:"adminResponse,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updatedAt"`
}
