package repository

import (
	"testing"

	"github.com/Thinura66/VehicleRental-Backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestEditableVehicleFields(t *testing.T) {
	vehicle := &models.Vehicle{
		Name:         "City Car",
		Description:  "compact hatchback",
		Category:     "car",
		PricePerDay:  80,
		Availability: false,
		Location:     models.Location{Longitude: 79.86, Latitude: 6.92, Address: "Colombo"},
		Images:       []models.VehicleImage{{URL: "http://x/1.jpg", Filename: "1.jpg"}},
		// stale reads of the guarded fields must not make it into the update
		BookingVersion: 7,
		AverageRating:  4.5,
		TotalReviews:   12,
	}

	set := editableVehicleFields(vehicle)

	assert.Equal(t, "City Car", set["name"])
	assert.Equal(t, "compact hatchback", set["description"])
	assert.Equal(t, "car", set["category"])
	assert.Equal(t, 80.0, set["price_per_day"])
	assert.Equal(t, false, set["availability"])
	assert.Equal(t, vehicle.Location, set["location"])
	assert.Equal(t, vehicle.Images, set["images"])
	assert.Contains(t, set, "updated_at")

	assert.NotContains(t, set, "booking_version")
	assert.NotContains(t, set, "average_rating")
	assert.NotContains(t, set, "total_reviews")
	assert.NotContains(t, set, "created_at")
	assert.NotContains(t, set, "owner_id")
}
