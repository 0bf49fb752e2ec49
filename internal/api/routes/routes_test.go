package routes

import (
	"context"
	"testing"

	"github.com/Thinura66/VehicleRental-Backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// The Mongo client connects lazily, so wiring the router does not need a
// running database.
func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	t.Chdir(t.TempDir())
	gin.SetMode(gin.TestMode)

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://localhost:27017"))
	require.NoError(t, err)

	router := gin.New()
	SetupRoutes(router, client.Database("vehicle_rental_test"), nil, &config.Config{AppURL: "http://localhost:8080"})
	return router
}

func TestSetupRoutes_BookingLifecycleVerbs(t *testing.T) {
	router := setupTestRouter(t)

	want := map[string]bool{
		"PUT /api/v1/bookings/:id/status":   false,
		"PATCH /api/v1/bookings/:id/status": false,
		"PUT /api/v1/bookings/:id/cancel":   false,
		"POST /api/v1/bookings/:id/cancel":  false,
		"PUT /api/v1/vehicles/:id":          false,
		"PUT /api/v1/reviews/:id":           false,
		"PUT /api/v1/reviews/:id/response":  false,
	}

	for _, route := range router.Routes() {
		key := route.Method + " " + route.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}

	for key, found := range want {
		assert.True(t, found, "route %s is not registered", key)
	}
}
