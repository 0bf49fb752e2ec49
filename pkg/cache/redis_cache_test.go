package cache

import (
	"net"
	"testing"
	"time"

	"github.com/Thinura66/VehicleRental-Backend/internal/config"
	"github.com/Thinura66/VehicleRental-Backend/internal/models"
	"github.com/Thinura66/VehicleRental-Backend/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setupTestManager(t *testing.T) (*miniredis.Miniredis, *RedisCacheManager) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)

	client := redis.NewClient(config.RedisConfig{
		Host:         host,
		Port:         port,
		PoolSize:     2,
		MinIdleConns: 1,
		DialTimeout:  time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	t.Cleanup(func() { client.Close() })

	cfg := DefaultConfig()
	cfg.KeyPrefix = "test:"

	return mr, NewRedisCacheManager(client, cfg)
}

func testVehicle(name string) *models.Vehicle {
	return &models.Vehicle{
		ID:           primitive.NewObjectID(),
		OwnerID:      primitive.NewObjectID(),
		Name:         name,
		Category:     "car",
		PricePerDay:  100,
		Availability: true,
	}
}

func TestRedisCacheManager_VehicleOperations(t *testing.T) {
	_, manager := setupTestManager(t)

	vehicle := testVehicle("Test Car")

	t.Run("SetVehicle", func(t *testing.T) {
		err := manager.SetVehicle(vehicle.ID.Hex(), vehicle, 30*time.Second)
		assert.NoError(t, err)
	})

	t.Run("GetVehicle", func(t *testing.T) {
		retrieved, err := manager.GetVehicle(vehicle.ID.Hex())
		assert.NoError(t, err)
		assert.NotNil(t, retrieved)
		assert.Equal(t, vehicle.Name, retrieved.Name)
		assert.Equal(t, vehicle.Category, retrieved.Category)
		assert.Equal(t, vehicle.PricePerDay, retrieved.PricePerDay)
	})

	t.Run("GetVehicle_NotFound", func(t *testing.T) {
		retrieved, err := manager.GetVehicle(primitive.NewObjectID().Hex())
		assert.NoError(t, err)
		assert.Nil(t, retrieved)
	})

	t.Run("InvalidateVehicle", func(t *testing.T) {
		err := manager.InvalidateVehicle(vehicle.ID.Hex())
		assert.NoError(t, err)

		retrieved, err := manager.GetVehicle(vehicle.ID.Hex())
		assert.NoError(t, err)
		assert.Nil(t, retrieved)
	})
}

func TestRedisCacheManager_VehicleListOperations(t *testing.T) {
	_, manager := setupTestManager(t)

	vehicles := []*models.Vehicle{testVehicle("First"), testVehicle("Second")}

	t.Run("SetVehicleList", func(t *testing.T) {
		err := manager.SetVehicleList(DefaultListKey, vehicles, 42, time.Minute)
		assert.NoError(t, err)
	})

	t.Run("GetVehicleList", func(t *testing.T) {
		retrieved, total, err := manager.GetVehicleList(DefaultListKey)
		assert.NoError(t, err)
		require.Len(t, retrieved, 2)
		assert.Equal(t, int64(42), total)
		assert.Equal(t, "First", retrieved[0].Name)
		assert.Equal(t, "Second", retrieved[1].Name)
	})

	t.Run("GetVehicleList_Miss", func(t *testing.T) {
		retrieved, total, err := manager.GetVehicleList("other")
		assert.NoError(t, err)
		assert.Nil(t, retrieved)
		assert.Zero(t, total)
	})

	t.Run("InvalidateVehicleLists", func(t *testing.T) {
		require.NoError(t, manager.SetVehicleList("second-page", vehicles, 42, time.Minute))

		err := manager.InvalidateVehicleLists()
		assert.NoError(t, err)

		for _, key := range []string{DefaultListKey, "second-page"} {
			retrieved, total, err := manager.GetVehicleList(key)
			assert.NoError(t, err)
			assert.Nil(t, retrieved)
			assert.Zero(t, total)
		}
	})
}

func TestRedisCacheManager_TTLBehavior(t *testing.T) {
	mr, manager := setupTestManager(t)

	vehicle := testVehicle("TTL Car")

	require.NoError(t, manager.SetVehicle(vehicle.ID.Hex(), vehicle, 100*time.Millisecond))

	retrieved, err := manager.GetVehicle(vehicle.ID.Hex())
	require.NoError(t, err)
	require.NotNil(t, retrieved)

	// miniredis only expires keys when the clock is advanced manually
	mr.FastForward(200 * time.Millisecond)

	retrieved, err = manager.GetVehicle(vehicle.ID.Hex())
	assert.NoError(t, err)
	assert.Nil(t, retrieved)
}

func TestRedisCacheManager_GenericOperations(t *testing.T) {
	_, manager := setupTestManager(t)

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	t.Run("SetAndGet", func(t *testing.T) {
		err := manager.Set("stats", payload{Name: "bookings", Count: 7}, time.Minute)
		assert.NoError(t, err)

		var got payload
		err = manager.Get("stats", &got)
		assert.NoError(t, err)
		assert.Equal(t, "bookings", got.Name)
		assert.Equal(t, 7, got.Count)
	})

	t.Run("Delete", func(t *testing.T) {
		err := manager.Delete("stats")
		assert.NoError(t, err)

		var got payload
		err = manager.Get("stats", &got)
		assert.NoError(t, err)
		assert.Empty(t, got.Name)
	})
}

func TestRedisCacheManager_Stats(t *testing.T) {
	_, manager := setupTestManager(t)

	vehicle := testVehicle("Stats Car")
	require.NoError(t, manager.SetVehicle(vehicle.ID.Hex(), vehicle, time.Minute))

	_, err := manager.GetVehicle(vehicle.ID.Hex())
	require.NoError(t, err)
	_, err = manager.GetVehicle(primitive.NewObjectID().Hex())
	require.NoError(t, err)

	stats := manager.GetCacheStats()
	assert.Equal(t, int64(1), stats.TotalHits)
	assert.Equal(t, int64(1), stats.TotalMisses)
	assert.InDelta(t, 0.5, stats.HitRate, 0.001)
	assert.InDelta(t, 0.5, stats.MissRate, 0.001)
	assert.GreaterOrEqual(t, stats.KeyCount, 1)
}

func TestRedisCacheManager_HealthCheck(t *testing.T) {
	_, manager := setupTestManager(t)
	assert.NoError(t, manager.HealthCheck())
}
