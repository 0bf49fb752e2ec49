package services

import (
	"testing"
	"time"

	"github.com/Thinura66/VehicleRental-Backend/internal/models"
	"github.com/Thinura66/VehicleRental-Backend/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockCacheManager is a mock implementation of the CacheManager interface
type MockCacheManager struct {
	mock.Mock
}

func (m *MockCacheManager) GetVehicle(vehicleID string) (*models.Vehicle, error) {
	args := m.Called(vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockCacheManager) SetVehicle(vehicleID string, vehicle *models.Vehicle, ttl time.Duration) error {
	args := m.Called(vehicleID, vehicle, ttl)
	return args.Error(0)
}

func (m *MockCacheManager) InvalidateVehicle(vehicleID string) error {
	args := m.Called(vehicleID)
	return args.Error(0)
}

func (m *MockCacheManager) GetVehicleList(key string) ([]*models.Vehicle, int64, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Vehicle), args.Get(1).(int64), args.Error(2)
}

func (m *MockCacheManager) SetVehicleList(key string, vehicles []*models.Vehicle, total int64, ttl time.Duration) error {
	args := m.Called(key, vehicles, total, ttl)
	return args.Error(0)
}

func (m *MockCacheManager) InvalidateVehicleLists() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockCacheManager) Get(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockCacheManager) Set(key string, value interface{}, ttl time.Duration) error {
	args := m.Called(key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheManager) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheManager) GetCacheStats() cache.CacheStats {
	args := m.Called()
	return args.Get(0).(cache.CacheStats)
}

func (m *MockCacheManager) HealthCheck() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockCacheManager) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestGetVehicleByID_CacheHitSkipsDatabase(t *testing.T) {
	cacheManager := new(MockCacheManager)
	service := NewVehicleService(nil)
	service.SetCacheManager(cacheManager)

	vehicle := &models.Vehicle{
		ID:       primitive.NewObjectID(),
		Name:     "Cached Car",
		Category: "car",
	}

	cacheManager.On("GetVehicle", vehicle.ID.Hex()).Return(vehicle, nil)

	got, err := service.GetVehicleByID(vehicle.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, vehicle, got)
	cacheManager.AssertExpectations(t)
}

func TestSearchVehicles_DefaultPageServedFromCache(t *testing.T) {
	cacheManager := new(MockCacheManager)
	service := NewVehicleService(nil)
	service.SetCacheManager(cacheManager)

	cached := []*models.Vehicle{{ID: primitive.NewObjectID(), Name: "Cached Car"}}
	cacheManager.On("GetVehicleList", cache.DefaultListKey).Return(cached, int64(13), nil)

	vehicles, total, err := service.SearchVehicles(&VehicleSearchQuery{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, cached, vehicles)
	assert.Equal(t, int64(13), total)
	cacheManager.AssertExpectations(t)
}

func TestVehicleSearchQuery_IsDefaultPage(t *testing.T) {
	price := 50.0
	lat := 6.9

	tests := []struct {
		name  string
		query VehicleSearchQuery
		want  bool
	}{
		{"empty query", VehicleSearchQuery{}, true},
		{"explicit first page", VehicleSearchQuery{Page: 1, Limit: 20}, true},
		{"category filter", VehicleSearchQuery{Category: "bike"}, false},
		{"price filter", VehicleSearchQuery{MinPrice: &price}, false},
		{"text search", VehicleSearchQuery{Search: "toyota"}, false},
		{"geo filter", VehicleSearchQuery{Latitude: &lat}, false},
		{"later page", VehicleSearchQuery{Page: 2}, false},
		{"custom sort", VehicleSearchQuery{Sort: "price_asc"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.isDefaultPage())
		})
	}
}
