package cache

import (
	"time"

	"github.com/Thinura66/VehicleRental-Backend/internal/models"
)

// CacheManager defines the interface for caching operations
type CacheManager interface {
	// Vehicle operations
	GetVehicle(vehicleID string) (*models.Vehicle, error)
	SetVehicle(vehicleID string, vehicle *models.Vehicle, ttl time.Duration) error
	InvalidateVehicle(vehicleID string) error

	// Vehicle listing operations. Lists carry their total match count so
	// pagination metadata survives a cache hit.
	GetVehicleList(key string) ([]*models.Vehicle, int64, error)
	SetVehicleList(key string, vehicles []*models.Vehicle, total int64, ttl time.Duration) error
	InvalidateVehicleLists() error

	// Generic operations
	Get(key string, dest interface{}) error
	Set(key string, value interface{}, ttl time.Duration) error
	Delete(key string) error

	// Statistics and health
	GetCacheStats() CacheStats
	HealthCheck() error
	Close() error
}

// CacheStats provides cache performance metrics
type CacheStats struct {
	HitRate     float64 `json:"hitRate"`
	MissRate    float64 `json:"missRate"`
	KeyCount    int     `json:"keyCount"`
	TotalHits   int64   `json:"totalHits"`
	TotalMisses int64   `json:"totalMisses"`
}
