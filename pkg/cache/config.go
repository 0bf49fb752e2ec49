package cache

import "time"

// DefaultListKey identifies the unfiltered first page of the vehicle
// catalog, the only listing shape the service caches.
const DefaultListKey = "default"

// Config holds TTL values and key layout for the cache.
type Config struct {
	VehicleTTL     time.Duration `json:"vehicleTTL"`     // single vehicle documents
	VehicleListTTL time.Duration `json:"vehicleListTTL"` // catalog pages
	GenericTTL     time.Duration `json:"genericTTL"`     // everything else
	KeyPrefix      string        `json:"keyPrefix"`      // prefix for all cache keys
}

// DefaultConfig returns the default cache configuration. Vehicle
// documents change rarely, so they outlive catalog pages.
func DefaultConfig() Config {
	return Config{
		VehicleTTL:     5 * time.Minute,
		VehicleListTTL: 2 * time.Minute,
		GenericTTL:     time.Minute,
		KeyPrefix:      "rental:",
	}
}
