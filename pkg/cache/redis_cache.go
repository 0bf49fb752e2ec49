package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Thinura66/VehicleRental-Backend/internal/models"
	"github.com/Thinura66/VehicleRental-Backend/pkg/redis"

	redisClient "github.com/redis/go-redis/v9"
)

// RedisCacheManager implements CacheManager using Redis
type RedisCacheManager struct {
	client *redis.Client
	config Config
	stats  *cacheStats
	ctx    context.Context
}

type cacheStats struct {
	mu          sync.RWMutex
	totalHits   int64
	totalMisses int64
}

// vehicleListEntry is the stored shape of a cached catalog page.
type vehicleListEntry struct {
	Vehicles []*models.Vehicle `json:"vehicles"`
	Total    int64             `json:"total"`
}

// NewRedisCacheManager creates a new Redis-backed cache manager
func NewRedisCacheManager(redisClient *redis.Client, config Config) *RedisCacheManager {
	return &RedisCacheManager{
		client: redisClient,
		config: config,
		stats:  &cacheStats{},
		ctx:    context.Background(),
	}
}

// GetVehicle retrieves a vehicle from cache. A miss returns (nil, nil).
func (r *RedisCacheManager) GetVehicle(vehicleID string) (*models.Vehicle, error) {
	key := r.buildKey("vehicle", vehicleID)

	data, err := r.client.GetClient().Get(r.ctx, key).Result()
	if err != nil {
		if err == redisClient.Nil {
			r.recordMiss()
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vehicle from cache: %w", err)
	}

	var vehicle models.Vehicle
	if err := json.Unmarshal([]byte(data), &vehicle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vehicle data: %w", err)
	}

	r.recordHit()
	return &vehicle, nil
}

// SetVehicle stores a vehicle in cache with TTL
func (r *RedisCacheManager) SetVehicle(vehicleID string, vehicle *models.Vehicle, ttl time.Duration) error {
	key := r.buildKey("vehicle", vehicleID)

	data, err := json.Marshal(vehicle)
	if err != nil {
		return fmt.Errorf("failed to marshal vehicle data: %w", err)
	}

	if err := r.client.GetClient().Set(r.ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set vehicle in cache: %w", err)
	}

	return nil
}

// InvalidateVehicle removes a specific vehicle from cache
func (r *RedisCacheManager) InvalidateVehicle(vehicleID string) error {
	return r.client.GetClient().Del(r.ctx, r.buildKey("vehicle", vehicleID)).Err()
}

// GetVehicleList retrieves a cached catalog page with its total match
// count. A miss returns (nil, 0, nil).
func (r *RedisCacheManager) GetVehicleList(key string) ([]*models.Vehicle, int64, error) {
	cacheKey := r.buildKey("vehicle_list", key)

	data, err := r.client.GetClient().Get(r.ctx, cacheKey).Result()
	if err != nil {
		if err == redisClient.Nil {
			r.recordMiss()
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("failed to get vehicle list from cache: %w", err)
	}

	var entry vehicleListEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal vehicle list data: %w", err)
	}

	r.recordHit()
	return entry.Vehicles, entry.Total, nil
}

// SetVehicleList stores a catalog page. The key is also recorded in a
// set so InvalidateVehicleLists can drop every cached page at once.
func (r *RedisCacheManager) SetVehicleList(key string, vehicles []*models.Vehicle, total int64, ttl time.Duration) error {
	cacheKey := r.buildKey("vehicle_list", key)

	data, err := json.Marshal(vehicleListEntry{Vehicles: vehicles, Total: total})
	if err != nil {
		return fmt.Errorf("failed to marshal vehicle list data: %w", err)
	}

	pipe := r.client.GetClient().Pipeline()
	pipe.Set(r.ctx, cacheKey, data, ttl)
	pipe.SAdd(r.ctx, r.listIndexKey(), cacheKey)
	// The index outlives its members so expired pages fall out of it
	// lazily on the next invalidation.
	pipe.Expire(r.ctx, r.listIndexKey(), ttl*2)

	if _, err := pipe.Exec(r.ctx); err != nil {
		return fmt.Errorf("failed to set vehicle list in cache: %w", err)
	}

	return nil
}

// InvalidateVehicleLists drops every cached catalog page.
func (r *RedisCacheManager) InvalidateVehicleLists() error {
	keys, err := r.client.GetClient().SMembers(r.ctx, r.listIndexKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to read vehicle list index: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	pipe := r.client.GetClient().Pipeline()
	for _, key := range keys {
		pipe.Del(r.ctx, key)
	}
	pipe.Del(r.ctx, r.listIndexKey())

	if _, err := pipe.Exec(r.ctx); err != nil {
		return fmt.Errorf("failed to invalidate vehicle lists: %w", err)
	}

	return nil
}

// Get retrieves a generic value from cache
func (r *RedisCacheManager) Get(key string, dest interface{}) error {
	cacheKey := r.buildKey("generic", key)

	data, err := r.client.GetClient().Get(r.ctx, cacheKey).Result()
	if err != nil {
		if err == redisClient.Nil {
			r.recordMiss()
			return nil
		}
		return fmt.Errorf("failed to get from cache: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	r.recordHit()
	return nil
}

// Set stores a generic value in cache
func (r *RedisCacheManager) Set(key string, value interface{}, ttl time.Duration) error {
	cacheKey := r.buildKey("generic", key)

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	return r.client.GetClient().Set(r.ctx, cacheKey, data, ttl).Err()
}

// Delete removes a key from cache
func (r *RedisCacheManager) Delete(key string) error {
	return r.client.GetClient().Del(r.ctx, r.buildKey("generic", key)).Err()
}

// GetCacheStats returns cache performance statistics
func (r *RedisCacheManager) GetCacheStats() CacheStats {
	r.stats.mu.RLock()
	totalHits := r.stats.totalHits
	totalMisses := r.stats.totalMisses
	r.stats.mu.RUnlock()

	total := totalHits + totalMisses
	var hitRate, missRate float64
	if total > 0 {
		hitRate = float64(totalHits) / float64(total)
		missRate = float64(totalMisses) / float64(total)
	}

	keyCount := 0
	if keys, err := r.client.GetClient().Keys(r.ctx, r.config.KeyPrefix+"*").Result(); err == nil {
		keyCount = len(keys)
	} else {
		log.Printf("failed to count cache keys: %v", err)
	}

	return CacheStats{
		HitRate:     hitRate,
		MissRate:    missRate,
		KeyCount:    keyCount,
		TotalHits:   totalHits,
		TotalMisses: totalMisses,
	}
}

// HealthCheck verifies cache connectivity
func (r *RedisCacheManager) HealthCheck() error {
	return r.client.GetClient().Ping(r.ctx).Err()
}

// Close closes the cache manager
func (r *RedisCacheManager) Close() error {
	return r.client.Close()
}

func (r *RedisCacheManager) buildKey(keyType, identifier string) string {
	return fmt.Sprintf("%s%s:%s", r.config.KeyPrefix, keyType, identifier)
}

func (r *RedisCacheManager) listIndexKey() string {
	return r.config.KeyPrefix + "vehicle_list_keys"
}

func (r *RedisCacheManager) recordHit() {
	r.stats.mu.Lock()
	r.stats.totalHits++
	r.stats.mu.Unlock()
}

func (r *RedisCacheManager) recordMiss() {
	r.stats.mu.Lock()
	r.stats.totalMisses++
	r.stats.mu.Unlock()
}
