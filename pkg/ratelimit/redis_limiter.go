package ratelimit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter implements RateLimiter with a fixed-window counter
// kept in Redis. The window state lives in a hash updated by a Lua
// script so concurrent checks stay atomic.
type RedisRateLimiter struct {
	client *redis.Client
	config *Config
	stats  *Stats
	ctx    context.Context
}

// NewRedisRateLimiter creates a new Redis-backed rate limiter
func NewRedisRateLimiter(client *redis.Client, config *Config) *RedisRateLimiter {
	if config == nil {
		config = DefaultConfig()
	}

	return &RedisRateLimiter{
		client: client,
		config: config,
		stats:  &Stats{},
		ctx:    context.Background(),
	}
}

const windowScript = `
	local key = KEYS[1]
	local burst_size = tonumber(ARGV[1])
	local window_size = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])

	local count = tonumber(redis.call('HGET', key, 'count')) or 0
	local window_start = tonumber(redis.call('HGET', key, 'window_start')) or now

	if now - window_start >= window_size then
		count = 0
		window_start = now
	end

	local allowed = count < burst_size
	if allowed then
		count = count + 1
	end

	local reset_time = 0
	if not allowed then
		reset_time = math.ceil(((window_start + window_size) - now) / 1000)
	end

	local ttl = math.max(1, math.ceil(window_size / 1000) + 1)
	redis.call('HSET', key, 'count', count)
	redis.call('HSET', key, 'window_start', window_start)
	redis.call('EXPIRE', key, ttl)

	return {allowed and 1 or 0, reset_time}
`

// Allow checks if a request should be allowed based on rate limits.
// The returned duration is how long the caller should wait when denied.
func (r *RedisRateLimiter) Allow(clientID string, endpoint string) (bool, time.Duration, error) {
	if !r.config.Enabled {
		return true, 0, nil
	}

	atomic.AddInt64(&r.stats.TotalRequests, 1)

	limit := r.config.LimitFor(endpoint)
	key := fmt.Sprintf("%s%s:%s", r.config.RedisKeyPrefix, clientID, endpoint)

	result, err := r.client.Eval(r.ctx, windowScript, []string{key},
		limit.BurstSize,
		limit.WindowSize.Milliseconds(),
		time.Now().UnixMilli()).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit check failed: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return false, 0, fmt.Errorf("unexpected script result format")
	}

	allowed := values[0].(int64) == 1
	retryAfter := time.Duration(values[1].(int64)) * time.Second

	if !allowed {
		atomic.AddInt64(&r.stats.BlockedRequests, 1)
		return false, retryAfter, nil
	}

	return true, 0, nil
}

// GetStats returns rate limiter statistics
func (r *RedisRateLimiter) GetStats() Stats {
	return Stats{
		TotalRequests:   atomic.LoadInt64(&r.stats.TotalRequests),
		BlockedRequests: atomic.LoadInt64(&r.stats.BlockedRequests),
	}
}
