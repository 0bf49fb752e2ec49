package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryRateLimiter implements RateLimiter using in-memory fixed
// windows. It serves as the fallback when Redis is unavailable.
type MemoryRateLimiter struct {
	config  *Config
	stats   *Stats
	windows map[string]*window
	mu      sync.Mutex
	done    chan struct{}
}

type window struct {
	count int
	start time.Time
}

// NewMemoryRateLimiter creates a new in-memory rate limiter
func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	if config == nil {
		config = DefaultConfig()
	}

	limiter := &MemoryRateLimiter{
		config:  config,
		stats:   &Stats{},
		windows: make(map[string]*window),
		done:    make(chan struct{}),
	}

	go limiter.cleanupExpiredWindows()

	return limiter
}

// Allow checks if a request should be allowed based on rate limits
func (r *MemoryRateLimiter) Allow(clientID string, endpoint string) (bool, time.Duration, error) {
	if !r.config.Enabled {
		return true, 0, nil
	}

	atomic.AddInt64(&r.stats.TotalRequests, 1)

	limit := r.config.LimitFor(endpoint)
	key := fmt.Sprintf("%s:%s", clientID, endpoint)
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	w, exists := r.windows[key]
	if !exists || now.Sub(w.start) >= limit.WindowSize {
		w = &window{start: now}
		r.windows[key] = w
	}

	if w.count < limit.BurstSize {
		w.count++
		return true, 0, nil
	}

	atomic.AddInt64(&r.stats.BlockedRequests, 1)
	retryAfter := w.start.Add(limit.WindowSize).Sub(now)
	if retryAfter < 0 {
		retryAfter = 0
	}
	return false, retryAfter, nil
}

// GetStats returns rate limiter statistics
func (r *MemoryRateLimiter) GetStats() Stats {
	return Stats{
		TotalRequests:   atomic.LoadInt64(&r.stats.TotalRequests),
		BlockedRequests: atomic.LoadInt64(&r.stats.BlockedRequests),
	}
}

// Close stops the background cleanup goroutine.
func (r *MemoryRateLimiter) Close() {
	close(r.done)
}

func (r *MemoryRateLimiter) cleanupExpiredWindows() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			now := time.Now()
			r.mu.Lock()
			for key, w := range r.windows {
				limit := r.config.LimitFor(keyEndpoint(key))
				if now.Sub(w.start) >= limit.WindowSize*2 {
					delete(r.windows, key)
				}
			}
			r.mu.Unlock()
		}
	}
}

// keyEndpoint recovers the endpoint category from a window key.
func keyEndpoint(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == ':' {
			return key[i+1:]
		}
	}
	return key
}
