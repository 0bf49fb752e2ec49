package ratelimit

import (
	"time"
)

// RateLimiter defines the interface for rate limiting functionality
type RateLimiter interface {
	Allow(clientID string, endpoint string) (bool, time.Duration, error)
	GetStats() Stats
}

// RateLimit defines the configuration for rate limiting
type RateLimit struct {
	BurstSize  int           `json:"burstSize"`
	WindowSize time.Duration `json:"windowSize"`
}

// Stats provides statistics about rate limiting
type Stats struct {
	TotalRequests   int64 `json:"totalRequests"`
	BlockedRequests int64 `json:"blockedRequests"`
}
