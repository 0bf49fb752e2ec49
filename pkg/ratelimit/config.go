package ratelimit

import (
	"strings"
	"time"
)

// Config holds the configuration for rate limiting
type Config struct {
	// Rate limits per endpoint category
	Limits map[string]RateLimit `json:"limits"`

	// Redis key prefix for rate limiting data
	RedisKeyPrefix string `json:"redisKeyPrefix"`

	// Enable/disable rate limiting
	Enabled bool `json:"enabled"`
}

// DefaultConfig returns a default rate limiting configuration
func DefaultConfig() *Config {
	return &Config{
		Limits: map[string]RateLimit{
			// Credential endpoints get the tightest budget
			"auth_login":    {BurstSize: 5, WindowSize: time.Minute},
			"auth_register": {BurstSize: 10, WindowSize: time.Minute},
			"auth_reset":    {BurstSize: 3, WindowSize: time.Minute},

			// Booking writes hit the conflict engine
			"bookings_create": {BurstSize: 20, WindowSize: time.Minute},

			// Catalog reads are permissive
			"vehicles": {BurstSize: 120, WindowSize: time.Minute},

			"default": {BurstSize: 60, WindowSize: time.Minute},
		},
		RedisKeyPrefix: "ratelimit:",
		Enabled:        true,
	}
}

// EndpointCategory maps a method and path to a rate limit category.
func (c *Config) EndpointCategory(method, path string) string {
	switch {
	case method == "POST" && path == "/api/v1/auth/login":
		return "auth_login"
	case method == "POST" && path == "/api/v1/auth/register":
		return "auth_register"
	case method == "POST" && (path == "/api/v1/auth/forgot-password" || path == "/api/v1/auth/reset-password"):
		return "auth_reset"
	case method == "POST" && path == "/api/v1/bookings":
		return "bookings_create"
	case method == "GET" && strings.HasPrefix(path, "/api/v1/vehicles"):
		return "vehicles"
	default:
		return "default"
	}
}

// LimitFor returns the rate limit for an endpoint category.
func (c *Config) LimitFor(category string) RateLimit {
	if limit, ok := c.Limits[category]; ok {
		return limit
	}
	return c.Limits["default"]
}
