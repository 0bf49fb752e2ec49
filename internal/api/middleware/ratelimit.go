package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Thinura66/VehicleRental-Backend/pkg/ratelimit"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware applies per-client request budgets. A failing
// limiter never blocks traffic; the request passes with a warning
// header instead.
func RateLimitMiddleware(limiter ratelimit.RateLimiter, config *ratelimit.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := getClientID(c)
		category := config.EndpointCategory(c.Request.Method, c.Request.URL.Path)

		allowed, retryAfter, err := limiter.Allow(clientID, category)
		if err != nil {
			c.Header("X-RateLimit-Error", "Rate limiter unavailable")
			c.Next()
			return
		}

		limit := config.LimitFor(category)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.BurstSize))
		c.Header("X-RateLimit-Window", strconv.Itoa(int(limit.WindowSize.Seconds())))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
			c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(retryAfter).Unix(), 10))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":      "Rate limit exceeded",
				"message":    fmt.Sprintf("Too many requests. Try again in %v", retryAfter),
				"retryAfter": int(retryAfter.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// getClientID prefers the authenticated user; anonymous requests fall
// back to the client IP.
func getClientID(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		if uid, ok := userID.(string); ok && uid != "" {
			return fmt.Sprintf("user:%s", uid)
		}
	}

	return fmt.Sprintf("anon:%s", getClientIP(c))
}

// getClientIP extracts the real client IP address
func getClientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		ips := strings.Split(forwarded, ",")
		return strings.TrimSpace(ips[0])
	}

	if realIP := c.GetHeader("X-Real-IP"); realIP != "" {
		return realIP
	}

	return c.ClientIP()
}
