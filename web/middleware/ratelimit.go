package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/allblack/allblack-panel/caching"
	"github.com/allblack/allblack-panel/logger"
	"github.com/allblack/allblack-panel/web/entity"

	"github.com/gin-gonic/gin"
)

// RateLimitConfig configures rate limiting
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	KeyFunc  func(c *gin.Context) string
}

// DefaultRateLimitConfig allows 10 requests a minute per client IP.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Requests: 10,
		Window:   time.Minute,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

// RateLimitMiddleware rejects a client with 429 once it sent more than
// config.Requests requests to the same path within config.Window.
func RateLimitMiddleware(counters *caching.Cache, config RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + config.KeyFunc(c) + ":" + c.FullPath()
		count := counters.Hit(key, config.Window)

		reset := time.Now().Add(config.Window)
		if exp, ok := counters.Expiry(key); ok && !exp.IsZero() {
			reset = exp
		}
		remaining := config.Requests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if count > config.Requests {
			logger.Warningf("Rate limit exceeded for %s (count: %d)", key, count)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, entity.Msg{
				Msg: "Rate limit exceeded. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
