package handler

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/chat-auth/internal/dto"
	"github.com/prperemyshlev/chat-auth/internal/service"
	"go.uber.org/zap"
)

// RateLimitMiddleware rejects requests over limit per window with 429.
// Limiter failures let the request through.
func RateLimitMiddleware(rateLimiter *service.RateLimiter, limit int, window time.Duration, keyFunc func(*gin.Context) string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		decision, err := rateLimiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn("Rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error:   "Too Many Requests",
				Message: "Rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}

// IPBasedKey extracts rate limit key from client IP. Forwarding headers are
// honoured only for the engine's trusted proxies.
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}

// RouteAndIPKey scopes the client IP to the route so login and Google
// callbacks are limited separately.
func RouteAndIPKey(c *gin.Context) string {
	return c.FullPath() + ":" + IPBasedKey(c)
}
