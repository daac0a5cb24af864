package middleware

import (
	"net/http"
	"strconv"

	"videocrawl/internal/model"
	"videocrawl/internal/service"
	"videocrawl/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitMiddleware creates a middleware for rate limiting
func RateLimitMiddleware(rateLimitService *service.RateLimitService, log *zap.Logger) gin.HandlerFunc {
	log = logger.OrNop(log)
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if !rateLimitService.IsAllowed(ip) {
			log.Warn("Request rejected", zap.String("ip", ip), zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, model.ErrorResponse{
				Error:   "rate_limit_exceeded",
				Message: "Too many requests. Please try again later.",
				Code:    http.StatusTooManyRequests,
			})
			return
		}

		if remaining := rateLimitService.GetRemaining(ip); remaining >= 0 {
			c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}

		c.Next()
	}
}
