package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"caretime/apierr"
	"caretime/ratelimit"
)

// RateLimit applies guard's fixed-window counter to every request, scoped
// by source address, aborting with a §7 RateLimited response on exhaustion.
// Adapted from the teacher's middleware/rate_limiter.go gin-wrapper shape.
func RateLimit(guard *ratelimit.Guard, scope string, window ratelimit.Window, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := guard.Allow(c.Request.Context(), scope, ClientIP(c), window); err != nil {
			apierr.Respond(c, logger, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
