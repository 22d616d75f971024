package ratelimit

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/quality-culture-o-meter/internal/errors"
)

// IPRateLimitMiddleware rejects clients that exceed their per-minute budget
// with a rate_limit AppError.
func (rl *RateLimiter) IPRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		result := rl.AllowIP(c.ClientIP())

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			if rl.metrics != nil {
				rl.metrics.IncrementRateLimitIPBlock()
			}
			retry := int(math.Ceil(result.RetryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(retry))
			_ = c.Error(apperrors.NewRateLimitError(fmt.Sprintf("%ds", retry)))
			c.Abort()
			return
		}

		c.Next()
	}
}
