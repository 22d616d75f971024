package ratelimit

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HandleRateLimitStatus reports the limits that apply to the requesting
// client.
func (rl *RateLimiter) HandleRateLimitStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ip": c.ClientIP(),
			"limits": gin.H{
				"requests_per_minute": rl.config.RequestsPerMinute,
				"burst":               rl.config.Burst,
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}
