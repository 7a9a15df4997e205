package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit rejects requests beyond the limiter's budget with 429.
func RateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			abortJSON(c, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests; retry later")
			return
		}
		c.Next()
	}
}

// NewLimiter builds a limiter allowing perSec sustained requests with the
// given burst. A non-positive rate disables limiting.
func NewLimiter(perSec float64, burst int) *rate.Limiter {
	if perSec <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSec), burst)
}
