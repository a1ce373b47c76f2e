package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Aditya-max148/student-risk-dashboard/internal/application/dto"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/service"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

// RateLimit limits requests per minute in scope. Requests with a verified
// admin token are counted per subject, everything else per client IP.
// A limiter failure lets the request through.
func RateLimit(limiter service.RateLimitService, scope string, limitPerMinute int, metrics service.Metrics, log logger.Logger) gin.HandlerFunc {
	if metrics == nil {
		metrics = service.NoopMetrics{}
	}
	return func(c *gin.Context) {
		if limitPerMinute <= 0 {
			c.Next()
			return
		}

		identifier := AdminSubject(c)
		if identifier == "" {
			identifier = c.ClientIP()
		}

		allowed, remaining, resetAt, err := limiter.Allow(c.Request.Context(), scope, identifier, limitPerMinute)
		if err != nil {
			log.Error(c.Request.Context(), "rate limiter failed", err, logger.Fields{"scope": scope})
			c.Next() // Fail open
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limitPerMinute))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			metrics.RecordRateLimitHit(scope)
			retry := time.Until(resetAt)
			if retry < time.Second {
				retry = time.Second
			}
			c.Header("Retry-After", strconv.Itoa(int(retry.Seconds())))
			log.Warn(c.Request.Context(), "rate limit exceeded", logger.Fields{
				"scope":      scope,
				"identifier": identifier,
				"limit":      limitPerMinute,
			})
			dto.SendError(c, errors.ErrRateLimitExceeded(scope, limitPerMinute))
			return
		}

		c.Next()
	}
}
