package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Aditya-max148/student-risk-dashboard/internal/application/dto"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

const (
	// HeaderIdempotencyKey lets a client retry a POST without repeating its effect.
	HeaderIdempotencyKey = "Idempotency-Key"

	idempotencyKeyPrefix = "student-risk:idempotency:"
)

// Idempotency rejects a replayed POST with 409 when the caller sends the same
// Idempotency-Key twice within ttl. Requests without the header pass through.
// A nil client or a Redis failure lets the request through.
// 幂等中间件：防止重复发送预警或重复导入。
func Idempotency(client redis.UniversalClient, ttl time.Duration, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
		if client == nil || key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		if len(key) > 128 {
			dto.SendError(c, errors.Invalid("Idempotency-Key", "must be at most 128 characters"))
			return
		}

		// SETNX is atomic, so two concurrent replays cannot both pass.
		redisKey := idempotencyKeyPrefix + routePath(c) + ":" + key
		isNew, err := client.SetNX(c.Request.Context(), redisKey, time.Now().UTC().Format(time.RFC3339), ttl).Result()
		if err != nil {
			log.Error(c.Request.Context(), "idempotency check failed", err)
			c.Next()
			return
		}
		if !isNew {
			log.Warn(c.Request.Context(), "replayed request rejected", logger.Fields{"route": routePath(c)})
			dto.SendError(c, errors.ErrConflict("request with this Idempotency-Key was already processed"))
			return
		}

		c.Next()

		// A failed request may be retried with the same key. The release must
		// survive a client that already hung up.
		if c.Writer.Status() >= http.StatusBadRequest {
			releaseCtx := context.WithoutCancel(c.Request.Context())
			if err := client.Del(releaseCtx, redisKey).Err(); err != nil {
				log.Warn(releaseCtx, "failed to release idempotency key", logger.Fields{"error": err.Error()})
			}
		}
	}
}
