package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Aditya-max148/student-risk-dashboard/internal/application/dto"
	"github.com/Aditya-max148/student-risk-dashboard/internal/infrastructure/crypto"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/constants"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

// TokenVerifier verifies an admin bearer token.
type TokenVerifier interface {
	VerifyJWT(tokenString string) (*crypto.AdminClaims, error)
}

// extractBearer extracts the token from the Authorization header.
func extractBearer(authHeader string) string {
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// RequireAdmin protects a route with a valid admin JWT.
// 管理员鉴权中间件。
func RequireAdmin(verifier TokenVerifier, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractBearer(c.GetHeader("Authorization"))
		if tokenStr == "" {
			dto.SendError(c, errors.ErrUnauthorized("bearer token required"))
			return
		}

		claims, err := verifier.VerifyJWT(tokenStr)
		if err != nil {
			log.Warn(c.Request.Context(), "JWT verification failed", logger.Fields{"error": err.Error()})
			dto.SendError(c, err)
			return
		}
		if !claims.HasRole(constants.AdminRole) {
			log.Warn(c.Request.Context(), "Non-admin token on admin route", logger.Fields{"sub": claims.Subject, "role": claims.Role})
			dto.SendError(c, errors.ErrForbidden("admin role required"))
			return
		}

		c.Set(string(constants.ContextKeyClaims), claims)
		c.Next()
	}
}

// AdminSubject returns the subject of the verified admin token, or "".
func AdminSubject(c *gin.Context) string {
	v, ok := c.Get(string(constants.ContextKeyClaims))
	if !ok {
		return ""
	}
	claims, ok := v.(*crypto.AdminClaims)
	if !ok {
		return ""
	}
	return claims.Subject
}
