package crypto

import (
	"github.com/golang-jwt/jwt/v5"
)

// AdminClaims are the claims carried by an admin access token.
// AdminClaims 管理员令牌声明。
type AdminClaims struct {
	// Role must equal constants.AdminRole for the admin endpoints.
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// HasRole reports whether the token grants role.
func (c *AdminClaims) HasRole(role string) bool {
	return c != nil && c.Role == role
}
