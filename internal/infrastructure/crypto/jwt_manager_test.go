package crypto

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aditya-max148/student-risk-dashboard/internal/config"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/constants"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
)

func newTestManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(config.AuthConfig{JWTSecret: "test-secret", Issuer: "student-risk", TokenTTL: 600})
	require.NoError(t, err)
	return m
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := newTestManager(t)

	token, err := m.GenerateJWT("admin@school.edu", constants.AdminRole, 0)
	require.NoError(t, err)

	claims, err := m.VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@school.edu", claims.Subject)
	assert.True(t, claims.HasRole(constants.AdminRole))
	assert.Equal(t, "student-risk", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := newTestManager(t)

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{
			name: "expired",
			token: func(t *testing.T) string {
				past := time.Now().Add(-2 * time.Hour)
				old := *m
				old.now = func() time.Time { return past }
				tok, err := old.GenerateJWT("a", constants.AdminRole, time.Minute)
				require.NoError(t, err)
				return tok
			},
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				other, err := NewJWTManager(config.AuthConfig{JWTSecret: "other", Issuer: "student-risk"})
				require.NoError(t, err)
				tok, err := other.GenerateJWT("a", constants.AdminRole, 0)
				require.NoError(t, err)
				return tok
			},
		},
		{
			name: "wrong issuer",
			token: func(t *testing.T) string {
				other, err := NewJWTManager(config.AuthConfig{JWTSecret: "test-secret", Issuer: "someone-else"})
				require.NoError(t, err)
				tok, err := other.GenerateJWT("a", constants.AdminRole, 0)
				require.NoError(t, err)
				return tok
			},
		},
		{
			name: "none algorithm",
			token: func(t *testing.T) string {
				tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, AdminClaims{Role: constants.AdminRole}).
					SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)
				return tok
			},
		},
		{
			name:  "garbage",
			token: func(*testing.T) string { return "not-a-jwt" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.VerifyJWT(tt.token(t))
			require.Error(t, err)
			assert.Equal(t, 401, errors.StatusOf(err))
		})
	}
}

func TestNewJWTManager_RequiresSecret(t *testing.T) {
	_, err := NewJWTManager(config.AuthConfig{})
	assert.Error(t, err)
}
