package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stemsi/wma-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testAuthService(expiry time.Duration) *AuthService {
	return NewAuthService(&config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  expiry,
		BcryptCost: bcrypt.MinCost,
	}, nil)
}

func TestPasswordHashing(t *testing.T) {
	s := testAuthService(time.Hour)

	hash, err := s.HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.NoError(t, s.CheckPassword(hash, "password123"))
	assert.ErrorIs(t, s.CheckPassword(hash, "password124"), ErrInvalidCredentials)
}

func TestAdminTokenRoundTrip(t *testing.T) {
	s := testAuthService(time.Hour)

	token, err := s.GenerateAdminToken(3, 1, []string{"students:read", "results:write"})
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAdmin, claims.TokenType)
	assert.Equal(t, 3, claims.UserID)
	assert.Equal(t, 1, claims.RoleID)
	assert.Equal(t, "3", claims.Subject)
	assert.Equal(t, []string{"students:read", "results:write"}, claims.Permissions)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateTokenRejects(t *testing.T) {
	s := testAuthService(time.Hour)
	token, err := s.GenerateAdminToken(3, 1, nil)
	require.NoError(t, err)

	t.Run("other secret", func(t *testing.T) {
		other := NewAuthService(&config.Config{JWTSecret: "another-secret", JWTExpiry: time.Hour}, nil)
		_, err := other.ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		expired, err := testAuthService(-time.Minute).GenerateAdminToken(3, 1, nil)
		require.NoError(t, err)
		_, err = s.ValidateToken(expired)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.ValidateToken("not.a.jwt")
		assert.Error(t, err)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 3, TokenType: TokenTypeAdmin}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = s.ValidateToken(unsigned)
		assert.Error(t, err)
	})
}
