package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestTokenVerifier_Verify(t *testing.T) {
	v := NewTokenVerifier("s3cret", "mudi")

	t.Run("有效令牌", func(t *testing.T) {
		tok := sign(t, "s3cret", Claims{
			UserID: "u-1",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "mudi",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		claims, err := v.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, "u-1", claims.UserID)
	})

	t.Run("过期令牌", func(t *testing.T) {
		tok := sign(t, "s3cret", Claims{
			UserID: "u-1",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "mudi",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		})
		_, err := v.Verify(tok)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("密钥错误", func(t *testing.T) {
		tok := sign(t, "other", Claims{UserID: "u-1", RegisteredClaims: jwt.RegisteredClaims{Issuer: "mudi"}})
		_, err := v.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("签发者不符", func(t *testing.T) {
		tok := sign(t, "s3cret", Claims{UserID: "u-1", RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone"}})
		_, err := v.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("缺少 user_id", func(t *testing.T) {
		tok := sign(t, "s3cret", Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "mudi"}})
		_, err := v.Verify(tok)
		assert.ErrorIs(t, err, ErrMissingClaim)
	})
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	_, ok = BearerToken("Basic abc")
	assert.False(t, ok)

	_, ok = BearerToken("Bearer ")
	assert.False(t, ok)
}
