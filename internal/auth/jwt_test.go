package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signHS256(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestValidateHS256(t *testing.T) {
	v, err := NewJWTValidatorHS256("secret")
	require.NoError(t, err)

	token := signHS256(t, "secret", jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	userID, err := v.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestValidateFallsBackToUserIDClaim(t *testing.T) {
	v, err := NewJWTValidatorHS256("secret")
	require.NoError(t, err)

	token := signHS256(t, "secret", jwt.MapClaims{
		"user_id": "u7",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	userID, err := v.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u7", userID)
}

func TestValidateRejects(t *testing.T) {
	v, err := NewJWTValidatorHS256("secret")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		token := signHS256(t, "other", jwt.MapClaims{"sub": "u1"})
		_, err := v.Validate(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		token := signHS256(t, "secret", jwt.MapClaims{
			"sub": "u1",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})
		_, err := v.Validate(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.Validate("not.a.token")
		assert.Error(t, err)
	})

	t.Run("no user claim", func(t *testing.T) {
		token := signHS256(t, "secret", jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		_, err := v.Validate(token)
		assert.Error(t, err)
	})
}

func TestEmptySecretRejected(t *testing.T) {
	_, err := NewJWTValidatorHS256("")
	assert.Error(t, err)
}
