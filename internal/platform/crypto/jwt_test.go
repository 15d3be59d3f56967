package crypto

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken_WithJTI(t *testing.T) {
	token, jti, err := GenerateToken("test-secret", "acc-1", 24*time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, jti)

	claims, err := ParseToken("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "acc-1", claims.Sub)
}

func TestGenerateToken_UniqueJTI(t *testing.T) {
	_, a, err := GenerateToken("test-secret", "acc-1", time.Hour)
	require.NoError(t, err)
	_, b, err := GenerateToken("test-secret", "acc-1", time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestParseToken_Rejects(t *testing.T) {
	t.Run("wrong secret", func(t *testing.T) {
		token, _, err := GenerateToken("test-secret", "acc-1", time.Hour)
		require.NoError(t, err)
		_, err = ParseToken("other-secret", token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		token, _, err := GenerateToken("test-secret", "acc-1", -time.Minute)
		require.NoError(t, err)
		_, err = ParseToken("test-secret", token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseToken("test-secret", "not-a-token")
		assert.Error(t, err)
	})
}
