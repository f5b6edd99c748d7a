package jwt

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken(userID, "cashier1", "Test Cashier", "cashier")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "cashier1", claims.Username)
	assert.Equal(t, "Test Cashier", claims.Name)
	assert.Equal(t, "cashier", claims.Role)
	assert.Equal(t, "go-retail-pos", claims.Issuer)
}

func TestValidateToken_Invalid(t *testing.T) {
	t.Run("garbage", func(t *testing.T) {
		_, err := ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("tampered", func(t *testing.T) {
		token, err := GenerateToken(uuid.New(), "u", "n", "cashier")
		require.NoError(t, err)
		_, err = ValidateToken(token + "x")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "first-secret")
		token, err := GenerateToken(uuid.New(), "u", "n", "cashier")
		require.NoError(t, err)

		t.Setenv("JWT_SECRET", "second-secret")
		_, err = ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
