package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("tajneheslo123")

	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("tajneheslo123", hash))
	assert.False(t, CheckPasswordHash("spatneheslo", hash))
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("user-1", "eva@example.com", "Eva", "Mala", true)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "eva@example.com", claims.Email)
	assert.Equal(t, "Eva", claims.FirstName)
	assert.Equal(t, "Mala", claims.LastName)
	assert.True(t, claims.IsTreasurer)
	assert.Equal(t, "classfund", claims.Issuer)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	_, err := ValidateJWT("not-a-token")

	assert.Error(t, err)
}
