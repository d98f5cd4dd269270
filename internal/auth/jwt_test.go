package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Hour)

	token, expiresAt, err := mgr.GenerateToken(42, "asha@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	userID, claims, err := mgr.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), userID)
	assert.Equal(t, "asha@example.com", claims.Email)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	mgr := NewJWTManager("secret-a", time.Hour)
	token, _, err := mgr.GenerateToken(1, "a@b.c")
	require.NoError(t, err)

	other := NewJWTManager("secret-b", time.Hour)
	_, _, err = other.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	mgr := NewJWTManager("secret", -time.Minute)
	token, _, err := mgr.GenerateToken(1, "a@b.c")
	require.NoError(t, err)

	_, _, err = mgr.VerifyToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.NoError(t, CheckPassword(hash, "s3cret"))
	assert.Error(t, CheckPassword(hash, "wrong"))
}
