package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateAdminToken(secret, "ops-1", time.Hour)
	require.NoError(t, err)

	sub, err := ExtractAdminSubject(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "ops-1", sub)

	_, err = ExtractAdminSubject([]byte("other-secret"), token)
	assert.Error(t, err)
}

func TestExtractAdminSubjectRejects(t *testing.T) {
	secret := []byte("test-secret")

	t.Run("expired", func(t *testing.T) {
		token, err := GenerateAdminToken(secret, "ops-1", -time.Minute)
		require.NoError(t, err)
		_, err = ExtractAdminSubject(secret, token)
		assert.Error(t, err)
	})

	t.Run("missing role", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "guest",
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString(secret)
		require.NoError(t, err)
		_, err = ExtractAdminSubject(secret, token)
		assert.Error(t, err)
	})

	t.Run("unconfigured secret", func(t *testing.T) {
		_, err := ExtractAdminSubject(nil, "anything")
		assert.Error(t, err)
	})
}
