package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exampay/internal/config"
)

func TestTokenRoundTrip(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "exampay", ExpiryMinutes: 60}

	token, err := GenerateToken(cfg, 42)
	require.NoError(t, err)

	claims, err := ParseToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "exampay", claims.Issuer)
}

func TestParseTokenWrongSecret(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "exampay", ExpiryMinutes: 60}

	token, err := GenerateToken(cfg, 42)
	require.NoError(t, err)

	cfg.Secret = "other-secret"
	_, err = ParseToken(cfg, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenExpired(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "exampay", ExpiryMinutes: -1}

	token, err := GenerateToken(cfg, 42)
	require.NoError(t, err)

	_, err = ParseToken(cfg, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenGarbage(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret"}
	_, err := ParseToken(cfg, "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
