package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/cityaid-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 5)

	token, expiresAt, err := tm.GenerateToken("alice", domain.CityPune, domain.TeamAlpha)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.Equal(t, "PUN", claims.City)
	require.Equal(t, "ALPHA", claims.Team)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 5).GenerateToken("alice", domain.CityPune, domain.TeamAlpha)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", 5).ParseToken(token)
	require.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 5)
	_, err := tm.ParseToken("not-a-token")
	require.Error(t, err)
}
