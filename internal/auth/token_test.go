package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("test-secret", 60)
	token, expiresAt, err := tm.GenerateToken("mail-gateway")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "mail-gateway", claims.Service)
	require.Equal(t, "mail-gateway", claims.Subject)
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	token, _, err := NewTokenManager("secret-a", 60).GenerateToken("mail-gateway")
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", 60).ParseToken(token)
	require.Error(t, err)
}

func TestParseToken_Garbage(t *testing.T) {
	t.Parallel()

	_, err := NewTokenManager("test-secret", 60).ParseToken("not-a-token")
	require.Error(t, err)
}

func TestNewTokenManager_DefaultTTL(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("test-secret", 0)
	_, expiresAt, err := tm.GenerateToken("tracker")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)
}
