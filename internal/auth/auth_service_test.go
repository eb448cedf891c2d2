package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, ttl time.Duration) *AuthService {
	t.Helper()
	priv, pub, err := GenerateKeyPair(1024)
	require.NoError(t, err)
	svc, err := NewAuthService(priv, pub, ttl)
	require.NoError(t, err)
	return svc
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestService(t, time.Hour)

	token, err := svc.GenerateToken("client-1")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "client-1", claims.ClientID)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken_Rejects(t *testing.T) {
	svc := newTestService(t, time.Hour)
	other := newTestService(t, time.Hour)

	_, err := svc.ValidateToken("")
	assert.Error(t, err)

	foreign, err := other.GenerateToken("client-1")
	require.NoError(t, err)
	_, err = svc.ValidateToken(foreign)
	assert.Error(t, err, "token signed by another key")

	expired := newTestService(t, -time.Minute)
	stale, err := expired.GenerateToken("client-1")
	require.NoError(t, err)
	_, err = expired.ValidateToken(stale)
	assert.Error(t, err)
}

func TestGenerateToken_RequiresClientID(t *testing.T) {
	svc := newTestService(t, time.Hour)
	_, err := svc.GenerateToken("")
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("password")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("password", hash))
	assert.False(t, CheckPasswordHash("Password", hash))
}

func TestLoadOrGenerateKeys_Missing(t *testing.T) {
	dir := t.TempDir()
	priv, pub, generated, err := LoadOrGenerateKeys(filepath.Join(dir, "a.pem"), filepath.Join(dir, "b.pem"))
	require.NoError(t, err)
	assert.True(t, generated)

	_, err = NewAuthService(priv, pub, time.Hour)
	assert.NoError(t, err)
}
