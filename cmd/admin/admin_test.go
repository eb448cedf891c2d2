package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locallift/internal/auth"
)

func TestTokenCommand(t *testing.T) {
	dir := t.TempDir()
	privatePEM, publicPEM, err := auth.GenerateKeyPair(1024)
	require.NoError(t, err)
	privatePath := filepath.Join(dir, "private.pem")
	publicPath := filepath.Join(dir, "public.pem")
	require.NoError(t, os.WriteFile(privatePath, privatePEM, 0o600))
	require.NoError(t, os.WriteFile(publicPath, publicPEM, 0o644))
	t.Setenv("AUTH_PRIVATE_KEY_PATH", privatePath)
	t.Setenv("AUTH_PUBLIC_KEY_PATH", publicPath)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"token", "--client", "client-42"})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "client: client-42")

	var token string
	for _, line := range strings.Split(out.String(), "\n") {
		if rest, ok := strings.CutPrefix(line, "token:  "); ok {
			token = rest
		}
	}
	require.NotEmpty(t, token)

	// The minted token verifies against the key pair on disk.
	svc, err := auth.NewAuthService(privatePEM, publicPEM, time.Hour)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "client-42", claims.ClientID)
}

func TestTokenCommand_RefusesWithoutKeyFiles(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AUTH_PRIVATE_KEY_PATH", filepath.Join(dir, "private.pem"))
	t.Setenv("AUTH_PUBLIC_KEY_PATH", filepath.Join(dir, "public.pem"))

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"token", "--client", "client-42"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no signing keys")
}

func TestShowRejectsMemoryDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	rootCmd.SetArgs([]string{"show", "--client", "client-42"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memory driver")
}
