package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("TOKEN_ENCRYPTION_KEY", "")
	t.Setenv("TOKEN_STORAGE", "")
	t.Setenv("BACKEND_TIMEOUT_SECONDS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageLocal, cfg.Storage.Backend)
	assert.Equal(t, 2*time.Minute, cfg.Backend.Timeout())
	assert.Equal(t, 3, cfg.Backend.RetryCount)
	assert.Equal(t, time.Second, cfg.Backend.RetryDelay())
	assert.Equal(t, "/home", cfg.Auth.AuthenticatedEntryPath)
	assert.Equal(t, "/access-denied", cfg.Auth.AccessDeniedPath)
	assert.Equal(t, "redirectUrl", cfg.Auth.RedirectURLKey)
	assert.True(t, cfg.Auth.AuthorityOpenDefault)
	assert.Equal(t, []string{"user"}, cfg.OAuth.DefaultAuthority)
	assert.Equal(t, 24*time.Hour, cfg.Storage.Cookie.Expiry())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("TOKEN_STORAGE", "Cookie")
	t.Setenv("COOKIE_SAME_SITE", "lax")
	t.Setenv("COOKIE_EXPIRES_DAYS", "7")
	t.Setenv("AUTHORITY_OPEN_DEFAULT", "false")
	t.Setenv("OAUTH_DEFAULT_AUTHORITY", "seller, content-management,")
	t.Setenv("SESSION_STATE_BACKEND", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageCookie, cfg.Storage.Backend)
	assert.Equal(t, "lax", cfg.Storage.Cookie.SameSite)
	assert.Equal(t, 7*24*time.Hour, cfg.Storage.Cookie.Expiry())
	assert.False(t, cfg.Auth.AuthorityOpenDefault)
	assert.Equal(t, []string{"seller", "content-management"}, cfg.OAuth.DefaultAuthority)
	assert.Equal(t, StateMemory, cfg.Session.State)
}

func TestLoadRejectsUnknownBackends(t *testing.T) {
	t.Setenv("TOKEN_STORAGE", "indexeddb")
	_, err := Load()
	assert.ErrorContains(t, err, "TOKEN_STORAGE")

	t.Setenv("TOKEN_STORAGE", "session")
	t.Setenv("COOKIE_SAME_SITE", "sometimes")
	_, err = Load()
	assert.ErrorContains(t, err, "COOKIE_SAME_SITE")
}

func TestLoadRejectsDevelopmentSecretsOutsideDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("TOKEN_ENCRYPTION_KEY", "")
	_, err := Load()
	assert.ErrorContains(t, err, "AUTH_JWT_SECRET")

	t.Setenv("AUTH_JWT_SECRET", "a-real-secret")
	t.Setenv("TOKEN_ENCRYPTION_KEY", "dev-secret")
	_, err = Load()
	assert.ErrorContains(t, err, "TOKEN_ENCRYPTION_KEY")

	t.Setenv("TOKEN_ENCRYPTION_KEY", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "a-real-secret", cfg.Storage.EncryptionKey)
	assert.Equal(t, "production", cfg.App.Env)
}
