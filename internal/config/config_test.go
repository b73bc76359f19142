package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
	for _, k := range []string{
		"PORT", "DB_TYPE", "DB_HOST", "DB_PORT", "DB_DATABASE", "DB_USER", "DB_PASSWORD",
		"AUTHZ_URL", "AUTHZ_CLIENT_ID", "SESSION_SECRET", "SESSION_TTL", "SETTINGS_CACHE_TTL",
		"PROJECTS_CACHE_TTL", "DB_CONNECTION_LIMIT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadWithoutBackendIsNotAnError(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Ready())
	assert.Equal(t, []string{"DB_DATABASE", "DB_HOST", "AUTHZ_URL", "AUTHZ_CLIENT_ID"}, cfg.MissingKeys())
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, 60*time.Second, cfg.SettingsCacheTTL)
	assert.Equal(t, 30*time.Second, cfg.ProjectsCacheTTL)
	assert.True(t, cfg.SessionSecretGenerated)
	assert.Len(t, cfg.SessionSecret, 64)
}

func TestReadySQLiteNeedsNoHost(t *testing.T) {
	isolate(t)
	t.Setenv("DB_TYPE", "sqlite-pure")
	t.Setenv("DB_DATABASE", "site.db")
	t.Setenv("AUTHZ_URL", "http://localhost:8080")
	t.Setenv("AUTHZ_CLIENT_ID", "client")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Ready())
	assert.Empty(t, cfg.MissingKeys())
}

func TestEnvFileAndDurations(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "site.env")
	require.NoError(t, os.WriteFile(path, []byte("SESSION_TTL=90\nSETTINGS_CACHE_TTL=2m\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	// godotenv does not override variables that are already present, even when empty.
	require.NoError(t, os.Unsetenv("SESSION_TTL"))
	require.NoError(t, os.Unsetenv("SETTINGS_CACHE_TTL"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.SessionTTL)
	assert.Equal(t, 2*time.Minute, cfg.SettingsCacheTTL)
}

func TestMalformedNumbersFail(t *testing.T) {
	isolate(t)
	t.Setenv("RATE_LIMIT_RPS", "lots")

	_, err := Load()
	assert.ErrorContains(t, err, "RATE_LIMIT_RPS")
}
