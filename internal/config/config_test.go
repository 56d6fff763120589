package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps Load away from the developer's real home and .env.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv(EnvConfigPath, "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://admin.example.com/api/
  timeout: 10s
session:
  backend: Redis
  redis_addr: cache:6379
ui:
  message_ttl: 100ms
log:
  level: DEBUG
`), 0o600))
	t.Setenv("ADMINPANEL_SESSION_REDIS_ADDR", "other:6380")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://admin.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, BackendRedis, cfg.Session.Backend)
	assert.Equal(t, "other:6380", cfg.Session.RedisAddr)
	assert.Equal(t, "adminpanel:", cfg.Session.RedisPrefix, "defaults survive a partial file")
	assert.Equal(t, 5*time.Second, cfg.UI.MessageTTL, "sub-second TTL is raised to the default")
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	isolate(t)
	t.Setenv("ADMINPANEL_SESSION_BACKEND", "floppy")

	_, err := Load("")
	assert.ErrorContains(t, err, "invalid session backend")
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ADMINPANEL_API_BASE_URL=http://dotenv:9000/api\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("ADMINPANEL_API_BASE_URL") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://dotenv:9000/api", cfg.API.BaseURL)
}
