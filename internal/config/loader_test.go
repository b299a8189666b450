package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  port: 8080
  mode: "debug"
database:
  host: "localhost"
  port: 5432
  user: "user"
  password: "password"
  db_name: "iie"
  max_conns: 25
redis:
  addr: "localhost:6379"
registry:
  endpoints:
    - name: "fda"
      base_url: "https://api.fda.gov"
      enabled: true
  max_concurrent_calls: 8
resilience:
  failure_threshold: 5
  retry_strategy: "exponential"
worker:
  concurrency: 10
log:
  level: "info"
  format: "json"
`

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	path := writeTempConfig(t, validConfigYAML)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Len(t, cfg.Registry.Endpoints, 1)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidConfigFailsValidation(t *testing.T) {
	path := writeTempConfig(t, "server:\n  port: 99999\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFromEnv_EnvVarOverride(t *testing.T) {
	t.Setenv("IIE_DATABASE_HOST", "db-host")
	t.Setenv("IIE_DATABASE_USER", "env-user")
	t.Setenv("IIE_DATABASE_DB_NAME", "env-db")
	t.Setenv("IIE_REDIS_ADDR", "redis-host:6379")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "db-host", cfg.Database.Host)
	assert.Equal(t, "env-user", cfg.Database.User)
	assert.Equal(t, "env-db", cfg.Database.DBName)
	assert.Equal(t, "redis-host:6379", cfg.Redis.Addr)
}

func TestLoadFromEnv_AppliesDefaults(t *testing.T) {
	t.Setenv("IIE_DATABASE_USER", "env-user")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultDBHost, cfg.Database.Host)
	assert.NotEmpty(t, cfg.Registry.Endpoints)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "missing.yaml"))
	})
}

func TestMustLoad_Succeeds(t *testing.T) {
	path := writeTempConfig(t, validConfigYAML)
	assert.NotPanics(t, func() {
		cfg := MustLoad(path)
		assert.NotNil(t, cfg)
	})
}

func TestWatch_DoesNotPanicOnStart(t *testing.T) {
	path := writeTempConfig(t, validConfigYAML)
	assert.NotPanics(t, func() {
		Watch(path, func(cfg *Config) {})
	})
}
