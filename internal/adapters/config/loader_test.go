package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/loom/internal/adapters/config"
	"go.trai.ch/loom/internal/core/domain"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, config.BackendMemory, cfg.Queue.Backend)
	assert.Equal(t, 4, cfg.Queue.Workers)
	assert.Equal(t, time.Second, cfg.Queue.PollInterval.Std())
	assert.Equal(t, domain.MaxCacheAge, cfg.Cache.MaxAge.Std())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loom.yaml")
	content := `
queue:
  backend: postgres
  workers: 8
  pollInterval: 250ms
database:
  url: postgres://localhost/loom
cache:
  maxAge: 1h
telemetry:
  enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, config.BackendPostgres, cfg.Queue.Backend)
	assert.Equal(t, 8, cfg.Queue.Workers)
	assert.Equal(t, 250*time.Millisecond, cfg.Queue.PollInterval.Std())
	assert.Equal(t, "postgres://localhost/loom", cfg.Database.URL)
	assert.Equal(t, time.Hour, cfg.Cache.MaxAge.Std())
	assert.True(t, cfg.Telemetry.Enabled)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("queue:\n  backend: memory\n"), 0o600))

	t.Setenv(config.EnvQueueBackend, "postgres")
	t.Setenv(config.EnvDatabaseURL, "postgres://env/loom")
	t.Setenv(config.EnvCatalogPath, "custom.yaml")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, config.BackendPostgres, cfg.Queue.Backend)
	assert.Equal(t, "postgres://env/loom", cfg.Database.URL)
	assert.Equal(t, "custom.yaml", cfg.Catalog.Path)
}

func TestLoadPostgresRequiresURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("queue:\n  backend: postgres\n"), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database URL")
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("queue:\n  backend: redis\n"), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown queue backend")
}

func TestLoadClampsTuning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loom.yaml")
	content := `
queue:
  backend: memory
  workers: -2
  pollInterval: -5s
cache:
  maxAge: -1h
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Queue.Workers)
	assert.Equal(t, time.Second, cfg.Queue.PollInterval.Std())
	assert.Equal(t, domain.MaxCacheAge, cfg.Cache.MaxAge.Std())
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("queue: ["), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
}
