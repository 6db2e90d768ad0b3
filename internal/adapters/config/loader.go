// Package config provides the process configuration loader.
package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Environment variable overrides, applied after the file is read.
const (
	EnvConfigPath   = "LOOM_CONFIG"
	EnvQueueBackend = "LOOM_QUEUE_BACKEND"
	EnvDatabaseURL  = "DATABASE_URL"
	EnvCatalogPath  = "LOOM_CATALOG"
)

// DefaultPath is where Load looks when LOOM_CONFIG is unset.
const DefaultPath = "loom.yaml"

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Queue: QueueConfig{
			Backend:      BackendMemory,
			Workers:      4,
			PollInterval: Duration(time.Second),
		},
		Cache: CacheConfig{
			MaxAge: Duration(domain.MaxCacheAge),
		},
	}
}

// Load reads the configuration file at path, overlaying a .env file and
// environment variables. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	// Best effort; a missing .env is the common case.
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by operator
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults plus env overrides.
	case err != nil:
		return nil, zerr.Wrap(err, "failed to read config file")
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, zerr.Wrap(err, "failed to parse config file")
		}
	}

	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if backend := os.Getenv(EnvQueueBackend); backend != "" {
		cfg.Queue.Backend = Backend(backend)
	}
	if url := os.Getenv(EnvDatabaseURL); url != "" {
		cfg.Database.URL = url
	}
	if path := os.Getenv(EnvCatalogPath); path != "" {
		cfg.Catalog.Path = path
	}
}

func validate(cfg *Config) error {
	switch cfg.Queue.Backend {
	case BackendMemory:
	case BackendPostgres:
		if cfg.Database.URL == "" {
			return zerr.New("postgres backend requires a database URL")
		}
	default:
		return zerr.With(zerr.New("unknown queue backend"), "backend", string(cfg.Queue.Backend))
	}

	if cfg.Queue.Workers <= 0 {
		cfg.Queue.Workers = 1
	}
	if cfg.Queue.PollInterval <= 0 {
		cfg.Queue.PollInterval = Duration(time.Second)
	}
	if cfg.Cache.MaxAge <= 0 {
		cfg.Cache.MaxAge = Duration(domain.MaxCacheAge)
	}
	return nil
}
