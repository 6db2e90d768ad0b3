package config

import (
	"time"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Duration decodes YAML strings like "250ms" or "24h".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return zerr.Wrap(err, "duration must be a string")
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return zerr.Wrap(err, "invalid duration")
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Backend selects the job queue and storage backend.
type Backend string

const (
	// BackendMemory is the single-process in-memory backend. All state is
	// lost on restart.
	BackendMemory Backend = "memory"
	// BackendPostgres is the durable backend supporting many concurrent
	// workers per queue.
	BackendPostgres Backend = "postgres"
)

// Config is the process configuration, decided once at startup.
type Config struct {
	Queue     QueueConfig     `yaml:"queue"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// QueueConfig holds the backend choice and worker tuning.
type QueueConfig struct {
	Backend Backend `yaml:"backend"`

	// Workers is the number of concurrent pollers per queue on the durable
	// backend. Ignored by the memory backend, which serializes execution.
	Workers int `yaml:"workers"`

	// PollInterval is how long a durable-backend worker sleeps when the
	// queue is empty.
	PollInterval Duration `yaml:"pollInterval"`
}

// DatabaseConfig holds the postgres connection settings.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// CacheConfig holds context cache settings.
type CacheConfig struct {
	MaxAge Duration `yaml:"maxAge"`
}

// CatalogConfig points at the resource catalog definition file.
type CatalogConfig struct {
	// Path to a catalog YAML file. Empty loads the embedded default.
	Path string `yaml:"path"`
}

// TelemetryConfig toggles trace export.
type TelemetryConfig struct {
	Enabled bool `yaml:"enabled"`
}
