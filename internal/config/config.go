// Package config provides configuration management for l2domains.
//
// The config file holds how the tool runs (database, listen address, worker
// count, logging, snapshot watching). Analysis inputs never live here; they
// arrive as snapshots.
//
// Config file locations (priority order):
//  1. $L2DOMAINS_CONFIG
//  2. ./l2domains.yaml
//  3. ~/.config/l2domains/config.yaml
//  4. /etc/l2domains/config.yaml
//
// Environment variables override file values, see ApplyEnvironment.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDatabasePath    = "./l2domains.db"
	DefaultServerAddr      = ":8080"
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultWatchDebounce   = 500 * time.Millisecond
)

// Load finds and loads the config file, or returns defaults if none found.
// Environment overrides are applied in both cases.
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		cfg := DefaultConfig()
		if err := cfg.ApplyEnvironment(os.LookupEnv); err != nil {
			return nil, "", err
		}
		return cfg, "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.ApplyEnvironment(os.LookupEnv); err != nil {
		return nil, path, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(DefaultShutdownTimeout)
	}
	if c.Analysis.Workers <= 0 {
		c.Analysis.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	c.Logging.Format = ParseLogFormat(string(c.Logging.Format))
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = Duration(DefaultWatchDebounce)
	}
}

// Validate rejects combinations the server cannot start with
func (c *Config) Validate() error {
	var errs []error
	if c.Analysis.Timeout < 0 {
		errs = append(errs, fmt.Errorf("analysis.timeout must not be negative"))
	}
	if c.Watch.Enabled && c.Watch.Snapshot == "" {
		errs = append(errs, fmt.Errorf("watch.enabled requires watch.snapshot"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Database: %s, Listen: %s\n", c.Database.Path, c.Server.Addr)
	summary += fmt.Sprintf("Workers: %d, Log: %s/%s", c.Analysis.Workers, c.Logging.Level, c.Logging.Format)
	if c.Watch.Enabled {
		summary += fmt.Sprintf("\nWatching: %s (debounce %s)", c.Watch.Snapshot, c.Watch.Debounce.Duration())
	}
	return summary
}
