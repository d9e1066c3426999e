package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Logging  LoggingConfig  `yaml:"logging"`
	Watch    WatchConfig    `yaml:"watch"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// AnalysisConfig tunes broadcast-domain computation
type AnalysisConfig struct {
	// Workers bounds concurrent per-interface searches; 1 runs sequentially
	Workers int `yaml:"workers"`
	// Timeout caps a single analysis; zero means no limit
	Timeout Duration `yaml:"timeout,omitempty"`
}

// LoggingConfig selects the log level and encoding
type LoggingConfig struct {
	Level  string    `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// WatchConfig controls re-analysis when a snapshot directory changes
type WatchConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Snapshot string   `yaml:"snapshot,omitempty"` // snapshot directory to watch
	Debounce Duration `yaml:"debounce"`
}

// LogFormat is the log encoding
type LogFormat string

const (
	LogFormatConsole LogFormat = "console" // human readable
	LogFormatJSON    LogFormat = "json"
)

// ParseLogFormat converts a string to LogFormat, defaulting to LogFormatConsole
func ParseLogFormat(s string) LogFormat {
	switch s {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatConsole
	}
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
