package config

import (
	"fmt"
	"strconv"
	"time"
)

// Environment variables that override file values
const (
	EnvLogLevel  = "L2DOMAINS_LOG_LEVEL"
	EnvLogFormat = "L2DOMAINS_LOG_FORMAT"
	EnvDatabase  = "L2DOMAINS_DB"
	EnvAddr      = "L2DOMAINS_ADDR"
	EnvWorkers   = "L2DOMAINS_WORKERS"
	EnvSnapshot  = "L2DOMAINS_WATCH_SNAPSHOT"
	EnvTimeout   = "L2DOMAINS_ANALYSIS_TIMEOUT"
)

// LookupFunc matches os.LookupEnv
type LookupFunc func(key string) (string, bool)

// envOverride applies one variable to the config
type envOverride struct {
	Key   string
	Apply func(c *Config, value string) error
}

var envOverrides = []envOverride{
	{Key: EnvLogLevel, Apply: func(c *Config, v string) error {
		c.Logging.Level = v
		return nil
	}},
	{Key: EnvLogFormat, Apply: func(c *Config, v string) error {
		c.Logging.Format = ParseLogFormat(v)
		return nil
	}},
	{Key: EnvDatabase, Apply: func(c *Config, v string) error {
		c.Database.Path = v
		return nil
	}},
	{Key: EnvAddr, Apply: func(c *Config, v string) error {
		c.Server.Addr = v
		return nil
	}},
	{Key: EnvWorkers, Apply: func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("must be a positive integer, got %q", v)
		}
		c.Analysis.Workers = n
		return nil
	}},
	{Key: EnvSnapshot, Apply: func(c *Config, v string) error {
		c.Watch.Snapshot = v
		c.Watch.Enabled = true
		return nil
	}},
	{Key: EnvTimeout, Apply: func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		c.Analysis.Timeout = Duration(d)
		return nil
	}},
}

// ApplyEnvironment overrides config values from environment variables. Empty
// values are ignored.
func (c *Config) ApplyEnvironment(lookup LookupFunc) error {
	for _, o := range envOverrides {
		v, ok := lookup(o.Key)
		if !ok || v == "" {
			continue
		}
		if err := o.Apply(c, v); err != nil {
			return fmt.Errorf("%s: %w", o.Key, err)
		}
	}
	return nil
}
