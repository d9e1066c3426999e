// Package logging builds the zap loggers used by the server and the CLI.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLevel overrides Options.Level when set
const EnvLevel = "L2DOMAINS_LOG_LEVEL"

// Options selects level and encoding
type Options struct {
	Level string
	// JSON selects the JSON encoder; otherwise a console encoder is used
	JSON bool
	// Development adds caller and stack traces on warnings
	Development bool
}

type options struct {
	hook func(zapcore.Entry) error
}

// Option tweaks logger construction
type Option func(o *options)

// WithEntryHook calls fn for every emitted entry, e.g. to count entries per level
func WithEntryHook(fn func(zapcore.Entry) error) Option {
	return func(o *options) {
		o.hook = fn
	}
}

func (o *options) zapOptions() []zap.Option {
	var zapOpts []zap.Option
	if o.hook != nil {
		zapOpts = append(zapOpts, zap.Hooks(o.hook))
	}
	return zapOpts
}

// ParseLevel parses a level name; the empty string means info
func ParseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return lvl, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}

// New builds a logger writing to stderr
func New(o Options, opts ...Option) (*zap.Logger, error) {
	return NewWithSink(o, zapcore.Lock(os.Stderr), opts...)
}

// NewWithSink builds a logger writing to sink
func NewWithSink(o Options, sink zapcore.WriteSyncer, opts ...Option) (*zap.Logger, error) {
	levelName := o.Level
	if env := os.Getenv(EnvLevel); env != "" {
		levelName = env
	}
	lvl, err := ParseLevel(levelName)
	if err != nil {
		return nil, err
	}

	var encCfg zapcore.EncoderConfig
	if o.Development {
		encCfg = zap.NewDevelopmentEncoderConfig()
	} else {
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	var enc zapcore.Encoder
	if o.JSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	var applied options
	for _, opt := range opts {
		opt(&applied)
	}
	zapOpts := applied.zapOptions()
	if o.Development {
		zapOpts = append(zapOpts, zap.AddCaller(), zap.AddStacktrace(zapcore.WarnLevel))
	}

	return zap.New(zapcore.NewCore(enc, sink, zap.NewAtomicLevelAt(lvl)), zapOpts...), nil
}
