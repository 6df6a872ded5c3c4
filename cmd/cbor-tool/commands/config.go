// Package commands implements the cbor-tool CLI commands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mash-protocol/cbor-go/internal/conformance"
	"github.com/mash-protocol/cbor-go/pkg/log"
	"github.com/mash-protocol/cbor-go/pkg/wire"
)

// Config is the optional cbor-tool configuration file.
//
//	limits:
//	  max_nested_levels: 16
//	  max_string_len: 1048576
//	trace: /tmp/cbor.ctrace
//	log_level: debug
type Config struct {
	// Limits override the decoder defaults.
	Limits conformance.Limits `yaml:"limits"`

	// Trace is a trace file that receives one event per value read or
	// written. Empty disables tracing.
	Trace string `yaml:"trace"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

// LoadConfig reads a YAML config file. An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{LogLevel: "info"}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseLogLevel parses a log level name (case-insensitive).
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", s)
	}
	return level, nil
}

// NewLogger returns a text slog.Logger writing to w at the given level.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	l, err := ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

// Env holds the codec modes shared by the commands. Close it to flush the
// trace file.
type Env struct {
	Dec    wire.DecMode
	Enc    wire.EncMode
	Logger *slog.Logger

	trace *log.FileLogger
}

// NewEnv builds codec modes from cfg. Events are traced to cfg.Trace when
// set, stamped with source, and to logger when it is enabled for debug.
func NewEnv(cfg *Config, source string, logger *slog.Logger) (*Env, error) {
	if logger == nil {
		logger = slog.Default()
	}
	env := &Env{Logger: logger}

	var tracers []log.Logger
	if cfg.Trace != "" {
		fl, err := log.NewFileLogger(cfg.Trace)
		if err != nil {
			return nil, fmt.Errorf("failed to open trace file: %w", err)
		}
		env.trace = fl.WithSource(source)
		tracers = append(tracers, env.trace)
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		tracers = append(tracers, log.NewSlogAdapter(logger))
	}

	var tracer log.Logger
	switch len(tracers) {
	case 0:
	case 1:
		tracer = tracers[0]
	default:
		tracer = log.NewMultiLogger(tracers...)
	}

	var err error
	env.Dec, err = cfg.Limits.Apply(wire.DecOptions{Logger: tracer}).DecMode()
	if err != nil {
		return nil, errors.Join(err, env.Close())
	}
	env.Enc, err = wire.EncOptions{MaxNestedLevels: cfg.Limits.MaxNestedLevels, Logger: tracer}.EncMode()
	if err != nil {
		return nil, errors.Join(err, env.Close())
	}
	return env, nil
}

// Close closes the trace file, if any.
func (e *Env) Close() error {
	if e.trace == nil {
		return nil
	}
	if n := e.trace.Dropped(); n > 0 {
		e.Logger.Warn("trace events dropped", "count", n)
	}
	return e.trace.Close()
}
