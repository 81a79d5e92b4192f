package config

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// LogConfig holds logging settings read from the environment.
type LogConfig struct {
	Level  string `env:"PHASEPLAY_LOG_LEVEL" envDefault:"info"`
	Format string `env:"PHASEPLAY_LOG_FORMAT" envDefault:"text"`
}

// LoadLogConfig loads logging configuration from environment variables.
func LoadLogConfig() (LogConfig, error) {
	var c LogConfig
	if err := env.Parse(&c); err != nil {
		return LogConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}

// NewLogger builds a slog logger writing to w. verbose forces debug level.
func (c LogConfig) NewLogger(w io.Writer, verbose bool) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return nil, fmt.Errorf("PHASEPLAY_LOG_LEVEL: %w", err)
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	switch c.Format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("PHASEPLAY_LOG_FORMAT must be text or json, got %q", c.Format)
	}
}
