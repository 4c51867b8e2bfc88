// Package logging wraps log/slog with the component and run-id fields the
// pipeline attaches to every record.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// Config controls handler construction.
type Config struct {
	Level     string // debug, info, warn, error
	Format    string // json or text
	Output    io.Writer
	Component string
}

// New creates a logger from cfg.
func New(cfg Config) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(handler)
	if cfg.Component != "" {
		logger = logger.With(slog.String("component", cfg.Component))
	}
	return logger
}

// Default builds a logger for a component with level and format taken from
// the environment (LOG_LEVEL, LOG_FORMAT).
func Default(component string) *slog.Logger {
	return New(Config{
		Level:     os.Getenv("LOG_LEVEL"),
		Format:    os.Getenv("LOG_FORMAT"),
		Component: component,
	})
}

// WithRun attaches the run id to every subsequent record.
func WithRun(l *slog.Logger, runID string) *slog.Logger {
	return l.With(slog.String("run_id", runID))
}

// WithDuration attaches an elapsed duration in milliseconds.
func WithDuration(l *slog.Logger, d time.Duration) *slog.Logger {
	return l.With(slog.Float64("duration_ms", float64(d.Milliseconds())))
}
