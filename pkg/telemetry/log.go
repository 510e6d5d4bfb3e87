// Package telemetry carries the two ambient concerns the core domain
// packages never import directly: structured logging and metrics. Adapted
// from cuemby-warren's pkg/log, re-scoped from a single global Logger to a
// per-component child logger so concurrent repository operations don't
// interleave fields on a shared writer.
package telemetry

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Level names a zerolog level the way the CLI and Config expose it.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// LogConfig configures the root logger.
type LogConfig struct {
	Level  Level
	JSON   bool
	Output io.Writer // defaults to os.Stderr
}

// NewLogger builds a root zerolog.Logger from cfg. Component loggers are
// derived from it with WithComponent rather than constructed independently,
// so every log line in a process shares one timestamp clock and level.
func NewLogger(cfg LogConfig) zerolog.Logger {
	level := parseLevel(cfg.Level)
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	if cfg.JSON {
		return zerolog.New(output).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.RFC3339,
	}).Level(level).With().Timestamp().Logger()
}

func parseLevel(l Level) zerolog.Level {
	switch l {
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithComponent returns a child logger tagging every line with component,
// e.g. "repository", "lockguard", "cache".
func WithComponent(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}
