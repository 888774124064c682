// Package logger provides structured logging configuration using log/slog.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds logger configuration.
type Config struct {
	Level  slog.Level
	Format string    // "text" or "json"
	Output io.Writer // defaults to os.Stderr
}

// NewLogger creates a configured slog.Logger. Output goes to stderr so it
// never mixes with the frames drawn on stdout.
func NewLogger(cfg Config) *slog.Logger {
	var handler slog.Handler

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.Level <= slog.LevelDebug,
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler)
}

// DefaultConfig returns the default logger configuration.
// SPECTTY_LOG_LEVEL overrides the INFO default.
func DefaultConfig() Config {
	level := slog.LevelInfo
	if env := os.Getenv("SPECTTY_LOG_LEVEL"); env != "" {
		if l, err := ParseLevel(env); err == nil {
			level = l
		}
	}
	return Config{
		Level:  level,
		Format: "text",
	}
}

// ParseLevel maps a level name to a slog.Level.
// Valid values: DEBUG, INFO, WARN, WARNING, ERROR (any case).
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
