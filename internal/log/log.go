// Package log wires slog to the configured log file.
package log

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"reelshelf/internal/config"
)

// SetupLogger opens the configured log file and returns a slog logger
func SetupLogger(cfg *config.LoggingConfig) (*slog.Logger, error) {
	if cfg.File == "" {
		return NullLogger(), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: parseLevel(cfg.Level)})
	return slog.New(handler), nil
}

// NullLogger returns a logger that discards everything
func NullLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
