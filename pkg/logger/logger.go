// Package logger sets up the service's structured logging: JSON lines
// written to both stdout and an append-only log file.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// New opens (or creates) logDir/app.log and returns a JSON slog.Logger
// teeing every line to stdout and the file, plus a close func for the file.
func New(logDir string) (*slog.Logger, func() error, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("unable to create log directory: %w", err)
	}

	path := filepath.Join(logDir, "app.log")
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open log file: %w", err)
	}

	handler := slog.NewJSONHandler(io.MultiWriter(os.Stdout, file), nil)
	return slog.New(handler), file.Close, nil
}

// LogRequest appends one structured entry per observed request. Statuses of
// 400 and above log at error level, everything else at info level.
func LogRequest(logger *slog.Logger, clientID, path string, status int, durationMs int64, errorCode string) {
	level := slog.LevelInfo
	if status >= 400 {
		level = slog.LevelError
	}

	attrs := []slog.Attr{
		slog.String("ip", clientID),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Int64("duration_ms", durationMs),
	}
	if errorCode != "" {
		attrs = append(attrs, slog.String("error_code", errorCode))
	}

	logger.LogAttrs(context.Background(), level, "http_request", attrs...)
}
