package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const defaultService = "weather-dashboard"

// New constructs the JSON slog logger used by the API server.
func New() *slog.Logger {
	return NewWriter(os.Stdout, defaultService, os.Getenv("LOG_LEVEL"))
}

// NewWriter builds a JSON logger for the given service writing to w.
// The CLI points it at stderr so command output stays machine readable.
func NewWriter(w io.Writer, service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return slog.New(handler).With("service", service)
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
