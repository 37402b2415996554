// Package logger constructs the process-wide structured logger.
package logger

import (
	"log/slog"
	"os"
)

// New returns a slog logger writing JSON to stdout. FIELDGATE_LOG_LEVEL
// accepts debug, info, warn, error; anything else means info.
func New() *slog.Logger {
	var level slog.Level
	switch os.Getenv("FIELDGATE_LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
