// Package applog builds the structured logger shared by the
// componentdemo CLI and every component it constructs, grounded on the
// teacher's slog setup in cmd/thane/main.go.
package applog

import (
	"log/slog"
	"os"
)

// New returns a text-handler slog.Logger writing to os.Stdout at the
// given level. An empty or unrecognized level string defaults to info.
func New(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
