package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Development mode uses the text handler
// for readable local output; production emits JSON for log aggregation.
func New(dev bool) *slog.Logger {
	if dev {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
