package logger

import (
	"io"
	"log/slog"
)

// NewTestHandler discards everything; tests wire it through New.
func NewTestHandler(level slog.Level) slog.Handler {
	return slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: level})
}
