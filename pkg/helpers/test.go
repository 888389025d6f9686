package helpers

import (
	"context"
	"log/slog"

	"github.com/GregMSThompson/pitch-backend/pkg/logger"
)

// TestCtx carries a discarding logger at debug level so debug-only branches
// still run under test.
func TestCtx() context.Context {
	return TestCtxAt(slog.LevelDebug)
}

func TestCtxAt(level slog.Level) context.Context {
	return logger.ToContext(context.Background(), slog.New(logger.NewTestHandler(level)))
}
