package retry

import (
	"context"
	"log/slog"
	"time"
)

// EventHandler handles retry events
type EventHandler interface {
	// OnRetryScheduled is called before waiting out a backoff; attempt is the
	// 1-based number of the attempt that failed
	OnRetryScheduled(ctx context.Context, operation string, attempt int, delay time.Duration, err error)
	// OnRetrySuccess is called when an attempt after the first succeeds
	OnRetrySuccess(ctx context.Context, operation string, attempts int, elapsed time.Duration)
	// OnGiveUp is called when the executor stops and returns an error
	OnGiveUp(ctx context.Context, operation string, attempts int, outcome OutcomeKind, err error)
}

// LogEventHandler writes retry events to a structured logger
type LogEventHandler struct {
	logger *slog.Logger
}

// NewLogEventHandler creates an event handler backed by logger (slog.Default when nil)
func NewLogEventHandler(logger *slog.Logger) *LogEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEventHandler{logger: logger}
}

func (h *LogEventHandler) OnRetryScheduled(ctx context.Context, operation string, attempt int, delay time.Duration, err error) {
	h.logger.DebugContext(ctx, "retry scheduled",
		"operation", operation,
		"attempt", attempt,
		"delay", delay,
		"error", err,
	)
}

func (h *LogEventHandler) OnRetrySuccess(ctx context.Context, operation string, attempts int, elapsed time.Duration) {
	h.logger.InfoContext(ctx, "retry succeeded",
		"operation", operation,
		"attempts", attempts,
		"elapsed", elapsed,
	)
}

func (h *LogEventHandler) OnGiveUp(ctx context.Context, operation string, attempts int, outcome OutcomeKind, err error) {
	level := slog.LevelWarn
	if outcome == OutcomeOtherFailure && attempts == 1 {
		// single non-retryable failures are the caller's to report
		level = slog.LevelDebug
	}
	h.logger.Log(ctx, level, "retry gave up",
		"operation", operation,
		"attempts", attempts,
		"outcome", outcome.String(),
		"error", err,
	)
}
