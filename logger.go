package tilematch

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with tilematch-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithBatch tags every record with a batch ID.
func (l *Logger) WithBatch(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("batch", id),
	}
}

// WithRepresentation adds the numeric representation (integral, floating).
func (l *Logger) WithRepresentation(r Representation) *Logger {
	return &Logger{
		Logger: l.Logger.With("representation", r.String()),
	}
}

// LogBatchStart logs the shape of a batch before matching begins.
func (l *Logger) LogBatchStart(ctx context.Context, images, tiles int, p Parallelism, workers int64) {
	l.DebugContext(ctx, "batch started",
		"images", images,
		"tiles", tiles,
		"parallelism", p.String(),
		"workers", workers,
	)
}

// LogBatch logs a finished batch.
func (l *Logger) LogBatch(ctx context.Context, images, tiles int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "batch failed",
			"images", images,
			"tiles", tiles,
			"elapsed", elapsed,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "batch completed",
		"images", images,
		"tiles", tiles,
		"elapsed", elapsed,
	)
}

// LogEmptyLibrary warns that every image will be assigned index 0.
func (l *Logger) LogEmptyLibrary(ctx context.Context, images int) {
	l.WarnContext(ctx, "tile library has no eligible tiles, returning index 0",
		"images", images,
	)
}
