package trajan

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with trajan-specific context.
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
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithCount adds a particle count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// WithRadius adds a cutoff radius field to the logger.
func (l *Logger) WithRadius(r float64) *Logger {
	return &Logger{
		Logger: l.Logger.With("radius", r),
	}
}

// LogQuery logs a neighbor query operation.
func (l *Logger) LogQuery(ctx context.Context, mode string, queries, bonds int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"mode", mode,
			"queries", queries,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "query completed",
			"mode", mode,
			"queries", queries,
			"bonds", bonds,
		)
	}
}

// LogCompute logs an analysis pass.
func (l *Logger) LogCompute(ctx context.Context, analysis string, particles int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "compute failed",
			"analysis", analysis,
			"particles", particles,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "compute completed",
			"analysis", analysis,
			"particles", particles,
		)
	}
}

// LogSnapshot logs a snapshot encode or decode.
func (l *Logger) LogSnapshot(ctx context.Context, op string, particles int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"op", op,
			"particles", particles,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot completed",
			"op", op,
			"particles", particles,
		)
	}
}

// LogArchive logs an archive transfer.
func (l *Logger) LogArchive(ctx context.Context, op, name string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "archive transfer failed",
			"op", op,
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "archive transfer completed",
			"op", op,
			"name", name,
			"bytes", bytes,
		)
	}
}
