package recstore

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with store-specific helpers.
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
	return NewLogger(slog.NewTextHandler(io.Discard, nil))
}

// WithPath adds a path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// LogAppend logs an append operation.
func (l *Logger) LogAppend(ctx context.Context, path string, created bool, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "append failed",
			"path", path,
			"created", created,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "append completed",
		"path", path,
		"created", created,
		"bytes", bytes,
	)
}

// LogScan logs the end of a scan.
func (l *Logger) LogScan(ctx context.Context, path string, records int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "scan failed",
			"path", path,
			"records", records,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "scan completed",
		"path", path,
		"records", records,
	)
}

// LogCorruption logs a corrupt trailing record.
func (l *Logger) LogCorruption(ctx context.Context, path string, offset int64, records int) {
	l.WarnContext(ctx, "corrupt trailing record",
		"path", path,
		"offset", offset,
		"valid_records", records,
	)
}

// LogRollback logs the removal of a partially created store.
func (l *Logger) LogRollback(ctx context.Context, path string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "rollback of partial store failed",
			"path", path,
			"error", err,
		)
		return
	}
	l.WarnContext(ctx, "rolled back partially created store",
		"path", path,
	)
}

// LogRepair logs a repair operation.
func (l *Logger) LogRepair(ctx context.Context, path string, truncated int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "repair failed",
			"path", path,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "repair completed",
		"path", path,
		"truncated_bytes", truncated,
	)
}
