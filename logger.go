package proptable

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with proptable-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithProperty adds a property name field to the logger.
func (l *Logger) WithProperty(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("property", name),
	}
}

// WithPath adds a file path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// LogFlush logs a flush of a table to disk.
func (l *Logger) LogFlush(ctx context.Context, path string, elements int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "flush failed",
			"path", path,
			"elements", elements,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "flush completed",
			"path", path,
			"elements", elements,
			"elapsed", elapsed,
		)
	}
}

// LogLoad logs a table load from disk.
func (l *Logger) LogLoad(ctx context.Context, path string, elements int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "load completed",
			"path", path,
			"elements", elements,
		)
	}
}

// LogBackup logs a completed backup.
func (l *Logger) LogBackup(ctx context.Context, id string, properties int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "backup failed",
			"backup_id", id,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "backup completed",
			"backup_id", id,
			"properties", properties,
		)
	}
}

// LogRestore logs a completed restore.
func (l *Logger) LogRestore(ctx context.Context, id, dir string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "restore failed",
			"backup_id", id,
			"dir", dir,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "restore completed",
			"backup_id", id,
			"dir", dir,
		)
	}
}
