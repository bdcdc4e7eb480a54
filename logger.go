package pakgo

import (
	"log/slog"
	"os"

	"github.com/hupe1980/pakgo/core"
)

// Logger wraps slog.Logger with pak-specific context.
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

// WithKey adds an index key field to the logger.
func (l *Logger) WithKey(key string) *Logger {
	return &Logger{
		Logger: l.Logger.With("key", key),
	}
}

// WithSource adds a source field (file path or store name) to the logger.
func (l *Logger) WithSource(source string) *Logger {
	return &Logger{
		Logger: l.Logger.With("source", source),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogPak logs a record pack operation.
func (l *Logger) LogPak(ptr core.Pointer, err error) {
	if err != nil {
		l.Error("pak failed",
			"error", err,
		)
	} else {
		l.Debug("record packed",
			"offset", ptr.Offset,
			"length", ptr.Length,
		)
	}
}

// LogFinalize logs an artifact finalize operation.
func (l *Logger) LogFinalize(dest string, size int64, records uint64, err error) {
	if err != nil {
		l.Error("finalize failed",
			"dest", dest,
			"error", err,
		)
	} else {
		l.Info("artifact finalized",
			"dest", dest,
			"size", size,
			"records", records,
		)
	}
}

// LogOpen logs an artifact open operation.
func (l *Logger) LogOpen(source string, records uint64, err error) {
	if err != nil {
		l.Error("open failed",
			"source", source,
			"error", err,
		)
	} else {
		l.Info("artifact opened",
			"source", source,
			"records", records,
		)
	}
}

// LogQuery logs a query evaluation.
func (l *Logger) LogQuery(expr string, results int, err error) {
	if err != nil {
		l.Error("query failed",
			"query", expr,
			"error", err,
		)
	} else {
		l.Debug("query completed",
			"query", expr,
			"results", results,
		)
	}
}

// LogGet logs a record retrieval.
func (l *Logger) LogGet(ptr core.Pointer, err error) {
	if err != nil {
		l.Error("get failed",
			"offset", ptr.Offset,
			"error", err,
		)
	} else {
		l.Debug("get completed",
			"offset", ptr.Offset,
			"length", ptr.Length,
		)
	}
}
