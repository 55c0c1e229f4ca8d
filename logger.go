package regindex

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with regindex-specific context.
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
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithIndex adds an index name field to the logger.
func (l *Logger) WithIndex(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("index", name),
	}
}

// WithFilter adds a filter field to the logger.
func (l *Logger) WithFilter(filter string) *Logger {
	return &Logger{
		Logger: l.Logger.With("filter", filter),
	}
}

// LogQuery logs a routed query.
func (l *Logger) LogQuery(ctx context.Context, index, class, filter string, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"index", index,
			"class", class,
			"filter", filter,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "query completed",
			"index", index,
			"class", class,
			"filter", filter,
			"results", results,
		)
	}
}

// LogOpen logs the opening of an index.
func (l *Logger) LogOpen(ctx context.Context, index string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index open failed",
			"index", index,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "index opened",
			"index", index,
		)
	}
}

// LogClose logs the closing of an index.
func (l *Logger) LogClose(ctx context.Context, index string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index close failed",
			"index", index,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "index closed",
			"index", index,
		)
	}
}
