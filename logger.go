package parmat

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with pattern-specific helpers.
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

// WithRank adds a rank field to the logger.
func (l *Logger) WithRank(rank int) *Logger {
	return &Logger{
		Logger: l.Logger.With("rank", rank),
	}
}

// LogStats logs pattern statistics before the finalize exchange.
func (l *Logger) LogStats(s Stats) {
	l.Debug("sparsity pattern statistics",
		"global_rows", s.GlobalRows,
		"global_cols", s.GlobalCols,
		"diagonal", s.Diagonal,
		"off_diagonal", s.OffDiagonal,
		"non_local", s.NonLocal,
	)
}

// LogApply logs the outcome of the finalize exchange.
func (l *Logger) LogApply(sent, received int, err error) {
	if err != nil {
		l.Error("apply failed",
			"sent", sent,
			"received", received,
			"error", err,
		)
	} else {
		l.Debug("apply completed",
			"sent", sent,
			"received", received,
		)
	}
}
