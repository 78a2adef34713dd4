package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// contextKey is unexported so no other package can collide with our keys
type contextKey string

// RequestIDKey is the context key under which RequestIDMiddleware stores the request ID
const RequestIDKey contextKey = "request_id"

// Logger wraps slog for structured logging
// Services receive the embedded *slog.Logger
type Logger struct {
	*slog.Logger
}

// NewWithFormat creates a logger with an explicit output format ("json" or "text")
// Text output is easier to read during local development
func NewWithFormat(level, format string, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// ParseLevel maps a level name to slog.Level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// RequestID returns the request ID stored in ctx, or "" when absent
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// Discard returns a logger that drops everything; handy in tests
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// ForContext tags a plain *slog.Logger with the request ID from ctx
func ForContext(ctx context.Context, l *slog.Logger) *slog.Logger {
	if requestID := RequestID(ctx); requestID != "" {
		return l.With("request_id", requestID)
	}
	return l
}
