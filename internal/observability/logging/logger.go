// Package logging builds the application's slog loggers and carries a
// request-scoped logger through context so the import pipeline logs under
// the request that started it.
package logging

import (
	"context"
	"log/slog"
	"os"

	"recipebox/internal/handler/http/requestid"
)

// NewLogger returns a JSON logger writing to stdout. LOG_LEVEL=debug
// lowers the threshold; anything else logs at info. Source locations are
// attached only when debug is on, to keep production lines compact.
func NewLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}))
}

// WithRequestID returns logger with the context's request ID attached as
// the request_id field, or logger unchanged when the context has none.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if id := requestid.FromContext(ctx); id != "" {
		return logger.With("request_id", id)
	}
	return logger
}

type contextKey string

const loggerContextKey contextKey = "logger"

// WithLogger stores logger on the context. Handlers call this after
// attaching request fields so lower layers inherit them.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext returns the context's logger, or slog.Default outside a
// request.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
