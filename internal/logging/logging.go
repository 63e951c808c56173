// Package logging threads request-scoped slog loggers through contexts so
// services can pick up caller-supplied attributes without a logger argument
// on every call.
package logging

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// ContextWithLogger attaches logger to ctx. A nil logger leaves the context
// untouched.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil || ctx == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger attached to ctx, or nil when the context
// carries none. Callers decide their own fallback.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return nil
}
