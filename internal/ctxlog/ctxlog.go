// Package ctxlog passes the run's slog.Logger through context.Context so
// worker-scoped attributes travel with the work.
package ctxlog

import (
	"context"
	"log/slog"
)

// key is unexported to keep this package's context entries collision-free.
type key struct{}

var loggerKey = key{}

// WithLogger returns a child context carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger placed by WithLogger. A context without
// one is a wiring bug, so it panics rather than logging into the void.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	panic("ctxlog: logger missing from context")
}
