// Package logging wires cdr.dev/slog the way the teacher repo does:
// a single Logger threaded through context.Context, never a package-level
// global. Callers attach a logger with WithContext and pull it back out
// with FromContext; code that never calls WithContext gets a discarding
// logger so library packages never panic on a missing logger.
package logging

import (
	"context"
	"os"

	"cdr.dev/slog"
	"cdr.dev/slog/sloggers/sloghuman"
)

type ctxKey struct{}

// WithContext returns a context carrying logger.
func WithContext(ctx context.Context, logger slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger attached to ctx, or a discarding logger.
func FromContext(ctx context.Context) slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(slog.Logger); ok {
		return l
	}
	return slog.Make()
}

// NewCLI returns a human-readable logger for terminal use, named for the
// given pipeline stage ("dotbracket", "sstree", "rnalayout", ...).
func NewCLI(name string) slog.Logger {
	return slog.Make(sloghuman.Sink(os.Stderr)).Named(name)
}

// NewSilent returns a logger that discards everything, used by the WASM
// binding where there is no stdio to write to.
func NewSilent() slog.Logger {
	return slog.Make()
}
