// Package avoidlog is a thin context-aware wrapper over log/slog, in the
// shape of the host project's own lib/log package: callers pass a
// context.Context as the first argument and the wrapper pulls a logger out
// of it (falling back to slog.Default()) rather than threading a *Logger
// value through every function signature.
package avoidlog

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// With returns a context carrying logger for subsequent avoidlog calls.
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

func from(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

func Debug(ctx context.Context, msg string, args ...any) {
	from(ctx).Debug(msg, args...)
}

func Info(ctx context.Context, msg string, args ...any) {
	from(ctx).Info(msg, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	from(ctx).Warn(msg, args...)
}

func Error(ctx context.Context, msg string, args ...any) {
	from(ctx).Error(msg, args...)
}
