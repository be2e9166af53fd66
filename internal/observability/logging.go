// Package observability carries build-scoped log attributes through a
// context so nested calls log with the build and stage they belong to.
package observability

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/arxivbuilder/internal/logfields"
)

// LogContext holds structured logging context information.
type LogContext struct {
	BuildID string
	Stage   string
	Source  string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithBuildID adds a build ID to the context.
func WithBuildID(ctx context.Context, buildID string) context.Context {
	lc := GetContext(ctx)
	lc.BuildID = buildID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithStage adds a stage name to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	lc := GetContext(ctx)
	lc.Stage = stage
	return context.WithValue(ctx, logContextKey, lc)
}

// WithSource adds the build source to the context.
func WithSource(ctx context.Context, source string) context.Context {
	lc := GetContext(ctx)
	lc.Source = source
	return context.WithValue(ctx, logContextKey, lc)
}

// GetContext returns the structured log context from ctx, or a zero value.
func GetContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

// Attrs returns the non-empty context fields as slog attributes.
func Attrs(ctx context.Context) []slog.Attr {
	lc := GetContext(ctx)
	attrs := make([]slog.Attr, 0, 3)
	if lc.BuildID != "" {
		attrs = append(attrs, logfields.BuildID(lc.BuildID))
	}
	if lc.Stage != "" {
		attrs = append(attrs, logfields.Stage(lc.Stage))
	}
	if lc.Source != "" {
		attrs = append(attrs, logfields.Source(lc.Source))
	}
	return attrs
}

func logContext(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	slog.LogAttrs(ctx, level, msg, append(Attrs(ctx), attrs...)...)
}

// InfoContext logs an info message with context information.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelInfo, msg, attrs)
}

// WarnContext logs a warning message with context information.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelWarn, msg, attrs)
}

// ErrorContext logs an error message with context information.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelError, msg, attrs)
}

// DebugContext logs a debug message with context information.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelDebug, msg, attrs)
}
