// Package alog is the logging layer of schoolstore.
// It builds on log/slog and adds tracing correlation,
// attributes carried in a context.Context, and a logger for tests.
package alog

import (
	"context"
	"log/slog"

	ctx2 "github.com/go-arrower/schoolstore/ctx"
)

// Logger interface is a subset of slog.Logger, with the aim to:
//  1. encourage the use of the methods offering context.Context, so that tracing information can be correlated.
//  2. encourage the use of the levels `DEBUG` and `INFO` over others, but without preventing them.
type Logger interface {
	Log(ctx context.Context, level slog.Level, msg string, args ...any)
	LogAttrs(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr)
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
}

const (
	// LevelInfo is used to see what is going on inside the storage layer.
	LevelInfo = slog.Level(-8)

	// LevelDebug is used for very detailed output, e.g. every slot read and write.
	LevelDebug = slog.Level(-12)
)

// MapLogLevelsToName replaces the default name of a custom log level with a speaking name.
func MapLogLevelsToName(_ []string, attr slog.Attr) slog.Attr {
	if attr.Key == slog.LevelKey {
		level, _ := attr.Value.Any().(slog.Level)

		levelLabel, exists := getLevelNames()[level]
		if !exists {
			levelLabel = level.String()
		}

		attr.Value = slog.StringValue(levelLabel)
	}

	return attr
}

func getLevelNames() map[slog.Leveler]string {
	return map[slog.Leveler]string{
		LevelInfo:  "STORE:INFO",
		LevelDebug: "STORE:DEBUG",
	}
}

const ctxAttr ctx2.CTXKey = "alog.attr"

// AddAttr adds a single attribute to ctx.
// All attributes in the context are added to every record logged with that context.
func AddAttr(ctx context.Context, attr slog.Attr) context.Context {
	return AddAttrs(ctx, attr)
}

// AddAttrs adds multiple attributes to ctx.
func AddAttrs(ctx context.Context, newAttrs ...slog.Attr) context.Context {
	existing := FromContext(ctx)

	// copy, so contexts derived from the same parent do not share the backing array
	attrs := make([]slog.Attr, 0, len(existing)+len(newAttrs))
	attrs = append(attrs, existing...)
	attrs = append(attrs, newAttrs...)

	return context.WithValue(ctx, ctxAttr, attrs)
}

// ClearAttrs removes all attributes from ctx.
func ClearAttrs(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxAttr, []slog.Attr{})
}

// FromContext returns all attributes added to ctx.
// If there are none, the slice is empty but never nil.
func FromContext(ctx context.Context) []slog.Attr {
	if attrs, ok := ctx.Value(ctxAttr).([]slog.Attr); ok {
		return attrs
	}

	return []slog.Attr{}
}

// NewNoop returns a Logger that drops every record.
// Repositories use it, until WithLogger is given.
func NewNoop() *slog.Logger {
	return slog.New(discardHandler{})
}

// discardHandler is disabled for all levels, so slog does not even build the records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h discardHandler) WithGroup(string) slog.Handler { return h }
