package alog

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// LoggerOpt allows to initialise a logger with custom options.
type LoggerOpt func(h *fanoutHandler)

// WithHandler adds a slog.Handler to be logged to.
// You can set as many as you want.
func WithHandler(h slog.Handler) LoggerOpt {
	return func(l *fanoutHandler) {
		l.handlers = append(l.handlers, h)
	}
}

// WithLevel initialises the logger with a starting level.
// To change the level at runtime use Unwrap(logger).SetLevel(level).
func WithLevel(level slog.Level) LoggerOpt {
	return func(l *fanoutHandler) {
		l.level.Set(level)
	}
}

// New returns a production ready logger.
//
// If no options are given it creates a default handler, logging JSON to Stderr.
// Otherwise, use WithHandler to set your own handlers.
func New(opts ...LoggerOpt) *slog.Logger {
	return slog.New(newFanoutHandler(opts...))
}

// NewDevelopment returns a logger ready for local development,
// logging human-readable text on debug level to Stderr.
func NewDevelopment() *slog.Logger {
	return New(
		WithLevel(slog.LevelDebug),
		WithHandler(slog.NewTextHandler(os.Stderr, getDebugHandlerOptions())),
	)
}

func newFanoutHandler(opts ...LoggerOpt) *fanoutHandler {
	handler := &fanoutHandler{
		level:    &slog.LevelVar{},
		handlers: []slog.Handler{},
	}
	handler.level.Set(slog.LevelInfo)

	for _, opt := range opts {
		opt(handler)
	}

	if len(handler.handlers) == 0 {
		handler.handlers = []slog.Handler{slog.NewJSONHandler(os.Stderr, getDefaultHandlerOptions())}
	}

	return handler
}

// fanoutHandler passes each record on to all of its handlers.
// Before doing so, it adds the attributes stored in the context and
// correlates the record with the active span, if there is one.
//
// The level of the individual handlers is ignored, only the level of fanoutHandler counts.
type fanoutHandler struct {
	// level is shared by all handlers derived via WithAttrs and WithGroup,
	// so SetLevel changes them all.
	level *slog.LevelVar

	handlers []slog.Handler
}

var (
	_ slog.Handler = (*fanoutHandler)(nil)
	_ Leveler      = (*fanoutHandler)(nil)
)

func (h *fanoutHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(FromContext(ctx)...)

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		record.AddAttrs(
			slog.String("traceID", span.SpanContext().TraceID().String()),
			slog.String("spanID", span.SpanContext().SpanID().String()),
		)
	}

	if span.IsRecording() {
		span.AddEvent("log", trace.WithAttributes(spanAttrs(record)...))
	}

	var err error

	for _, handler := range h.handlers {
		err = errors.Join(err, handler.Handle(ctx, record.Clone()))
	}

	return err
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))

	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}

	return &fanoutHandler{level: h.level, handlers: handlers}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))

	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}

	return &fanoutHandler{level: h.level, handlers: handlers}
}

// SetLevel changes the level for all handlers set with WithHandler.
// Even the ones "copied" via any WithX method.
func (h *fanoutHandler) SetLevel(level slog.Level) {
	h.level.Set(level)
}

// Level returns the log level of the handler.
func (h *fanoutHandler) Level() slog.Level {
	return h.level.Level()
}

func spanAttrs(record slog.Record) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("level", record.Level.String()),
		attribute.String("msg", record.Message),
	}

	record.Attrs(func(attr slog.Attr) bool {
		attrs = append(attrs, attribute.String(attr.Key, attr.Value.String()))

		return true
	})

	return attrs
}

// Leveler offers control over the level of a logger at run time.
// Unwrap a logger to get access to it.
type Leveler interface {
	SetLevel(level slog.Level)
	Level() slog.Level
}

// Unwrap returns the Leveler of the given logger.
// In case logger was not created by this package, it returns nil.
func Unwrap(logger Logger) Leveler { //nolint:ireturn // TestLogger and fanoutHandler are both valid
	if l, ok := logger.(*TestLogger); ok {
		return l
	}

	if l, ok := logger.(*slog.Logger); ok {
		if h, ok := l.Handler().(*fanoutHandler); ok {
			return h
		}
	}

	return nil
}

func getDefaultHandlerOptions() *slog.HandlerOptions {
	return &slog.HandlerOptions{
		AddSource:   true,
		Level:       nil, // ignored, the level of fanoutHandler is used for all handlers
		ReplaceAttr: MapLogLevelsToName,
	}
}

// getDebugHandlerOptions keeps the log output more readable, by removing not essential keys.
func getDebugHandlerOptions() *slog.HandlerOptions {
	opt := getDefaultHandlerOptions()
	opt.AddSource = false

	return opt
}
