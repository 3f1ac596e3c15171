package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/go-arrower/schoolstore/app"
)

func TestRequestTracingDecorator_H(t *testing.T) {
	t.Parallel()

	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		provider, recorder := newRecordingTracer()
		handler := app.NewTracedRequest(provider, app.TestSuccessRequestHandler[request, response]())

		_, err := handler.H(context.Background(), request{})
		assert.NoError(t, err)

		spans := recorder.Ended()
		assert.Len(t, spans, 1)
		assert.Equal(t, "usecase", spans[0].Name())
		assert.Equal(t, "schoolstore.application", spans[0].InstrumentationScope().Name)
		assert.Contains(t, spans[0].Attributes(), attribute.String("command", "app_test.request"))
		assert.Equal(t, codes.Unset, spans[0].Status().Code)
	})

	t.Run("failed request", func(t *testing.T) {
		t.Parallel()

		provider, recorder := newRecordingTracer()
		handler := app.NewTracedRequest(provider, app.TestFailureRequestHandler[request, response]())

		_, err := handler.H(context.Background(), request{})
		assert.Error(t, err)

		spans := recorder.Ended()
		assert.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
	})
}

func TestCommandTracingDecorator_H(t *testing.T) {
	t.Parallel()

	t.Run("successful command", func(t *testing.T) {
		t.Parallel()

		provider, recorder := newRecordingTracer()
		handler := app.NewTracedCommand(provider, app.TestSuccessCommandHandler[request]())

		err := handler.H(context.Background(), request{})
		assert.NoError(t, err)
		assert.Len(t, recorder.Ended(), 1)
	})

	t.Run("failed command", func(t *testing.T) {
		t.Parallel()

		provider, recorder := newRecordingTracer()
		handler := app.NewTracedCommand(provider, app.TestFailureCommandHandler[request]())

		err := handler.H(context.Background(), request{})
		assert.Error(t, err)
		assert.Equal(t, codes.Error, recorder.Ended()[0].Status().Code)
	})
}

func TestQueryTracingDecorator_H(t *testing.T) {
	t.Parallel()

	t.Run("span is passed to the use case", func(t *testing.T) {
		t.Parallel()

		provider, recorder := newRecordingTracer()
		handler := app.NewTracedQuery(provider, app.TestQueryHandler(func(ctx context.Context, _ request) (response, error) {
			return response{}, nil
		}))

		_, err := handler.H(context.Background(), request{})
		assert.NoError(t, err)
		assert.Len(t, recorder.Ended(), 1)
	})
}

func newRecordingTracer() (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()

	return sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)), recorder
}
