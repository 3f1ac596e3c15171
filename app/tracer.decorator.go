package app

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func NewTracedRequest[Req any, Res any](traceProvider trace.TracerProvider, req Request[Req, Res]) Request[Req, Res] {
	return &requestTracingDecorator[Req, Res]{tracer: traceProvider.Tracer(instrumentationName), base: req}
}

func NewTracedQuery[Q any, Res any](traceProvider trace.TracerProvider, query Query[Q, Res]) Query[Q, Res] {
	return &requestTracingDecorator[Q, Res]{tracer: traceProvider.Tracer(instrumentationName), base: query}
}

type requestTracingDecorator[Req any, Res any] struct {
	tracer trace.Tracer
	base   Request[Req, Res]
}

func (d *requestTracingDecorator[Req, Res]) H(ctx context.Context, req Req) (Res, error) { //nolint:ireturn,lll // valid use of generics
	newCtx, span := d.tracer.Start(ctx, "usecase",
		trace.WithAttributes(attribute.String("command", commandName(req))),
	)
	defer span.End()

	result, err := d.base.H(newCtx, req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}

	return result, err //nolint:wrapcheck // decorate but not change anything
}

func NewTracedCommand[C any](traceProvider trace.TracerProvider, cmd Command[C]) Command[C] {
	return &commandTracingDecorator[C]{tracer: traceProvider.Tracer(instrumentationName), base: cmd}
}

type commandTracingDecorator[C any] struct {
	tracer trace.Tracer
	base   Command[C]
}

func (d *commandTracingDecorator[C]) H(ctx context.Context, cmd C) error {
	newCtx, span := d.tracer.Start(ctx, "usecase",
		trace.WithAttributes(attribute.String("command", commandName(cmd))),
	)
	defer span.End()

	err := d.base.H(newCtx, cmd)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}

	return err //nolint:wrapcheck // decorate but not change anything
}
