package app

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func NewMeteredRequest[Req any, Res any](meterProvider metric.MeterProvider, req Request[Req, Res]) Request[Req, Res] {
	return &requestMeteringDecorator[Req, Res]{instruments: newInstruments(meterProvider), base: req}
}

func NewMeteredQuery[Q any, Res any](meterProvider metric.MeterProvider, query Query[Q, Res]) Query[Q, Res] {
	return &requestMeteringDecorator[Q, Res]{instruments: newInstruments(meterProvider), base: query}
}

type requestMeteringDecorator[Req any, Res any] struct {
	instruments
	base Request[Req, Res]
}

func (d *requestMeteringDecorator[Req, Res]) H(ctx context.Context, req Req) (Res, error) { //nolint:ireturn,lll // valid use of generics
	start := time.Now()

	result, err := d.base.H(ctx, req)

	d.record(ctx, commandName(req), start, err)

	return result, err //nolint:wrapcheck // decorate but not change anything
}

func NewMeteredCommand[C any](meterProvider metric.MeterProvider, cmd Command[C]) Command[C] {
	return &commandMeteringDecorator[C]{instruments: newInstruments(meterProvider), base: cmd}
}

type commandMeteringDecorator[C any] struct {
	instruments
	base Command[C]
}

func (d *commandMeteringDecorator[C]) H(ctx context.Context, cmd C) error {
	start := time.Now()

	err := d.base.H(ctx, cmd)

	d.record(ctx, commandName(cmd), start, err)

	return err //nolint:wrapcheck // decorate but not change anything
}

// instruments are the same for all use case kinds,
// so the dashboards can treat them alike.
type instruments struct {
	counter  metric.Int64Counter
	duration metric.Float64Histogram
}

func newInstruments(meterProvider metric.MeterProvider) instruments {
	meter := meterProvider.Meter(instrumentationName)

	counter, _ := meter.Int64Counter("usecases", metric.WithDescription("number of use case calls"))
	duration, _ := meter.Float64Histogram("usecases_duration_seconds", metric.WithDescription("duration of use case calls"))

	return instruments{counter: counter, duration: duration}
}

func (i instruments) record(ctx context.Context, cmdName string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	opt := metric.WithAttributes(
		attribute.String("command", cmdName),
		attribute.String("status", status),
	)

	i.counter.Add(ctx, 1, opt)
	i.duration.Record(ctx, time.Since(start).Seconds(), opt)
}
