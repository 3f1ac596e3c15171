package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ pgx.QueryTracer = (*pgxTraceAdapter)(nil)

// pgxTraceAdapter starts one span per query.
// pgx hands the ctx returned by TraceQueryStart to TraceQueryEnd,
// so the span is taken from there with trace.SpanFromContext.
type pgxTraceAdapter struct {
	tracer trace.Tracer
}

func (p *pgxTraceAdapter) TraceQueryStart(
	ctx context.Context,
	conn *pgx.Conn,
	data pgx.TraceQueryStartData,
) context.Context {
	conf := conn.Config()

	ctx, _ = p.tracer.Start(ctx, "pgx", trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.name", conf.Database),
		attribute.String("db.user", conf.User),
		attribute.String("server.address", conf.Host),
		attribute.Int("server.port", int(conf.Port)),
		attribute.String("db.statement", data.SQL),
		attribute.StringSlice("db.statement.args", argsToStrings(data.Args)),
	))

	return ctx
}

func (p *pgxTraceAdapter) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", data.CommandTag.RowsAffected()))

	if data.Err != nil {
		span.RecordError(data.Err)
		span.SetStatus(codes.Error, data.Err.Error())
	}

	span.End()
}

// argsToStrings does not print byte payloads, only their length.
func argsToStrings(args []any) []string {
	s := make([]string, len(args))

	for i, arg := range args {
		if b, ok := arg.([]byte); ok {
			s[i] = fmt.Sprintf("[%d bytes]", len(b))
			continue
		}

		s[i] = fmt.Sprintf("%v", arg)
	}

	return s
}
