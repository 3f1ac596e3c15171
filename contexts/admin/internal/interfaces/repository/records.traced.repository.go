package repository

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-arrower/schoolstore/contexts/admin/internal/application"
)

func NewTracedRecordsRepository[E any](section string, repo application.Repository[E]) *TracedRecordsRepository[E] {
	return &TracedRecordsRepository[E]{section: section, repo: repo}
}

// TracedRecordsRepository starts a span for every call, as child of the span in ctx.
type TracedRecordsRepository[E any] struct {
	section string
	repo    application.Repository[E]
}

var _ application.Repository[struct{}] = (*TracedRecordsRepository[struct{}])(nil)

func (repo *TracedRecordsRepository[E]) List(ctx context.Context) ([]E, error) {
	ctx, span := repo.start(ctx, "List")
	defer span.End()

	records, err := repo.repo.List(ctx)
	span.SetAttributes(attribute.Int("records", len(records)))

	return records, end(span, err)
}

func (repo *TracedRecordsRepository[E]) GetByKey(ctx context.Context, key string) (E, bool, error) {
	ctx, span := repo.start(ctx, "GetByKey", attribute.String("key", key))
	defer span.End()

	record, ok, err := repo.repo.GetByKey(ctx, key)
	span.SetAttributes(attribute.Bool("found", ok))

	return record, ok, end(span, err)
}

func (repo *TracedRecordsRepository[E]) Create(ctx context.Context, patch any) (E, error) {
	ctx, span := repo.start(ctx, "Create")
	defer span.End()

	record, err := repo.repo.Create(ctx, patch)

	return record, end(span, err)
}

func (repo *TracedRecordsRepository[E]) Update(ctx context.Context, key string, patch any) (E, bool, error) {
	ctx, span := repo.start(ctx, "Update", attribute.String("key", key))
	defer span.End()

	record, ok, err := repo.repo.Update(ctx, key, patch)
	span.SetAttributes(attribute.Bool("found", ok))

	return record, ok, end(span, err)
}

func (repo *TracedRecordsRepository[E]) Delete(ctx context.Context, key string) ([]E, error) {
	ctx, span := repo.start(ctx, "Delete", attribute.String("key", key))
	defer span.End()

	records, err := repo.repo.Delete(ctx, key)

	return records, end(span, err)
}

func (repo *TracedRecordsRepository[E]) Reset(ctx context.Context) ([]E, error) {
	ctx, span := repo.start(ctx, "Reset")
	defer span.End()

	records, err := repo.repo.Reset(ctx)

	return records, end(span, err)
}

func (repo *TracedRecordsRepository[E]) start(
	ctx context.Context,
	method string,
	attrs ...attribute.KeyValue,
) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("method", method),
		attribute.String("section", repo.section),
	)

	return trace.SpanFromContext(ctx).TracerProvider().Tracer("schoolstore.repository").
		Start(ctx, "repo", trace.WithAttributes(attrs...))
}

func end(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}
