package application

import (
	"context"
	"fmt"

	"github.com/go-arrower/schoolstore/app"
	"github.com/go-arrower/schoolstore/repository/q"
)

func NewListRecordsQueryHandler[E any](repo Repository[E], search ...q.Field[E]) app.Query[ListRecordsQuery, q.Result[E]] {
	return &listRecordsQueryHandler[E]{repo: repo, search: search}
}

type listRecordsQueryHandler[E any] struct {
	repo   Repository[E]
	search []q.Field[E]
}

type ListRecordsQuery struct {
	Query string
	Page  int `validate:"gte=0"`
	Size  int `validate:"gte=0,lte=1000"`
}

func (h *listRecordsQueryHandler[E]) H(ctx context.Context, query ListRecordsQuery) (q.Result[E], error) {
	records, err := h.repo.List(ctx)
	if err != nil {
		return q.Result[E]{}, fmt.Errorf("could not list records: %w", err)
	}

	return q.View(records, query.Query, query.Page, query.Size, h.search...), nil
}
