package application

import (
	"context"
	"fmt"

	"github.com/go-arrower/schoolstore/app"
)

func NewGetRecordQueryHandler[E any](repo Repository[E]) app.Query[GetRecordQuery, E] {
	return &getRecordQueryHandler[E]{repo: repo}
}

type getRecordQueryHandler[E any] struct {
	repo Repository[E]
}

type GetRecordQuery struct {
	Key string `validate:"required"`
}

func (h *getRecordQueryHandler[E]) H(ctx context.Context, query GetRecordQuery) (E, error) {
	record, ok, err := h.repo.GetByKey(ctx, query.Key)
	if err != nil {
		return *new(E), fmt.Errorf("could not get record %s: %w", query.Key, err)
	}

	if !ok {
		return *new(E), fmt.Errorf("%w: %s", ErrNotFound, query.Key)
	}

	return record, nil
}
