package application

import (
	"context"
	"fmt"

	"github.com/go-arrower/schoolstore/app"
)

func NewCreateRecordRequestHandler[E any](repo Repository[E]) app.Request[CreateRecordRequest[E], E] {
	return &createRecordRequestHandler[E]{repo: repo}
}

type createRecordRequestHandler[E any] struct {
	repo Repository[E]
}

// CreateRecordRequest carries all fields of the new record. A key set in Record is replaced.
type CreateRecordRequest[E any] struct {
	Record E
}

func (h *createRecordRequestHandler[E]) H(ctx context.Context, req CreateRecordRequest[E]) (E, error) {
	record, err := h.repo.Create(ctx, req.Record)
	if err != nil {
		return *new(E), fmt.Errorf("could not create record: %w", err)
	}

	return record, nil
}

func NewUpdateRecordRequestHandler[E any, P any](repo Repository[E]) app.Request[UpdateRecordRequest[P], E] {
	return &updateRecordRequestHandler[E, P]{repo: repo}
}

type updateRecordRequestHandler[E any, P any] struct {
	repo Repository[E]
}

// UpdateRecordRequest changes only the fields set in Patch.
type UpdateRecordRequest[P any] struct {
	Key   string `validate:"required"`
	Patch P
}

func (h *updateRecordRequestHandler[E, P]) H(ctx context.Context, req UpdateRecordRequest[P]) (E, error) {
	record, ok, err := h.repo.Update(ctx, req.Key, req.Patch)
	if err != nil {
		return *new(E), fmt.Errorf("could not update record %s: %w", req.Key, err)
	}

	if !ok {
		return *new(E), fmt.Errorf("%w: %s", ErrNotFound, req.Key)
	}

	return record, nil
}

func NewDeleteRecordRequestHandler[E any](repo Repository[E]) app.Request[DeleteRecordRequest, []E] {
	return &deleteRecordRequestHandler[E]{repo: repo}
}

type deleteRecordRequestHandler[E any] struct {
	repo Repository[E]
}

// DeleteRecordRequest does not fail for a missing key.
type DeleteRecordRequest struct {
	Key string `validate:"required"`
}

func (h *deleteRecordRequestHandler[E]) H(ctx context.Context, req DeleteRecordRequest) ([]E, error) {
	records, err := h.repo.Delete(ctx, req.Key)
	if err != nil {
		return nil, fmt.Errorf("could not delete record %s: %w", req.Key, err)
	}

	return records, nil
}

func NewResetRecordsRequestHandler[E any](repo Repository[E]) app.Request[ResetRecordsRequest, []E] {
	return &resetRecordsRequestHandler[E]{repo: repo}
}

type resetRecordsRequestHandler[E any] struct {
	repo Repository[E]
}

type ResetRecordsRequest struct{}

func (h *resetRecordsRequestHandler[E]) H(ctx context.Context, _ ResetRecordsRequest) ([]E, error) {
	records, err := h.repo.Reset(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not reset records: %w", err)
	}

	return records, nil
}
