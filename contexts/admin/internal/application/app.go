// Package application contains the use cases of the admin sections.
// They are generic over the record type E and its patch type P, so each section gets the same set.
package application

import (
	"context"
	"errors"

	"github.com/go-arrower/schoolstore/app"
	"github.com/go-arrower/schoolstore/repository/q"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrUnknownEntity = errors.New("unknown entity")
	ErrExportFailed  = errors.New("export failed")
)

// Repository is the record store of one section.
type Repository[E any] interface {
	List(ctx context.Context) ([]E, error)
	GetByKey(ctx context.Context, key string) (E, bool, error)
	Create(ctx context.Context, patch any) (E, error)
	Update(ctx context.Context, key string, patch any) (E, bool, error)
	Delete(ctx context.Context, key string) ([]E, error)
	Reset(ctx context.Context) ([]E, error)
}

// App is a dependency injection container.
type App[E any, P any] struct {
	ListRecords   app.Query[ListRecordsQuery, q.Result[E]]
	GetRecord     app.Query[GetRecordQuery, E]
	ExportRecords app.Query[ExportRecordsQuery, []byte]
	CreateRecord  app.Request[CreateRecordRequest[E], E]
	UpdateRecord  app.Request[UpdateRecordRequest[P], E]
	DeleteRecord  app.Request[DeleteRecordRequest, []E]
	ResetRecords  app.Request[ResetRecordsRequest, []E]
}

// NewApp returns the use cases without any decorators.
func NewApp[E any, P any](repo Repository[E], search ...q.Field[E]) App[E, P] {
	return App[E, P]{
		ListRecords:   NewListRecordsQueryHandler(repo, search...),
		GetRecord:     NewGetRecordQueryHandler(repo),
		ExportRecords: NewExportRecordsQueryHandler(repo, search...),
		CreateRecord:  NewCreateRecordRequestHandler(repo),
		UpdateRecord:  NewUpdateRecordRequestHandler[E, P](repo),
		DeleteRecord:  NewDeleteRecordRequestHandler(repo),
		ResetRecords:  NewResetRecordsRequestHandler(repo),
	}
}
