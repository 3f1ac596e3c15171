package application_test

import (
	"context"
	"testing"

	"github.com/go-arrower/schoolstore/contexts/admin/internal/application"
	"github.com/go-arrower/schoolstore/contexts/admin/internal/domain"
	"github.com/go-arrower/schoolstore/repository"
)

var ctx = context.Background()

func newBooks(t *testing.T) (application.App[domain.Book, domain.BookPatch], *repository.MemoryStore) {
	t.Helper()

	books := domain.Books()
	store := repository.NewMemoryStore()
	repo := repository.NewSlotRepository(store, books.Name, books.Seed())

	return application.NewApp[domain.Book, domain.BookPatch](repo, books.Search...), store
}

func ptr[T any](v T) *T {
	return &v
}
