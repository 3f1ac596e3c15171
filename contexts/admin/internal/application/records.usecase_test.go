package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/schoolstore/contexts/admin/internal/application"
	"github.com/go-arrower/schoolstore/contexts/admin/internal/domain"
)

func TestListRecordsQueryHandler_H(t *testing.T) {
	t.Parallel()

	t.Run("seeded books", func(t *testing.T) {
		t.Parallel()

		books, _ := newBooks(t)

		res, err := books.ListRecords.H(ctx, application.ListRecordsQuery{})
		require.NoError(t, err)
		assert.Len(t, res.Items, 3)
		assert.Equal(t, 3, res.Total)
		assert.Equal(t, 1, res.Page)
	})

	t.Run("search", func(t *testing.T) {
		t.Parallel()

		books, _ := newBooks(t)

		res, err := books.ListRecords.H(ctx, application.ListRecordsQuery{Query: "hóa"})
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, "Sách hóa 11", res.Items[0].Name)
		assert.Equal(t, 3, res.Total)
		assert.Equal(t, 1, res.Filtered)
	})

	t.Run("page past the end", func(t *testing.T) {
		t.Parallel()

		books, _ := newBooks(t)

		res, err := books.ListRecords.H(ctx, application.ListRecordsQuery{Page: 1, Size: 5})
		require.NoError(t, err)
		assert.Len(t, res.Items, 3)

		res, err = books.ListRecords.H(ctx, application.ListRecordsQuery{Page: 2, Size: 5})
		require.NoError(t, err)
		assert.Empty(t, res.Items)
		assert.Equal(t, 1, res.Pages)
	})
}

func TestGetRecordQueryHandler_H(t *testing.T) {
	t.Parallel()

	books, _ := newBooks(t)

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		book, err := books.GetRecord.H(ctx, application.GetRecordQuery{Key: "1"})
		require.NoError(t, err)
		assert.Equal(t, "Sách Toán 10", book.Name)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		_, err := books.GetRecord.H(ctx, application.GetRecordQuery{Key: "404"})
		assert.ErrorIs(t, err, application.ErrNotFound)
	})
}

func TestCreateRecordRequestHandler_H(t *testing.T) {
	t.Parallel()

	books, _ := newBooks(t)

	created, err := books.CreateRecord.H(ctx, application.CreateRecordRequest[domain.Book]{
		Record: domain.Book{Key: "1", Name: "Sách Toán 12", Code: "Book004"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, "1", created.Key)

	res, err := books.ListRecords.H(ctx, application.ListRecordsQuery{})
	require.NoError(t, err)
	require.Len(t, res.Items, 4)
	assert.Equal(t, created, res.Items[3])
}

func TestUpdateRecordRequestHandler_H(t *testing.T) {
	t.Parallel()

	t.Run("merge", func(t *testing.T) {
		t.Parallel()

		books, _ := newBooks(t)

		updated, err := books.UpdateRecord.H(ctx, application.UpdateRecordRequest[domain.BookPatch]{
			Key:   "3",
			Patch: domain.BookPatch{PublishedYear: ptr(2024)},
		})
		require.NoError(t, err)
		assert.Equal(t, 2024, updated.PublishedYear)
		assert.Equal(t, "Sách hóa 11", updated.Name)
		assert.Equal(t, "Book003", updated.Code)
	})

	t.Run("not found writes nothing", func(t *testing.T) {
		t.Parallel()

		books, store := newBooks(t)

		_, err := books.ListRecords.H(ctx, application.ListRecordsQuery{})
		require.NoError(t, err)

		before, err := store.Load(ctx, "books")
		require.NoError(t, err)

		_, err = books.UpdateRecord.H(ctx, application.UpdateRecordRequest[domain.BookPatch]{
			Key:   "404",
			Patch: domain.BookPatch{Name: ptr("nobody")},
		})
		assert.ErrorIs(t, err, application.ErrNotFound)

		after, err := store.Load(ctx, "books")
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestDeleteRecordRequestHandler_H(t *testing.T) {
	t.Parallel()

	books, _ := newBooks(t)

	records, err := books.DeleteRecord.H(ctx, application.DeleteRecordRequest{Key: "2"})
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = books.DeleteRecord.H(ctx, application.DeleteRecordRequest{Key: "2"})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestResetRecordsRequestHandler_H(t *testing.T) {
	t.Parallel()

	books, _ := newBooks(t)

	_, err := books.DeleteRecord.H(ctx, application.DeleteRecordRequest{Key: "1"})
	require.NoError(t, err)

	records, err := books.ResetRecords.H(ctx, application.ResetRecordsRequest{})
	require.NoError(t, err)
	assert.Equal(t, domain.Books().Seed(), records)
}
