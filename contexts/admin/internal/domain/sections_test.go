package domain_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/go-arrower/schoolstore/aassert"
	"github.com/go-arrower/schoolstore/contexts/admin/internal/domain"
	"github.com/go-arrower/schoolstore/repository/q"
)

func TestBooks(t *testing.T) {
	t.Parallel()

	books := domain.Books()
	assert.Equal(t, "books", books.Name)
	assert.Equal(t, "file", books.Attachment)

	seed := books.Seed()
	assert.Equal(t, []string{"1", "2", "3"}, []string{seed[0].Key, seed[1].Key, seed[2].Key})

	found := q.Search(seed, "hóa", books.Search...)
	if assert.Len(t, found, 1) {
		assert.Equal(t, "Sách hóa 11", found[0].Name)
	}
}

func TestSeedsAreValid(t *testing.T) {
	t.Parallel()

	validate := validator.New()

	assertValid := func(t *testing.T, records ...any) {
		t.Helper()

		for _, r := range records {
			assert.NoError(t, validate.Struct(r))
		}
	}

	for _, r := range domain.Books().Seed() {
		assertValid(t, r)
	}

	for _, r := range domain.Rewards().Seed() {
		assertValid(t, r)
	}

	for _, r := range domain.StoreItems().Seed() {
		assertValid(t, r)
	}

	for _, r := range domain.Students().Seed() {
		assertValid(t, r)
	}
}

func TestValidation(t *testing.T) {
	t.Parallel()

	validate := validator.New()

	t.Run("name and code are required", func(t *testing.T) {
		t.Parallel()

		assert.Error(t, validate.Struct(domain.Book{Code: "Book004"}))
		assert.Error(t, validate.Struct(domain.Book{Name: "Sách Toán 12"}))
		assert.NoError(t, validate.Struct(domain.Book{Name: "Sách Toán 12", Code: "Book004"}))
	})

	t.Run("no negative numbers", func(t *testing.T) {
		t.Parallel()

		assert.Error(t, validate.Struct(domain.StoreItem{Name: "n", Code: "c", Price: -1}))

		minus := -5
		assert.Error(t, validate.Struct(domain.RewardPatch{Points: &minus}))
	})

	t.Run("empty patch is valid", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, validate.Struct(domain.BookPatch{}))
		assert.NoError(t, validate.Struct(domain.StudentPatch{}))
	})

	t.Run("patch can not blank the name", func(t *testing.T) {
		t.Parallel()

		empty := ""
		assert.Error(t, validate.Struct(domain.BookPatch{Name: &empty}))
	})

	t.Run("student email", func(t *testing.T) {
		t.Parallel()

		assert.Error(t, validate.Struct(domain.Student{Name: "n", Code: "c", Email: "not-an-email"}))
		assert.NoError(t, validate.Struct(domain.Student{Name: "n", Code: "c"}))
	})
}

func TestPatches(t *testing.T) {
	t.Parallel()

	aassert.PatchOf(t, domain.Book{}, domain.BookPatch{}, "key")
	aassert.PatchOf(t, domain.Reward{}, domain.RewardPatch{}, "key")
	aassert.PatchOf(t, domain.StoreItem{}, domain.StoreItemPatch{}, "key")
	aassert.PatchOf(t, domain.Student{}, domain.StudentPatch{}, "key")
}
