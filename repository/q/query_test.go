package q_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-arrower/schoolstore/repository/q"
)

type book struct {
	Name string
	Code string
}

var (
	byName = func(b book) string { return b.Name }
	byCode = func(b book) string { return b.Code }
)

func books() []book {
	return []book{
		{Name: "Sách Toán 10", Code: "Book001"},
		{Name: "Sách Ngữ văn 10", Code: "Book002"},
		{Name: "Sách hóa 11", Code: "Book003"},
	}
}

func TestSearch(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		query    string
		expNames []string
	}{
		"empty query": {
			"",
			[]string{"Sách Toán 10", "Sách Ngữ văn 10", "Sách hóa 11"},
		},
		"blank query": {
			"   ",
			[]string{"Sách Toán 10", "Sách Ngữ văn 10", "Sách hóa 11"},
		},
		"match name with diacritics": {
			"hóa",
			[]string{"Sách hóa 11"},
		},
		"ignore case": {
			"HÓA",
			[]string{"Sách hóa 11"},
		},
		"decomposed accent": {
			"ho\u0301a",
			[]string{"Sách hóa 11"},
		},
		"match code": {
			"book002",
			[]string{"Sách Ngữ văn 10"},
		},
		"match in any field keeps order": {
			"10",
			[]string{"Sách Toán 10", "Sách Ngữ văn 10"},
		},
		"no match": {
			"physics",
			[]string{},
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			found := q.Search(books(), tt.query, byName, byCode)

			names := []string{}
			for _, b := range found {
				names = append(names, b.Name)
			}

			assert.Equal(t, tt.expNames, names)
		})
	}

	t.Run("without fields", func(t *testing.T) {
		t.Parallel()

		assert.Len(t, q.Search(books(), "hóa"), 3)
	})
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	numbers := make([]int, 23)
	for i := range numbers {
		numbers[i] = i + 1
	}

	tests := []struct {
		page, size int
		exp        []int
	}{
		{1, 5, []int{1, 2, 3, 4, 5}},
		{2, 5, []int{6, 7, 8, 9, 10}},
		{5, 5, []int{21, 22, 23}},
		{6, 5, []int{}},
		{0, 5, []int{1, 2, 3, 4, 5}},
		{-3, 5, []int{1, 2, 3, 4, 5}},
		{3, 0, []int{21, 22, 23}},
		{1, 100, numbers},
		{math.MaxInt/10 + 2, 10, []int{}},
		{math.MaxInt, 5, []int{}},
		{2, math.MaxInt, []int{}},
		{1, math.MaxInt, numbers},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(fmt.Sprintf("page %d size %d", tt.page, tt.size), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.exp, q.Paginate(numbers, tt.page, tt.size))
		})
	}

	t.Run("page past the end of a small set", func(t *testing.T) {
		t.Parallel()

		assert.Len(t, q.Paginate(books(), 1, 5), 3)
		assert.NotNil(t, q.Paginate(books(), 2, 5))
		assert.Empty(t, q.Paginate(books(), 2, 5))
	})

	t.Run("empty set", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, []book{}, q.Paginate([]book{}, 1, 10))
		assert.Equal(t, []book{}, q.Paginate[book](nil, 1, 10))
	})
}

func TestView(t *testing.T) {
	t.Parallel()

	t.Run("search then paginate", func(t *testing.T) {
		t.Parallel()

		res := q.View(books(), " 10 ", 2, 1, byName, byCode)

		assert.Equal(t, []book{{Name: "Sách Ngữ văn 10", Code: "Book002"}}, res.Items)
		assert.Equal(t, 3, res.Total)
		assert.Equal(t, 2, res.Filtered)
		assert.Equal(t, 2, res.Page)
		assert.Equal(t, 1, res.Size)
		assert.Equal(t, 2, res.Pages)
		assert.Equal(t, "10", res.Query)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		res := q.View(books(), "", 0, 0, byName)

		assert.Len(t, res.Items, 3)
		assert.Equal(t, 1, res.Page)
		assert.Equal(t, q.DefaultPageSize, res.Size)
		assert.Equal(t, 1, res.Pages)
	})

	t.Run("nothing found", func(t *testing.T) {
		t.Parallel()

		res := q.View(books(), "physics", 1, 5, byName)

		assert.Empty(t, res.Items)
		assert.Equal(t, 0, res.Filtered)
		assert.Equal(t, 0, res.Pages)
	})
}

func TestView_hugePage(t *testing.T) {
	t.Parallel()

	res := q.View([]int{1, 2, 3}, "", math.MaxInt/10+2, math.MaxInt)
	assert.Equal(t, []int{}, res.Items)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, 3, res.Filtered)
}
