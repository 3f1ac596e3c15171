// Package q derives the view of a record set shown in a table:
// a case-insensitive search over some text fields and a page of the result.
package q

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DefaultPageSize is used if a page size below 1 is requested.
const DefaultPageSize = 10

// Field returns the text of one searchable field of a record.
type Field[E any] func(e E) string

// Search returns all records, where at least one of the fields contains query.
// The match ignores case and Unicode normalisation forms, so "hóa" finds "Sách Hóa 11",
// whether the accent is precomposed or not.
// A blank query returns records unchanged. The order of records is kept.
func Search[E any](records []E, query string, fields ...Field[E]) []E {
	needle := fold(strings.TrimSpace(query))
	if needle == "" || len(fields) == 0 {
		return records
	}

	found := make([]E, 0, len(records))

	for _, record := range records {
		for _, field := range fields {
			if strings.Contains(fold(field(record)), needle) {
				found = append(found, record)

				break
			}
		}
	}

	return found
}

func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// Paginate returns the 1-based page of records: records[(page-1)*size : page*size].
// Pages past the end are empty, never nil. page < 1 is the first page,
// size < 1 uses DefaultPageSize.
func Paginate[E any](records []E, page int, size int) []E {
	page, size = normalise(page, size)

	if page > pages(len(records), size) {
		return []E{}
	}

	start := (page - 1) * size
	end := start + min(size, len(records)-start)

	return records[start:end]
}

// pages divides without adding first, so page numbers and sizes up to math.MaxInt can not overflow.
func pages(n int, size int) int {
	if n == 0 {
		return 0
	}

	return (n-1)/size + 1
}

func normalise(page int, size int) (int, int) {
	if page < 1 {
		page = 1
	}

	if size < 1 {
		size = DefaultPageSize
	}

	return page, size
}

// Result is one page of a searched record set, with everything a table needs to render its pager.
type Result[E any] struct {
	Items []E `json:"items"`
	// Total is the number of records before searching.
	Total int `json:"total"`
	// Filtered is the number of records matching the query.
	Filtered int `json:"filtered"`
	Page     int `json:"page"`
	Size     int `json:"size"`
	// Pages is the number of pages of the filtered records.
	Pages int    `json:"pages"`
	Query string `json:"query,omitempty"`
}

// View searches records and returns the requested page of the matches.
func View[E any](records []E, query string, page int, size int, fields ...Field[E]) Result[E] {
	page, size = normalise(page, size)
	found := Search(records, query, fields...)

	return Result[E]{
		Items:    Paginate(found, page, size),
		Total:    len(records),
		Filtered: len(found),
		Page:     page,
		Size:     size,
		Pages:    pages(len(found), size),
		Query:    strings.TrimSpace(query),
	}
}
