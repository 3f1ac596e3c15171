package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/go-arrower/schoolstore/app"
	"github.com/go-arrower/schoolstore/repository/q"
)

func NewExportRecordsQueryHandler[E any](repo Repository[E], search ...q.Field[E]) app.Query[ExportRecordsQuery, []byte] {
	return &exportRecordsQueryHandler[E]{repo: repo, search: search}
}

type exportRecordsQueryHandler[E any] struct {
	repo   Repository[E]
	search []q.Field[E]
}

// ExportRecordsQuery exports all records matching Query as CSV.
type ExportRecordsQuery struct {
	Query string
}

func (h *exportRecordsQueryHandler[E]) H(ctx context.Context, query ExportRecordsQuery) ([]byte, error) {
	records, err := h.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list records: %w", err)
	}

	records = q.Search(records, query.Query, h.search...)
	columns := columnsOf[E]()

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if err := w.Write(columns); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}

	for _, record := range records {
		raw, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
		}

		row := make([]string, len(columns))
		for i, col := range gjson.GetManyBytes(raw, columns...) {
			row[i] = col.String()
		}

		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}

	return buf.Bytes(), nil
}

// columnsOf returns the json names of the fields of E, in declaration order.
func columnsOf[E any]() []string {
	typ := reflect.TypeOf(*new(E))
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil
	}

	columns := make([]string, 0, typ.NumField())

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}

		if name == "" {
			name = field.Name
		}

		columns = append(columns, name)
	}

	return columns
}
