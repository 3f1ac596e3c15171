package init

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-arrower/schoolstore/contexts/admin/internal/application"
)

// Section gives access to the records of one section, without knowing their type.
// It is used by callers that only print or export records, e.g. the CLI.
type Section interface {
	Name() string
	List(ctx context.Context, query string, page int, size int) (Listing, error)
	Export(ctx context.Context, query string) ([]byte, error)
	// Reset restores the default records and returns their number.
	Reset(ctx context.Context) (int, error)
}

// Listing is one page of records, each encoded as JSON object.
type Listing struct {
	Records  []json.RawMessage `json:"items"`
	Total    int               `json:"total"`
	Filtered int               `json:"filtered"`
	Page     int               `json:"page"`
	Pages    int               `json:"pages"`
}

type entitySection[E any, P any] struct {
	name string
	app  application.App[E, P]
}

var _ Section = (*entitySection[struct{}, struct{}])(nil)

func (s *entitySection[E, P]) Name() string {
	return s.name
}

func (s *entitySection[E, P]) List(ctx context.Context, query string, page int, size int) (Listing, error) {
	res, err := s.app.ListRecords.H(ctx, application.ListRecordsQuery{Query: query, Page: page, Size: size})
	if err != nil {
		return Listing{}, fmt.Errorf("could not list %s: %w", s.name, err)
	}

	records := make([]json.RawMessage, 0, len(res.Items))

	for _, item := range res.Items {
		raw, err := json.Marshal(item)
		if err != nil {
			return Listing{}, fmt.Errorf("could not list %s: %w", s.name, err)
		}

		records = append(records, raw)
	}

	return Listing{
		Records:  records,
		Total:    res.Total,
		Filtered: res.Filtered,
		Page:     res.Page,
		Pages:    res.Pages,
	}, nil
}

func (s *entitySection[E, P]) Export(ctx context.Context, query string) ([]byte, error) {
	csv, err := s.app.ExportRecords.H(ctx, application.ExportRecordsQuery{Query: query})
	if err != nil {
		return nil, fmt.Errorf("could not export %s: %w", s.name, err)
	}

	return csv, nil
}

func (s *entitySection[E, P]) Reset(ctx context.Context) (int, error) {
	records, err := s.app.ResetRecords.H(ctx, application.ResetRecordsRequest{})
	if err != nil {
		return 0, fmt.Errorf("could not reset %s: %w", s.name, err)
	}

	return len(records), nil
}
