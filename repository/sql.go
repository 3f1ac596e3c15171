package repository

import (
	sq "github.com/Masterminds/squirrel"
)

// slotQueries builds the statements shared by the SQL based stores.
// SQLite and PostgreSQL both understand the upsert, they only differ in the placeholder.
type slotQueries struct {
	sb sq.StatementBuilderType
}

func newSlotQueries(placeholder sq.PlaceholderFormat) slotQueries {
	return slotQueries{sb: sq.StatementBuilder.PlaceholderFormat(placeholder)}
}

func (q slotQueries) load(slot string) (string, []any, error) {
	return q.sb.Select("name", "payload", "updated_at"). //nolint:wrapcheck // callers wrap
		From("slots").
		Where(sq.Eq{"name": slot}).
		ToSql()
}

// store takes updatedAt as any, as each database keeps the timestamp in its own type.
func (q slotQueries) store(slot string, blob []byte, updatedAt any) (string, []any, error) {
	return q.sb.Insert("slots"). //nolint:wrapcheck // callers wrap
		Columns("name", "payload", "updated_at").
		Values(slot, blob, updatedAt).
		Suffix("ON CONFLICT (name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at").
		ToSql()
}

func (q slotQueries) list() (string, []any, error) {
	return q.sb.Select("name", "length(payload) AS size", "updated_at"). //nolint:wrapcheck // callers wrap
		From("slots").
		OrderBy("name").
		ToSql()
}
