package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	_ Store  = (*PostgresStore)(nil)
	_ Lister = (*PostgresStore)(nil)
	_ Pinger = (*PostgresStore)(nil)
)

// PostgresStore keeps all slots in the table slots.
// The table is created by the migrations of the postgres package.
type PostgresStore struct {
	pg      *pgxpool.Pool
	queries slotQueries
}

func NewPostgresStore(pg *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pg: pg, queries: newSlotQueries(sq.Dollar)}
}

type slotRow struct {
	Name      string    `db:"name"`
	Payload   []byte    `db:"payload"`
	Size      int64     `db:"size"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (s *PostgresStore) Load(ctx context.Context, slot string) ([]byte, error) {
	query, args, err := s.queries.load(slot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err) //nolint:errorlint // prevent err in api
	}

	var row slotRow

	err = pgxscan.Get(ctx, s.pg, &row, query, args...)
	if pgxscan.NotFound(err) {
		return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, slot)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err) //nolint:errorlint // prevent err in api
	}

	return row.Payload, nil
}

func (s *PostgresStore) Store(ctx context.Context, slot string, blob []byte) error {
	if blob == nil {
		blob = []byte{} // payload is NOT NULL
	}

	query, args, err := s.queries.store(slot, blob, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err) //nolint:errorlint // prevent err in api
	}

	if _, err := s.pg.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err) //nolint:errorlint // prevent err in api
	}

	return nil
}

func (s *PostgresStore) Slots(ctx context.Context) ([]SlotInfo, error) {
	query, args, err := s.queries.list()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err) //nolint:errorlint // prevent err in api
	}

	var rows []slotRow
	if err := pgxscan.Select(ctx, s.pg, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err) //nolint:errorlint // prevent err in api
	}

	infos := make([]SlotInfo, 0, len(rows))
	for _, row := range rows {
		infos = append(infos, SlotInfo{Name: row.Name, Size: row.Size, UpdatedAt: row.UpdatedAt.UTC()})
	}

	return infos, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pg.Ping(ctx) //nolint:wrapcheck // export the underlying error
}
