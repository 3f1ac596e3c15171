package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

var (
	_ Store  = (*SQLiteStore)(nil)
	_ Lister = (*SQLiteStore)(nil)
	_ Pinger = (*SQLiteStore)(nil)
)

// SQLiteStore keeps all slots in one table of a SQLite database file.
type SQLiteStore struct {
	db      *sql.DB
	queries slotQueries
}

// NewSQLiteStore opens or creates the database at path.
// Use ":memory:" for a database that lives as long as the store.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("%w: could not create dir: %v", ErrStore, err) //nolint:errorlint // prevent err in api
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: could not open sqlite: %v", ErrStore, err) //nolint:errorlint // prevent err in api
	}

	// one connection, so ":memory:" is the same database for all calls and writers never compete
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS slots (
		name       TEXT PRIMARY KEY,
		payload    BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: could not create slots table: %v", ErrStore, err) //nolint:errorlint,lll // prevent err in api
	}

	return &SQLiteStore{db: db, queries: newSlotQueries(sq.Question)}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, slot string) ([]byte, error) {
	query, args, err := s.queries.load(slot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err) //nolint:errorlint // prevent err in api
	}

	var (
		name      string
		payload   []byte
		updatedAt int64
	)

	err = s.db.QueryRowContext(ctx, query, args...).Scan(&name, &payload, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, slot)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err) //nolint:errorlint // prevent err in api
	}

	return payload, nil
}

func (s *SQLiteStore) Store(ctx context.Context, slot string, blob []byte) error {
	if blob == nil {
		blob = []byte{} // payload is NOT NULL
	}

	query, args, err := s.queries.store(slot, blob, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err) //nolint:errorlint // prevent err in api
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err) //nolint:errorlint // prevent err in api
	}

	return nil
}

func (s *SQLiteStore) Slots(ctx context.Context) ([]SlotInfo, error) {
	query, args, err := s.queries.list()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err) //nolint:errorlint // prevent err in api
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err) //nolint:errorlint // prevent err in api
	}
	defer rows.Close()

	infos := []SlotInfo{}

	for rows.Next() {
		var (
			info      SlotInfo
			updatedAt int64
		)

		if err := rows.Scan(&info.Name, &info.Size, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoad, err) //nolint:errorlint // prevent err in api
		}

		info.UpdatedAt = time.UnixMilli(updatedAt).UTC()
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err) //nolint:errorlint // prevent err in api
	}

	return infos, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx) //nolint:wrapcheck // export the underlying error
}

func (s *SQLiteStore) Close() error {
	return s.db.Close() //nolint:wrapcheck // export the underlying error
}
