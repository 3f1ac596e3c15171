package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/go-arrower/schoolstore/repository"
)

var (
	ctx = context.Background()

	// stopContainers is set by the integration tests.
	stopContainers func()
)

func TestMain(m *testing.M) {
	if stopContainers == nil {
		goleak.VerifyTestMain(m)
		return
	}

	code := m.Run()

	stopContainers()
	os.Exit(code)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	repository.TestStoreSuite(t, func(*testing.T) repository.Store {
		return repository.NewMemoryStore()
	})
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	repository.TestStoreSuite(t, func(t *testing.T) repository.Store {
		store, err := repository.NewFileStore(t.TempDir(), ".json")
		require.NoError(t, err)

		return store
	})

	t.Run("write human readable files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		store, err := repository.NewFileStore(filepath.Join(dir, "data"), "json")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "data"), store.Dir())

		err = store.Store(ctx, "books", []byte(`["Sách hóa 11"]`))
		require.NoError(t, err)

		content, err := os.ReadFile(filepath.Join(dir, "data", "books.json"))
		require.NoError(t, err)
		assert.Equal(t, `["Sách hóa 11"]`, string(content))

		entries, err := os.ReadDir(filepath.Join(dir, "data"))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "no temporary file left behind")
	})

	t.Run("ignore unrelated files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		store, err := repository.NewFileStore(dir, ".json")
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "books.123.tmp"), []byte("[]"), 0o600))
		require.NoError(t, os.Mkdir(filepath.Join(dir, "old.json"), 0o750))
		require.NoError(t, store.Store(ctx, "books", []byte(`[]`)))

		slots, err := store.Slots(ctx)
		require.NoError(t, err)
		require.Len(t, slots, 1)
		assert.Equal(t, "books", slots[0].Name)
	})

	t.Run("reject slot names leaving the dir", func(t *testing.T) {
		t.Parallel()

		store, err := repository.NewFileStore(t.TempDir(), ".json")
		require.NoError(t, err)

		for _, slot := range []string{"", ".", "..", "../books", "a/b", `a\b`} {
			err := store.Store(ctx, slot, []byte(`[]`))
			assert.ErrorIs(t, err, repository.ErrStore, slot)

			_, err = store.Load(ctx, slot)
			assert.ErrorIs(t, err, repository.ErrLoad, slot)
		}
	})
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()

	repository.TestStoreSuite(t, func(t *testing.T) repository.Store {
		store, err := repository.NewSQLiteStore(ctx, ":memory:")
		require.NoError(t, err)

		t.Cleanup(func() { _ = store.Close() })

		return store
	})

	t.Run("persist in file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "db", "schoolstore.db")

		store, err := repository.NewSQLiteStore(ctx, path)
		require.NoError(t, err)
		require.NoError(t, store.Ping(ctx))
		require.NoError(t, store.Store(ctx, "books", []byte(`[1]`)))
		require.NoError(t, store.Close())

		store, err = repository.NewSQLiteStore(ctx, path)
		require.NoError(t, err)

		t.Cleanup(func() { _ = store.Close() })

		blob, err := store.Load(ctx, "books")
		require.NoError(t, err)
		assert.Equal(t, []byte(`[1]`), blob)
	})
}
