package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStoreSuite runs the behaviour every Store has to fulfil against the store returned by newStore.
// newStore is called once per subtest and has to return an empty store.
func TestStoreSuite(t *testing.T, newStore func(t *testing.T) Store) { //nolint:tparallel // the caller decides
	t.Helper()

	if newStore == nil {
		t.Fatal("store constructor is nil")
	}

	ctx := context.Background()

	t.Run("load missing slot", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)

		blob, err := store.Load(ctx, "missing")
		assert.ErrorIs(t, err, ErrSlotNotFound)
		assert.Nil(t, blob)
	})

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		blob := []byte(`[{"key":"1","name":"Sách hóa 11"}]`)

		err := store.Store(ctx, "books", blob)
		require.NoError(t, err)

		loaded, err := store.Load(ctx, "books")
		require.NoError(t, err)
		assert.Equal(t, blob, loaded)
	})

	t.Run("overwrite", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)

		require.NoError(t, store.Store(ctx, "books", []byte(`[1]`)))
		require.NoError(t, store.Store(ctx, "books", []byte(`[1,2]`)))

		loaded, err := store.Load(ctx, "books")
		require.NoError(t, err)
		assert.Equal(t, []byte(`[1,2]`), loaded)
	})

	t.Run("slots are independent", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)

		require.NoError(t, store.Store(ctx, "books", []byte(`["book"]`)))
		require.NoError(t, store.Store(ctx, "rewards", []byte(`["reward"]`)))

		books, err := store.Load(ctx, "books")
		require.NoError(t, err)
		assert.Equal(t, []byte(`["book"]`), books)

		rewards, err := store.Load(ctx, "rewards")
		require.NoError(t, err)
		assert.Equal(t, []byte(`["reward"]`), rewards)
	})

	t.Run("returned blob is a copy", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		blob := []byte(`["original"]`)

		require.NoError(t, store.Store(ctx, "books", blob))
		blob[2] = 'X'

		loaded, err := store.Load(ctx, "books")
		require.NoError(t, err)
		assert.Equal(t, []byte(`["original"]`), loaded)

		loaded[2] = 'Y'

		again, err := store.Load(ctx, "books")
		require.NoError(t, err)
		assert.Equal(t, []byte(`["original"]`), again)
	})

	t.Run("concurrent writes", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		wg := sync.WaitGroup{}

		const routines = 10
		wg.Add(routines)

		for i := 0; i < routines; i++ {
			i := i
			go func() {
				defer wg.Done()

				err := store.Store(ctx, fmt.Sprintf("slot-%d", i%3), []byte(fmt.Sprintf(`[%d]`, i)))
				assert.NoError(t, err)
			}()
		}

		wg.Wait()

		for i := 0; i < 3; i++ {
			_, err := store.Load(ctx, fmt.Sprintf("slot-%d", i))
			assert.NoError(t, err)
		}
	})

	t.Run("list slots", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)

		lister, ok := store.(Lister)
		if !ok {
			t.Skip("store does not list its slots")
		}

		require.NoError(t, store.Store(ctx, "students", []byte(`[]`)))
		require.NoError(t, store.Store(ctx, "books", []byte(`[1,2,3]`)))

		slots, err := lister.Slots(ctx)
		require.NoError(t, err)
		require.Len(t, slots, 2)
		assert.Equal(t, "books", slots[0].Name, "sorted by name")
		assert.Equal(t, int64(7), slots[0].Size)
		assert.Equal(t, "students", slots[1].Name)
		assert.False(t, slots[1].UpdatedAt.IsZero())
	})
}
