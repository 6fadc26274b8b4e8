// Package storagetest holds the behaviour every storage.Store backend must
// share. Backend test files call Run with a constructor for a fresh store.
package storagetest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zoblogs/internal/storage"
)

func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("PutThenGet", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		v, err := s.Put(ctx, "platformRegistry", []byte(`{"coins":[]}`), 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)

		e, err := s.Get(ctx, "platformRegistry")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"coins":[]}`), e.Value)
		assert.Equal(t, int64(1), e.Version)
	})

	t.Run("VersionAdvances", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Put(ctx, "k", []byte("a"), 0)
		require.NoError(t, err)
		v, err := s.Put(ctx, "k", []byte("b"), 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), v)

		e, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("b"), e.Value)
	})

	t.Run("StaleVersionConflicts", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Put(ctx, "k", []byte("a"), 0)
		require.NoError(t, err)

		_, err = s.Put(ctx, "k", []byte("b"), 0)
		assert.ErrorIs(t, err, storage.ErrVersionConflict)

		_, err = s.Put(ctx, "k", []byte("b"), 5)
		assert.ErrorIs(t, err, storage.ErrVersionConflict)

		e, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("a"), e.Value)
	})

	t.Run("InvalidKey", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Put(ctx, "../escape", []byte("x"), 0)
		assert.ErrorIs(t, err, storage.ErrInvalidInput)
		_, err = s.Get(ctx, "")
		assert.ErrorIs(t, err, storage.ErrInvalidInput)
	})

	t.Run("Keys", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for _, k := range []string{"postCids", "platformRegistry"} {
			_, err := s.Put(ctx, k, []byte("[]"), 0)
			require.NoError(t, err)
		}
		keys, err := s.Keys(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"postCids", "platformRegistry"}, keys)
	})

	t.Run("ConcurrentWritersOneWins", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		const writers = 8
		var wg sync.WaitGroup
		results := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Put(ctx, "race", []byte("x"), 0)
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		wins := 0
		for err := range results {
			if err == nil {
				wins++
				continue
			}
			assert.ErrorIs(t, err, storage.ErrVersionConflict)
		}
		assert.Equal(t, 1, wins)
	})
}
