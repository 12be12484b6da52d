package ports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/domino/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore implementation
// adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	id := "contract-test-domino-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		// 1. Create a domino with a mutation
		d := domain.From(domain.Values{"theme": "light", "count": 42}).
			SetDefaults(domain.Values{"count": 43}).
			Update(domain.Values{"theme": "dark"})

		// 2. Save
		err := store.Save(ctx, id, d.Snapshot())
		require.NoError(t, err, "Save should not return error")

		// 3. Load
		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "light", loaded.Defaults["theme"])
		assert.Equal(t, "dark", loaded.Mutations["theme"])
		// JSON persistence turns ints into float64, so only compare loosely.
		assert.EqualValues(t, 43, loaded.Defaults["count"])
		assert.EqualValues(t, 42, loaded.InitialDefaults["count"])

		restored := domain.FromSnapshot(loaded, nil)
		assert.True(t, restored.IsModified())
		assert.Equal(t, "dark", restored.Values()["theme"])
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		d := domain.From(domain.Values{"theme": "light"})
		require.NoError(t, store.Save(ctx, id, d.Snapshot()))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, loaded.Mutations)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		// Setup
		err := store.Save(ctx, id, domain.From(domain.Values{"a": 1}).Snapshot())
		require.NoError(t, err)

		// Delete
		err = store.Delete(ctx, id)
		require.NoError(t, err, "Delete should not return error")

		// Verify gone
		_, err = store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")

		// Deleting twice is not an error
		assert.NoError(t, store.Delete(ctx, id))
	})

	t.Run("List", func(t *testing.T) {
		// Setup: Create 2 dominoes
		id1 := id + "-1"
		id2 := id + "-2"
		_ = store.Save(ctx, id1, domain.From(domain.Values{"a": 1}).Snapshot())
		_ = store.Save(ctx, id2, domain.From(domain.Values{"a": 2}).Snapshot())

		// Ensure cleanup
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		// List
		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}

// RunProviderContract verifies that a StateProvider hosting dominoes commits updates
// in order, without losing concurrent ones.
// newProvider must return a fresh provider holding initial.
func RunProviderContract(t *testing.T, newProvider func(t *testing.T, initial *domain.Domino) StateProvider[*domain.Domino]) {
	t.Run("Get Returns Initial", func(t *testing.T) {
		initial := domain.From(domain.Values{"count": 0})
		p := newProvider(t, initial)

		assert.Equal(t, domain.Values{"count": 0}, p.Get().Values())
		assert.False(t, p.Get().IsModified())
	})

	t.Run("Set Receives Current Value", func(t *testing.T) {
		p := newProvider(t, domain.From(domain.Values{"count": 0}))

		p.Set(func(prev *domain.Domino) *domain.Domino {
			return prev.Update(domain.Values{"count": 1})
		})
		p.Set(func(prev *domain.Domino) *domain.Domino {
			assert.Equal(t, 1, prev.Values()["count"])
			return prev.Update(domain.Values{"count": 2})
		})

		assert.Equal(t, 2, p.Get().Values()["count"])
		assert.True(t, p.Get().IsModified())
	})

	t.Run("Replace", func(t *testing.T) {
		p := newProvider(t, domain.From(domain.Values{"count": 0}))
		next := domain.From(domain.Values{"count": 10})

		p.Set(Replace(next))

		assert.Equal(t, 10, p.Get().Values()["count"])
	})

	t.Run("Concurrent Updates Are Not Lost", func(t *testing.T) {
		p := newProvider(t, domain.From(domain.Values{"count": 0}))
		const writers = 50

		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				p.Set(func(prev *domain.Domino) *domain.Domino {
					n, _ := domain.Get[int](prev, "count")
					return prev.Update(domain.Values{"count": n + 1})
				})
			}()
		}
		wg.Wait()

		assert.Equal(t, writers, p.Get().Values()["count"])
	})

	t.Run("Subscribers Observe Commits", func(t *testing.T) {
		p := newProvider(t, domain.From(domain.Values{"count": 0}))
		sub, ok := p.(Subscriber[*domain.Domino])
		if !ok {
			t.Skip("provider does not support subscriptions")
		}

		var mu sync.Mutex
		var seen []any
		unsubscribe := sub.Subscribe(func(d *domain.Domino) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, d.Values()["count"])
		})

		p.Set(func(prev *domain.Domino) *domain.Domino { return prev.Update(domain.Values{"count": 1}) })
		unsubscribe()
		p.Set(func(prev *domain.Domino) *domain.Domino { return prev.Update(domain.Values{"count": 2}) })

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []any{1}, seen)
	})
}
