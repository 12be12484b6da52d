package memory

import (
	"context"
	"sync"

	"github.com/aretw0/domino/pkg/domain"
)

// Store implements ports.SnapshotStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Snapshot
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Snapshot),
	}
}

// Save persists the snapshot in memory.
func (s *Store) Save(ctx context.Context, id string, snapshot *domain.Snapshot) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := copySnapshot(snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = copied
	return nil
}

// Load retrieves the snapshot from memory.
func (s *Store) Load(ctx context.Context, id string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.data[id]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}

	// Copy on read so the caller can't mutate store state through the maps
	return copySnapshot(snapshot), nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns stored domino IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func copySnapshot(s *domain.Snapshot) *domain.Snapshot {
	return domain.FromSnapshot(s, nil).Snapshot()
}
