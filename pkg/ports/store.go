package ports

import (
	"context"

	"github.com/aretw0/domino/pkg/domain"
)

// SnapshotStore defines the interface for persisting domino snapshots.
// It backs providers that outlive the process; the domino core never calls it.
type SnapshotStore interface {
	// Save persists the snapshot for a given domino ID.
	Save(ctx context.Context, id string, snapshot *domain.Snapshot) error

	// Load retrieves the snapshot for a given domino ID.
	// Returns domain.ErrSnapshotNotFound if the ID does not exist.
	Load(ctx context.Context, id string) (*domain.Snapshot, error)

	// Delete removes the snapshot for a given domino ID.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all stored snapshots.
	List(ctx context.Context) ([]string, error)
}
