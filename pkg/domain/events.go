package domain

import "time"

// CommitEvent describes a committed generation.
type CommitEvent struct {
	// ID is the stored domino's ID; empty for dominoes that are not stored.
	ID        string      `json:"id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Op        Op          `json:"op"`
	Diff      *ValuesDiff `json:"diff,omitempty"`
}

// LifecycleHooks defines callbacks for store observability.
type LifecycleHooks struct {
	// OnCommit runs after a new generation was written back through the adapter.
	OnCommit func(*CommitEvent)
}
