/*
Package persisted provides a write-through StateProvider: the current domino
lives in memory and every commit is saved to a ports.SnapshotStore.

The domino core assumes Set always succeeds, so persistence failures are
logged and kept for inspection through Err instead of being returned.
*/
package persisted

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/domino/internal/logging"
	"github.com/aretw0/domino/pkg/adapters/memory"
	"github.com/aretw0/domino/pkg/domain"
	"github.com/aretw0/domino/pkg/ports"
)

// Provider implements ports.StateProvider and ports.Subscriber for one domino ID.
type Provider struct {
	id      string
	store   ports.SnapshotStore
	cell    *memory.Cell[*domain.Domino]
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	lastErr error
}

var (
	_ ports.StateProvider[*domain.Domino] = (*Provider)(nil)
	_ ports.Subscriber[*domain.Domino]    = (*Provider)(nil)
)

// Option configures the Provider.
type Option func(*Provider)

// WithLogger configures a logger for persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// WithTimeout bounds every save (default: 5s).
func WithTimeout(timeout time.Duration) Option {
	return func(p *Provider) {
		p.timeout = timeout
	}
}

// Open loads the snapshot stored under id. If there is none, init becomes the
// current generation and is saved immediately to reserve the ID.
// Computed fields registered on init are re-attached to a loaded snapshot.
func Open(ctx context.Context, store ports.SnapshotStore, id string, init *domain.Domino, opts ...Option) (*Provider, error) {
	if id == "" {
		return nil, fmt.Errorf("id cannot be empty")
	}

	p := &Provider{
		id:      id,
		store:   store,
		logger:  logging.NewNop(),
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}

	current, err := load(ctx, store, id, init)
	if err != nil {
		return nil, err
	}
	p.cell = memory.NewCell(current)
	return p, nil
}

func load(ctx context.Context, store ports.SnapshotStore, id string, init *domain.Domino) (*domain.Domino, error) {
	snapshot, err := store.Load(ctx, id)
	if err == nil {
		return domain.FromSnapshot(snapshot, init.ComputedFields()), nil
	}
	if !errors.Is(err, domain.ErrSnapshotNotFound) {
		return nil, fmt.Errorf("failed to load domino %q: %w", id, err)
	}

	if err := store.Save(ctx, id, init.Snapshot()); err != nil {
		return nil, fmt.Errorf("failed to initialize domino %q: %w", id, err)
	}
	return init, nil
}

// ID returns the domino ID this provider persists to.
func (p *Provider) ID() string {
	return p.id
}

// Get returns the current generation.
func (p *Provider) Get() *domain.Domino {
	return p.cell.Get()
}

// Set commits the updated generation and saves it while still holding the
// cell, so saves reach the store in commit order.
func (p *Provider) Set(update ports.Updater[*domain.Domino]) {
	p.cell.Set(func(prev *domain.Domino) *domain.Domino {
		next := update(prev)
		if next != prev {
			p.save(next)
		}
		return next
	})
}

// Subscribe registers listener for every commit.
func (p *Provider) Subscribe(listener func(*domain.Domino)) (unsubscribe func()) {
	return p.cell.Subscribe(listener)
}

// Err returns the error of the most recent save, or nil if it succeeded.
func (p *Provider) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func (p *Provider) save(d *domain.Domino) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	err := p.store.Save(ctx, p.id, d.Snapshot())
	if err != nil {
		p.logger.Error("Failed to persist domino", "domino_id", p.id, "err", err)
	}

	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
}
