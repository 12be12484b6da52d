package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/domino/internal/logging"
	"github.com/aretw0/domino/pkg/domain"
	"github.com/aretw0/domino/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates domino access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.SnapshotStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker   ports.DistributedLocker // Optional distributed locker
	lockTTL  time.Duration
	computed domain.ComputedFields
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the lease of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithComputedField registers a computed field attached to every loaded domino.
func WithComputedField(key string, compute domain.ComputeFunc, hash domain.HashFunc) Option {
	return func(m *Manager) {
		m.computed[key] = domain.Computed(compute, hash)
	}
}

// WithHooks sets callbacks fired after every committing Apply.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// NewManager creates a new Manager with the given persistence store.
func NewManager(store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		locks:    make(map[string]*lockEntry),
		lockTTL:  DefaultLockTTL,
		computed: domain.ComputedFields{},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

func (m *Manager) restore(snapshot *domain.Snapshot) *domain.Domino {
	return domain.FromSnapshot(snapshot, m.computed)
}

func (m *Manager) load(ctx context.Context, id string) (*domain.Domino, error) {
	snapshot, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.restore(snapshot), nil
}

// Load retrieves an existing domino from the store.
func (m *Manager) Load(ctx context.Context, id string) (*domain.Domino, error) {
	var d *domain.Domino
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		d, err = m.load(ctx, id)
		return err
	})
	return d, err
}

// LoadOrCreate loads a domino. If not found, it creates one from defaults
// and persists it immediately to reserve the ID.
func (m *Manager) LoadOrCreate(ctx context.Context, id string, defaults domain.Values) (*domain.Domino, error) {
	var d *domain.Domino
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		d, err = m.load(ctx, id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrSnapshotNotFound) {
			return fmt.Errorf("failed to check domino existence: %w", err)
		}

		d = domain.New(defaults, nil, m.computed)
		if err := m.store.Save(ctx, id, d.Snapshot()); err != nil {
			return fmt.Errorf("failed to initialize domino: %w", err)
		}
		m.logger.Debug("domino created", "domino_id", id)
		return nil
	})
	return d, err
}

// Apply runs a read-modify-write cycle on a stored domino.
// fn receives the current generation; returning it unchanged (or nil) skips
// the write. op labels the commit event handed to the hooks.
func (m *Manager) Apply(ctx context.Context, id string, op domain.Op, fn func(*domain.Domino) *domain.Domino) (*domain.Domino, error) {
	var next *domain.Domino
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		prev, err := m.load(ctx, id)
		if err != nil {
			return err
		}

		next = fn(prev)
		if next == nil || next == prev {
			next = prev
			return nil
		}

		if err := m.store.Save(ctx, id, next.Snapshot()); err != nil {
			return fmt.Errorf("failed to save domino: %w", err)
		}

		if diff := domain.Diff(prev, next); diff != nil && m.hooks.OnCommit != nil {
			m.hooks.OnCommit(&domain.CommitEvent{
				ID:        id,
				Timestamp: time.Now(),
				Op:        op,
				Diff:      diff,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// Save persists d under id, replacing what was stored.
func (m *Manager) Save(ctx context.Context, id string, d *domain.Domino) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Save(ctx, id, d.Snapshot())
	})
}

// Delete removes the domino from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}

// WithLock executes a function while holding the lock for the domino.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"domino_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
