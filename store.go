package domino

import (
	"log/slog"
	"time"

	"github.com/aretw0/domino/internal/logging"
	"github.com/aretw0/domino/pkg/adapter"
	"github.com/aretw0/domino/pkg/adapters/memory"
	"github.com/aretw0/domino/pkg/domain"
	"github.com/aretw0/domino/pkg/eventbus"
	"github.com/aretw0/domino/pkg/ports"
)

// Topic names a stream on a store's event bus.
type Topic string

// TopicCommit carries a domain.CommitEvent for every committed generation.
const TopicCommit Topic = "commit"

// EventBus is the bus a Store broadcasts commits on.
type EventBus = eventbus.Bus[Topic, domain.CommitEvent]

// NewEventBus creates a bus suitable for WithEventBus.
func NewEventBus() *EventBus {
	return eventbus.New[Topic, domain.CommitEvent]()
}

// Hooks are the lifecycle callbacks of a Store.
type Hooks = domain.LifecycleHooks

// Store is a read/write facade over a DominoAdapter.
// Accessors read the adapter on every call; nothing is cached.
type Store struct {
	adapter ports.DominoAdapter
	hooks   Hooks
	bus     *EventBus
	logger  *slog.Logger
	now     func() time.Time
}

// Option defines a functional option for configuring the Store.
type Option func(*Store)

// WithLogger sets a custom structured logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks Hooks) Option {
	return func(s *Store) {
		s.hooks = hooks
	}
}

// WithEventBus broadcasts every commit on bus under TopicCommit.
func WithEventBus(bus *EventBus) Option {
	return func(s *Store) {
		s.bus = bus
	}
}

// NewStore creates a store over a.
func NewStore(a ports.DominoAdapter, opts ...Option) *Store {
	s := &Store{
		adapter: a,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewLocal creates a store whose state lives in an in-process cell.
func NewLocal(defaults domain.Values, opts ...Option) *Store {
	return NewStore(adapter.New(memory.NewCell(domain.From(defaults))), opts...)
}

// Domino returns the current generation.
func (s *Store) Domino() *domain.Domino {
	return s.adapter.GetState()
}

// Values returns the derived values, computed fields included.
func (s *Store) Values() domain.Values {
	return s.adapter.GetState().Values()
}

// Defaults returns the current defaults.
func (s *Store) Defaults() domain.Values {
	return s.adapter.GetState().Defaults()
}

// Mutations returns the explicitly changed fields.
func (s *Store) Mutations() domain.Values {
	return s.adapter.GetState().Mutations()
}

// IsModified reports whether any mutation is recorded.
func (s *Store) IsModified() bool {
	return s.adapter.GetState().IsModified()
}

// Update merges fields into the mutations.
func (s *Store) Update(fields domain.Values) {
	s.commit(domain.OpUpdate, func(d *domain.Domino) *domain.Domino {
		return d.Update(fields)
	})
}

// ResetField drops the mutation of a single field.
func (s *Store) ResetField(field string) {
	s.commit(domain.OpResetField, func(d *domain.Domino) *domain.Domino {
		return d.ResetField(field)
	})
}

// Reset drops every mutation.
func (s *Store) Reset() {
	s.commit(domain.OpReset, (*domain.Domino).Reset)
}

// Clear drops every mutation and restores the initial defaults.
func (s *Store) Clear() {
	s.commit(domain.OpClear, (*domain.Domino).Clear)
}

// SetDefaults merges values into the defaults; mutations are kept.
func (s *Store) SetDefaults(values domain.Values) {
	s.commit(domain.OpSetDefaults, func(d *domain.Domino) *domain.Domino {
		return d.SetDefaults(values)
	})
}

// AddComputedField registers or refreshes a computed field. It reports whether
// a new generation was committed; when the inputs hash to the stored hash the
// state is left alone.
func (s *Store) AddComputedField(key string, compute domain.ComputeFunc, hash domain.HashFunc) (bool, error) {
	change, err := s.adapter.GetState().AddComputedField(key, compute, hash)
	if err != nil {
		s.logger.Warn("computed field not added", "field", key, "err", err)
		return false, err
	}
	if change.IsUnchanged() {
		return false, nil
	}

	// The state may have moved on since the check; re-derive inside the update.
	var hashErr error
	committed := s.commit(domain.OpAddComputed, func(d *domain.Domino) *domain.Domino {
		change, err := d.AddComputedField(key, compute, hash)
		if err != nil {
			hashErr = err
			return d
		}
		if next, ok := change.Next(); ok {
			return next
		}
		return d
	})
	if hashErr != nil {
		s.logger.Warn("computed field not added", "field", key, "err", hashErr)
	}
	return committed, hashErr
}

// Subscribe registers listener for every commit the adapter reports. Adapters
// that cannot notify never call listener.
func (s *Store) Subscribe(listener func(*domain.Domino)) (unsubscribe func()) {
	if sub, ok := s.adapter.(interface {
		Subscribe(func(*domain.Domino)) func()
	}); ok {
		return sub.Subscribe(listener)
	}
	return func() {}
}

// commit dispatches fn through the adapter and reports whether a new
// generation was written back.
func (s *Store) commit(op domain.Op, fn func(*domain.Domino) *domain.Domino) bool {
	var prev, next *domain.Domino
	s.adapter.SetState(func(current *domain.Domino) *domain.Domino {
		prev = current
		next = fn(current)
		if next == nil {
			next = current
		}
		return next
	})
	if next == prev {
		return false
	}

	diff := domain.Diff(prev, next)
	if diff == nil {
		return true
	}
	s.logger.Debug("domino committed", "op", op, "modified", next.IsModified())

	event := domain.CommitEvent{Timestamp: s.now(), Op: op, Diff: diff}
	if s.hooks.OnCommit != nil {
		s.hooks.OnCommit(&event)
	}
	if s.bus != nil {
		s.bus.Broadcast(TopicCommit, event)
	}
	return true
}
