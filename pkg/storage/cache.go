package storage

import (
	"context"
	"time"
)

// Timestamped is a cached value with the time it was written.
type Timestamped[V any] struct {
	Value       V         `json:"value"`
	LastUpdated time.Time `json:"last_updated"`
}

// Reader loads a cached entry. A nil entry means nothing is cached.
type Reader[V any] func(ctx context.Context) (*Timestamped[V], error)

// Writer stores a cached entry.
type Writer[V any] func(ctx context.Context, entry Timestamped[V]) error

// Validator reports whether a present entry is stale or invalid at now, the
// time on the cache's clock.
type Validator[V any] func(entry *Timestamped[V], now time.Time) bool

// MaxAge returns a Validator that rejects entries older than age.
func MaxAge[V any](age time.Duration) Validator[V] {
	return func(entry *Timestamped[V], now time.Time) bool {
		return now.Sub(entry.LastUpdated) > age
	}
}

// Cache stores a single timestamped value through a Writer and Reader pair.
type Cache[V any] struct {
	write    Writer[V]
	read     Reader[V]
	validate Validator[V]
	now      func() time.Time
}

// CacheOption configures a Cache.
type CacheOption[V any] func(*Cache[V])

// WithClock overrides the clock used to stamp and validate entries.
func WithClock[V any](now func() time.Time) CacheOption[V] {
	return func(c *Cache[V]) {
		c.now = now
	}
}

// NewCache creates a cache. A nil validator accepts every present entry.
func NewCache[V any](write Writer[V], read Reader[V], validate Validator[V], opts ...CacheOption[V]) *Cache[V] {
	if validate == nil {
		validate = func(*Timestamped[V], time.Time) bool { return false }
	}
	c := &Cache[V]{write: write, read: read, validate: validate, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewKeyCache binds a cache to key inside w, JSON encoded.
func NewKeyCache[V any](w *Wrapper, key string, validate Validator[V], opts ...CacheOption[V]) *Cache[V] {
	write := func(ctx context.Context, entry Timestamped[V]) error {
		return Set(ctx, w, key, entry, nil)
	}
	read := func(ctx context.Context) (*Timestamped[V], error) {
		entry, ok := Get[Timestamped[V]](ctx, w, key, nil)
		if !ok {
			return nil, nil
		}
		return &entry, nil
	}
	return NewCache(write, read, validate, opts...)
}

// Get returns the cached entry, or nil when nothing is cached.
func (c *Cache[V]) Get(ctx context.Context) (*Timestamped[V], error) {
	return c.read(ctx)
}

// Set stamps value with the current time and writes it.
func (c *Cache[V]) Set(ctx context.Context, value V) error {
	return c.write(ctx, Timestamped[V]{Value: value, LastUpdated: c.now()})
}

// IsStaleOrInvalid reports whether the cache is empty or fails validation.
func (c *Cache[V]) IsStaleOrInvalid(ctx context.Context) (bool, error) {
	entry, err := c.read(ctx)
	if err != nil {
		return true, err
	}
	return entry == nil || c.validate(entry, c.now()), nil
}

// IsPrimed reports whether the cache holds a valid entry.
func (c *Cache[V]) IsPrimed(ctx context.Context) (bool, error) {
	stale, err := c.IsStaleOrInvalid(ctx)
	return !stale, err
}

// Getter is anything that can produce a value on demand.
type Getter[T any] interface {
	Get(ctx context.Context) (T, error)
}

// ReadonlyCache exposes only the read side of a cache.
type ReadonlyCache[V any] struct {
	read func(ctx context.Context) (V, error)
}

// NewReadonlyCache wraps read.
func NewReadonlyCache[V any](read func(ctx context.Context) (V, error)) *ReadonlyCache[V] {
	return &ReadonlyCache[V]{read: read}
}

// Get reads the current value.
func (c *ReadonlyCache[V]) Get(ctx context.Context) (V, error) {
	return c.read(ctx)
}

// Transform maps every value read from g through fn.
func Transform[T, U any](g Getter[T], fn func(T) U) *ReadonlyCache[U] {
	return NewReadonlyCache(func(ctx context.Context) (U, error) {
		v, err := g.Get(ctx)
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(v), nil
	})
}
