package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/domino/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.SnapshotStore using Redis.
// Snapshots are stored as JSON strings; a sorted set indexes the IDs by expiry.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// DefaultPrefix namespaces snapshot keys unless WithPrefix is given.
const DefaultPrefix = "domino:snapshot:"

// Option configures the Store.
type Option func(*Store)

// WithTTL sets the expiration for snapshots.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for snapshots.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// indexMember is the key suffix of the ID index, so it cannot be used as an ID.
const indexMember = "index"

// ErrReservedID is returned when an ID collides with the store's own keys.
var ErrReservedID = errors.New("redis: reserved snapshot id")

// New creates a new Redis store with options.
// Snapshots never expire unless WithTTL is given.
func New(address, password string, db int, opts ...Option) *Store {
	return NewFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func (s *Store) indexKey() string {
	return s.prefix + indexMember
}

// noExpiry is the index score of snapshots saved without a TTL (2100-01-01).
const noExpiry = 4102444800

// Save persists the snapshot to Redis.
func (s *Store) Save(ctx context.Context, id string, snapshot *domain.Snapshot) error {
	if id == indexMember {
		return fmt.Errorf("%w: %w: %q", domain.ErrInvalidID, ErrReservedID, id)
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	// The index is scored by expiry time so List can prune lazily.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = noExpiry
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(id), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: id,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}

	return nil
}

// Load retrieves the snapshot from Redis.
func (s *Store) Load(ctx context.Context, id string) (*domain.Snapshot, error) {
	if id == indexMember {
		return nil, domain.ErrSnapshotNotFound
	}
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(val, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == indexMember {
		return nil
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// List returns stored IDs from the index, pruning expired entries first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", now).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired snapshots: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	return ids, nil
}

// Client returns the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
