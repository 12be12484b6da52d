package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	backend "github.com/redis/go-redis/v9"
)

// Backend implements storage.Backend over plain Redis strings.
type Backend struct {
	client *backend.Client
}

// NewBackend creates a storage backend sharing client.
func NewBackend(client *backend.Client) *Backend {
	return &Backend{client: client}
}

func (b *Backend) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := b.client.Get(ctx, key).Result()
	if errors.Is(err, backend.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

func (b *Backend) Set(ctx context.Context, key, value string) error {
	if err := b.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (b *Backend) Remove(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Keys walks the keyspace with SCAN, so it never blocks the server.
func (b *Backend) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := b.client.Scan(ctx, 0, escapeGlob(prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	slices.Sort(keys)
	return slices.Compact(keys), nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
