package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/domino/internal/logging"
	"github.com/aretw0/domino/pkg/result"
)

// ErrEmptyNamespace is returned by New when no namespace is given.
var ErrEmptyNamespace = errors.New("storage: namespace must be a non-empty string")

// errAbsent marks a missing or empty entry inside the read pipeline.
var errAbsent = errors.New("storage: absent")

// Wrapper scopes every key of a Backend under "<namespace>:".
type Wrapper struct {
	namespace string
	backend   Backend
	logger    *slog.Logger
}

// Option configures a Wrapper.
type Option func(*Wrapper)

// WithLogger sets the logger used to report swallowed read failures.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wrapper) {
		w.logger = logger
	}
}

// New creates a wrapper for namespace over backend.
func New(namespace string, backend Backend, opts ...Option) (*Wrapper, error) {
	if namespace == "" {
		return nil, ErrEmptyNamespace
	}
	w := &Wrapper{
		namespace: namespace,
		backend:   backend,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Namespace returns the wrapper's namespace.
func (w *Wrapper) Namespace() string {
	return w.namespace
}

func (w *Wrapper) key(key string) string {
	return w.namespace + ":" + key
}

func (w *Wrapper) prefix() string {
	return w.namespace + ":"
}

// Get reads and decodes key with codec (JSON when nil).
// Missing, empty and undecodable entries all report false.
func Get[T any](ctx context.Context, w *Wrapper, key string, codec Codec[T]) (T, bool) {
	if codec == nil {
		codec = JSON[T]{}
	}
	res := result.TryCatch(func() (T, error) {
		var zero T
		raw, ok, err := w.backend.Get(ctx, w.key(key))
		if err != nil {
			return zero, err
		}
		if !ok || raw == "" {
			return zero, errAbsent
		}
		return codec.Decode(raw)
	}, func(err error) {
		if !errors.Is(err, errAbsent) {
			w.logger.Warn("storage read failed", "namespace", w.namespace, "key", key, "error", err)
		}
	})
	return res.Value(), res.IsOk()
}

// Set encodes value with codec (JSON when nil) and stores it under key.
func Set[T any](ctx context.Context, w *Wrapper, key string, value T, codec Codec[T]) error {
	if codec == nil {
		codec = JSON[T]{}
	}
	return result.Try(func() error {
		raw, err := codec.Encode(value)
		if err != nil {
			return err
		}
		return w.backend.Set(ctx, w.key(key), raw)
	}).OrElse(func(err error) error {
		return fmt.Errorf("storage set %q: %w", key, err)
	}).Err()
}

// Remove deletes key.
func (w *Wrapper) Remove(ctx context.Context, key string) error {
	if err := w.backend.Remove(ctx, w.key(key)); err != nil {
		return fmt.Errorf("storage remove %q: %w", key, err)
	}
	return nil
}

// Keys lists the keys in the namespace, without the namespace prefix.
func (w *Wrapper) Keys(ctx context.Context) ([]string, error) {
	full, err := w.backend.Keys(ctx, w.prefix())
	if err != nil {
		return nil, fmt.Errorf("storage keys: %w", err)
	}
	keys := make([]string, 0, len(full))
	for _, k := range full {
		keys = append(keys, strings.TrimPrefix(k, w.prefix()))
	}
	return keys, nil
}

// Clear removes every key in the namespace. Other namespaces are untouched.
func (w *Wrapper) Clear(ctx context.Context) error {
	keys, err := w.Keys(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, k := range keys {
		if err := w.Remove(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
