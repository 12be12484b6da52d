package memory

import (
	"sync"

	"github.com/aretw0/domino/pkg/ports"
)

// Cell is an in-process value holder implementing ports.StateProvider and
// ports.Subscriber. Updates are applied one at a time under a mutex, so every
// updater sees the result of the previous one.
type Cell[T any] struct {
	mu    sync.Mutex
	value T

	lmu       sync.RWMutex
	listeners map[int]func(T)
	nextID    int
}

var (
	_ ports.StateProvider[int] = (*Cell[int])(nil)
	_ ports.Subscriber[int]    = (*Cell[int])(nil)
)

// NewCell creates a cell holding initial.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{
		value:     initial,
		listeners: make(map[int]func(T)),
	}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set applies update to the current value and notifies listeners.
// Listeners run after the lock is released and may call Get; under concurrent
// commits they can observe values out of order.
func (c *Cell[T]) Set(update ports.Updater[T]) {
	c.mu.Lock()
	next := update(c.value)
	c.value = next
	c.mu.Unlock()

	c.lmu.RLock()
	listeners := make([]func(T), 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.lmu.RUnlock()

	for _, l := range listeners {
		l(next)
	}
}

// Subscribe registers listener for every commit.
func (c *Cell[T]) Subscribe(listener func(T)) (unsubscribe func()) {
	c.lmu.Lock()
	defer c.lmu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = listener

	var once sync.Once
	return func() {
		once.Do(func() {
			c.lmu.Lock()
			defer c.lmu.Unlock()
			delete(c.listeners, id)
		})
	}
}
