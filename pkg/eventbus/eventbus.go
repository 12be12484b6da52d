// Package eventbus is a small typed publish/subscribe hub.
package eventbus

import (
	"maps"
	"slices"
	"sync"
)

// Handler receives the payload of a broadcast.
type Handler[P any] func(P)

// Bus dispatches payloads to the handlers subscribed to an event kind.
// Handlers run synchronously on the broadcasting goroutine, in subscription
// order. The zero value is not usable; call New.
type Bus[K comparable, P any] struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[K]map[uint64]Handler[P]
}

// New creates an empty bus.
func New[K comparable, P any]() *Bus[K, P] {
	return &Bus[K, P]{subs: make(map[K]map[uint64]Handler[P])}
}

// Subscribe registers h for kind and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (b *Bus[K, P]) Subscribe(kind K, h Handler[P]) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[kind] == nil {
		b.subs[kind] = make(map[uint64]Handler[P])
	}
	id := b.nextID
	b.nextID++
	b.subs[kind][id] = h

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[kind], id)
			if len(b.subs[kind]) == 0 {
				delete(b.subs, kind)
			}
		})
	}
}

// Broadcast delivers payload to every handler of kind. Broadcasting a kind
// with no subscribers does nothing.
func (b *Bus[K, P]) Broadcast(kind K, payload P) {
	for _, h := range b.handlers(kind) {
		h(payload)
	}
}

// handlers snapshots the subscribers so they may unsubscribe while running.
func (b *Bus[K, P]) handlers(kind K) []Handler[P] {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subs := b.subs[kind]
	out := make([]Handler[P], 0, len(subs))
	for _, id := range slices.Sorted(maps.Keys(subs)) {
		out = append(out, subs[id])
	}
	return out
}

// Publisher returns a function that broadcasts to kind.
func (b *Bus[K, P]) Publisher(kind K) func(P) {
	return func(payload P) {
		b.Broadcast(kind, payload)
	}
}

// Len reports how many handlers are subscribed to kind.
func (b *Bus[K, P]) Len(kind K) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[kind])
}
