/*
Package lens focuses a StateProvider of a larger application state onto one
part of it, typically the domino stored in one field of a global store.

Updates go through the parent's Set, so they are serialized with every other
write to the parent state.
*/
package lens

import (
	"github.com/aretw0/domino/pkg/ports"
)

// Lens exposes the F part of a provider of S.
type Lens[S, F any] struct {
	parent ports.StateProvider[S]
	get    func(S) F
	set    func(S, F) S
}

// New creates a lens. get extracts the focus from the parent state; set
// returns a copy of the parent state with the focus replaced.
func New[S, F any](parent ports.StateProvider[S], get func(S) F, set func(S, F) S) *Lens[S, F] {
	return &Lens[S, F]{parent: parent, get: get, set: set}
}

// Get returns the focused part of the parent's current state.
func (l *Lens[S, F]) Get() F {
	return l.get(l.parent.Get())
}

// Set applies update to the focused part inside a single parent update.
func (l *Lens[S, F]) Set(update ports.Updater[F]) {
	l.parent.Set(func(s S) S {
		return l.set(s, update(l.get(s)))
	})
}

// Subscribe forwards parent commits as focused values. It does nothing when
// the parent cannot notify.
func (l *Lens[S, F]) Subscribe(listener func(F)) (unsubscribe func()) {
	sub, ok := l.parent.(ports.Subscriber[S])
	if !ok {
		return func() {}
	}
	return sub.Subscribe(func(s S) {
		listener(l.get(s))
	})
}
