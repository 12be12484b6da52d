// Package adapter wraps any ports.StateProvider of domino generations into a
// ports.DominoAdapter, the only shape the store facade depends on.
package adapter

import (
	"github.com/aretw0/domino/pkg/domain"
	"github.com/aretw0/domino/pkg/ports"
)

// Adapter forwards to a provider. It holds no state of its own.
type Adapter struct {
	provider ports.StateProvider[*domain.Domino]
}

var _ ports.DominoAdapter = (*Adapter)(nil)

// New creates an adapter from any state provider.
func New(provider ports.StateProvider[*domain.Domino]) *Adapter {
	return &Adapter{provider: provider}
}

// GetState returns the provider's current generation.
func (a *Adapter) GetState() *domain.Domino {
	return a.provider.Get()
}

// SetState hands updater to the provider, which applies it to the latest generation.
func (a *Adapter) SetState(updater func(prev *domain.Domino) *domain.Domino) {
	a.provider.Set(updater)
}

// CanSubscribe reports whether the provider notifies about commits.
func (a *Adapter) CanSubscribe() bool {
	_, ok := a.provider.(ports.Subscriber[*domain.Domino])
	return ok
}

// Subscribe registers listener with the provider. When the provider does not
// support subscriptions the listener is never called and the returned
// function does nothing.
func (a *Adapter) Subscribe(listener func(*domain.Domino)) (unsubscribe func()) {
	sub, ok := a.provider.(ports.Subscriber[*domain.Domino])
	if !ok {
		return func() {}
	}
	return sub.Subscribe(listener)
}
