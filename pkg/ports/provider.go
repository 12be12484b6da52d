package ports

import "github.com/aretw0/domino/pkg/domain"

// Updater derives the next value from the previous one.
type Updater[T any] func(prev T) T

// StateProvider is the contract any external state holder implements to host a value.
type StateProvider[T any] interface {
	// Get returns the most recently committed value.
	Get() T

	// Set applies update to the current value and commits the result.
	// Implementations must serialize concurrent calls so no update is lost.
	Set(update Updater[T])
}

// Subscriber is implemented by providers that can notify about commits.
type Subscriber[T any] interface {
	// Subscribe registers listener and returns a function that removes it.
	Subscribe(listener func(T)) (unsubscribe func())
}

// Replace returns an updater that ignores the previous value.
func Replace[T any](value T) Updater[T] {
	return func(T) T { return value }
}

// DominoAdapter bridges the domino core to wherever the current generation lives.
type DominoAdapter interface {
	// GetState returns the most recently committed generation.
	GetState() *domain.Domino

	// SetState calls updater with the current generation and commits its result
	// without exposing intermediate state.
	SetState(updater func(prev *domain.Domino) *domain.Domino)
}
