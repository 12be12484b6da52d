package memory_test

import (
	"testing"

	"github.com/aretw0/domino/pkg/adapters/memory"
	"github.com/aretw0/domino/pkg/domain"
	"github.com/aretw0/domino/pkg/ports"
	"github.com/stretchr/testify/assert"
)

func TestCell_Contract(t *testing.T) {
	ports.RunProviderContract(t, func(t *testing.T, initial *domain.Domino) ports.StateProvider[*domain.Domino] {
		return memory.NewCell(initial)
	})
}

func TestCell_Generic(t *testing.T) {
	cell := memory.NewCell(1)

	cell.Set(func(prev int) int { return prev + 1 })
	cell.Set(ports.Replace(10))

	assert.Equal(t, 10, cell.Get())
}

func TestCell_UnsubscribeTwice(t *testing.T) {
	cell := memory.NewCell("a")
	calls := 0
	unsubscribe := cell.Subscribe(func(string) { calls++ })

	cell.Set(ports.Replace("b"))
	unsubscribe()
	unsubscribe()
	cell.Set(ports.Replace("c"))

	assert.Equal(t, 1, calls)
}
