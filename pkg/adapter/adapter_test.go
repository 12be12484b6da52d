package adapter_test

import (
	"testing"

	"github.com/aretw0/domino/pkg/adapter"
	"github.com/aretw0/domino/pkg/adapters/memory"
	"github.com/aretw0/domino/pkg/domain"
	"github.com/aretw0/domino/pkg/ports"
	"github.com/stretchr/testify/assert"
)

// getSetOnly hides the Subscribe method of the wrapped cell.
type getSetOnly struct {
	cell *memory.Cell[*domain.Domino]
}

func (p getSetOnly) Get() *domain.Domino { return p.cell.Get() }
func (p getSetOnly) Set(update ports.Updater[*domain.Domino]) { p.cell.Set(update) }

func TestAdapter_Forwards(t *testing.T) {
	cell := memory.NewCell(domain.From(domain.Values{"count": 0}))
	a := adapter.New(cell)

	a.SetState(func(prev *domain.Domino) *domain.Domino {
		return prev.Update(domain.Values{"count": 1})
	})

	assert.Equal(t, 1, a.GetState().Values()["count"])
	assert.Same(t, cell.Get(), a.GetState())
}

func TestAdapter_Subscribe(t *testing.T) {
	cell := memory.NewCell(domain.From(domain.Values{"count": 0}))
	a := adapter.New(cell)
	assert.True(t, a.CanSubscribe())

	var got []any
	unsubscribe := a.Subscribe(func(d *domain.Domino) { got = append(got, d.Values()["count"]) })
	a.SetState(func(prev *domain.Domino) *domain.Domino { return prev.Update(domain.Values{"count": 1}) })
	unsubscribe()
	a.SetState(func(prev *domain.Domino) *domain.Domino { return prev.Update(domain.Values{"count": 2}) })

	assert.Equal(t, []any{1}, got)
}

func TestAdapter_SubscribeUnsupported(t *testing.T) {
	a := adapter.New(getSetOnly{cell: memory.NewCell(domain.From(nil))})

	assert.False(t, a.CanSubscribe())
	called := false
	unsubscribe := a.Subscribe(func(*domain.Domino) { called = true })
	a.SetState(func(prev *domain.Domino) *domain.Domino { return prev.Update(domain.Values{"x": 1}) })
	unsubscribe()

	assert.False(t, called)
}
