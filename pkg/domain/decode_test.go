package domain_test

import (
	"testing"

	"github.com/aretw0/domino/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type preferences struct {
	Theme    string `mapstructure:"theme"`
	FontSize int    `mapstructure:"font_size"`
	Compact  bool
}

func TestDomino_Decode(t *testing.T) {
	d := domain.From(domain.Values{"theme": "light", "font_size": 12.0, "compact": false}).
		Update(domain.Values{"compact": true})

	var prefs preferences
	require.NoError(t, d.Decode(&prefs))

	assert.Equal(t, preferences{Theme: "light", FontSize: 12, Compact: true}, prefs)
}

func TestDomino_Decode_RequiresPointer(t *testing.T) {
	d := domain.From(domain.Values{"theme": "light"})

	var prefs preferences
	assert.Error(t, d.Decode(prefs))
}

func TestGet(t *testing.T) {
	d := domain.From(domain.Values{"theme": "light", "count": 3})

	theme, err := domain.Get[string](d, "theme")
	require.NoError(t, err)
	assert.Equal(t, "light", theme)

	_, err = domain.Get[string](d, "count")
	assert.ErrorIs(t, err, domain.ErrFieldType)

	_, err = domain.Get[int](d, "missing")
	assert.ErrorIs(t, err, domain.ErrFieldNotFound)
}

func TestGet_ConvertsJSONShapes(t *testing.T) {
	d := domain.From(domain.Values{
		"count": 3.0,
		"prefs": map[string]any{"theme": "dark", "font_size": 14.0},
	})

	n, err := domain.Get[int](d, "count")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	prefs, err := domain.Get[preferences](d, "prefs")
	require.NoError(t, err)
	assert.Equal(t, preferences{Theme: "dark", FontSize: 14}, prefs)

	_, err = domain.Get[bool](d, "count")
	assert.ErrorIs(t, err, domain.ErrFieldType)
}
