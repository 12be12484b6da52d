package domain_test

import (
	"fmt"
	"testing"

	"github.com/aretw0/domino/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func themeLabel(args domain.ComputeArgs) any {
	return fmt.Sprintf("Theme: %v", args.Values["theme"])
}

func TestAddComputedField_Scenario_ThemeLabel(t *testing.T) {
	d := domain.From(domain.Values{"theme": "light"})

	change, err := d.AddComputedField("label", themeLabel, nil)
	require.NoError(t, err)

	next, ok := change.Next()
	require.True(t, ok)
	assert.Equal(t, "Theme: light", next.Values()["label"])

	dark := next.Update(domain.Values{"theme": "dark"})
	assert.Equal(t, "Theme: dark", dark.Values()["label"])
}

func TestAddComputedField_Memoization(t *testing.T) {
	calls := 0
	compute := func(args domain.ComputeArgs) any {
		calls++
		return args.Values["a"]
	}

	d := domain.From(domain.Values{"a": 1})
	first, err := d.AddComputedField("x", compute, nil)
	require.NoError(t, err)
	next, ok := first.Next()
	require.True(t, ok)
	assert.Equal(t, 1, calls)

	second, err := next.AddComputedField("x", compute, nil)
	require.NoError(t, err)
	assert.True(t, second.IsUnchanged())
	_, ok = second.Next()
	assert.False(t, ok)
	assert.Equal(t, 1, calls)

	changed := next.Update(domain.Values{"a": 2})
	assert.Equal(t, 2, changed.Values()["x"])
	assert.Equal(t, 2, calls)

	// The recomputed result is cached in the new generation.
	third, err := changed.AddComputedField("x", compute, nil)
	require.NoError(t, err)
	assert.True(t, third.IsUnchanged())
	assert.Equal(t, 2, calls)
}

func TestAddComputedField_RecomputedResultIsCached(t *testing.T) {
	calls := 0
	compute := func(args domain.ComputeArgs) any {
		calls++
		return fmt.Sprintf("Theme: %v", args.Values["theme"])
	}
	onlyTheme := func(args domain.ComputeArgs) (string, error) {
		return domain.DefaultHash(args.Values["theme"])
	}

	change, err := domain.From(domain.Values{"theme": "light", "n": 0}).AddComputedField("label", compute, onlyTheme)
	require.NoError(t, err)
	d, _ := change.Next()
	require.Equal(t, 1, calls)

	d = d.Update(domain.Values{"theme": "dark"})
	require.Equal(t, 2, calls)

	for i := 1; i <= 5; i++ {
		d = d.Update(domain.Values{"n": i})
	}
	assert.Equal(t, 2, calls)
	assert.Equal(t, "Theme: dark", d.Values()["label"])

	hash, err := domain.DefaultHash("dark")
	require.NoError(t, err)
	assert.Equal(t, hash, d.ComputedFields()["label"].Hash())
}

func TestAddComputedField_DefaultHashSkipsNoOpUpdates(t *testing.T) {
	calls := 0
	compute := func(args domain.ComputeArgs) any {
		calls++
		return args.Values["a"]
	}

	change, err := domain.From(domain.Values{"a": 1}).AddComputedField("x", compute, nil)
	require.NoError(t, err)
	d, _ := change.Next()

	d = d.Update(domain.Values{"a": 2})
	require.Equal(t, 2, calls)

	d = d.Update(domain.Values{"a": 2}).Update(domain.Values{"a": 2})
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, d.Values()["x"])
}

func TestAddComputedField_CachedResultReusedWhileInputsMatch(t *testing.T) {
	calls := 0
	compute := func(args domain.ComputeArgs) any {
		calls++
		return calls
	}
	onlyA := func(args domain.ComputeArgs) (string, error) {
		return domain.DefaultHash(args.Values["a"])
	}

	d := domain.From(domain.Values{"a": 1, "b": 1})
	change, err := d.AddComputedField("n", compute, onlyA)
	require.NoError(t, err)
	next, _ := change.Next()
	require.Equal(t, 1, calls)

	// "b" does not feed the hash, so the cached result survives.
	other := next.Update(domain.Values{"b": 2})
	assert.Equal(t, 1, other.Values()["n"])
	assert.Equal(t, 1, calls)

	// "a" does.
	moved := next.Update(domain.Values{"a": 2})
	assert.Equal(t, 2, moved.Values()["n"])
}

func TestAddComputedField_OverlaysValuesOnly(t *testing.T) {
	d := domain.From(domain.Values{"a": 1})

	change, err := d.AddComputedField("double", func(args domain.ComputeArgs) any {
		return args.Values["a"].(int) * 2
	}, nil)
	require.NoError(t, err)
	next, _ := change.Next()

	assert.Equal(t, 2, next.Values()["double"])
	assert.NotContains(t, next.Defaults(), "double")
	assert.NotContains(t, next.Mutations(), "double")
	assert.False(t, next.IsModified())
	assert.Equal(t, []string{"double"}, next.ComputedKeys())
}

func TestAddComputedField_SurvivesResetAndSetDefaults(t *testing.T) {
	d := domain.From(domain.Values{"theme": "light"})
	change, err := d.AddComputedField("label", themeLabel, nil)
	require.NoError(t, err)
	next, _ := change.Next()

	assert.Equal(t, "Theme: dark", next.SetDefaults(domain.Values{"theme": "dark"}).Values()["label"])
	assert.Equal(t, "Theme: light", next.Update(domain.Values{"theme": "dark"}).Reset().Values()["label"])
}

func TestAddComputedField_ReplacesCompute(t *testing.T) {
	d := domain.From(domain.Values{"a": 1})
	first, err := d.AddComputedField("x", func(domain.ComputeArgs) any { return "one" }, nil)
	require.NoError(t, err)
	next, _ := first.Next()

	constant := func(domain.ComputeArgs) (string, error) { return "other", nil }
	second, err := next.AddComputedField("x", func(domain.ComputeArgs) any { return "two" }, constant)
	require.NoError(t, err)
	replaced, ok := second.Next()
	require.True(t, ok)
	assert.Equal(t, "two", replaced.Values()["x"])
}

func TestAddComputedField_HashError(t *testing.T) {
	d := domain.From(domain.Values{"fn": func() {}})

	change, err := d.AddComputedField("x", func(domain.ComputeArgs) any { return 1 }, nil)

	assert.ErrorIs(t, err, domain.ErrUnhashable)
	assert.True(t, change.IsUnchanged())
}

func TestAddComputedField_ComputeCannotCorruptState(t *testing.T) {
	d := domain.From(domain.Values{"a": 1})

	change, err := d.AddComputedField("x", func(args domain.ComputeArgs) any {
		args.Values["a"] = 99
		args.Defaults["a"] = 99
		return true
	}, nil)
	require.NoError(t, err)
	next, _ := change.Next()

	assert.Equal(t, 1, next.Values()["a"])
	assert.Equal(t, 1, next.Defaults()["a"])
}

func TestNew_WithComputedRegistration(t *testing.T) {
	d := domain.New(
		domain.Values{"first": "Ada", "last": "Lovelace"},
		nil,
		domain.ComputedFields{
			"full": domain.Computed(func(args domain.ComputeArgs) any {
				return fmt.Sprintf("%v %v", args.Values["first"], args.Values["last"])
			}, nil),
		},
	)

	assert.Equal(t, "Ada Lovelace", d.Values()["full"])
	assert.Equal(t, "Ada Byron", d.Update(domain.Values{"last": "Byron"}).Values()["full"])
}

func TestChange_ZeroValueIsUnchanged(t *testing.T) {
	var c domain.Change
	assert.True(t, c.IsUnchanged())

	d := domain.From(nil)
	next, ok := domain.Updated(d).Next()
	assert.True(t, ok)
	assert.Same(t, d, next)
}
