package domain

import (
	"maps"
	"slices"
)

// Values maps field names to arbitrary values.
type Values map[string]any

// Domino is one immutable generation of state.
//
// Values are derived from Defaults overlaid with Mutations, then overlaid with
// the result of every computed field. Mutations only hold the fields that were
// explicitly changed, which is what makes field-level resets possible.
// All methods return a new Domino; the receiver is never modified.
type Domino struct {
	defaults        Values
	initialDefaults Values
	mutations       Values
	base            Values // defaults overlaid with mutations
	values          Values // base overlaid with computed fields
	computed        ComputedFields
	isModified      bool
}

// From creates the first generation of a Domino from its defaults.
func From(defaults Values) *Domino {
	return New(defaults, nil, nil)
}

// New creates a Domino from defaults, mutations and computed fields.
// defaults and mutations are deep-cloned, so later changes to the caller's maps
// do not leak into the Domino. Computed fields are evaluated eagerly.
func New(defaults, mutations Values, computed ComputedFields) *Domino {
	initial := clone(defaults)
	return build(initial, mutations, computed, initial)
}

// build clones defaults and mutations; initial is owned by the caller and shared as-is.
func build(defaults, mutations Values, computed ComputedFields, initial Values) *Domino {
	d := &Domino{
		defaults:        clone(defaults),
		initialDefaults: initial,
		mutations:       clone(mutations),
		computed:        maps.Clone(computed),
	}
	if d.computed == nil {
		d.computed = ComputedFields{}
	}
	d.isModified = len(d.mutations) > 0

	d.base = make(Values, len(d.defaults)+len(d.mutations))
	maps.Copy(d.base, d.defaults)
	maps.Copy(d.base, d.mutations)

	if len(d.computed) == 0 {
		d.values = d.base
		return d
	}

	d.values = maps.Clone(d.base)
	for _, key := range d.ComputedKeys() {
		field := d.computed[key].evaluate(d.computeArgs)
		d.computed[key] = field
		d.values[key] = field.value
	}
	return d
}

// Update merges fields into the mutations. Later keys win; keys are not validated
// against the defaults.
func (d *Domino) Update(fields Values) *Domino {
	mutations := maps.Clone(d.mutations)
	maps.Copy(mutations, fields)
	return build(d.defaults, mutations, d.computed, d.initialDefaults)
}

// ResetField drops the mutation for field, reverting it to its default.
func (d *Domino) ResetField(field string) *Domino {
	mutations := maps.Clone(d.mutations)
	delete(mutations, field)
	return build(d.defaults, mutations, d.computed, d.initialDefaults)
}

// SetDefaults merges values over the current defaults.
// Existing mutations are kept, even when they now equal the new default.
func (d *Domino) SetDefaults(values Values) *Domino {
	defaults := maps.Clone(d.defaults)
	maps.Copy(defaults, values)
	return build(defaults, d.mutations, d.computed, d.initialDefaults)
}

// Reset clears all mutations. Defaults and computed fields are kept.
func (d *Domino) Reset() *Domino {
	return build(d.defaults, nil, d.computed, d.initialDefaults)
}

// Clear clears all mutations and restores the defaults the first generation
// was created with, discarding every SetDefaults since.
func (d *Domino) Clear() *Domino {
	return build(d.initialDefaults, nil, d.computed, d.initialDefaults)
}

// Values returns a copy of the derived values.
func (d *Domino) Values() Values {
	return clone(d.values)
}

// Value returns a copy of a single derived value.
func (d *Domino) Value(key string) (any, bool) {
	v, ok := d.values[key]
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}

// Defaults returns a copy of the current defaults.
func (d *Domino) Defaults() Values {
	return clone(d.defaults)
}

// InitialDefaults returns a copy of the defaults this lineage started with.
func (d *Domino) InitialDefaults() Values {
	return clone(d.initialDefaults)
}

// Mutations returns a copy of the fields that differ from the defaults.
func (d *Domino) Mutations() Values {
	return clone(d.mutations)
}

// IsModified reports whether any mutation is present.
func (d *Domino) IsModified() bool {
	return d.isModified
}

// ComputedKeys returns the names of the computed fields in sorted order.
func (d *Domino) ComputedKeys() []string {
	return slices.Sorted(maps.Keys(d.computed))
}

// ComputedFields returns the computed field registrations.
func (d *Domino) ComputedFields() ComputedFields {
	return maps.Clone(d.computed)
}

// computeArgs hands computed fields and hash functions their own copies,
// so a misbehaving compute cannot corrupt the generation.
func (d *Domino) computeArgs() ComputeArgs {
	return ComputeArgs{
		Defaults:   clone(d.defaults),
		Values:     clone(d.base),
		Mutations:  clone(d.mutations),
		IsModified: d.isModified,
	}
}
