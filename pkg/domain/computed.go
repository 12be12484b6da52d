package domain

import "fmt"

// ComputeArgs is the input tuple handed to computed fields and hash functions.
// Values excludes computed fields, so a computed field never depends on another.
type ComputeArgs struct {
	Defaults   Values `json:"defaults"`
	Values     Values `json:"values"`
	Mutations  Values `json:"mutations"`
	IsModified bool   `json:"isModified"`
}

// ComputeFunc derives a field value from the current state.
type ComputeFunc func(ComputeArgs) any

// HashFunc fingerprints the inputs of a computed field.
// Equal hashes mean the cached result is still valid.
type HashFunc func(ComputeArgs) (string, error)

// ComputedField is a derived value memoized against the hash of its inputs.
type ComputedField struct {
	hash    string
	compute ComputeFunc
	hashFn  HashFunc
	value   any
	primed  bool
}

// ComputedFields maps field names to their registrations.
type ComputedFields map[string]ComputedField

// Computed registers compute without a cached result; the first Domino built
// with it evaluates compute. A nil hash selects DefaultHashFunc.
func Computed(compute ComputeFunc, hash HashFunc) ComputedField {
	if hash == nil {
		hash = DefaultHashFunc
	}
	return ComputedField{compute: compute, hashFn: hash}
}

// Hash returns the input hash the cached result was computed for.
func (f ComputedField) Hash() string {
	return f.hash
}

// evaluate reuses the cached result when the inputs hash to the stored hash.
// On a miss it returns the field primed with the fresh hash and result.
// A failing hash function counts as a miss and leaves the field unprimed.
func (f ComputedField) evaluate(args func() ComputeArgs) ComputedField {
	hash, err := f.hashFn(args())
	if err == nil && f.primed && hash == f.hash {
		return f
	}
	f.value = f.compute(args())
	f.hash = hash
	f.primed = err == nil
	return f
}

// Change is the result of AddComputedField: either Unchanged, or Updated with
// the next generation. The zero value is Unchanged.
type Change struct {
	next *Domino
}

// Unchanged reports that the caller must keep its current state.
func Unchanged() Change {
	return Change{}
}

// Updated wraps the generation that should replace the current state.
func Updated(next *Domino) Change {
	return Change{next: next}
}

// Next returns the new generation and true, or nil and false when unchanged.
func (c Change) Next() (*Domino, bool) {
	return c.next, c.next != nil
}

// IsUnchanged reports whether committing can be skipped.
func (c Change) IsUnchanged() bool {
	return c.next == nil
}

// AddComputedField registers compute under key.
//
// The inputs are hashed with hash (DefaultHashFunc when nil). If key is already
// registered with the same hash, the result is Unchanged and nothing must be
// committed. Otherwise the result is Updated with a Domino whose key field is
// freshly computed. The error is only non-nil when hashing fails.
func (d *Domino) AddComputedField(key string, compute ComputeFunc, hash HashFunc) (Change, error) {
	if hash == nil {
		hash = DefaultHashFunc
	}

	h, err := hash(d.computeArgs())
	if err != nil {
		return Unchanged(), fmt.Errorf("hash computed field %q: %w", key, err)
	}

	if existing, ok := d.computed[key]; ok && existing.primed && existing.hash == h {
		return Unchanged(), nil
	}

	computed := d.ComputedFields()
	computed[key] = ComputedField{
		hash:    h,
		compute: compute,
		hashFn:  hash,
		value:   compute(d.computeArgs()),
		primed:  true,
	}
	return Updated(build(d.defaults, d.mutations, computed, d.initialDefaults)), nil
}
