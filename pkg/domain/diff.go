package domain

import (
	"reflect"
	"slices"
)

// ValuesDiff represents the changes between two generations.
// It is designed to be serialized to JSON for partial updates on the client.
type ValuesDiff struct {
	// Values contains only changed, added or deleted keys.
	// For deletions, the key is present with a nil value.
	Values map[string]any `json:"values,omitempty"`

	// Mutations lists, sorted, the keys whose mutation entry appeared or disappeared.
	Mutations []string `json:"mutations,omitempty"`

	// IsModified is set when the flag flipped.
	IsModified *bool `json:"is_modified,omitempty"`
}

// Diff calculates the difference between oldDomino and newDomino.
// If oldDomino is nil, it returns a diff representing the entire newDomino (initial load).
// It returns nil when nothing observable changed.
func Diff(oldDomino, newDomino *Domino) *ValuesDiff {
	if newDomino == nil {
		return nil
	}

	diff := &ValuesDiff{}

	if oldDomino == nil {
		if newDomino.isModified {
			diff.IsModified = &newDomino.isModified
		}
	} else if oldDomino.isModified != newDomino.isModified {
		diff.IsModified = &newDomino.isModified
	}

	diff.Values = diffValues(oldDomino, newDomino)
	diff.Mutations = diffMutationKeys(oldDomino, newDomino)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffValues(old, new *Domino) map[string]any {
	delta := make(map[string]any)

	if old == nil {
		for k, v := range new.values {
			delta[k] = cloneValue(v)
		}
		if len(delta) == 0 {
			return nil
		}
		return delta
	}

	for k, newVal := range new.values {
		oldVal, exists := old.values[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			delta[k] = cloneValue(newVal)
		}
	}

	for k := range old.values {
		if _, exists := new.values[k]; !exists {
			delta[k] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

func diffMutationKeys(old, new *Domino) []string {
	var keys []string
	for k := range new.mutations {
		if old == nil {
			keys = append(keys, k)
			continue
		}
		if _, ok := old.mutations[k]; !ok {
			keys = append(keys, k)
		}
	}
	if old != nil {
		for k := range old.mutations {
			if _, ok := new.mutations[k]; !ok {
				keys = append(keys, k)
			}
		}
	}
	slices.Sort(keys)
	return keys
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *ValuesDiff) IsEmpty() bool {
	return d.IsModified == nil &&
		len(d.Values) == 0 &&
		len(d.Mutations) == 0
}
