package domain

// Snapshot is the serializable part of a Domino.
// Computed fields are code, so they are re-registered after loading.
type Snapshot struct {
	Defaults        Values `json:"defaults"`
	InitialDefaults Values `json:"initial_defaults,omitempty"`
	Mutations       Values `json:"mutations,omitempty"`
}

// Snapshot returns a copy of the persistent state.
func (d *Domino) Snapshot() *Snapshot {
	return &Snapshot{
		Defaults:        d.Defaults(),
		InitialDefaults: d.InitialDefaults(),
		Mutations:       d.Mutations(),
	}
}

// FromSnapshot rebuilds a Domino. Snapshots without initial defaults treat the
// stored defaults as initial.
func FromSnapshot(s *Snapshot, computed ComputedFields) *Domino {
	initial := s.InitialDefaults
	if initial == nil {
		initial = s.Defaults
	}
	return build(s.Defaults, s.Mutations, computed, clone(initial))
}
