package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestDiff(t *testing.T) {
	modified := true
	clean := false

	base := From(Values{"a": 1, "b": "x"})

	tests := []struct {
		name     string
		old      *Domino
		new      *Domino
		wantDiff *ValuesDiff // nil means we expect no diff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new:  base,
			wantDiff: &ValuesDiff{
				Values: map[string]any{"a": 1, "b": "x"},
			},
		},
		{
			name:     "No Changes",
			old:      base,
			new:      base.Update(Values{}),
			wantDiff: nil,
		},
		{
			name: "Update Flips IsModified",
			old:  base,
			new:  base.Update(Values{"a": 2}),
			wantDiff: &ValuesDiff{
				Values:     map[string]any{"a": 2},
				Mutations:  []string{"a"},
				IsModified: &modified,
			},
		},
		{
			name: "Reset Restores Defaults",
			old:  base.Update(Values{"a": 2, "c": true}),
			new:  base.Update(Values{"a": 2, "c": true}).Reset(),
			wantDiff: &ValuesDiff{
				Values:     map[string]any{"a": 1, "c": nil},
				Mutations:  []string{"a", "c"},
				IsModified: &clean,
			},
		},
		{
			name: "Mutation Equal To Value",
			old:  base,
			new:  base.Update(Values{"a": 1}),
			wantDiff: &ValuesDiff{
				Mutations:  []string{"a"},
				IsModified: &modified,
			},
		},
		{
			name: "Default Change Under Mutation",
			old:  base.Update(Values{"a": 2}),
			new:  base.Update(Values{"a": 2}).SetDefaults(Values{"a": 5}),
			wantDiff: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)

			if tt.wantDiff == nil {
				if got != nil {
					t.Errorf("Diff() = %+v, want nil", got)
				}
				return
			}

			if got == nil {
				t.Fatalf("Diff() = nil, want %+v", tt.wantDiff)
			}

			if !reflect.DeepEqual(got.Values, tt.wantDiff.Values) {
				t.Errorf("Values diff mismatch.\nGot:  %v\nWant: %v", got.Values, tt.wantDiff.Values)
			}
			if !reflect.DeepEqual(got.Mutations, tt.wantDiff.Mutations) {
				t.Errorf("Mutations diff mismatch.\nGot:  %v\nWant: %v", got.Mutations, tt.wantDiff.Mutations)
			}
			if (got.IsModified == nil) != (tt.wantDiff.IsModified == nil) {
				t.Fatalf("IsModified presence mismatch. Got %v, want %v", got.IsModified, tt.wantDiff.IsModified)
			}
			if got.IsModified != nil && *got.IsModified != *tt.wantDiff.IsModified {
				t.Errorf("IsModified = %v, want %v", *got.IsModified, *tt.wantDiff.IsModified)
			}
		})
	}
}

func TestDiff_NilNew(t *testing.T) {
	if got := Diff(From(nil), nil); got != nil {
		t.Errorf("Diff(x, nil) = %+v, want nil", got)
	}
}

func TestDiff_JSONOmitsEmpty(t *testing.T) {
	d := From(Values{"a": 1})
	diff := Diff(d, d.Update(Values{"a": 2}))

	data, err := json.Marshal(diff)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"values":{"a":2}`) {
		t.Errorf("expected values delta in %s", s)
	}
	if !strings.Contains(s, `"is_modified":true`) {
		t.Errorf("expected is_modified in %s", s)
	}
}
