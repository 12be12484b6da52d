package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Decode copies the derived values into out, which must be a pointer to a
// struct or map. Fields match by "mapstructure" tag or case-insensitive name,
// and numeric types are converted weakly (JSON round-trips yield float64).
func (d *Domino) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(d.Values()); err != nil {
		return fmt.Errorf("failed to decode values: %w", err)
	}
	return nil
}

// Get returns the value of key as T.
// Numbers convert between numeric types and maps decode into structs, so
// values read back from JSON stores still work; anything else must match T.
func Get[T any](d *Domino, key string) (T, error) {
	var zero T
	raw, ok := d.Value(key)
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrFieldNotFound, key)
	}
	if val, ok := raw.(T); ok {
		return val, nil
	}
	var val T
	if err := mapstructure.Decode(raw, &val); err != nil {
		return zero, fmt.Errorf("%w: %q: expected %T, got %T", ErrFieldType, key, zero, raw)
	}
	return val, nil
}
