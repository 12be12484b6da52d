package domain

import "errors"

// ErrUnhashable is returned when a hash input is neither primitive nor JSON-representable.
var ErrUnhashable = errors.New("unhashable value")

// ErrSnapshotNotFound is returned when a domino ID cannot be found in the store.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrInvalidID is returned by stores for IDs they cannot hold.
var ErrInvalidID = errors.New("invalid domino id")

// ErrFieldNotFound is returned by typed accessors when the field has no value.
var ErrFieldNotFound = errors.New("field not found")

// ErrFieldType is returned by typed accessors when the stored value has another type.
var ErrFieldType = errors.New("field has unexpected type")
