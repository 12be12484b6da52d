/*
Package domain contains the Domino state container and its pure operations.

A Domino combines baseline defaults with a sparse set of mutations into a single
derived value set. Every operation returns a new Domino and leaves the receiver
untouched, so any number of holders may keep references to older generations.
This package is kept pure and free of I/O; persistence and state ownership live
behind the ports package.

# Key Entities

  - Domino: defaults, mutations, computed fields and the derived values.
  - ComputedField: a derived value memoized against a content hash of its inputs.
  - Change: the tagged Unchanged | Updated result of AddComputedField.
  - Snapshot: the serializable part of a Domino (computed fields are code, not data).
  - ValuesDiff: the field-level delta between two generations.
*/
package domain
