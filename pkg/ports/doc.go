/*
Package ports defines the driven ports (interfaces) for domino.

These interfaces decouple the pure domino core from the mechanisms that own the
current generation, allowing the same store facade to run on an in-memory cell,
a slice of a larger application state, or a persisted backend.

# Key Interfaces

  - StateProvider: get/set access to a value held elsewhere; Subscriber is its optional notification side.
  - DominoAdapter: the provider specialized to domino generations, consumed by the store facade.
  - SnapshotStore: persistence of serialized dominoes (memory, file, redis).
  - DistributedLocker: cross-replica locking used by the session manager.
*/
package ports
