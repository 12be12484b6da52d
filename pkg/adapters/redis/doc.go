// Package redis provides Redis-backed implementations of the snapshot store,
// the distributed locker and the storage backend.
package redis
