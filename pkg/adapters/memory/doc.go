/*
Package memory provides in-process adapters: Cell, a mutex-serialized
StateProvider with subscriptions, and Store, a SnapshotStore backed by a map.

Cell is the Go counterpart of a component-local state hook: one value, updated
through functions of the previous value, with listeners notified after commit.
*/
package memory
