/*
Package session implements domino lookup and persistence orchestration.

A Manager loads dominoes from a ports.SnapshotStore, re-attaches the computed
fields registered on it, and serializes read-modify-write cycles per ID with a
local mutex and, optionally, a ports.DistributedLocker shared across replicas.
*/
package session
