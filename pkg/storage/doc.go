// Package storage provides a namespaced key-value wrapper over pluggable
// string backends, plus small timestamped caches built on top of it.
//
// Read failures never surface as errors from Get: a missing, empty or
// undecodable entry is reported as absent and logged.
package storage
