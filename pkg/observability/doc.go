/*
Package observability provides lifecycle hooks for monitoring dominoes.

Metrics records commits in Prometheus; Logging writes them as structured log
records. Both return domain.LifecycleHooks, which Chain combines so a store or
session manager can feed several sinks at once.
*/
package observability
