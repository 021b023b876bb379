/*
Package observability turns conversion hooks into metrics and log lines.

Metrics registers Prometheus collectors and exposes them as domain.Hooks, so any
converter (or the Engine) reports through them without importing Prometheus.
Chain combines several hook sets, for example metrics plus LoggingHooks.
*/
package observability
