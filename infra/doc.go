// Package infra contains technical adapters: the zerolog logger, the
// Prometheus and InfluxDB metrics sinks, the Sentry error reporter and the
// trip CSV reader. These packages should depend only on the interfaces
// defined in the core packages.
package infra
