// Package metrics defines the sinks that observe a simulation run. The
// driver reports every completed, skipped and aborted trip and a summary per
// policy. Sinks like PromSink and InfluxSink live in infra/metrics and can be
// combined with NewMultiSink. The factory helpers return a MultiSink
// automatically when multiple sinks are configured.
package metrics
