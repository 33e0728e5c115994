// Package metrics defines the sinks used to observe a dispatch run. Sinks like
// PromSink and InfluxSink (infra/metrics) record per-vehicle dispatches, tick
// snapshots and rejected calls, and can be combined with NewMultiSink. The
// factory helpers return a MultiSink automatically when multiple sinks are
// configured.
package metrics
