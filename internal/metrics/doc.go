// Package metrics aggregates resolution telemetry in process.
//
// Events flow through a bounded channel and are folded into counters by a
// single drain goroutine. Producers never block: when the buffer is full the
// event is dropped and a drop counter incremented, so resolution latency
// never depends on telemetry.
package metrics
