// Package daemon coordinates the long-running crosswalkd process.
//
// It wires configuration, the equivalence cache store, the resolver, the
// static anime table, and the metrics collector into a single lifecycle with
// flock-based locking to prevent multiple instances against one database. The
// daemon owns the HTTP API server and the periodic cache maintenance loop.
//
// Keep orchestration logic here: resolution and storage behaviour live in
// their own packages while the daemon focuses on startup, shutdown, and
// request fan-in.
package daemon
