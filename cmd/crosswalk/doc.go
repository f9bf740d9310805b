// Package main hosts the crosswalk CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into
// identifier resolutions, equivalence-cache maintenance, static anime
// lookups, and configuration scaffolding. Commands operate directly on the
// store and resolver built from configuration rather than proxying through
// a running crosswalkd; the daemon and the CLI share the database through
// SQLite's own locking.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
