// Package cachestore persists resolved identity records in SQLite and keeps
// the equivalence cache inside its TTL and size bounds.
//
// One identity_records table holds every cached correlation; each identifier
// column is indexed so a lookup by any populated field lands on the same
// row. Reads honour the TTL window; writes upsert with fill-if-empty merge
// semantics and bump updated_at, which drives both expiry and oldest-first
// eviction.
//
// Concurrent writers are not coordinated beyond SQLite's own locking: two
// resolutions converging on one entity may interleave their upserts or
// insert sibling rows. Fill-if-empty keeps each row self-consistent and
// maintenance trims the excess; nothing merges rows after the fact.
package cachestore
