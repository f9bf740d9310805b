// Package services defines shared utilities consumed by the resolver, the
// cache store, and the provider bridge clients.
//
// Key responsibilities:
//   - Context helpers that stamp correlation identifiers and content types
//     for logging and tracing across one resolution.
//   - Structured error markers plus the Wrap helper that classify bridge and
//     storage failures consistently (network vs not-found vs malformed vs
//     storage) without string matching.
//
// Use these helpers when wiring new bridge logic so operational behaviour
// (error handling, observability) stays uniform across providers.
package services
