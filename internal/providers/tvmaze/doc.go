// Package tvmaze provides the minimal TVmaze API client used by the bridge
// walk.
//
// It exposes show detail by TVmaze id and the lookup endpoint keyed by IMDb
// or TVDB identifiers. Every payload carries the externals block the
// resolver mines for cross-references. TVmaze requires no authentication.
package tvmaze
