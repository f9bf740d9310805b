// Package metabridge provides the client for a community-run identifier
// bridge keyed by IMDb ids.
//
// The bridge is optional: it has no canonical public deployment, so the base
// URL comes from operator configuration and the provider registry leaves the
// client nil when none is set. The expected endpoint is
// GET {base}/lookup?imdb={id}&type={movie|series} returning a JSON object
// with tmdb_id and tvdb_id fields, zero or absent when unknown.
package metabridge
