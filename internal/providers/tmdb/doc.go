// Package tmdb provides the minimal TMDB API client used by the bridge walk.
//
// It exposes the external-id block for movies and shows plus the
// find-by-external-id endpoint, which together let the resolver hop between
// the TMDB, IMDb, and TVDB namespaces. Responses are strongly typed and
// failures carry the services error markers so callers can classify them
// without string matching. Options allow tests to supply custom HTTP clients
// without modifying production code.
package tmdb
