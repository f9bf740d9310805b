// Package tvdb provides the minimal TheTVDB v4 API client used by the bridge
// walk.
//
// It exposes remote-id search (find a TVDB record by TMDB or IMDb
// identifier) and the extended record endpoint, whose remoteIds block
// cross-references IMDb, TMDB, and TV Maze under a fixed source-name
// vocabulary. Requests authenticate with a static bearer token; the v4
// login/refresh flow is out of scope and the configured key is sent as-is.
package tvdb
