// Package animemap holds the static mapping table that correlates animation
// identifier namespaces (MyAnimeList, Kitsu, AniDB, AniList) with the
// general-purpose ones.
//
// The table is built once at startup from a bundled dataset, or from an
// operator-supplied file when anime.dataset_path is configured, and never
// changes afterwards: lookups are O(1) map reads with no locking, entries
// never expire, and there is no reload hook. Picking up a new dataset means
// restarting the process.
package animemap
