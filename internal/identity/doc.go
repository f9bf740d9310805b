// Package identity defines the cross-provider identifier record shared by
// the resolver, the equivalence cache, and the static anime mapping table.
//
// A Record carries every identifier known for one title across the general
// namespaces (TMDB, TVDB, IMDb, TVmaze) and the animation namespaces
// (MyAnimeList, Kitsu, AniDB, AniList). Numeric identifiers use zero as the
// absent value and IMDb uses the empty string; upstream services never issue
// identifier zero, so the sentinel cannot collide with real data.
//
// Merging follows fill-if-empty semantics: a populated field is never
// replaced, neither by an empty value nor by a conflicting non-empty one.
// Flows that need to change a populated field operate outside this package.
package identity
