package identity

import (
	"fmt"
	"strings"
)

// ContentType distinguishes the two persisted record kinds.
type ContentType string

const (
	ContentTypeMovie  ContentType = "movie"
	ContentTypeSeries ContentType = "series"
)

// ParseContentType normalizes and validates a content type value.
func ParseContentType(value string) (ContentType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(ContentTypeMovie):
		return ContentTypeMovie, nil
	case string(ContentTypeSeries):
		return ContentTypeSeries, nil
	default:
		return "", fmt.Errorf("unknown content type %q", value)
	}
}

// Provider names one of the general-purpose identifier namespaces.
type Provider string

const (
	ProviderTMDB   Provider = "tmdb"
	ProviderTVDB   Provider = "tvdb"
	ProviderIMDB   Provider = "imdb"
	ProviderTVmaze Provider = "tvmaze"
)

// GeneralProviders lists the namespaces persisted to the equivalence cache,
// in canonical lookup order.
var GeneralProviders = []Provider{ProviderTMDB, ProviderTVDB, ProviderIMDB, ProviderTVmaze}

// ParseProvider normalizes and validates a provider name.
func ParseProvider(value string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(ProviderTMDB):
		return ProviderTMDB, nil
	case string(ProviderTVDB):
		return ProviderTVDB, nil
	case string(ProviderIMDB):
		return ProviderIMDB, nil
	case string(ProviderTVmaze):
		return ProviderTVmaze, nil
	default:
		return "", fmt.Errorf("unknown provider %q", value)
	}
}

// NativeProvider returns the namespace implied by a content type: movies are
// TMDB-native, series are TVDB-native.
func NativeProvider(contentType ContentType) Provider {
	if contentType == ContentTypeSeries {
		return ProviderTVDB
	}
	return ProviderTMDB
}

// NormalizeIMDBID trims and lowercases an IMDb identifier and validates the
// tt-prefixed numeric form.
func NormalizeIMDBID(value string) (string, error) {
	id := strings.ToLower(strings.TrimSpace(value))
	if id == "" {
		return "", fmt.Errorf("imdb id is empty")
	}
	digits, ok := strings.CutPrefix(id, "tt")
	if !ok || digits == "" {
		return "", fmt.Errorf("imdb id %q missing tt prefix", value)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("imdb id %q is not numeric after prefix", value)
		}
	}
	return id, nil
}

// Record is the canonical set of cross-provider identifiers for one title.
// Zero-valued fields are unknown.
type Record struct {
	ContentType ContentType `json:"content_type,omitempty"`
	TMDBID      int64       `json:"tmdb_id,omitempty"`
	TVDBID      int64       `json:"tvdb_id,omitempty"`
	IMDBID      string      `json:"imdb_id,omitempty"`
	TVmazeID    int64       `json:"tvmaze_id,omitempty"`
	MALID       int64       `json:"mal_id,omitempty"`
	KitsuID     int64       `json:"kitsu_id,omitempty"`
	AniDBID     int64       `json:"anidb_id,omitempty"`
	AniListID   int64       `json:"anilist_id,omitempty"`
}

// Has reports whether the general namespace already carries an identifier.
func (r Record) Has(provider Provider) bool {
	switch provider {
	case ProviderTMDB:
		return r.TMDBID > 0
	case ProviderTVDB:
		return r.TVDBID > 0
	case ProviderIMDB:
		return strings.TrimSpace(r.IMDBID) != ""
	case ProviderTVmaze:
		return r.TVmazeID > 0
	default:
		return false
	}
}

// GeneralIDCount counts populated general-purpose identifiers.
func (r Record) GeneralIDCount() int {
	count := 0
	for _, provider := range GeneralProviders {
		if r.Has(provider) {
			count++
		}
	}
	return count
}

// PopulatedGeneral returns the general namespaces present on the record, in
// canonical order.
func (r Record) PopulatedGeneral() []Provider {
	populated := make([]Provider, 0, len(GeneralProviders))
	for _, provider := range GeneralProviders {
		if r.Has(provider) {
			populated = append(populated, provider)
		}
	}
	return populated
}

// Missing returns the namespaces from want that the record has not resolved.
func (r Record) Missing(want []Provider) []Provider {
	missing := make([]Provider, 0, len(want))
	for _, provider := range want {
		if !r.Has(provider) {
			missing = append(missing, provider)
		}
	}
	return missing
}

// HasAnimeIDs reports whether any animation-namespace identifier is set.
func (r Record) HasAnimeIDs() bool {
	return r.MALID > 0 || r.KitsuID > 0 || r.AniDBID > 0 || r.AniListID > 0
}

// IsEmpty reports whether no identifier field at all is populated.
func (r Record) IsEmpty() bool {
	return r.GeneralIDCount() == 0 && !r.HasAnimeIDs()
}

// Merge copies identifiers from other into r, filling only fields that are
// currently empty. Populated fields are never replaced.
func (r *Record) Merge(other Record) {
	if r.ContentType == "" && other.ContentType != "" {
		r.ContentType = other.ContentType
	}
	if r.TMDBID <= 0 && other.TMDBID > 0 {
		r.TMDBID = other.TMDBID
	}
	if r.TVDBID <= 0 && other.TVDBID > 0 {
		r.TVDBID = other.TVDBID
	}
	if strings.TrimSpace(r.IMDBID) == "" && strings.TrimSpace(other.IMDBID) != "" {
		r.IMDBID = strings.TrimSpace(other.IMDBID)
	}
	if r.TVmazeID <= 0 && other.TVmazeID > 0 {
		r.TVmazeID = other.TVmazeID
	}
	if r.MALID <= 0 && other.MALID > 0 {
		r.MALID = other.MALID
	}
	if r.KitsuID <= 0 && other.KitsuID > 0 {
		r.KitsuID = other.KitsuID
	}
	if r.AniDBID <= 0 && other.AniDBID > 0 {
		r.AniDBID = other.AniDBID
	}
	if r.AniListID <= 0 && other.AniListID > 0 {
		r.AniListID = other.AniListID
	}
}
