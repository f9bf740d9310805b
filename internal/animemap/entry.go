package animemap

import (
	"fmt"
	"strings"

	"crosswalk/internal/identity"
)

// Entry is one row of the static mapping dataset. Zero-valued identifier
// fields are unknown; at least one animation identifier must be set.
type Entry struct {
	Title     string `json:"title,omitempty"`
	Type      string `json:"type,omitempty"`
	MALID     int64  `json:"mal_id,omitempty"`
	KitsuID   int64  `json:"kitsu_id,omitempty"`
	AniDBID   int64  `json:"anidb_id,omitempty"`
	AniListID int64  `json:"anilist_id,omitempty"`
	TMDBID    int64  `json:"tmdb_id,omitempty"`
	TVDBID    int64  `json:"tvdb_id,omitempty"`
	IMDBID    string `json:"imdb_id,omitempty"`
	TVmazeID  int64  `json:"tvmaze_id,omitempty"`
}

func (e Entry) validate(index int) error {
	if e.MALID <= 0 && e.KitsuID <= 0 && e.AniDBID <= 0 && e.AniListID <= 0 {
		return fmt.Errorf("entry %d: no animation identifier", index)
	}
	if kind := strings.TrimSpace(e.Type); kind != "" {
		if _, err := identity.ParseContentType(kind); err != nil {
			return fmt.Errorf("entry %d: %w", index, err)
		}
	}
	return nil
}

// ContentType returns the entry's declared content type, empty when the
// dataset does not say.
func (e Entry) ContentType() identity.ContentType {
	parsed, err := identity.ParseContentType(e.Type)
	if err != nil {
		return ""
	}
	return parsed
}

// Record converts the entry into an identity record.
func (e Entry) Record() identity.Record {
	return identity.Record{
		ContentType: e.ContentType(),
		TMDBID:      e.TMDBID,
		TVDBID:      e.TVDBID,
		IMDBID:      strings.ToLower(strings.TrimSpace(e.IMDBID)),
		TVmazeID:    e.TVmazeID,
		MALID:       e.MALID,
		KitsuID:     e.KitsuID,
		AniDBID:     e.AniDBID,
		AniListID:   e.AniListID,
	}
}
