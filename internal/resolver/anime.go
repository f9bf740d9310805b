package resolver

import (
	"context"
	"log/slog"

	"crosswalk/internal/animemap"
	"crosswalk/internal/identity"
	"crosswalk/internal/logging"
)

// resolveAnime answers animation content from the static table, then walks
// the bridges for whatever general identifiers the table could not supply.
// Animation records are never written back to the equivalence cache.
func (r *Resolver) resolveAnime(ctx context.Context, log *slog.Logger, p plan) identity.Record {
	working := p.working

	entry, found := r.staticLookup(working)
	if found {
		working.Merge(entry.Record())
		log.Debug("static mapping matched",
			logging.String("title", entry.Title),
			logging.Int("general_ids", working.GeneralIDCount()))
	} else {
		log.Debug("no static mapping for animation seeds")
	}
	if working.ContentType == "" {
		working.ContentType = identity.ContentTypeSeries
	}

	if needsAny(working, identity.GeneralProviders...) {
		working = r.executeWalk(ctx, log, working)
	}
	return working
}

// staticLookup probes the table with each known animation identifier in
// priority order and returns the first hit.
func (r *Resolver) staticLookup(record identity.Record) (animemap.Entry, bool) {
	if r.table == nil {
		return animemap.Entry{}, false
	}
	if record.MALID > 0 {
		if entry, ok := r.table.ByMAL(record.MALID); ok {
			return entry, true
		}
	}
	if record.KitsuID > 0 {
		if entry, ok := r.table.ByKitsu(record.KitsuID); ok {
			return entry, true
		}
	}
	if record.AniDBID > 0 {
		if entry, ok := r.table.ByAniDB(record.AniDBID); ok {
			return entry, true
		}
	}
	if record.AniListID > 0 {
		if entry, ok := r.table.ByAniList(record.AniListID); ok {
			return entry, true
		}
	}
	return animemap.Entry{}, false
}
