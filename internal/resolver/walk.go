package resolver

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"crosswalk/internal/identity"
	"crosswalk/internal/logging"
	"crosswalk/internal/providers/metabridge"
	"crosswalk/internal/providers/tmdb"
	"crosswalk/internal/providers/tvdb"
	"crosswalk/internal/providers/tvmaze"
	"crosswalk/internal/services"
)

// walk holds the per-resolution state of one bridge walk.
type walk struct {
	resolver  *Resolver
	log       *slog.Logger
	record    *identity.Record
	attempted map[string]bool
}

// executeWalk runs the four bridge branches in order, repeating until a full
// pass adds nothing. Each upstream call is attempted at most once per walk,
// so a failed lookup is not retried within the same resolution.
func (r *Resolver) executeWalk(ctx context.Context, log *slog.Logger, record identity.Record) identity.Record {
	w := &walk{resolver: r, log: log, record: &record, attempted: make(map[string]bool)}
	for pass := 1; ; pass++ {
		before := record
		w.branchTMDB(ctx)
		w.branchTVDB(ctx)
		w.branchIMDB(ctx)
		w.branchTVmaze(ctx)
		if record == before {
			log.Debug("bridge walk settled",
				logging.Int("passes", pass),
				logging.Int("general_ids", record.GeneralIDCount()))
			break
		}
	}
	return record
}

// acquirable reports whether the walk can obtain the namespace for the
// record's content type. TVmaze carries only episodic TV.
func acquirable(record identity.Record, provider identity.Provider) bool {
	if provider == identity.ProviderTVmaze && record.ContentType != identity.ContentTypeSeries {
		return false
	}
	return true
}

func needs(record identity.Record, provider identity.Provider) bool {
	return acquirable(record, provider) && !record.Has(provider)
}

func needsAny(record identity.Record, want ...identity.Provider) bool {
	for _, provider := range want {
		if needs(record, provider) {
			return true
		}
	}
	return false
}

func (w *walk) branchTMDB(ctx context.Context) {
	record := w.record
	if !record.Has(identity.ProviderTMDB) ||
		!needsAny(*record, identity.ProviderIMDB, identity.ProviderTVDB, identity.ProviderTVmaze) {
		return
	}

	if client := w.tmdbClient(); client != nil {
		w.call(ctx, "tmdb", "external_ids", func(ctx context.Context) error {
			var ids *tmdb.ExternalIDs
			var err error
			if record.ContentType == identity.ContentTypeMovie {
				ids, err = client.MovieExternalIDs(ctx, record.TMDBID)
			} else {
				ids, err = client.TVExternalIDs(ctx, record.TMDBID)
			}
			if err != nil {
				return err
			}
			w.fillIMDB(ids.IMDBID, "tmdb")
			w.fillTVDB(ids.TVDBID, "tmdb")
			return nil
		})
	}

	if needs(*record, identity.ProviderTVDB) {
		if client := w.tvdbClient(); client != nil {
			w.call(ctx, "tvdb", "find_by_tmdb", func(ctx context.Context) error {
				id, err := client.FindByTMDB(ctx, record.TMDBID, record.ContentType)
				if err != nil {
					return err
				}
				w.fillTVDB(id, "tvdb")
				return nil
			})
		}
	}
}

func (w *walk) branchTVDB(ctx context.Context) {
	record := w.record
	if !record.Has(identity.ProviderTVDB) ||
		!needsAny(*record, identity.ProviderIMDB, identity.ProviderTMDB, identity.ProviderTVmaze) {
		return
	}

	if client := w.tvdbClient(); client != nil {
		w.call(ctx, "tvdb", "extended", func(ctx context.Context) error {
			extended, err := client.Extended(ctx, record.TVDBID, record.ContentType)
			if err != nil {
				return err
			}
			if value, ok := extended.Remote(tvdb.SourceIMDB); ok {
				w.fillIMDB(value, "tvdb")
			}
			if value, ok := extended.Remote(tvdb.SourceTMDB); ok {
				w.fillTMDB(parseRemoteID(value), "tvdb")
			}
			if record.ContentType == identity.ContentTypeSeries {
				if value, ok := extended.Remote(tvdb.SourceTVmaze); ok {
					w.fillTVmaze(parseRemoteID(value), "tvdb")
				}
			}
			return nil
		})
	}

	if needs(*record, identity.ProviderTVmaze) {
		if client := w.tvmazeClient(); client != nil {
			w.call(ctx, "tvmaze", "find_by_tvdb", func(ctx context.Context) error {
				show, err := client.FindByTVDB(ctx, record.TVDBID)
				if err != nil {
					return err
				}
				w.absorbShow(show, "tvmaze")
				return nil
			})
		}
	}
}

func (w *walk) branchIMDB(ctx context.Context) {
	record := w.record
	if !record.Has(identity.ProviderIMDB) ||
		!needsAny(*record, identity.ProviderTMDB, identity.ProviderTVDB, identity.ProviderTVmaze) {
		return
	}

	if needsAny(*record, identity.ProviderTMDB, identity.ProviderTVDB) {
		if client := w.metabridgeClient(); client != nil {
			w.call(ctx, "metabridge", "lookup", func(ctx context.Context) error {
				mapping, err := client.Lookup(ctx, record.IMDBID, record.ContentType)
				if err != nil {
					return err
				}
				w.fillTMDB(mapping.TMDBID, "metabridge")
				w.fillTVDB(mapping.TVDBID, "metabridge")
				return nil
			})
		}
	}

	if needs(*record, identity.ProviderTMDB) {
		if client := w.tmdbClient(); client != nil {
			w.call(ctx, "tmdb", "find_by_imdb", func(ctx context.Context) error {
				resp, err := client.FindByIMDB(ctx, record.IMDBID)
				if err != nil {
					return err
				}
				if record.ContentType == identity.ContentTypeMovie && len(resp.MovieResults) > 0 {
					w.fillTMDB(resp.MovieResults[0].ID, "tmdb")
				}
				if record.ContentType == identity.ContentTypeSeries && len(resp.TVResults) > 0 {
					w.fillTMDB(resp.TVResults[0].ID, "tmdb")
				}
				return nil
			})
		}
	}

	if needs(*record, identity.ProviderTVDB) {
		if client := w.tvdbClient(); client != nil {
			w.call(ctx, "tvdb", "find_by_imdb", func(ctx context.Context) error {
				id, err := client.FindByIMDB(ctx, record.IMDBID, record.ContentType)
				if err != nil {
					return err
				}
				w.fillTVDB(id, "tvdb")
				return nil
			})
		}
	}

	if needs(*record, identity.ProviderTVmaze) {
		if client := w.tvmazeClient(); client != nil {
			w.call(ctx, "tvmaze", "find_by_imdb", func(ctx context.Context) error {
				show, err := client.FindByIMDB(ctx, record.IMDBID)
				if err != nil {
					return err
				}
				w.absorbShow(show, "tvmaze")
				return nil
			})
		}
	}
}

func (w *walk) branchTVmaze(ctx context.Context) {
	record := w.record
	if !record.Has(identity.ProviderTVmaze) ||
		!needsAny(*record, identity.ProviderIMDB, identity.ProviderTMDB, identity.ProviderTVDB) {
		return
	}

	if client := w.tvmazeClient(); client != nil {
		w.call(ctx, "tvmaze", "show_detail", func(ctx context.Context) error {
			show, err := client.ShowDetail(ctx, record.TVmazeID)
			if err != nil {
				return err
			}
			w.absorbShow(show, "tvmaze")
			return nil
		})
	}
}

// call runs one memoized bridge lookup, recording latency and classifying
// any failure. Failures leave the fields unresolved; they never abort the
// walk.
func (w *walk) call(ctx context.Context, bridge, operation string, fn func(context.Context) error) {
	key := bridge + "." + operation
	if w.attempted[key] {
		return
	}
	w.attempted[key] = true

	start := time.Now()
	err := fn(ctx)
	latency := time.Since(start)
	w.resolver.collector.RecordBridge(bridge, err, latency)
	if err != nil {
		w.log.Log(ctx, services.LogLevel(err), "bridge lookup failed", logging.Args(
			logging.String(logging.FieldProvider, bridge),
			logging.String(logging.FieldOperation, operation),
			logging.Duration("latency", latency),
			logging.Error(err))...)
	}
}

func (w *walk) absorbShow(show *tvmaze.Show, source string) {
	if show == nil {
		return
	}
	w.fillTVmaze(show.ID, source)
	w.fillIMDB(show.Externals.IMDB, source)
	w.fillTMDB(show.Externals.TheMovieDB, source)
	w.fillTVDB(show.Externals.TheTVDB, source)
}

func (w *walk) fillTMDB(id int64, source string) {
	if id <= 0 || w.record.Has(identity.ProviderTMDB) {
		return
	}
	w.record.TMDBID = id
	w.logFill(identity.ProviderTMDB, source, strconv.FormatInt(id, 10))
}

func (w *walk) fillTVDB(id int64, source string) {
	if id <= 0 || w.record.Has(identity.ProviderTVDB) {
		return
	}
	w.record.TVDBID = id
	w.logFill(identity.ProviderTVDB, source, strconv.FormatInt(id, 10))
}

func (w *walk) fillTVmaze(id int64, source string) {
	if w.record.ContentType != identity.ContentTypeSeries {
		return
	}
	if id <= 0 || w.record.Has(identity.ProviderTVmaze) {
		return
	}
	w.record.TVmazeID = id
	w.logFill(identity.ProviderTVmaze, source, strconv.FormatInt(id, 10))
}

func (w *walk) fillIMDB(raw, source string) {
	if w.record.Has(identity.ProviderIMDB) {
		return
	}
	normalized, err := identity.NormalizeIMDBID(raw)
	if err != nil {
		if strings.TrimSpace(raw) != "" {
			w.log.Debug("discarding malformed imdb id",
				logging.String("source", source),
				logging.String("value", raw))
		}
		return
	}
	w.record.IMDBID = normalized
	w.logFill(identity.ProviderIMDB, source, normalized)
}

func (w *walk) logFill(provider identity.Provider, source, value string) {
	w.log.Debug("identifier resolved",
		logging.String(logging.FieldProvider, string(provider)),
		logging.String("source", source),
		logging.String("value", value))
}

func parseRemoteID(value string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

func (w *walk) tmdbClient() tmdb.API {
	if w.resolver.registry == nil {
		return nil
	}
	return w.resolver.registry.TMDB
}

func (w *walk) tvdbClient() tvdb.API {
	if w.resolver.registry == nil {
		return nil
	}
	return w.resolver.registry.TVDB
}

func (w *walk) tvmazeClient() tvmaze.API {
	if w.resolver.registry == nil {
		return nil
	}
	return w.resolver.registry.TVmaze
}

func (w *walk) metabridgeClient() metabridge.API {
	if w.resolver.registry == nil {
		return nil
	}
	return w.resolver.registry.Metabridge
}
