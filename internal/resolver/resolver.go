package resolver

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"crosswalk/internal/animemap"
	"crosswalk/internal/cachestore"
	"crosswalk/internal/identity"
	"crosswalk/internal/logging"
	"crosswalk/internal/metrics"
	"crosswalk/internal/providers"
	"crosswalk/internal/services"
)

// ContentTypeAnime is the request alias forcing the animation path. The
// resolved record itself carries movie or series.
const ContentTypeAnime = "anime"

// Request describes one resolution: what kind of title, which identifiers
// are already known, and optionally which namespaces the caller needs.
type Request struct {
	ContentType string          `json:"content_type"`
	Seeds       identity.Record `json:"seeds"`
	Targets     []string        `json:"targets,omitempty"`
}

// Resolver drives identifier resolution across the static table, the
// equivalence cache, and the provider bridges.
type Resolver struct {
	store     *cachestore.Store
	table     *animemap.Table
	registry  *providers.Registry
	collector *metrics.Collector
	logger    *slog.Logger
}

// New assembles a resolver from its dependencies. The registry and static
// table must be constructed beforehand; store and collector may be nil, in
// which case resolution runs without caching or telemetry.
func New(store *cachestore.Store, table *animemap.Table, registry *providers.Registry, collector *metrics.Collector, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{
		store:     store,
		table:     table,
		registry:  registry,
		collector: collector,
		logger:    logging.NewComponentLogger(logger, "resolver"),
	}
}

// plan is a validated request ready to execute. An empty working content
// type means the animation alias was used and the static table entry (or
// the series default) decides.
type plan struct {
	working identity.Record
	targets []identity.Provider
	anime   bool
}

// Resolve validates the request, picks the animation or general path, and
// returns the most complete record it could assemble. Missing data is not
// an error; the only failure mode is an invalid request.
func (r *Resolver) Resolve(ctx context.Context, req Request) (identity.Record, error) {
	start := time.Now()
	if _, ok := services.CorrelationIDFromContext(ctx); !ok {
		ctx = services.WithCorrelationID(ctx, uuid.NewString())
	}
	ctx = services.WithContentType(ctx, strings.ToLower(strings.TrimSpace(req.ContentType)))
	log := logging.WithContext(ctx, r.logger)

	p, err := buildPlan(req)
	if err != nil {
		return identity.Record{}, err
	}
	seedCount := p.working.GeneralIDCount()
	log.Debug("starting resolution",
		logging.Int("seed_count", seedCount),
		logging.Bool("animation", p.anime),
		logging.Int("target_count", len(p.targets)))

	var record identity.Record
	if p.anime {
		record = r.resolveAnime(ctx, log, p)
	} else {
		record = r.resolveGeneral(ctx, log, p)
	}

	outcome := classifyOutcome(record, p.targets, seedCount)
	r.collector.RecordResolve(outcome, time.Since(start))
	log.Info("resolution completed",
		logging.String("outcome", outcome),
		logging.Int("general_ids", record.GeneralIDCount()),
		logging.Duration("duration", time.Since(start)))
	return record, nil
}

// buildPlan normalizes and validates the request. Every rejection carries
// services.ErrValidation; nothing else errors.
func buildPlan(req Request) (plan, error) {
	p := plan{working: req.Seeds}
	p.working.ContentType = ""

	kind := strings.ToLower(strings.TrimSpace(req.ContentType))
	switch kind {
	case "":
		return p, services.Wrap(services.ErrValidation, "resolver", "validate request", "content type is required", nil)
	case ContentTypeAnime:
		p.anime = true
	default:
		contentType, err := identity.ParseContentType(kind)
		if err != nil {
			return p, services.Wrap(services.ErrValidation, "resolver", "validate request", "content type must be movie, series, or anime", err)
		}
		p.working.ContentType = contentType
		p.anime = p.working.HasAnimeIDs()
	}

	if strings.TrimSpace(p.working.IMDBID) != "" {
		normalized, err := identity.NormalizeIMDBID(p.working.IMDBID)
		if err != nil {
			return p, services.Wrap(services.ErrValidation, "resolver", "validate request", "imdb seed is malformed", err)
		}
		p.working.IMDBID = normalized
	}
	if p.working.IsEmpty() {
		return p, services.Wrap(services.ErrValidation, "resolver", "validate request", "at least one seed identifier is required", nil)
	}

	for _, raw := range req.Targets {
		provider, err := identity.ParseProvider(raw)
		if err != nil {
			return p, services.Wrap(services.ErrValidation, "resolver", "validate request", "unknown target namespace", err)
		}
		if !hasProvider(p.targets, provider) {
			p.targets = append(p.targets, provider)
		}
	}
	return p, nil
}

// resolveGeneral runs the cache short-circuit and, when that is not enough,
// the bridge walk followed by a write-back.
func (r *Resolver) resolveGeneral(ctx context.Context, log *slog.Logger, p plan) identity.Record {
	working := p.working

	if r.store != nil {
		cached, found, err := r.store.Get(ctx, working.ContentType, working)
		switch {
		case err != nil:
			logging.ErrorWithContext(log, "cache read failed", "cache_degraded",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the cache database path and permissions"),
				logging.String(logging.FieldImpact, "resolution proceeds without cached identifiers"))
		case found:
			r.collector.RecordCacheHit()
			working = cached
			if satisfied(working, p.targets) {
				log.Debug("cache short-circuit", logging.Int("general_ids", working.GeneralIDCount()))
				return working
			}
		default:
			r.collector.RecordCacheMiss()
		}
	}

	working = r.executeWalk(ctx, log, working)

	if r.store != nil && working.GeneralIDCount() >= 2 {
		if err := r.store.Put(ctx, working); err != nil {
			logging.ErrorWithContext(log, "cache write failed", "cache_degraded",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the cache database path and permissions"),
				logging.String(logging.FieldImpact, "resolved identifiers were not persisted"))
		}
	}
	return working
}

// satisfied reports whether the record already covers what the caller asked
// for: every requested target, or absent a target list, the IMDb id plus the
// content-type-native id.
func satisfied(record identity.Record, targets []identity.Provider) bool {
	if len(targets) > 0 {
		return len(record.Missing(targets)) == 0
	}
	return record.Has(identity.ProviderIMDB) && record.Has(identity.NativeProvider(record.ContentType))
}

func classifyOutcome(record identity.Record, targets []identity.Provider, seedCount int) string {
	if satisfied(record, targets) {
		return metrics.OutcomeResolved
	}
	if record.GeneralIDCount() > seedCount {
		return metrics.OutcomePartial
	}
	return metrics.OutcomeFailed
}

func hasProvider(list []identity.Provider, provider identity.Provider) bool {
	for _, candidate := range list {
		if candidate == provider {
			return true
		}
	}
	return false
}
