package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/gofrs/flock"

	"crosswalk/internal/animemap"
	"crosswalk/internal/cachestore"
	"crosswalk/internal/config"
	"crosswalk/internal/identity"
	"crosswalk/internal/logging"
	"crosswalk/internal/metrics"
	"crosswalk/internal/resolver"
)

// Daemon coordinates the resolver, cache maintenance, and the HTTP API and
// enforces single-instance execution per database.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *cachestore.Store
	resolver  *resolver.Resolver
	table     *animemap.Table
	collector *metrics.Collector

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc

	api         *apiServer
	maintenance *maintenanceLoop
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	DatabasePath string
	LockFilePath string
	APIAddr      string
}

// New constructs a daemon with initialized dependencies. The table and
// collector may be nil; anime lookups and metrics degrade accordingly.
func New(cfg *config.Config, store *cachestore.Store, res *resolver.Resolver, table *animemap.Table, collector *metrics.Collector, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || res == nil {
		return nil, errors.New("daemon requires config, store, and resolver")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := LockFilePath(cfg)
	return &Daemon{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		resolver:  res,
		table:     table,
		collector: collector,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the API server and the cache
// maintenance loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another crosswalkd instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	if api := newAPIServer(d.cfg, d, d.logger); api != nil {
		if err := api.start(d.ctx); err != nil {
			_ = d.lock.Unlock()
			d.cancel()
			d.ctx = nil
			d.cancel = nil
			return fmt.Errorf("start api server: %w", err)
		}
		d.api = api
	}

	d.maintenance = newMaintenanceLoop(d.store, d.cfg.Cache.MaintenanceInterval, d.logger)
	d.maintenance.start(d.ctx)

	d.running.Store(true)
	d.logger.Info("crosswalkd started",
		logging.String("lock", d.lockPath),
		logging.String("database", d.cfg.DatabasePath()))
	return nil
}

// Stop halts background work and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.api = nil
	d.maintenance.stop()
	d.maintenance = nil
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("crosswalkd stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	d.collector.Close()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DatabasePath: d.cfg.DatabasePath(),
		LockFilePath: d.lockPath,
		APIAddr:      d.apiAddr(),
	}
}

func (d *Daemon) apiAddr() string {
	if d.api != nil {
		return d.api.addr()
	}
	return d.cfg.Paths.APIBind
}

// Resolve runs one resolution through the shared resolver.
func (d *Daemon) Resolve(ctx context.Context, req resolver.Request) (identity.Record, error) {
	if d.resolver == nil {
		return identity.Record{}, errors.New("resolver unavailable")
	}
	return d.resolver.Resolve(ctx, req)
}

// CacheStats returns equivalence cache counters and bounds.
func (d *Daemon) CacheStats(ctx context.Context) (cachestore.Stats, error) {
	if d.store == nil {
		return cachestore.Stats{}, errors.New("cache store unavailable")
	}
	return d.store.Stats(ctx)
}

// SearchCache returns cached rows matching the identifier value.
func (d *Daemon) SearchCache(ctx context.Context, value string, contentType identity.ContentType, limit, offset int) ([]cachestore.Row, error) {
	if d.store == nil {
		return nil, errors.New("cache store unavailable")
	}
	return d.store.Search(ctx, value, contentType, limit, offset)
}

// AddMapping validates and persists an operator-supplied equivalence row,
// returning the normalized record that was stored.
func (d *Daemon) AddMapping(ctx context.Context, record identity.Record) (identity.Record, error) {
	if d.store == nil {
		return identity.Record{}, errors.New("cache store unavailable")
	}
	return d.store.AddMapping(ctx, record)
}

// Optimize runs a full maintenance pass on the cache store.
func (d *Daemon) Optimize(ctx context.Context) (cachestore.OptimizeResult, error) {
	if d.store == nil {
		return cachestore.OptimizeResult{}, errors.New("cache store unavailable")
	}
	return d.store.Optimize(ctx)
}

// ClearCache removes every cached equivalence row.
func (d *Daemon) ClearCache(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("cache store unavailable")
	}
	return d.store.ClearAll(ctx)
}

// ClearOlderThan removes cached rows last updated more than days ago.
func (d *Daemon) ClearOlderThan(ctx context.Context, days int) (int64, error) {
	if d.store == nil {
		return 0, errors.New("cache store unavailable")
	}
	return d.store.Expire(ctx, days)
}

// AnimeLookup searches the static table by one animation namespace.
func (d *Daemon) AnimeLookup(namespace string, id int64) (animemap.Entry, bool) {
	if d.table == nil {
		return animemap.Entry{}, false
	}
	switch namespace {
	case "mal":
		return d.table.ByMAL(id)
	case "kitsu":
		return d.table.ByKitsu(id)
	case "anidb":
		return d.table.ByAniDB(id)
	case "anilist":
		return d.table.ByAniList(id)
	default:
		return animemap.Entry{}, false
	}
}

// MetricsSnapshot returns the current resolution and bridge aggregates.
func (d *Daemon) MetricsSnapshot() metrics.Snapshot {
	return d.collector.Snapshot()
}
