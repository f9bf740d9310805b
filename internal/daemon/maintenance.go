package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"crosswalk/internal/cachestore"
	"crosswalk/internal/logging"
)

// maintenanceLoop runs periodic cache optimization until its context ends.
type maintenanceLoop struct {
	store    *cachestore.Store
	interval time.Duration
	logger   *slog.Logger

	wg sync.WaitGroup
}

func newMaintenanceLoop(store *cachestore.Store, intervalMinutes int, logger *slog.Logger) *maintenanceLoop {
	if store == nil || intervalMinutes <= 0 {
		return nil
	}
	return &maintenanceLoop{
		store:    store,
		interval: time.Duration(intervalMinutes) * time.Minute,
		logger:   logging.NewComponentLogger(logger, "maintenance"),
	}
}

func (m *maintenanceLoop) start(ctx context.Context) {
	if m == nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.run(ctx)
	}()
}

// stop blocks until the loop goroutine has observed cancellation and exited.
func (m *maintenanceLoop) stop() {
	if m == nil {
		return
	}
	m.wg.Wait()
}

func (m *maintenanceLoop) run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info("cache maintenance scheduled", logging.Duration("interval", m.interval))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.runOnce(ctx)
		}
	}
}

func (m *maintenanceLoop) runOnce(ctx context.Context) {
	result, err := m.store.Optimize(ctx)
	if err != nil {
		logging.ErrorWithContext(m.logger, "cache maintenance failed", "maintenance_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check database health and disk space"))
		return
	}
	m.logger.Info("cache maintenance completed",
		logging.Int64("expired", result.Expired),
		logging.Int64("evicted", result.Evicted),
		logging.Int64("duration_ms", result.DurationMS))
}
