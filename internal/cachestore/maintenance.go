package cachestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"crosswalk/internal/services"
)

// Stats summarizes the cache database for the admin surface.
type Stats struct {
	TotalRows     int64      `json:"total_rows"`
	MovieRows     int64      `json:"movie_rows"`
	SeriesRows    int64      `json:"series_rows"`
	OldestUpdated *time.Time `json:"oldest_updated,omitempty"`
	NewestUpdated *time.Time `json:"newest_updated,omitempty"`
	DatabaseBytes int64      `json:"database_bytes"`
	TTLDays       int        `json:"ttl_days"`
	MaxRows       int        `json:"max_rows"`
}

// OptimizeResult reports what one maintenance pass changed.
type OptimizeResult struct {
	Expired    int64 `json:"expired"`
	Evicted    int64 `json:"evicted"`
	DurationMS int64 `json:"duration_ms"`
}

// Stats returns row counts, update-time bounds, and the database file size.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	stats := Stats{TTLDays: s.ttlDays, MaxRows: s.maxRows}

	rows, err := s.db.QueryContext(ctx, `SELECT content_type, COUNT(1) FROM identity_records GROUP BY content_type`)
	if err != nil {
		return stats, services.Wrap(services.ErrStorage, "cachestore", "stats", "count rows", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			return stats, services.Wrap(services.ErrStorage, "cachestore", "stats", "scan counts", err)
		}
		stats.TotalRows += count
		switch kind {
		case "movie":
			stats.MovieRows = count
		case "series":
			stats.SeriesRows = count
		}
	}
	if err := rows.Err(); err != nil {
		return stats, services.Wrap(services.ErrStorage, "cachestore", "stats", "iterate counts", err)
	}

	var oldestRaw, newestRaw sql.NullString
	err = s.db.QueryRowContext(ctx, `SELECT MIN(updated_at), MAX(updated_at) FROM identity_records`).Scan(&oldestRaw, &newestRaw)
	if err != nil {
		return stats, services.Wrap(services.ErrStorage, "cachestore", "stats", "update bounds", err)
	}
	if oldest, err := parseTimeString(oldestRaw.String); err == nil {
		stats.OldestUpdated = &oldest
	}
	if newest, err := parseTimeString(newestRaw.String); err == nil {
		stats.NewestUpdated = &newest
	}

	if info, err := os.Stat(s.path); err == nil {
		stats.DatabaseBytes = info.Size()
	}
	return stats, nil
}

// CheckHealth verifies the schema is present and the database passes an
// integrity check.
func (s *Store) CheckHealth(ctx context.Context) error {
	if s == nil || s.db == nil {
		return services.Wrap(services.ErrStorage, "cachestore", "health", "database connection unavailable", nil)
	}
	ctx, cancel := context.WithTimeout(ensureContext(ctx), 2*time.Second)
	defer cancel()

	var tableName string
	row := s.db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'identity_records'")
	if err := row.Scan(&tableName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return services.Wrap(services.ErrStorage, "cachestore", "health", "identity_records table missing", nil)
		}
		return services.Wrap(services.ErrStorage, "cachestore", "health", "query table info", err)
	}

	var integrity string
	if err := s.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&integrity); err != nil {
		return services.Wrap(services.ErrStorage, "cachestore", "health", "integrity check", err)
	}
	if !strings.EqualFold(integrity, "ok") {
		return services.Wrap(services.ErrStorage, "cachestore", "health", "integrity check reported "+integrity, nil)
	}
	return nil
}

// Expire deletes rows whose updated_at is older than ttlDays. A non-positive
// ttlDays selects the configured default. Returns the number of rows
// removed; running it again immediately removes nothing.
func (s *Store) Expire(ctx context.Context, ttlDays int) (int64, error) {
	if ttlDays <= 0 {
		ttlDays = s.ttlDays
	}
	cutoff := formatTime(time.Now().Add(-time.Duration(ttlDays) * 24 * time.Hour))
	res, err := s.execWithRetry(ensureContext(ctx), `DELETE FROM identity_records WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, services.Wrap(services.ErrStorage, "cachestore", "expire", "delete expired rows", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, services.Wrap(services.ErrStorage, "cachestore", "expire", "rows affected", err)
	}
	return removed, nil
}

// EnforceSize deletes the oldest-updated rows until the table holds at most
// maxRows. A non-positive maxRows selects the configured default.
func (s *Store) EnforceSize(ctx context.Context, maxRows int) (int64, error) {
	if maxRows <= 0 {
		maxRows = s.maxRows
	}
	ctx = ensureContext(ctx)

	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM identity_records`).Scan(&count); err != nil {
		return 0, services.Wrap(services.ErrStorage, "cachestore", "enforce size", "count rows", err)
	}
	excess := count - int64(maxRows)
	if excess <= 0 {
		return 0, nil
	}

	res, err := s.execWithRetry(ctx,
		`DELETE FROM identity_records WHERE id IN (
            SELECT id FROM identity_records ORDER BY updated_at ASC, id ASC LIMIT ?
        )`, excess)
	if err != nil {
		return 0, services.Wrap(services.ErrStorage, "cachestore", "enforce size", "delete oldest rows", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, services.Wrap(services.ErrStorage, "cachestore", "enforce size", "rows affected", err)
	}
	return removed, nil
}

// Housekeeping reclaims free pages and refreshes planner statistics. It
// never changes logical contents.
func (s *Store) Housekeeping(ctx context.Context) error {
	ctx = ensureContext(ctx)
	for _, stmt := range []string{"PRAGMA incremental_vacuum", "ANALYZE"} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return services.Wrap(services.ErrStorage, "cachestore", "housekeeping", fmt.Sprintf("run %q", stmt), err)
		}
	}
	return nil
}

// Optimize runs expiry, size enforcement, and housekeeping in one pass.
func (s *Store) Optimize(ctx context.Context) (OptimizeResult, error) {
	start := time.Now()
	result := OptimizeResult{}

	expired, err := s.Expire(ctx, 0)
	if err != nil {
		return result, err
	}
	result.Expired = expired

	evicted, err := s.EnforceSize(ctx, 0)
	if err != nil {
		return result, err
	}
	result.Evicted = evicted

	if err := s.Housekeeping(ctx); err != nil {
		return result, err
	}
	result.DurationMS = time.Since(start).Milliseconds()
	return result, nil
}

// ClearAll removes every cached row and returns the count removed.
func (s *Store) ClearAll(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ensureContext(ctx), `DELETE FROM identity_records`)
	if err != nil {
		return 0, services.Wrap(services.ErrStorage, "cachestore", "clear", "delete rows", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, services.Wrap(services.ErrStorage, "cachestore", "clear", "rows affected", err)
	}
	return removed, nil
}
