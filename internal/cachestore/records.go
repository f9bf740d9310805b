package cachestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"crosswalk/internal/identity"
	"crosswalk/internal/services"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 500
)

// Get looks up the cache with every populated general identifier on known,
// in canonical order, scoped to contentType. It returns known merged with
// the first match inside the TTL window; expired rows are misses.
func (s *Store) Get(ctx context.Context, contentType identity.ContentType, known identity.Record) (identity.Record, bool, error) {
	ctx = ensureContext(ctx)
	cutoff := formatTime(time.Now().Add(-time.Duration(s.ttlDays) * 24 * time.Hour))

	for _, provider := range identity.GeneralProviders {
		if !known.Has(provider) {
			continue
		}
		query := `SELECT ` + rowColumns + ` FROM identity_records WHERE content_type = ? AND ` +
			providerColumn(provider) + ` = ? AND updated_at > ? ORDER BY updated_at DESC LIMIT 1`
		row, err := scanRow(s.db.QueryRowContext(ctx, query, string(contentType), providerValue(known, provider), cutoff))
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return known, false, services.Wrap(services.ErrStorage, "cachestore", "get", "query by "+string(provider), err)
		}
		merged := known
		merged.Merge(row.Record())
		return merged, true, nil
	}
	return known, false, nil
}

// Put upserts a resolved record. Records with fewer than two populated
// general identifiers carry no correlation value and are dropped without
// error. An existing row matching any populated field absorbs the record
// fill-if-empty and has its updated_at bumped, which also revives it if the
// TTL had lapsed but maintenance had not yet removed it.
func (s *Store) Put(ctx context.Context, record identity.Record) error {
	if record.GeneralIDCount() < 2 {
		return nil
	}
	if _, err := identity.ParseContentType(string(record.ContentType)); err != nil {
		return services.Wrap(services.ErrValidation, "cachestore", "put", "content type", err)
	}
	ctx = ensureContext(ctx)

	existing, err := s.findAnyMatch(ctx, record)
	if err != nil {
		return services.Wrap(services.ErrStorage, "cachestore", "put", "find existing row", err)
	}

	now := formatTime(time.Now())
	if existing == nil {
		if _, err := s.execWithRetry(ctx,
			`INSERT INTO identity_records (content_type, tmdb_id, tvdb_id, imdb_id, tvmaze_id, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			string(record.ContentType),
			nullableInt64(record.TMDBID),
			nullableInt64(record.TVDBID),
			nullableString(strings.ToLower(strings.TrimSpace(record.IMDBID))),
			nullableInt64(record.TVmazeID),
			now,
			now,
		); err != nil {
			return services.Wrap(services.ErrStorage, "cachestore", "put", "insert row", err)
		}
		return nil
	}

	merged := existing.Record()
	merged.Merge(record)
	if _, err := s.execWithRetry(ctx,
		`UPDATE identity_records SET tmdb_id = ?, tvdb_id = ?, imdb_id = ?, tvmaze_id = ?, updated_at = ? WHERE id = ?`,
		nullableInt64(merged.TMDBID),
		nullableInt64(merged.TVDBID),
		nullableString(strings.ToLower(strings.TrimSpace(merged.IMDBID))),
		nullableInt64(merged.TVmazeID),
		now,
		existing.ID,
	); err != nil {
		return services.Wrap(services.ErrStorage, "cachestore", "put", "update row", err)
	}
	return nil
}

// AddMapping persists an operator-supplied equivalence row. Unlike Put it
// rejects rows the store would silently drop: the content type must parse and
// at least two general identifiers must be populated so the row can join an
// equivalence class from either side. The normalized record is returned.
func (s *Store) AddMapping(ctx context.Context, record identity.Record) (identity.Record, error) {
	if _, err := identity.ParseContentType(string(record.ContentType)); err != nil {
		return identity.Record{}, services.Wrap(services.ErrValidation, "cachestore", "add-mapping", "content type must be movie or series", err)
	}
	if strings.TrimSpace(record.IMDBID) != "" {
		normalized, err := identity.NormalizeIMDBID(record.IMDBID)
		if err != nil {
			return identity.Record{}, services.Wrap(services.ErrValidation, "cachestore", "add-mapping", "imdb id is malformed", err)
		}
		record.IMDBID = normalized
	}
	if record.GeneralIDCount() < 2 {
		return identity.Record{}, services.Wrap(services.ErrValidation, "cachestore", "add-mapping", "a mapping needs at least two identifiers", nil)
	}
	if err := s.Put(ctx, record); err != nil {
		return identity.Record{}, err
	}
	return record, nil
}

// findAnyMatch returns the most recently updated row sharing any populated
// identifier with record, regardless of TTL.
func (s *Store) findAnyMatch(ctx context.Context, record identity.Record) (*Row, error) {
	for _, provider := range identity.GeneralProviders {
		if !record.Has(provider) {
			continue
		}
		query := `SELECT ` + rowColumns + ` FROM identity_records WHERE content_type = ? AND ` +
			providerColumn(provider) + ` = ? ORDER BY updated_at DESC LIMIT 1`
		row, err := scanRow(s.db.QueryRowContext(ctx, query, string(record.ContentType), providerValue(record, provider)))
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("match by %s: %w", provider, err)
		}
		return row, nil
	}
	return nil, nil
}

// Search returns rows whose identifier columns match value, newest first.
// Numeric values are compared against the tmdb, tvdb, and tvmaze columns;
// every value is compared against imdb.
func (s *Store) Search(ctx context.Context, value string, contentType identity.ContentType, limit, offset int) ([]Row, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, services.Wrap(services.ErrValidation, "cachestore", "search", "identifier must not be empty", nil)
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	if offset < 0 {
		offset = 0
	}

	conditions := []string{"imdb_id = ?"}
	args := []any{strings.ToLower(value)}
	if numeric, err := strconv.ParseInt(value, 10, 64); err == nil && numeric > 0 {
		conditions = append(conditions, "tmdb_id = ?", "tvdb_id = ?", "tvmaze_id = ?")
		args = append(args, numeric, numeric, numeric)
	}

	query := `SELECT ` + rowColumns + ` FROM identity_records WHERE (` + strings.Join(conditions, " OR ") + `)`
	if contentType != "" {
		query += ` AND content_type = ?`
		args = append(args, string(contentType))
	}
	query += ` ORDER BY updated_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "cachestore", "search", "query rows", err)
	}
	defer rows.Close()

	var results []Row
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrStorage, "cachestore", "search", "scan row", err)
		}
		results = append(results, *row)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStorage, "cachestore", "search", "iterate rows", err)
	}
	return results, nil
}

func providerColumn(provider identity.Provider) string {
	switch provider {
	case identity.ProviderTMDB:
		return "tmdb_id"
	case identity.ProviderTVDB:
		return "tvdb_id"
	case identity.ProviderIMDB:
		return "imdb_id"
	case identity.ProviderTVmaze:
		return "tvmaze_id"
	default:
		return ""
	}
}

func providerValue(record identity.Record, provider identity.Provider) any {
	switch provider {
	case identity.ProviderTMDB:
		return record.TMDBID
	case identity.ProviderTVDB:
		return record.TVDBID
	case identity.ProviderIMDB:
		return strings.ToLower(strings.TrimSpace(record.IMDBID))
	case identity.ProviderTVmaze:
		return record.TVmazeID
	default:
		return nil
	}
}
