package cachestore

import (
	"database/sql"
	"errors"
	"time"

	"crosswalk/internal/identity"
)

const rowColumns = "id, content_type, tmdb_id, tvdb_id, imdb_id, tvmaze_id, created_at, updated_at"

// Row is one persisted equivalence cache entry.
type Row struct {
	ID          int64                `json:"id"`
	ContentType identity.ContentType `json:"content_type"`
	TMDBID      int64                `json:"tmdb_id,omitempty"`
	TVDBID      int64                `json:"tvdb_id,omitempty"`
	IMDBID      string               `json:"imdb_id,omitempty"`
	TVmazeID    int64                `json:"tvmaze_id,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// Record converts the row into an identity record.
func (r Row) Record() identity.Record {
	return identity.Record{
		ContentType: r.ContentType,
		TMDBID:      r.TMDBID,
		TVDBID:      r.TVDBID,
		IMDBID:      r.IMDBID,
		TVmazeID:    r.TVmazeID,
	}
}

func scanRow(scanner interface{ Scan(dest ...any) error }) (*Row, error) {
	var (
		id         int64
		kind       string
		tmdbID     sql.NullInt64
		tvdbID     sql.NullInt64
		imdbID     sql.NullString
		tvmazeID   sql.NullInt64
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&kind,
		&tmdbID,
		&tvdbID,
		&imdbID,
		&tvmazeID,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	row := &Row{
		ID:          id,
		ContentType: identity.ContentType(kind),
		TMDBID:      tmdbID.Int64,
		TVDBID:      tvdbID.Int64,
		IMDBID:      imdbID.String,
		TVmazeID:    tvmazeID.Int64,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		row.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		row.UpdatedAt = updated
	}
	return row, nil
}

func nullableInt64(value int64) any {
	if value <= 0 {
		return nil
	}
	return value
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
