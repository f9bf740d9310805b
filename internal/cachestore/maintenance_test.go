package cachestore_test

import (
	"context"
	"testing"
	"time"

	"crosswalk/internal/cachestore"
	"crosswalk/internal/identity"
	"crosswalk/internal/testsupport"
)

func putMovie(t *testing.T, store *cachestore.Store, tmdbID int64, imdbID string) {
	t.Helper()
	testsupport.PutRecord(t, store, identity.Record{
		ContentType: identity.ContentTypeMovie,
		TMDBID:      tmdbID,
		IMDBID:      imdbID,
	})
}

func TestExpireRemovesOnlyStaleRows(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTTLDays(30))
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	putMovie(t, store, 101, "tt0000101")
	putMovie(t, store, 102, "tt0000102")
	backdate(t, store, "tt0000101", time.Now().Add(-40*24*time.Hour))

	removed, err := store.Expire(ctx, 0)
	if err != nil {
		t.Fatalf("Expire returned error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 expired row, got %d", removed)
	}

	if _, found, err := store.Get(ctx, identity.ContentTypeMovie, identity.Record{TMDBID: 102}); err != nil || !found {
		t.Fatalf("fresh row should survive expiry, found=%v err=%v", found, err)
	}

	removed, err = store.Expire(ctx, 0)
	if err != nil {
		t.Fatalf("second Expire returned error: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected expiry to be idempotent, removed %d", removed)
	}
}

func TestEnforceSizeEvictsOldestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMaxRows(2))
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	putMovie(t, store, 201, "tt0000201")
	putMovie(t, store, 202, "tt0000202")
	putMovie(t, store, 203, "tt0000203")
	backdate(t, store, "tt0000201", time.Now().Add(-3*time.Hour))
	backdate(t, store, "tt0000202", time.Now().Add(-2*time.Hour))

	evicted, err := store.EnforceSize(ctx, 0)
	if err != nil {
		t.Fatalf("EnforceSize returned error: %v", err)
	}
	if evicted != 1 {
		t.Fatalf("expected 1 evicted row, got %d", evicted)
	}

	if rows, err := store.Search(ctx, "tt0000201", "", 0, 0); err != nil || len(rows) != 0 {
		t.Fatalf("oldest row should be evicted, rows=%+v err=%v", rows, err)
	}
	for _, imdb := range []string{"tt0000202", "tt0000203"} {
		if rows, err := store.Search(ctx, imdb, "", 0, 0); err != nil || len(rows) != 1 {
			t.Fatalf("row %s should survive, rows=%+v err=%v", imdb, rows, err)
		}
	}
}

func TestOptimizeRunsFullPass(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTTLDays(30), testsupport.WithMaxRows(2))
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	putMovie(t, store, 301, "tt0000301")
	putMovie(t, store, 302, "tt0000302")
	putMovie(t, store, 303, "tt0000303")
	putMovie(t, store, 304, "tt0000304")
	backdate(t, store, "tt0000301", time.Now().Add(-40*24*time.Hour))
	backdate(t, store, "tt0000302", time.Now().Add(-3*time.Hour))
	backdate(t, store, "tt0000303", time.Now().Add(-2*time.Hour))

	result, err := store.Optimize(ctx)
	if err != nil {
		t.Fatalf("Optimize returned error: %v", err)
	}
	if result.Expired != 1 || result.Evicted != 1 {
		t.Fatalf("expected expired=1 evicted=1, got %+v", result)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.TotalRows != 2 {
		t.Fatalf("expected 2 surviving rows, got %d", stats.TotalRows)
	}

	result, err = store.Optimize(ctx)
	if err != nil {
		t.Fatalf("second Optimize returned error: %v", err)
	}
	if result.Expired != 0 || result.Evicted != 0 {
		t.Fatalf("expected steady state, got %+v", result)
	}
}

func TestClearAllRemovesEveryRow(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	putMovie(t, store, 401, "tt0000401")
	putMovie(t, store, 402, "tt0000402")

	removed, err := store.ClearAll(ctx)
	if err != nil {
		t.Fatalf("ClearAll returned error: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed rows, got %d", removed)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.TotalRows != 0 {
		t.Fatalf("expected empty cache, got %d rows", stats.TotalRows)
	}
}

func TestStatsReportsCountsAndBounds(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTTLDays(45), testsupport.WithMaxRows(5000))
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	putMovie(t, store, 501, "tt0000501")
	testsupport.PutRecord(t, store, identity.Record{
		ContentType: identity.ContentTypeSeries,
		TVDBID:      81189,
		IMDBID:      "tt0903747",
	})
	backdate(t, store, "tt0000501", time.Now().Add(-2*time.Hour))

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.TotalRows != 2 || stats.MovieRows != 1 || stats.SeriesRows != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.OldestUpdated == nil || stats.NewestUpdated == nil {
		t.Fatalf("expected update-time bounds, got %+v", stats)
	}
	if !stats.OldestUpdated.Before(*stats.NewestUpdated) {
		t.Fatalf("expected oldest %v before newest %v", stats.OldestUpdated, stats.NewestUpdated)
	}
	if stats.DatabaseBytes <= 0 {
		t.Fatalf("expected database size, got %d", stats.DatabaseBytes)
	}
	if stats.TTLDays != 45 || stats.MaxRows != 5000 {
		t.Fatalf("expected configured limits in stats, got %+v", stats)
	}
}

func TestCheckHealthOnFreshStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if err := store.CheckHealth(context.Background()); err != nil {
		t.Fatalf("CheckHealth returned error: %v", err)
	}
	if err := store.Housekeeping(context.Background()); err != nil {
		t.Fatalf("Housekeeping returned error: %v", err)
	}
}

func TestSearchPagination(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	// Three distinct rows that all match the value 777, staggered in time.
	testsupport.PutRecord(t, store, identity.Record{
		ContentType: identity.ContentTypeMovie, TMDBID: 777, IMDBID: "tt0000601",
	})
	testsupport.PutRecord(t, store, identity.Record{
		ContentType: identity.ContentTypeMovie, TVDBID: 777, IMDBID: "tt0000602",
	})
	testsupport.PutRecord(t, store, identity.Record{
		ContentType: identity.ContentTypeMovie, TVmazeID: 777, IMDBID: "tt0000603",
	})
	backdate(t, store, "tt0000601", time.Now().Add(-3*time.Hour))
	backdate(t, store, "tt0000602", time.Now().Add(-2*time.Hour))

	rows, err := store.Search(ctx, "777", "", 2, 0)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(rows) != 2 || rows[0].IMDBID != "tt0000603" || rows[1].IMDBID != "tt0000602" {
		t.Fatalf("expected newest-first page, got %+v", rows)
	}

	rows, err = store.Search(ctx, "777", "", 2, 2)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(rows) != 1 || rows[0].IMDBID != "tt0000601" {
		t.Fatalf("expected final page, got %+v", rows)
	}
}
