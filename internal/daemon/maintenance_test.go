package daemon

import (
	"context"
	"testing"
	"time"

	"crosswalk/internal/identity"
	"crosswalk/internal/logging"
	"crosswalk/internal/testsupport"
)

func TestNewMaintenanceLoopRequiresStoreAndInterval(t *testing.T) {
	if newMaintenanceLoop(nil, 360, nil) != nil {
		t.Fatal("expected nil loop without a store")
	}
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	if newMaintenanceLoop(store, 0, nil) != nil {
		t.Fatal("expected nil loop without an interval")
	}
	if newMaintenanceLoop(store, 360, nil) == nil {
		t.Fatal("expected loop to be constructed")
	}
}

func TestMaintenanceRunOnceEnforcesSizeCap(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMaxRows(1))
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.PutRecord(t, store, identity.Record{
		ContentType: identity.ContentTypeMovie,
		TMDBID:      1,
		IMDBID:      "tt0000001",
	})
	testsupport.PutRecord(t, store, identity.Record{
		ContentType: identity.ContentTypeMovie,
		TMDBID:      2,
		IMDBID:      "tt0000002",
	})

	loop := &maintenanceLoop{store: store, interval: time.Hour, logger: logging.NewNop()}
	loop.runOnce(context.Background())

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalRows != 1 {
		t.Fatalf("expected the size cap to leave one row, got %d", stats.TotalRows)
	}
}

func TestMaintenanceLoopStopsOnCancel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	loop := &maintenanceLoop{store: store, interval: 5 * time.Millisecond, logger: logging.NewNop()}
	ctx, cancel := context.WithCancel(context.Background())
	loop.start(ctx)

	time.Sleep(25 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		loop.stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("maintenance loop did not stop after cancellation")
	}
}
