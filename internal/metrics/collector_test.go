package metrics

import (
	"fmt"
	"testing"
	"time"

	"crosswalk/internal/services"
)

func TestCollectorAggregatesEvents(t *testing.T) {
	c := New(16, nil)

	c.RecordResolve(OutcomeResolved, 12*time.Millisecond)
	c.RecordResolve(OutcomePartial, 8*time.Millisecond)
	c.RecordBridge("tmdb", nil, 20*time.Millisecond)
	c.RecordBridge("tmdb", fmt.Errorf("probe: %w", services.ErrNotFound), 10*time.Millisecond)
	c.RecordBridge("tvdb", fmt.Errorf("probe: %w", services.ErrNetwork), 30*time.Millisecond)
	c.RecordCacheHit()
	c.RecordCacheMiss()
	c.RecordCacheMiss()
	c.Close()

	snap := c.Snapshot()
	if snap.Resolutions[OutcomeResolved] != 1 || snap.Resolutions[OutcomePartial] != 1 {
		t.Fatalf("unexpected resolutions: %+v", snap.Resolutions)
	}
	tmdb := snap.Bridges["tmdb"]
	if tmdb.Calls != 2 || tmdb.NotFound != 1 || tmdb.Failures != 0 {
		t.Fatalf("unexpected tmdb stats: %+v", tmdb)
	}
	if tmdb.AvgLatencyMS != 15 {
		t.Fatalf("expected avg latency 15ms, got %d", tmdb.AvgLatencyMS)
	}
	tvdb := snap.Bridges["tvdb"]
	if tvdb.Calls != 1 || tvdb.Failures != 1 {
		t.Fatalf("unexpected tvdb stats: %+v", tvdb)
	}
	if snap.CacheHits != 1 || snap.CacheMisses != 2 {
		t.Fatalf("unexpected cache counts: %+v", snap)
	}
	if snap.DroppedEvents != 0 {
		t.Fatalf("expected no drops, got %d", snap.DroppedEvents)
	}
}

func TestCollectorDropsOnFullBuffer(t *testing.T) {
	// No drain goroutine: the buffer fills and stays full.
	c := newCollector(1, nil)

	c.RecordCacheHit()
	c.RecordCacheHit()
	c.RecordCacheHit()

	if got := c.Snapshot().DroppedEvents; got != 2 {
		t.Fatalf("expected 2 dropped events, got %d", got)
	}
}

func TestRecordAfterCloseDoesNotBlock(t *testing.T) {
	c := New(1, nil)
	c.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			c.RecordCacheMiss()
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record blocked after Close")
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector

	c.RecordResolve(OutcomeResolved, 0)
	c.RecordBridge("tmdb", nil, 0)
	c.RecordCacheHit()
	c.RecordCacheMiss()
	c.Close()

	if snap := c.Snapshot(); snap.DroppedEvents != 0 {
		t.Fatalf("expected zero snapshot, got %+v", snap)
	}
}
