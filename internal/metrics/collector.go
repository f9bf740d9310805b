package metrics

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"crosswalk/internal/logging"
	"crosswalk/internal/services"
)

// Kind labels the event families the collector understands.
type Kind string

const (
	KindResolve Kind = "resolve"
	KindBridge  Kind = "bridge"
	KindCache   Kind = "cache"
)

// Resolve outcomes.
const (
	OutcomeResolved = "resolved"
	OutcomePartial  = "partial"
	OutcomeFailed   = "failed"
)

// Cache outcomes.
const (
	OutcomeHit  = "hit"
	OutcomeMiss = "miss"
)

// Bridge outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Event is one telemetry sample.
type Event struct {
	Kind    Kind
	Outcome string
	Bridge  string
	Latency time.Duration
}

// BridgeStats summarizes one bridge branch in a snapshot.
type BridgeStats struct {
	Calls        int64 `json:"calls"`
	Failures     int64 `json:"failures"`
	NotFound     int64 `json:"not_found"`
	AvgLatencyMS int64 `json:"avg_latency_ms"`
}

// Snapshot is a point-in-time copy of the aggregated counters.
type Snapshot struct {
	Resolutions   map[string]int64       `json:"resolutions,omitempty"`
	Bridges       map[string]BridgeStats `json:"bridges,omitempty"`
	CacheHits     int64                  `json:"cache_hits"`
	CacheMisses   int64                  `json:"cache_misses"`
	DroppedEvents int64                  `json:"dropped_events"`
}

type bridgeAgg struct {
	calls        int64
	failures     int64
	notFound     int64
	totalLatency time.Duration
}

// Collector folds events into counters off the resolution path.
type Collector struct {
	events  chan Event
	done    chan struct{}
	stopped chan struct{}
	logger  *slog.Logger
	dropped atomic.Int64
	once    sync.Once

	mu          sync.Mutex
	resolutions map[string]int64
	bridges     map[string]*bridgeAgg
	cacheHits   int64
	cacheMisses int64
}

// New builds a collector with the given buffer size and starts its drain
// goroutine. Close releases it.
func New(bufferSize int, logger *slog.Logger) *Collector {
	c := newCollector(bufferSize, logger)
	go c.drain()
	return c
}

func newCollector(bufferSize int, logger *slog.Logger) *Collector {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Collector{
		events:      make(chan Event, bufferSize),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
		logger:      logging.NewComponentLogger(logger, "metrics"),
		resolutions: make(map[string]int64),
		bridges:     make(map[string]*bridgeAgg),
	}
}

// Record offers an event to the collector without blocking. Events that do
// not fit in the buffer are counted as dropped.
func (c *Collector) Record(evt Event) {
	if c == nil {
		return
	}
	select {
	case c.events <- evt:
	default:
		c.dropped.Add(1)
	}
}

// RecordResolve notes the outcome of one Resolve call.
func (c *Collector) RecordResolve(outcome string, latency time.Duration) {
	c.Record(Event{Kind: KindResolve, Outcome: outcome, Latency: latency})
}

// RecordBridge notes one bridge call, classifying err by its marker.
func (c *Collector) RecordBridge(bridge string, err error, latency time.Duration) {
	outcome := OutcomeOK
	switch {
	case err == nil:
	case errors.Is(err, services.ErrNotFound):
		outcome = OutcomeNotFound
	default:
		outcome = OutcomeError
	}
	c.Record(Event{Kind: KindBridge, Outcome: outcome, Bridge: bridge, Latency: latency})
}

// RecordCacheHit notes a cache short-circuit.
func (c *Collector) RecordCacheHit() {
	c.Record(Event{Kind: KindCache, Outcome: OutcomeHit})
}

// RecordCacheMiss notes a cache miss.
func (c *Collector) RecordCacheMiss() {
	c.Record(Event{Kind: KindCache, Outcome: OutcomeMiss})
}

// Snapshot copies the current counters.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		CacheHits:     c.cacheHits,
		CacheMisses:   c.cacheMisses,
		DroppedEvents: c.dropped.Load(),
	}
	if len(c.resolutions) > 0 {
		snap.Resolutions = make(map[string]int64, len(c.resolutions))
		for outcome, count := range c.resolutions {
			snap.Resolutions[outcome] = count
		}
	}
	if len(c.bridges) > 0 {
		snap.Bridges = make(map[string]BridgeStats, len(c.bridges))
		for name, agg := range c.bridges {
			stats := BridgeStats{Calls: agg.calls, Failures: agg.failures, NotFound: agg.notFound}
			if agg.calls > 0 {
				stats.AvgLatencyMS = agg.totalLatency.Milliseconds() / agg.calls
			}
			snap.Bridges[name] = stats
		}
	}
	return snap
}

// Close stops the drain goroutine after folding in any buffered events.
func (c *Collector) Close() {
	if c == nil {
		return
	}
	c.once.Do(func() {
		close(c.done)
		<-c.stopped
		if dropped := c.dropped.Load(); dropped > 0 {
			c.logger.Debug("metrics collector closed", logging.Int64("events_dropped", dropped))
		}
	})
}

func (c *Collector) drain() {
	defer close(c.stopped)
	for {
		select {
		case evt := <-c.events:
			c.apply(evt)
		case <-c.done:
			for {
				select {
				case evt := <-c.events:
					c.apply(evt)
				default:
					return
				}
			}
		}
	}
}

func (c *Collector) apply(evt Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch evt.Kind {
	case KindResolve:
		c.resolutions[evt.Outcome]++
	case KindBridge:
		agg := c.bridges[evt.Bridge]
		if agg == nil {
			agg = &bridgeAgg{}
			c.bridges[evt.Bridge] = agg
		}
		agg.calls++
		agg.totalLatency += evt.Latency
		switch evt.Outcome {
		case OutcomeNotFound:
			agg.notFound++
		case OutcomeError:
			agg.failures++
		}
	case KindCache:
		if evt.Outcome == OutcomeHit {
			c.cacheHits++
		} else {
			c.cacheMisses++
		}
	}
}
