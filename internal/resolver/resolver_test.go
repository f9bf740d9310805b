package resolver_test

import (
	"context"
	"errors"
	"testing"

	"crosswalk/internal/animemap"
	"crosswalk/internal/cachestore"
	"crosswalk/internal/identity"
	"crosswalk/internal/logging"
	"crosswalk/internal/metrics"
	"crosswalk/internal/providers"
	"crosswalk/internal/providers/metabridge"
	"crosswalk/internal/providers/tmdb"
	"crosswalk/internal/providers/tvdb"
	"crosswalk/internal/providers/tvmaze"
	"crosswalk/internal/resolver"
	"crosswalk/internal/services"
	"crosswalk/internal/testsupport"
)

type callLog struct {
	counts map[string]int
}

func newCallLog() *callLog {
	return &callLog{counts: make(map[string]int)}
}

func (c *callLog) note(key string) {
	c.counts[key]++
}

func (c *callLog) count(key string) int {
	return c.counts[key]
}

func (c *callLog) total() int {
	sum := 0
	for _, n := range c.counts {
		sum += n
	}
	return sum
}

func stubMiss(operation string) error {
	return services.Wrap(services.ErrNotFound, "stub", operation, "no match", nil)
}

type stubTMDB struct {
	calls *callLog
	movie func(id int64) (*tmdb.ExternalIDs, error)
	tv    func(id int64) (*tmdb.ExternalIDs, error)
	find  func(imdbID string) (*tmdb.FindResponse, error)
}

func (s *stubTMDB) MovieExternalIDs(_ context.Context, id int64) (*tmdb.ExternalIDs, error) {
	s.calls.note("tmdb.movie_external_ids")
	if s.movie == nil {
		return nil, stubMiss("movie external ids")
	}
	return s.movie(id)
}

func (s *stubTMDB) TVExternalIDs(_ context.Context, id int64) (*tmdb.ExternalIDs, error) {
	s.calls.note("tmdb.tv_external_ids")
	if s.tv == nil {
		return nil, stubMiss("tv external ids")
	}
	return s.tv(id)
}

func (s *stubTMDB) FindByIMDB(_ context.Context, imdbID string) (*tmdb.FindResponse, error) {
	s.calls.note("tmdb.find_by_imdb")
	if s.find == nil {
		return nil, stubMiss("find by imdb")
	}
	return s.find(imdbID)
}

type stubTVDB struct {
	calls      *callLog
	findByTMDB func(id int64, contentType identity.ContentType) (int64, error)
	findByIMDB func(imdbID string, contentType identity.ContentType) (int64, error)
	extended   func(id int64, contentType identity.ContentType) (*tvdb.ExtendedRecord, error)
}

func (s *stubTVDB) FindByTMDB(_ context.Context, id int64, contentType identity.ContentType) (int64, error) {
	s.calls.note("tvdb.find_by_tmdb")
	if s.findByTMDB == nil {
		return 0, stubMiss("find by tmdb")
	}
	return s.findByTMDB(id, contentType)
}

func (s *stubTVDB) FindByIMDB(_ context.Context, imdbID string, contentType identity.ContentType) (int64, error) {
	s.calls.note("tvdb.find_by_imdb")
	if s.findByIMDB == nil {
		return 0, stubMiss("find by imdb")
	}
	return s.findByIMDB(imdbID, contentType)
}

func (s *stubTVDB) Extended(_ context.Context, id int64, contentType identity.ContentType) (*tvdb.ExtendedRecord, error) {
	s.calls.note("tvdb.extended")
	if s.extended == nil {
		return nil, stubMiss("extended")
	}
	return s.extended(id, contentType)
}

type stubTVmaze struct {
	calls  *callLog
	show   func(id int64) (*tvmaze.Show, error)
	byIMDB func(imdbID string) (*tvmaze.Show, error)
	byTVDB func(id int64) (*tvmaze.Show, error)
}

func (s *stubTVmaze) ShowDetail(_ context.Context, id int64) (*tvmaze.Show, error) {
	s.calls.note("tvmaze.show_detail")
	if s.show == nil {
		return nil, stubMiss("show detail")
	}
	return s.show(id)
}

func (s *stubTVmaze) FindByIMDB(_ context.Context, imdbID string) (*tvmaze.Show, error) {
	s.calls.note("tvmaze.find_by_imdb")
	if s.byIMDB == nil {
		return nil, stubMiss("find by imdb")
	}
	return s.byIMDB(imdbID)
}

func (s *stubTVmaze) FindByTVDB(_ context.Context, id int64) (*tvmaze.Show, error) {
	s.calls.note("tvmaze.find_by_tvdb")
	if s.byTVDB == nil {
		return nil, stubMiss("find by tvdb")
	}
	return s.byTVDB(id)
}

type stubMetabridge struct {
	calls  *callLog
	lookup func(imdbID string, contentType identity.ContentType) (*metabridge.Mapping, error)
}

func (s *stubMetabridge) Lookup(_ context.Context, imdbID string, contentType identity.ContentType) (*metabridge.Mapping, error) {
	s.calls.note("metabridge.lookup")
	if s.lookup == nil {
		return nil, stubMiss("lookup")
	}
	return s.lookup(imdbID, contentType)
}

type fixture struct {
	calls  *callLog
	tmdb   *stubTMDB
	tvdb   *stubTVDB
	tvmaze *stubTVmaze
	meta   *stubMetabridge
	store  *cachestore.Store
	r      *resolver.Resolver
}

func newFixture(t *testing.T, mutators ...func(*providers.Registry)) *fixture {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	table, err := animemap.Load(logging.NewNop())
	if err != nil {
		t.Fatalf("load static table: %v", err)
	}

	calls := newCallLog()
	f := &fixture{
		calls:  calls,
		tmdb:   &stubTMDB{calls: calls},
		tvdb:   &stubTVDB{calls: calls},
		tvmaze: &stubTVmaze{calls: calls},
		meta:   &stubMetabridge{calls: calls},
		store:  store,
	}
	registry := &providers.Registry{TMDB: f.tmdb, TVDB: f.tvdb, TVmaze: f.tvmaze, Metabridge: f.meta}
	for _, mutate := range mutators {
		mutate(registry)
	}
	collector := metrics.New(128, nil)
	t.Cleanup(collector.Close)
	f.r = resolver.New(store, table, registry, collector, logging.NewNop())
	return f
}

func (f *fixture) rowCount(t *testing.T) int64 {
	t.Helper()
	stats, err := f.store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	return stats.TotalRows
}

func TestResolveRejectsBadRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  resolver.Request
	}{
		{"missing content type", resolver.Request{Seeds: identity.Record{TMDBID: 603}}},
		{"unknown content type", resolver.Request{ContentType: "documentary", Seeds: identity.Record{TMDBID: 603}}},
		{"no seeds", resolver.Request{ContentType: "movie"}},
		{"malformed imdb seed", resolver.Request{ContentType: "movie", Seeds: identity.Record{IMDBID: "0133093"}}},
		{"unknown target", resolver.Request{ContentType: "movie", Seeds: identity.Record{TMDBID: 603}, Targets: []string{"mal"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.r.Resolve(ctx, tc.req); !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation marker, got %v", err)
			}
		})
	}
	if f.calls.total() != 0 {
		t.Fatalf("rejected requests must not reach bridges, saw %d calls", f.calls.total())
	}
}

func TestMovieWalkFillsFromTMDBSeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.tmdb.movie = func(id int64) (*tmdb.ExternalIDs, error) {
		return &tmdb.ExternalIDs{ID: id, IMDBID: "tt0133093"}, nil
	}
	f.tvdb.findByTMDB = func(int64, identity.ContentType) (int64, error) {
		return 12345, nil
	}

	record, err := f.r.Resolve(ctx, resolver.Request{ContentType: "movie", Seeds: identity.Record{TMDBID: 603}})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if record.TMDBID != 603 || record.IMDBID != "tt0133093" || record.TVDBID != 12345 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.TVmazeID != 0 {
		t.Fatalf("movies must not gain a tvmaze id, got %+v", record)
	}
	if got := f.calls.count("tmdb.movie_external_ids"); got != 1 {
		t.Fatalf("expected 1 external-ids call, got %d", got)
	}
	if got := f.calls.count("tvdb.find_by_tmdb"); got != 1 {
		t.Fatalf("expected 1 find-by-tmdb call, got %d", got)
	}
	if got := f.calls.total(); got != 2 {
		t.Fatalf("expected exactly 2 bridge calls, got %d (%v)", got, f.calls.counts)
	}

	cached, found, err := f.store.Get(ctx, identity.ContentTypeMovie, identity.Record{TMDBID: 603})
	if err != nil || !found {
		t.Fatalf("expected resolved record cached, found=%v err=%v", found, err)
	}
	if cached.IMDBID != "tt0133093" || cached.TVDBID != 12345 {
		t.Fatalf("unexpected cached record: %+v", cached)
	}

	// Same request again: the cache short-circuits and no bridge is touched.
	again, err := f.r.Resolve(ctx, resolver.Request{ContentType: "movie", Seeds: identity.Record{TMDBID: 603}})
	if err != nil {
		t.Fatalf("second Resolve returned error: %v", err)
	}
	if again != record {
		t.Fatalf("expected identical record on re-resolve, got %+v vs %+v", again, record)
	}
	if got := f.calls.total(); got != 2 {
		t.Fatalf("expected cache short-circuit, bridge calls grew to %d", got)
	}
}

func TestSeriesWalkLoopsAsIdentifiersAppear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.tvmaze.show = func(id int64) (*tvmaze.Show, error) {
		return &tvmaze.Show{ID: id, Externals: tvmaze.Externals{TheTVDB: 81189}}, nil
	}
	f.tvdb.extended = func(id int64, contentType identity.ContentType) (*tvdb.ExtendedRecord, error) {
		return &tvdb.ExtendedRecord{ID: id, RemoteIDs: []tvdb.RemoteID{
			{ID: "tt0903747", SourceName: tvdb.SourceIMDB},
			{ID: "1396", SourceName: tvdb.SourceTMDB},
		}}, nil
	}

	record, err := f.r.Resolve(ctx, resolver.Request{ContentType: "series", Seeds: identity.Record{TVmazeID: 169}})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if record.TVmazeID != 169 || record.TVDBID != 81189 || record.IMDBID != "tt0903747" || record.TMDBID != 1396 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if got := f.calls.count("tvmaze.show_detail"); got != 1 {
		t.Fatalf("expected 1 show-detail call, got %d", got)
	}
	if got := f.calls.count("tvdb.extended"); got != 1 {
		t.Fatalf("expected 1 extended call, got %d", got)
	}
	if got := f.calls.total(); got != 2 {
		t.Fatalf("expected exactly 2 bridge calls, got %d (%v)", got, f.calls.counts)
	}
	if f.rowCount(t) != 1 {
		t.Fatalf("expected walk result cached")
	}
}

func TestIMDBSeedPrefersMetabridge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.meta.lookup = func(imdbID string, contentType identity.ContentType) (*metabridge.Mapping, error) {
		return &metabridge.Mapping{IMDBID: imdbID, TMDBID: 603, TVDBID: 12345}, nil
	}

	record, err := f.r.Resolve(ctx, resolver.Request{ContentType: "movie", Seeds: identity.Record{IMDBID: "tt0133093"}})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if record.TMDBID != 603 || record.TVDBID != 12345 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if got := f.calls.count("metabridge.lookup"); got != 1 {
		t.Fatalf("expected 1 meta-bridge call, got %d", got)
	}
	if got := f.calls.total(); got != 1 {
		t.Fatalf("meta-bridge should satisfy the walk alone, saw %v", f.calls.counts)
	}
}

func TestIMDBSeedFallsBackWithoutMetabridge(t *testing.T) {
	f := newFixture(t, func(reg *providers.Registry) { reg.Metabridge = nil })
	ctx := context.Background()

	f.tmdb.find = func(string) (*tmdb.FindResponse, error) {
		return &tmdb.FindResponse{MovieResults: []tmdb.FindResult{{ID: 603, MediaType: "movie"}}}, nil
	}
	f.tvdb.findByIMDB = func(string, identity.ContentType) (int64, error) {
		return 12345, nil
	}

	record, err := f.r.Resolve(ctx, resolver.Request{ContentType: "movie", Seeds: identity.Record{IMDBID: "tt0133093"}})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if record.TMDBID != 603 || record.TVDBID != 12345 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if got := f.calls.count("tmdb.find_by_imdb"); got != 1 {
		t.Fatalf("expected 1 tmdb find call, got %d", got)
	}
	if got := f.calls.count("tvdb.find_by_imdb"); got != 1 {
		t.Fatalf("expected 1 tvdb find call, got %d", got)
	}
}

func TestBridgeFailureLeavesFieldUnresolved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	networkErr := services.Wrap(services.ErrNetwork, "tvdb", "search", "timeout", nil)
	f.tmdb.tv = func(id int64) (*tmdb.ExternalIDs, error) {
		return &tmdb.ExternalIDs{ID: id, IMDBID: "tt0903747"}, nil
	}
	f.tvdb.findByTMDB = func(int64, identity.ContentType) (int64, error) {
		return 0, networkErr
	}
	f.tvdb.findByIMDB = func(string, identity.ContentType) (int64, error) {
		return 0, networkErr
	}
	f.tvmaze.byIMDB = func(imdbID string) (*tvmaze.Show, error) {
		return &tvmaze.Show{ID: 169, Externals: tvmaze.Externals{IMDB: imdbID}}, nil
	}

	record, err := f.r.Resolve(ctx, resolver.Request{ContentType: "series", Seeds: identity.Record{TMDBID: 1396}})
	if err != nil {
		t.Fatalf("bridge failures must not escape Resolve, got %v", err)
	}
	if record.TMDBID != 1396 || record.IMDBID != "tt0903747" || record.TVmazeID != 169 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.TVDBID != 0 {
		t.Fatalf("failed bridge should leave tvdb unresolved, got %+v", record)
	}
	if got := f.calls.count("tvdb.find_by_tmdb"); got != 1 {
		t.Fatalf("failed call must not be retried within a walk, got %d", got)
	}
	if got := f.calls.count("tvdb.find_by_imdb"); got != 1 {
		t.Fatalf("failed call must not be retried within a walk, got %d", got)
	}

	cached, found, err := f.store.Get(ctx, identity.ContentTypeSeries, identity.Record{TMDBID: 1396})
	if err != nil || !found {
		t.Fatalf("partial record should still be cached, found=%v err=%v", found, err)
	}
	if cached.TVmazeID != 169 {
		t.Fatalf("unexpected cached record: %+v", cached)
	}
}

func TestCacheShortCircuitWithoutTargets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	testsupport.PutRecord(t, f.store, identity.Record{
		ContentType: identity.ContentTypeMovie, TMDBID: 603, IMDBID: "tt0133093",
	})

	record, err := f.r.Resolve(ctx, resolver.Request{ContentType: "movie", Seeds: identity.Record{TMDBID: 603}})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if record.IMDBID != "tt0133093" {
		t.Fatalf("expected cached imdb, got %+v", record)
	}
	if got := f.calls.total(); got != 0 {
		t.Fatalf("expected zero bridge calls on cache hit, got %d", got)
	}
}

func TestTargetsForceWalkPastCacheHit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	testsupport.PutRecord(t, f.store, identity.Record{
		ContentType: identity.ContentTypeMovie, TMDBID: 603, IMDBID: "tt0133093",
	})
	f.tvdb.findByTMDB = func(int64, identity.ContentType) (int64, error) {
		return 12345, nil
	}

	record, err := f.r.Resolve(ctx, resolver.Request{
		ContentType: "movie",
		Seeds:       identity.Record{TMDBID: 603},
		Targets:     []string{"tvdb"},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if record.TVDBID != 12345 {
		t.Fatalf("expected walk to satisfy the target, got %+v", record)
	}
	if got := f.calls.count("tvdb.find_by_tmdb"); got != 1 {
		t.Fatalf("expected the walk to run past the cache hit, got %d calls", got)
	}
}

func TestAnimeStaticHitResolvesWithoutBridges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	record, err := f.r.Resolve(ctx, resolver.Request{ContentType: "anime", Seeds: identity.Record{MALID: 1}})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if record.ContentType != identity.ContentTypeSeries {
		t.Fatalf("expected series content type, got %+v", record)
	}
	if record.TMDBID != 30991 || record.TVDBID != 76885 || record.IMDBID != "tt0213338" || record.TVmazeID != 1095 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.KitsuID != 1 || record.AniDBID != 23 || record.AniListID != 1 {
		t.Fatalf("expected animation ids merged from the table, got %+v", record)
	}
	if got := f.calls.total(); got != 0 {
		t.Fatalf("full static coverage must not touch bridges, saw %d calls", got)
	}
	if f.rowCount(t) != 0 {
		t.Fatalf("animation content must not be written to the cache")
	}
}

func TestAnimeFallThroughWalksWithoutWriteBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Naruto's entry carries tmdb, tvdb, and imdb but no tvmaze id.
	f.tvdb.extended = func(id int64, contentType identity.ContentType) (*tvdb.ExtendedRecord, error) {
		return &tvdb.ExtendedRecord{ID: id, RemoteIDs: []tvdb.RemoteID{
			{ID: "2762", SourceName: tvdb.SourceTVmaze},
		}}, nil
	}

	record, err := f.r.Resolve(ctx, resolver.Request{ContentType: "anime", Seeds: identity.Record{MALID: 20}})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if record.TMDBID != 46260 || record.TVDBID != 78857 || record.IMDBID != "tt0409591" {
		t.Fatalf("expected static identifiers, got %+v", record)
	}
	if record.TVmazeID != 2762 {
		t.Fatalf("expected walk to recover tvmaze, got %+v", record)
	}
	if got := f.calls.count("tvdb.extended"); got != 1 {
		t.Fatalf("expected 1 extended call, got %d", got)
	}
	if f.rowCount(t) != 0 {
		t.Fatalf("animation content must not be written to the cache even after a walk")
	}
}

func TestAnimeSeedWithExplicitMovieType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Spirited Away: the entry has tmdb and imdb; tvdb comes from the walk.
	f.tvdb.findByTMDB = func(int64, identity.ContentType) (int64, error) {
		return 795, nil
	}

	record, err := f.r.Resolve(ctx, resolver.Request{ContentType: "movie", Seeds: identity.Record{MALID: 199}})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if record.ContentType != identity.ContentTypeMovie {
		t.Fatalf("explicit content type must win, got %+v", record)
	}
	if record.TMDBID != 129 || record.IMDBID != "tt0245429" || record.TVDBID != 795 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.TVmazeID != 0 {
		t.Fatalf("movies must not gain a tvmaze id, got %+v", record)
	}
	if f.rowCount(t) != 0 {
		t.Fatalf("animation content must not be written to the cache")
	}
}

func TestAnimeAliasUnknownSeedDefaultsToSeries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	record, err := f.r.Resolve(ctx, resolver.Request{ContentType: "anime", Seeds: identity.Record{MALID: 999999}})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if record.ContentType != identity.ContentTypeSeries {
		t.Fatalf("expected series default, got %+v", record)
	}
	if record.MALID != 999999 || record.GeneralIDCount() != 0 {
		t.Fatalf("expected seed-only record, got %+v", record)
	}
	if got := f.calls.total(); got != 0 {
		t.Fatalf("no general seeds means no bridge calls, saw %d", got)
	}
}
