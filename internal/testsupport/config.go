package testsupport

import (
	"path/filepath"
	"testing"

	"crosswalk/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.TMDB.APIKey = "test"
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithTMDBKey sets the TMDB API key on the test config.
func WithTMDBKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.APIKey = key
	}
}

// WithTVDBKey sets the TVDB API key on the test config.
func WithTVDBKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TVDB.APIKey = key
	}
}

// WithTTLDays overrides the cache TTL on the test config.
func WithTTLDays(days int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.TTLDays = days
	}
}

// WithMaxRows overrides the cache size cap on the test config.
func WithMaxRows(rows int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.MaxRows = rows
	}
}

// WithAnimeDataset points the config at an operator-supplied dataset file.
func WithAnimeDataset(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Anime.DatasetPath = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
