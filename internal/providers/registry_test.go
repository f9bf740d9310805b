package providers_test

import (
	"testing"

	"crosswalk/internal/config"
	"crosswalk/internal/logging"
	"crosswalk/internal/providers"
)

func newConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.TMDB.APIKey = "tmdb-key"
	return &cfg
}

func TestNewRegistryBuildsMandatoryClients(t *testing.T) {
	registry, err := providers.NewRegistry(newConfig(t), logging.NewNop())
	if err != nil {
		t.Fatalf("NewRegistry returned error: %v", err)
	}
	if registry.TMDB == nil {
		t.Fatal("expected tmdb client")
	}
	if registry.TVmaze == nil {
		t.Fatal("expected tvmaze client")
	}
	if registry.TVDB != nil {
		t.Fatal("expected nil tvdb client without key")
	}
	if registry.Metabridge != nil {
		t.Fatal("expected nil metabridge client without base url")
	}
}

func TestNewRegistryEnablesOptionalClients(t *testing.T) {
	cfg := newConfig(t)
	cfg.TVDB.APIKey = "tvdb-key"
	cfg.Metabridge.BaseURL = "https://bridge.example.com"

	registry, err := providers.NewRegistry(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewRegistry returned error: %v", err)
	}
	if registry.TVDB == nil {
		t.Fatal("expected tvdb client when key configured")
	}
	if registry.Metabridge == nil {
		t.Fatal("expected metabridge client when base url configured")
	}
}

func TestNewRegistryRequiresConfig(t *testing.T) {
	if _, err := providers.NewRegistry(nil, logging.NewNop()); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestNewRegistryRejectsMissingTMDBKey(t *testing.T) {
	cfg := config.Default()
	if _, err := providers.NewRegistry(&cfg, logging.NewNop()); err == nil {
		t.Fatal("expected error when tmdb key missing")
	}
}
