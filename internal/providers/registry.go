package providers

import (
	"errors"
	"log/slog"
	"time"

	"crosswalk/internal/config"
	"crosswalk/internal/logging"
	"crosswalk/internal/providers/metabridge"
	"crosswalk/internal/providers/tmdb"
	"crosswalk/internal/providers/tvdb"
	"crosswalk/internal/providers/tvmaze"
	"crosswalk/internal/services"
)

// Registry carries the provider clients the resolver consumes. A nil entry
// means the upstream is not configured.
type Registry struct {
	TMDB       tmdb.API
	TVDB       tvdb.API
	TVmaze     tvmaze.API
	Metabridge metabridge.API
}

// NewRegistry builds the provider clients from configuration. TMDB and
// TVmaze are always constructed; TheTVDB and the meta-bridge stay nil when
// no credential or base URL is configured.
func NewRegistry(cfg *config.Config, logger *slog.Logger) (*Registry, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	log := logging.NewComponentLogger(logger, "providers")
	timeout := time.Duration(cfg.Resolver.BridgeTimeoutSeconds) * time.Second
	agent := cfg.Resolver.UserAgent

	tmdbClient, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
		tmdb.WithTimeout(timeout), tmdb.WithUserAgent(agent))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "providers", "tmdb", "build client", err)
	}

	mazeClient, err := tvmaze.New(cfg.TVmaze.BaseURL,
		tvmaze.WithTimeout(timeout), tvmaze.WithUserAgent(agent))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "providers", "tvmaze", "build client", err)
	}

	registry := &Registry{TMDB: tmdbClient, TVmaze: mazeClient}

	if cfg.TVDBEnabled() {
		client, err := tvdb.New(cfg.TVDB.APIKey, cfg.TVDB.BaseURL,
			tvdb.WithTimeout(timeout), tvdb.WithUserAgent(agent))
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "providers", "tvdb", "build client", err)
		}
		registry.TVDB = client
	} else {
		log.Debug("tvdb not configured, its bridge branches will be skipped")
	}

	if cfg.MetabridgeEnabled() {
		client, err := metabridge.New(cfg.Metabridge.BaseURL,
			metabridge.WithTimeout(timeout), metabridge.WithUserAgent(agent))
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "providers", "metabridge", "build client", err)
		}
		registry.Metabridge = client
	} else {
		log.Debug("metabridge not configured, imdb bridge falls back to direct lookups")
	}

	return registry, nil
}
