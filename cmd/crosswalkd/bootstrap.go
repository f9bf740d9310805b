package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"crosswalk/internal/animemap"
	"crosswalk/internal/cachestore"
	"crosswalk/internal/config"
	"crosswalk/internal/daemon"
	"crosswalk/internal/logging"
	"crosswalk/internal/metrics"
	"crosswalk/internal/providers"
	"crosswalk/internal/resolver"
)

// buildDaemon wires the cache store, provider clients, static anime table,
// metrics collector, and resolver into a daemon ready to start. On success
// the daemon owns the store and collector and releases them on Close.
func buildDaemon(cfg *config.Config, logger *slog.Logger) (*daemon.Daemon, error) {
	store, err := cachestore.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open cache store: %w", err)
	}

	table, err := animemap.FromConfig(cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load anime table: %w", err)
	}

	registry, err := providers.NewRegistry(cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	collector := metrics.New(cfg.Metrics.BufferSize, logger)
	res := resolver.New(store, table, registry, collector, logger)

	d, err := daemon.New(cfg, store, res, table, collector, logger)
	if err != nil {
		collector.Close()
		_ = store.Close()
		return nil, err
	}
	return d, nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logProviderSnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	logger.Info("provider snapshot",
		logging.String(logging.FieldEventType, "provider_snapshot"),
		logging.Bool("tmdb_key_present", strings.TrimSpace(cfg.TMDB.APIKey) != ""),
		logging.Bool("tvdb_enabled", cfg.TVDBEnabled()),
		logging.Bool("metabridge_enabled", cfg.MetabridgeEnabled()),
		logging.String("tvmaze_base_url", cfg.TVmaze.BaseURL),
		logging.Bool("anime_dataset_override", strings.TrimSpace(cfg.Anime.DatasetPath) != ""),
	)
}
