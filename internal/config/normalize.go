package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCache()
	c.normalizeProviders()
	if err := c.normalizeAnime(); err != nil {
		return err
	}
	c.normalizeResolver()
	c.normalizeMetrics()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeCache() {
	if c.Cache.TTLDays <= 0 {
		c.Cache.TTLDays = defaultTTLDays
	}
	if c.Cache.MaxRows <= 0 {
		c.Cache.MaxRows = defaultMaxRows
	}
	if c.Cache.MaintenanceInterval <= 0 {
		c.Cache.MaintenanceInterval = defaultMaintenanceInterval
	}
}

func (c *Config) normalizeProviders() {
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = value
		}
	}
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimSpace(c.TMDB.BaseURL)
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}

	if c.TVDB.APIKey == "" {
		if value, ok := os.LookupEnv("TVDB_API_KEY"); ok {
			c.TVDB.APIKey = value
		}
	}
	c.TVDB.APIKey = strings.TrimSpace(c.TVDB.APIKey)
	c.TVDB.BaseURL = strings.TrimSpace(c.TVDB.BaseURL)
	if c.TVDB.BaseURL == "" {
		c.TVDB.BaseURL = defaultTVDBBaseURL
	}

	c.TVmaze.BaseURL = strings.TrimSpace(c.TVmaze.BaseURL)
	if c.TVmaze.BaseURL == "" {
		c.TVmaze.BaseURL = defaultTVmazeBaseURL
	}

	c.Metabridge.BaseURL = strings.TrimSpace(c.Metabridge.BaseURL)
}

func (c *Config) normalizeAnime() error {
	c.Anime.DatasetPath = strings.TrimSpace(c.Anime.DatasetPath)
	if c.Anime.DatasetPath == "" {
		return nil
	}
	expanded, err := expandPath(c.Anime.DatasetPath)
	if err != nil {
		return fmt.Errorf("anime.dataset_path: %w", err)
	}
	c.Anime.DatasetPath = expanded
	return nil
}

func (c *Config) normalizeResolver() {
	if c.Resolver.BridgeTimeoutSeconds <= 0 {
		c.Resolver.BridgeTimeoutSeconds = defaultBridgeTimeoutSeconds
	}
	c.Resolver.UserAgent = strings.TrimSpace(c.Resolver.UserAgent)
	if c.Resolver.UserAgent == "" {
		c.Resolver.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeMetrics() {
	if c.Metrics.BufferSize <= 0 {
		c.Metrics.BufferSize = defaultMetricsBufferSize
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
