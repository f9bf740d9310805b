package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateProviderURLs(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateResolver(); err != nil {
		return err
	}
	if c.Metrics.BufferSize <= 0 {
		return errors.New("metrics.buffer_size must be positive")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/crosswalk/config.toml"
		}
		return fmt.Errorf("tmdb.api_key is required. Set TMDB_API_KEY env var or edit %s (create with 'crosswalk config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateProviderURLs() error {
	urls := map[string]string{
		"tmdb.base_url":   c.TMDB.BaseURL,
		"tvdb.base_url":   c.TVDB.BaseURL,
		"tvmaze.base_url": c.TVmaze.BaseURL,
	}
	if c.MetabridgeEnabled() {
		urls["metabridge.base_url"] = c.Metabridge.BaseURL
	}
	for key, value := range urls {
		parsed, err := url.Parse(strings.TrimSpace(value))
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", key, value)
		}
	}
	return nil
}

func (c *Config) validateCache() error {
	if err := ensurePositiveMap(map[string]int{
		"cache.ttl_days":             c.Cache.TTLDays,
		"cache.max_rows":             c.Cache.MaxRows,
		"cache.maintenance_interval": c.Cache.MaintenanceInterval,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateResolver() error {
	if c.Resolver.BridgeTimeoutSeconds <= 0 {
		return errors.New("resolver.bridge_timeout_seconds must be positive")
	}
	if strings.TrimSpace(c.Resolver.UserAgent) == "" {
		return errors.New("resolver.user_agent must be set")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
