package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
	APIBind string `toml:"api_bind"`
}

// Cache contains tuning for the equivalence cache store.
type Cache struct {
	TTLDays             int `toml:"ttl_days"`
	MaxRows             int `toml:"max_rows"`
	MaintenanceInterval int `toml:"maintenance_interval"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Language string `toml:"language"`
}

// TVDB contains configuration for the episodic-TV database API.
type TVDB struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// TVmaze contains configuration for the TV-schedule service (keyless).
type TVmaze struct {
	BaseURL string `toml:"base_url"`
}

// Metabridge contains configuration for the community meta-bridge keyed by
// IMDb ids. Disabled unless a base URL is configured; the resolver falls back
// to the per-provider find endpoints when absent.
type Metabridge struct {
	BaseURL string `toml:"base_url"`
}

// Resolver contains per-bridge-call behaviour.
type Resolver struct {
	BridgeTimeoutSeconds int    `toml:"bridge_timeout_seconds"`
	UserAgent            string `toml:"user_agent"`
}

// Anime contains configuration for the static anime mapping table.
type Anime struct {
	// DatasetPath overrides the bundled dataset. Still loaded exactly once at
	// startup; restart to pick up changes.
	DatasetPath string `toml:"dataset_path"`
}

// Metrics contains configuration for the in-process metrics collector.
type Metrics struct {
	BufferSize int `toml:"buffer_size"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for crosswalk.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories and API bind address
//   - Cache: equivalence cache TTL, row cap, and maintenance cadence
//   - TMDB: film/TV database credentials and endpoint
//   - TVDB: episodic-TV database credentials and endpoint (optional)
//   - TVmaze: TV-schedule service endpoint
//   - Metabridge: community meta-bridge endpoint (optional)
//   - Resolver: bridge call timeout and user agent
//   - Anime: static mapping dataset override
//   - Metrics: collector buffer sizing
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Cache      Cache      `toml:"cache"`
	TMDB       TMDB       `toml:"tmdb"`
	TVDB       TVDB       `toml:"tvdb"`
	TVmaze     TVmaze     `toml:"tvmaze"`
	Metabridge Metabridge `toml:"metabridge"`
	Resolver   Resolver   `toml:"resolver"`
	Anime      Anime      `toml:"anime"`
	Metrics    Metrics    `toml:"metrics"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/crosswalk/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("crosswalk.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// DatabasePath returns the SQLite file backing the equivalence cache.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "crosswalk.db")
}

// MetabridgeEnabled reports whether a community meta-bridge endpoint is configured.
func (c *Config) MetabridgeEnabled() bool {
	return strings.TrimSpace(c.Metabridge.BaseURL) != ""
}

// TVDBEnabled reports whether episodic-TV database credentials are configured.
func (c *Config) TVDBEnabled() bool {
	return strings.TrimSpace(c.TVDB.APIKey) != ""
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
