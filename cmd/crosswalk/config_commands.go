package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"crosswalk/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set the TMDB api_key before resolving identifiers.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

// configView is the redacted settings snapshot the show command renders.
// Credentials never leave the process; only their presence does.
type configView struct {
	Path              string `json:"path"`
	Exists            bool   `json:"exists"`
	DataDir           string `json:"data_dir"`
	LogDir            string `json:"log_dir"`
	APIBind           string `json:"api_bind,omitempty"`
	DatabasePath      string `json:"database_path"`
	CacheTTLDays      int    `json:"cache_ttl_days"`
	CacheMaxRows      int    `json:"cache_max_rows"`
	MaintenanceMins   int    `json:"maintenance_interval_minutes"`
	TMDBKeyPresent    bool   `json:"tmdb_key_present"`
	TMDBLanguage      string `json:"tmdb_language,omitempty"`
	TVDBEnabled       bool   `json:"tvdb_enabled"`
	MetabridgeEnabled bool   `json:"metabridge_enabled"`
	TVmazeBaseURL     string `json:"tvmaze_base_url,omitempty"`
	BridgeTimeoutSecs int    `json:"bridge_timeout_seconds"`
	AnimeDatasetPath  string `json:"anime_dataset_path,omitempty"`
	MetricsBufferSize int    `json:"metrics_buffer_size"`
	LogFormat         string `json:"log_format,omitempty"`
	LogLevel          string `json:"log_level,omitempty"`
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "show",
		Short:       "Show the resolved configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolvedPath, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			view := configView{
				Path:              resolvedPath,
				Exists:            exists,
				DataDir:           cfg.Paths.DataDir,
				LogDir:            cfg.Paths.LogDir,
				APIBind:           cfg.Paths.APIBind,
				DatabasePath:      cfg.DatabasePath(),
				CacheTTLDays:      cfg.Cache.TTLDays,
				CacheMaxRows:      cfg.Cache.MaxRows,
				MaintenanceMins:   cfg.Cache.MaintenanceInterval,
				TMDBKeyPresent:    strings.TrimSpace(cfg.TMDB.APIKey) != "",
				TMDBLanguage:      cfg.TMDB.Language,
				TVDBEnabled:       cfg.TVDBEnabled(),
				MetabridgeEnabled: cfg.MetabridgeEnabled(),
				TVmazeBaseURL:     cfg.TVmaze.BaseURL,
				BridgeTimeoutSecs: cfg.Resolver.BridgeTimeoutSeconds,
				AnimeDatasetPath:  cfg.Anime.DatasetPath,
				MetricsBufferSize: cfg.Metrics.BufferSize,
				LogFormat:         cfg.Logging.Format,
				LogLevel:          cfg.Logging.Level,
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, view)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", view.Path)
			if !view.Exists {
				fmt.Fprintln(out, "Config file does not exist; showing defaults")
			}
			fmt.Fprintf(out, "Data dir:    %s\n", view.DataDir)
			fmt.Fprintf(out, "Log dir:     %s\n", view.LogDir)
			fmt.Fprintf(out, "Database:    %s\n", view.DatabasePath)
			if view.APIBind != "" {
				fmt.Fprintf(out, "API bind:    %s\n", view.APIBind)
			}
			fmt.Fprintf(out, "Cache:       %d day TTL, %d row cap, maintenance every %d min\n",
				view.CacheTTLDays, view.CacheMaxRows, view.MaintenanceMins)
			fmt.Fprintf(out, "TMDB key:    %s\n", yesNo(view.TMDBKeyPresent))
			fmt.Fprintf(out, "TVDB:        %s\n", yesNo(view.TVDBEnabled))
			fmt.Fprintf(out, "Meta-bridge: %s\n", yesNo(view.MetabridgeEnabled))
			if view.AnimeDatasetPath != "" {
				fmt.Fprintf(out, "Anime data:  %s\n", view.AnimeDatasetPath)
			} else {
				fmt.Fprintln(out, "Anime data:  bundled dataset")
			}
			fmt.Fprintf(out, "Logging:     %s at %s\n", valueOr(view.LogFormat, "console"), valueOr(view.LogLevel, "info"))
			return nil
		},
	}
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
