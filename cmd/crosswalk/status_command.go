package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"crosswalk/internal/animemap"
	"crosswalk/internal/cachestore"
	"crosswalk/internal/config"
	"crosswalk/internal/daemon"
)

// statusReport is the machine-readable shape behind the status command.
type statusReport struct {
	Daemon    daemonReport   `json:"daemon"`
	Providers providerReport `json:"providers"`
	Database  databaseReport `json:"database"`
	Anime     animeReport    `json:"anime"`
}

type daemonReport struct {
	Running  bool   `json:"running"`
	PID      int    `json:"pid,omitempty"`
	APIBind  string `json:"api_bind,omitempty"`
	LockFile string `json:"lock_file,omitempty"`
}

type providerReport struct {
	TMDBKeyPresent    bool   `json:"tmdb_key_present"`
	TVDBEnabled       bool   `json:"tvdb_enabled"`
	MetabridgeEnabled bool   `json:"metabridge_enabled"`
	TVmazeBaseURL     string `json:"tvmaze_base_url,omitempty"`
}

type databaseReport struct {
	Path    string            `json:"path"`
	Healthy bool              `json:"healthy"`
	Error   string            `json:"error,omitempty"`
	Stats   *cachestore.Stats `json:"stats,omitempty"`
}

type animeReport struct {
	Entries int    `json:"entries"`
	Source  string `json:"source,omitempty"`
	Error   string `json:"error,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, provider, and cache health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			report := buildStatusReport(cmd, ctx, cfg)
			if ctx.JSONMode() {
				return writeJSON(cmd, report)
			}
			printStatusReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

func buildStatusReport(cmd *cobra.Command, ctx *commandContext, cfg *config.Config) statusReport {
	report := statusReport{
		Daemon: daemonReport{
			APIBind:  cfg.Paths.APIBind,
			LockFile: daemon.LockFilePath(cfg),
		},
		Providers: providerReport{
			TMDBKeyPresent:    strings.TrimSpace(cfg.TMDB.APIKey) != "",
			TVDBEnabled:       cfg.TVDBEnabled(),
			MetabridgeEnabled: cfg.MetabridgeEnabled(),
			TVmazeBaseURL:     cfg.TVmaze.BaseURL,
		},
		Database: databaseReport{Path: cfg.DatabasePath()},
	}

	report.Daemon.Running, report.Daemon.PID = daemon.Probe(cfg)

	err := ctx.withStore(func(store *cachestore.Store) error {
		if err := store.CheckHealth(cmd.Context()); err != nil {
			return err
		}
		stats, err := store.Stats(cmd.Context())
		if err != nil {
			return err
		}
		report.Database.Healthy = true
		report.Database.Stats = &stats
		return nil
	})
	if err != nil {
		report.Database.Error = err.Error()
	}

	if table, err := animemap.FromConfig(cfg, nil); err != nil {
		report.Anime.Error = err.Error()
	} else {
		report.Anime.Entries = table.Len()
		report.Anime.Source = table.Source()
	}

	return report
}

func printStatusReport(out io.Writer, report statusReport) {
	colorize := isTerminal(out)
	lines := make([]string, 0, 20)

	lines = append(lines, renderSectionHeader("Daemon", colorize)...)
	if report.Daemon.Running {
		detail := "Running"
		if report.Daemon.PID > 0 {
			detail = fmt.Sprintf("Running (pid %d)", report.Daemon.PID)
		}
		lines = append(lines, renderStatusLine("crosswalkd", statusOK, detail, colorize))
	} else {
		lines = append(lines, renderStatusLine("crosswalkd", statusInfo, "Not running", colorize))
	}
	if report.Daemon.APIBind != "" {
		lines = append(lines, renderStatusLine("API bind", statusInfo, report.Daemon.APIBind, colorize))
	}

	lines = append(lines, renderSectionHeader("Providers", colorize)...)
	if report.Providers.TMDBKeyPresent {
		lines = append(lines, renderStatusLine("TMDB", statusOK, "API key configured", colorize))
	} else {
		lines = append(lines, renderStatusLine("TMDB", statusWarn, "API key missing", colorize))
	}
	lines = append(lines, providerToggleLine("TVDB", report.Providers.TVDBEnabled, colorize))
	lines = append(lines, providerToggleLine("Meta-bridge", report.Providers.MetabridgeEnabled, colorize))
	lines = append(lines, renderStatusLine("TVmaze", statusOK, "Keyless", colorize))

	lines = append(lines, renderSectionHeader("Cache", colorize)...)
	switch {
	case report.Database.Healthy && report.Database.Stats != nil:
		stats := report.Database.Stats
		detail := fmt.Sprintf("%s (%s)", report.Database.Path, humanBytes(stats.DatabaseBytes))
		lines = append(lines, renderStatusLine("Database", statusOK, detail, colorize))
		rows := fmt.Sprintf("%d rows (%d movie, %d series)", stats.TotalRows, stats.MovieRows, stats.SeriesRows)
		lines = append(lines, renderStatusLine("Rows", statusInfo, rows, colorize))
	default:
		lines = append(lines, renderStatusLine("Database", statusError, report.Database.Error, colorize))
	}

	lines = append(lines, renderSectionHeader("Anime", colorize)...)
	if report.Anime.Error != "" {
		lines = append(lines, renderStatusLine("Dataset", statusError, report.Anime.Error, colorize))
	} else {
		detail := fmt.Sprintf("%d entries (%s)", report.Anime.Entries, report.Anime.Source)
		lines = append(lines, renderStatusLine("Dataset", statusOK, detail, colorize))
	}

	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
}

func providerToggleLine(label string, enabled bool, colorize bool) string {
	if enabled {
		return renderStatusLine(label, statusOK, "Configured", colorize)
	}
	return renderStatusLine(label, statusInfo, "Not configured", colorize)
}
