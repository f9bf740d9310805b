package main

import (
	"encoding/json"
	"strings"
	"testing"

	"crosswalk/internal/identity"
)

func TestStatusReportsIdleInstallation(t *testing.T) {
	env := setupCLITestEnv(t)
	seedRows(t, env.cfg,
		identity.Record{ContentType: identity.ContentTypeMovie, TMDBID: 603, IMDBID: "tt0133093"},
	)

	out, _, err := runCLI(t, []string{"status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var report statusReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Daemon.Running {
		t.Fatal("no daemon runs in this test")
	}
	if !report.Database.Healthy || report.Database.Stats == nil {
		t.Fatalf("expected healthy database, got %+v", report.Database)
	}
	if report.Database.Stats.TotalRows != 1 {
		t.Fatalf("expected one cached row, got %d", report.Database.Stats.TotalRows)
	}
	if !report.Providers.TMDBKeyPresent {
		t.Fatal("expected tmdb key presence")
	}
	if report.Anime.Entries == 0 {
		t.Fatal("expected bundled anime entries")
	}
}

func TestStatusTextRendering(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status text: %v", err)
	}
	requireContains(t, out, "== Daemon ==")
	requireContains(t, out, "Not running")
	requireContains(t, out, "== Providers ==")
	requireContains(t, out, "== Cache ==")
	requireContains(t, out, "== Anime ==")
	if strings.Contains(out, ansiGreen) {
		t.Fatal("buffered output must not carry ansi colors")
	}
}

func TestStatusLineFormatting(t *testing.T) {
	line := renderStatusLine("crosswalkd", statusOK, "Running (pid 42)", false)
	if !strings.HasPrefix(line, "  crosswalkd:") {
		t.Fatalf("unexpected prefix: %q", line)
	}
	requireContains(t, line, "[OK] Running (pid 42)")

	colored := renderStatusLine("TMDB", statusWarn, "API key missing", true)
	if !strings.HasPrefix(colored, ansiYellow) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected yellow wrapping, got %q", colored)
	}
}
