package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected refusal to overwrite existing file")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigShowRedactsCredentials(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "show", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	var view configView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if !view.Exists {
		t.Fatal("expected the test config file to be reported as existing")
	}
	if !view.TMDBKeyPresent {
		t.Fatal("expected tmdb key presence")
	}
	if view.DataDir != env.cfg.Paths.DataDir {
		t.Fatalf("data dir %q does not match config %q", view.DataDir, env.cfg.Paths.DataDir)
	}

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show text: %v", err)
	}
	requireContains(t, out, "Config path:")
	requireContains(t, out, "TMDB key:    yes")
	requireContains(t, out, "Anime data:  bundled dataset")
}

func TestConfigShowWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "from-env")
	missing := filepath.Join(t.TempDir(), "absent.toml")

	out, _, err := runCLI(t, []string{"config", "show"}, missing)
	if err != nil {
		t.Fatalf("config show with missing file: %v", err)
	}
	requireContains(t, out, "does not exist")
	requireContains(t, out, "TMDB key:    yes")
}
