package main

import (
	"encoding/json"
	"strings"
	"testing"

	"crosswalk/internal/animemap"
)

func TestAnimeLookupFindsBundledEntry(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"anime", "lookup", "--mal", "1", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("anime lookup: %v", err)
	}
	var entry animemap.Entry
	if err := json.Unmarshal([]byte(out), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry.TMDBID != 30991 || entry.IMDBID != "tt0213338" {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	out, _, err = runCLI(t, []string{"anime", "lookup", "--anilist", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("anime lookup text: %v", err)
	}
	requireContains(t, out, "Cowboy Bebop")
	requireContains(t, out, "tt0213338")
}

func TestAnimeLookupRejectsBadArguments(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"anime", "lookup"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "exactly one") {
		t.Fatalf("expected namespace requirement, got %v", err)
	}

	_, _, err = runCLI(t, []string{"anime", "lookup", "--mal", "1", "--kitsu", "1"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "exactly one") {
		t.Fatalf("expected single-namespace rejection, got %v", err)
	}

	_, _, err = runCLI(t, []string{"anime", "lookup", "--mal", "999999"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "no static mapping") {
		t.Fatalf("expected miss error, got %v", err)
	}
}
