package metabridge_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"crosswalk/internal/identity"
	"crosswalk/internal/providers/metabridge"
	"crosswalk/internal/services"
)

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := metabridge.New(""); err == nil {
		t.Fatal("expected error when base url missing")
	}
}

func TestLookupSendsIMDBAndType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lookup" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("imdb") != "tt0133093" || query.Get("type") != "movie" {
			t.Fatalf("unexpected query %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"imdb_id":"tt0133093","tmdb_id":603,"tvdb_id":12345}`))
	}))
	t.Cleanup(server.Close)

	client, err := metabridge.New(server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	mapping, err := client.Lookup(context.Background(), "tt0133093", identity.ContentTypeMovie)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if mapping.TMDBID != 603 || mapping.TVDBID != 12345 {
		t.Fatalf("unexpected mapping: %#v", mapping)
	}
}

func TestLookupEmptyMappingIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"imdb_id":"tt0000001"}`))
	}))
	t.Cleanup(server.Close)

	client, err := metabridge.New(server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if _, err := client.Lookup(context.Background(), "tt0000001", identity.ContentTypeMovie); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found marker, got %v", err)
	}
}

func TestLookupServerErrorIsNetwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	client, err := metabridge.New(server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if _, err := client.Lookup(context.Background(), "tt0133093", identity.ContentTypeSeries); !errors.Is(err, services.ErrNetwork) {
		t.Fatalf("expected network marker, got %v", err)
	}
}
