package testsupport

import (
	"context"
	"testing"

	"crosswalk/internal/cachestore"
	"crosswalk/internal/config"
	"crosswalk/internal/identity"
)

// MustOpenStore opens a cachestore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *cachestore.Store {
	t.Helper()

	store, err := cachestore.Open(cfg)
	if err != nil {
		t.Fatalf("cachestore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// PutRecord inserts a record into the store for tests.
func PutRecord(t testing.TB, store *cachestore.Store, record identity.Record) {
	t.Helper()

	if err := store.Put(context.Background(), record); err != nil {
		t.Fatalf("store.Put: %v", err)
	}
}
