package testsupport

import (
	"context"
	"testing"

	"litman/internal/config"
	"litman/internal/library"
)

// MustOpenStore opens a library.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewItem creates an item with content for tests using the provided store.
func NewItem(t testing.TB, store *library.Store, sourcePath, content string) *library.Item {
	t.Helper()

	item, err := store.Create(context.Background(), sourcePath, content, false)
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return item
}
