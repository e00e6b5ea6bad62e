package cache

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	"PaperCast/internal/ports"
)

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir(), ".txt")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	exerciseStore(t, store)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	t.Parallel()

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer db.Close()

	exerciseStore(t, NewSQLiteStore(db, "articles"))

	// Namespaces are isolated within one database.
	other := NewSQLiteStore(db, "snapshots")
	keys, err := other.Keys(context.Background())
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("expected empty namespace, got %v", keys)
	}
}

func exerciseStore(t *testing.T, store ports.Store) {
	t.Helper()
	ctx := context.Background()

	ok, err := store.Exists(ctx, "arXiv:2501.00001")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Fatal("slot should not exist before Put")
	}

	if _, found, err := store.Get(ctx, "arXiv:2501.00001"); err != nil || found {
		t.Fatalf("Get before Put: found=%v err=%v", found, err)
	}

	if err := store.Put(ctx, "arXiv:2501.00001", []byte("converted text")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, "arXiv:2501.00002", []byte("other")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	value, found, err := store.Get(ctx, "arXiv:2501.00001")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found || string(value) != "converted text" {
		t.Fatalf("unexpected Get result: found=%v value=%q", found, value)
	}

	// Overwrite is allowed and replaces the value.
	if err := store.Put(ctx, "arXiv:2501.00001", []byte("updated")); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	value, _, _ = store.Get(ctx, "arXiv:2501.00001")
	if string(value) != "updated" {
		t.Fatalf("overwrite not applied: %q", value)
	}

	keys, err := store.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	sort.Strings(keys)
	want := []string{"arXiv_2501.00001", "arXiv_2501.00002"}
	if len(keys) != len(want) || keys[0] != want[0] || keys[1] != want[1] {
		t.Fatalf("unexpected keys: %v", keys)
	}
}
