package dedupe

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dropwatch/internal/product"
)

func TestExportImportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "dedupe.json")

	store := newTestStore()
	store.Admit(limitedItem("announce", product.StateUpcoming))
	store.Admit(&product.Item{ID: "plain", Title: "Plain Tee", Brand: "Nike", Category: "apparel", Price: 30})

	if err := store.Export(path); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	restored := newTestStore()
	if err := restored.Import(path); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	stats := restored.Stats()
	if stats.TotalItems != 2 || stats.LimitedEditionItems != 1 || stats.ProductStates != 2 {
		t.Fatalf("unexpected restored stats: %+v", stats)
	}

	// Admission rules survive the round trip.
	decision := restored.IsDuplicate(limitedItem("again", product.StateUpcoming))
	if !decision.Duplicate || decision.Match != MatchUpcomingDuplicate {
		t.Fatalf("expected upcoming_duplicate after restore, got %+v", decision)
	}
	transition := restored.IsDuplicate(limitedItem("release", product.StateLive))
	if transition.Duplicate || transition.Match != MatchStateTransition {
		t.Fatalf("expected transition allowed after restore, got %+v", transition)
	}
}

func TestImportMissingFileStartsEmpty(t *testing.T) {
	store := newTestStore()
	if err := store.Import(filepath.Join(t.TempDir(), "missing.json")); err != nil {
		t.Fatalf("missing snapshot should not error: %v", err)
	}
	if stats := store.Stats(); stats.ProductStates != 0 {
		t.Fatalf("expected empty store, got %+v", stats)
	}
}

func TestImportRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dedupe.json")
	payload, err := json.Marshal(Snapshot{Version: 99})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := newTestStore()
	if err := store.Import(path); err == nil {
		t.Fatal("expected version error")
	}
}

func TestExportRequiresPath(t *testing.T) {
	store := newTestStore()
	if err := store.Export(""); err == nil {
		t.Fatal("expected error for empty path")
	}
	if err := store.Import(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestExportIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore()
	fixed := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }
	store.Admit(limitedItem("a", product.StateUpcoming))
	store.Admit(&product.Item{ID: "b", Title: "Plain Tee", Brand: "Nike", Category: "apparel", Price: 30})

	first := filepath.Join(dir, "one.json")
	second := filepath.Join(dir, "two.json")
	if err := store.Export(first); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if err := store.Export(second); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	a, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	b, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(a) != string(b) {
		t.Fatal("expected deterministic snapshot output")
	}
}
