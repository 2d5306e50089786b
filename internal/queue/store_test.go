package queue_test

import (
	"context"
	"fmt"
	"testing"

	"dropwatch/internal/product"
	"dropwatch/internal/scoring"
	"dropwatch/internal/testsupport"
)

func limitedItem(id string, state product.ReleaseState) *product.Item {
	return &product.Item{
		ID:             id,
		Title:          "Jordan 1 - Drops Thursday",
		Brand:          "Jordan",
		Category:       "sneakers",
		Price:          180,
		Source:         "twitter",
		LimitedEdition: true,
		ReleaseState:   state,
	}
}

func TestAddItemCommitsAndBlocksRepeat(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	dedupeStore := testsupport.NewDedupeStore(t, cfg)
	ctx := context.Background()

	added, err := store.AddItem(ctx, limitedItem("item-1", product.StateUpcoming), 72.5, scoring.Breakdown{Final: 72.5}, dedupeStore)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if !added {
		t.Fatal("expected first admission to succeed")
	}

	// The queue defers to the dedupe store: the same drop in the same state
	// is rejected without touching the table.
	added, err = store.AddItem(ctx, limitedItem("item-2", product.StateUpcoming), 80, scoring.Breakdown{}, dedupeStore)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if added {
		t.Fatal("expected duplicate rejection")
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ItemID != "item-1" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
	if stats := dedupeStore.Stats(); stats.TotalItems != 1 {
		t.Fatalf("expected one dedupe admission, got %+v", stats)
	}
}

func TestAddItemAllowsUpcomingToLive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	dedupeStore := testsupport.NewDedupeStore(t, cfg)
	ctx := context.Background()

	for i, state := range []product.ReleaseState{product.StateUpcoming, product.StateLive} {
		added, err := store.AddItem(ctx, limitedItem(fmt.Sprintf("item-%d", i), state), 50, scoring.Breakdown{}, dedupeStore)
		if err != nil {
			t.Fatalf("AddItem(%s) failed: %v", state, err)
		}
		if !added {
			t.Fatalf("expected %s admission to succeed", state)
		}
	}

	// Third pass on the live state is blocked.
	added, err := store.AddItem(ctx, limitedItem("item-3", product.StateLive), 50, scoring.Breakdown{}, dedupeStore)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if added {
		t.Fatal("expected repeat live post to be rejected")
	}

	stats, err := store.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalItems != 2 || stats.LimitedEditionItems != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.StateCounts[product.StateUpcoming] != 1 || stats.StateCounts[product.StateLive] != 1 {
		t.Fatalf("unexpected state counts: %+v", stats.StateCounts)
	}
}

func TestListOrdersByScoreThenAdmission(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	dedupeStore := testsupport.NewDedupeStore(t, cfg)
	ctx := context.Background()

	add := func(id, title string, score float64) {
		t.Helper()
		item := &product.Item{ID: id, Title: title, Brand: "Nike", Category: "sneakers", Price: 120}
		added, err := store.AddItem(ctx, item, score, scoring.Breakdown{Final: score}, dedupeStore)
		if err != nil || !added {
			t.Fatalf("AddItem(%s) = %v, %v", id, added, err)
		}
	}

	add("low", "Nike Dunk Low Panda", 40)
	add("high", "Nike Air Max 1", 90)
	add("tie-first", "Nike Pegasus 41", 60)
	add("tie-second", "Nike Vomero 5", 60)

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	got := make([]string, 0, len(entries))
	for _, entry := range entries {
		got = append(got, entry.ItemID)
	}
	expected := []string{"high", "tie-first", "tie-second", "low"}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("unexpected order: %v", got)
		}
	}

	next, err := store.Next(ctx)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if next == nil || next.ItemID != "high" {
		t.Fatalf("expected highest-score entry, got %+v", next)
	}
}

func TestRemoveAndClear(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	dedupeStore := testsupport.NewDedupeStore(t, cfg)
	ctx := context.Background()

	item := &product.Item{ID: "solo", Title: "Supreme Tee", Brand: "Supreme", Category: "apparel", Price: 48}
	if added, err := store.AddItem(ctx, item, 55, scoring.Breakdown{}, dedupeStore); err != nil || !added {
		t.Fatalf("AddItem = %v, %v", added, err)
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	removed, err := store.Remove(ctx, entries[0].ID)
	if err != nil || !removed {
		t.Fatalf("Remove = %v, %v", removed, err)
	}
	if removed, err = store.Remove(ctx, entries[0].ID); err != nil || removed {
		t.Fatalf("second Remove = %v, %v", removed, err)
	}

	// Removal from the queue does not reopen admission; the dedupe store
	// still remembers the fingerprint.
	if added, err := store.AddItem(ctx, item, 55, scoring.Breakdown{}, dedupeStore); err != nil || added {
		t.Fatalf("expected dedupe to still block, got %v, %v", added, err)
	}

	if _, err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	stats, err := store.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalItems != 0 {
		t.Fatalf("expected empty queue, got %+v", stats)
	}
}

func TestNextOnEmptyQueue(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	next, err := store.Next(context.Background())
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if next != nil {
		t.Fatalf("expected nil entry, got %+v", next)
	}
}

func TestAddItemValidatesArguments(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	dedupeStore := testsupport.NewDedupeStore(t, cfg)
	ctx := context.Background()

	if _, err := store.AddItem(ctx, nil, 0, scoring.Breakdown{}, dedupeStore); err == nil {
		t.Fatal("expected error for nil item")
	}
	if _, err := store.AddItem(ctx, limitedItem("x", product.StateLive), 0, scoring.Breakdown{}, nil); err == nil {
		t.Fatal("expected error for nil dedupe store")
	}
}
