package pipeline_test

import (
	"context"
	"testing"

	"dropwatch/internal/dedupe"
	"dropwatch/internal/pipeline"
	"dropwatch/internal/product"
	"dropwatch/internal/testsupport"
)

func newPipeline(t *testing.T) (*pipeline.Pipeline, *dedupe.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	queueStore := testsupport.MustOpenStore(t, cfg)
	dedupeStore := testsupport.NewDedupeStore(t, cfg)
	return pipeline.New(cfg, dedupeStore, queueStore, nil), dedupeStore
}

func TestProcessQueuesAndRejectsDuplicates(t *testing.T) {
	p, _ := newPipeline(t)

	items := []*product.Item{
		{ID: "a", Title: "Adidas Samba OG", Brand: "Adidas", Category: "sneakers", Price: 100, Source: "rss"},
		{ID: "b", Title: "Adidas Samba OG - Restock", Brand: "Adidas", Category: "sneakers", Price: 100, Source: "rss"},
		{ID: "c", Title: "Funko Pop Batman", Brand: "Funko", Category: "collectibles", Price: 15, Source: "rss"},
	}

	summary, err := p.Process(context.Background(), items)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if summary.Processed != 3 || summary.Queued != 2 || summary.Duplicates != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if !summary.Results[0].Queued {
		t.Fatal("expected first samba listing to queue")
	}
	if summary.Results[1].Queued || summary.Results[1].Match != dedupe.MatchExactDuplicate {
		t.Fatalf("expected restock to be an exact duplicate, got %+v", summary.Results[1])
	}
	if !summary.Results[2].Queued {
		t.Fatal("expected funko listing to queue")
	}
}

func TestProcessTransitionBonusWithinBatch(t *testing.T) {
	p, _ := newPipeline(t)

	upcoming := &product.Item{
		ID: "up", Title: "Adidas Campus 00s", Brand: "Adidas", Category: "sneakers",
		Price: 110, Source: "rss", LimitedEdition: true, ReleaseState: product.StateUpcoming,
	}
	live := &product.Item{
		ID: "live", Title: "Adidas Campus 00s - Available Now", Brand: "Adidas", Category: "sneakers",
		Price: 110, Source: "rss", LimitedEdition: true, ReleaseState: product.StateLive,
	}

	summary, err := p.Process(context.Background(), []*product.Item{upcoming, live})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if summary.Queued != 2 {
		t.Fatalf("expected both states to queue, got %+v", summary)
	}
	if summary.Results[1].Breakdown.TransitionBonus != 10 {
		t.Fatalf("expected full transition bonus, got breakdown %+v", summary.Results[1].Breakdown)
	}
}

func TestProcessNormalizesSparseItems(t *testing.T) {
	p, dedupeStore := newPipeline(t)

	item := &product.Item{Title: "  Mystery Drop  ", ReleaseState: "pre-release"}
	summary, err := p.Process(context.Background(), []*product.Item{item})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if summary.Queued != 1 {
		t.Fatalf("expected sparse item to queue, got %+v", summary)
	}
	if item.ID == "" {
		t.Fatal("expected generated item ID")
	}
	if item.ReleaseState != product.StateLive {
		t.Fatalf("expected unrecognized state to default to live, got %q", item.ReleaseState)
	}
	if stats := dedupeStore.Stats(); stats.StateBreakdown[product.StateLive] != 1 {
		t.Fatalf("unexpected dedupe breakdown: %+v", stats)
	}
}

func TestProcessEmptyBatch(t *testing.T) {
	p, _ := newPipeline(t)

	summary, err := p.Process(context.Background(), nil)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if summary.Processed != 0 || len(summary.Results) != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestProcessHonorsCancellation(t *testing.T) {
	p, _ := newPipeline(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Process(ctx, []*product.Item{{Title: "Nike Dunk"}})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestSaveAndLoadState(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	queueStore := testsupport.MustOpenStore(t, cfg)
	dedupeStore := testsupport.NewDedupeStore(t, cfg)
	p := pipeline.New(cfg, dedupeStore, queueStore, nil)

	if _, err := p.Process(context.Background(), []*product.Item{
		{ID: "x", Title: "Supreme Box Logo Hoodie", Brand: "Supreme", Category: "apparel", LimitedEdition: true, ReleaseState: product.StateUpcoming},
	}); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if err := p.SaveState(); err != nil {
		t.Fatalf("SaveState failed: %v", err)
	}

	restored := testsupport.NewDedupeStore(t, cfg)
	p2 := pipeline.New(cfg, restored, queueStore, nil)
	if err := p2.LoadState(); err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if stats := restored.Stats(); stats.TotalItems != 1 || stats.LimitedEditionItems != 1 {
		t.Fatalf("unexpected restored stats: %+v", stats)
	}
}

func TestCleanupScheduleStartsAndStops(t *testing.T) {
	p, _ := newPipeline(t)

	stop, err := p.StartCleanupSchedule()
	if err != nil {
		t.Fatalf("StartCleanupSchedule failed: %v", err)
	}
	stop()
}
