package product_test

import (
	"testing"

	"dropwatch/internal/logging"
	"dropwatch/internal/product"
)

func TestNormalizeDefaultsReleaseState(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected product.ReleaseState
	}{
		{"missing", "", product.StateLive},
		{"upcoming", "upcoming", product.StateUpcoming},
		{"live", "live", product.StateLive},
		{"mixed case", " Upcoming ", product.StateUpcoming},
		{"unrecognized", "preorder", product.StateLive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := &product.Item{Title: "Test", ReleaseState: product.ReleaseState(tc.input)}
			product.Normalize(item, logging.NewNop())
			if item.ReleaseState != tc.expected {
				t.Fatalf("expected %s, got %s", tc.expected, item.ReleaseState)
			}
		})
	}
}

func TestNormalizeAssignsID(t *testing.T) {
	item := &product.Item{Title: "Test"}
	product.Normalize(item, nil)
	if item.ID == "" {
		t.Fatal("expected generated ID")
	}

	withID := &product.Item{ID: " explicit ", Title: "Test"}
	product.Normalize(withID, nil)
	if withID.ID != "explicit" {
		t.Fatalf("expected trimmed explicit ID, got %q", withID.ID)
	}
}

func TestNormalizeLowercasesSource(t *testing.T) {
	item := &product.Item{Title: "Test", Source: " Twitter "}
	product.Normalize(item, nil)
	if item.Source != "twitter" {
		t.Fatalf("expected lowercased source, got %q", item.Source)
	}
}

func TestNormalizeClearsUnknownStockStatus(t *testing.T) {
	item := &product.Item{Title: "Test", StockStatus: "plentiful"}
	product.Normalize(item, nil)
	if item.StockStatus != "" {
		t.Fatalf("expected cleared stock status, got %q", item.StockStatus)
	}
}

func TestReleaseTime(t *testing.T) {
	item := &product.Item{ReleaseDate: "2026-08-20T10:00:00Z"}
	if _, ok := item.ReleaseTime(); !ok {
		t.Fatal("expected parseable release date")
	}

	loose := &product.Item{ReleaseDate: "Aug 20, 2026"}
	if _, ok := loose.ReleaseTime(); !ok {
		t.Fatal("expected loose date format to parse")
	}

	bad := &product.Item{ReleaseDate: "next thursday-ish"}
	if _, ok := bad.ReleaseTime(); ok {
		t.Fatal("expected unparseable date to report false")
	}

	missing := &product.Item{}
	if _, ok := missing.ReleaseTime(); ok {
		t.Fatal("expected missing date to report false")
	}
}

func TestParseReleaseState(t *testing.T) {
	if _, ok := product.ParseReleaseState("restocking"); ok {
		t.Fatal("expected unknown state to fail parse")
	}
	state, ok := product.ParseReleaseState("LIVE")
	if !ok || state != product.StateLive {
		t.Fatalf("expected live, got %s ok=%v", state, ok)
	}
}
