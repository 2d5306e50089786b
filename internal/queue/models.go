package queue

import (
	"time"

	"dropwatch/internal/product"
)

// Entry is one admitted listing awaiting publication.
type Entry struct {
	ID             int64
	ItemID         string
	Fingerprint    string
	Title          string
	URL            string
	Brand          string
	Category       string
	Store          string
	Price          float64
	Source         string
	LimitedEdition bool
	ReleaseState   product.ReleaseState
	StockStatus    product.StockStatus
	Score          float64
	BreakdownJSON  string
	AdmittedAt     time.Time
}

// Stats aggregates queue contents for diagnostics.
type Stats struct {
	TotalItems          int                          `json:"total_items"`
	LimitedEditionItems int                          `json:"limited_edition_items"`
	StateCounts         map[product.ReleaseState]int `json:"state_counts"`
}
