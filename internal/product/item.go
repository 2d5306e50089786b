package product

import (
	"log/slog"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"

	"dropwatch/internal/logging"
)

// ReleaseState is the lifecycle tag for a product drop's announcement phase.
type ReleaseState string

const (
	// StateUpcoming marks an announced drop that is not yet purchasable.
	StateUpcoming ReleaseState = "upcoming"
	// StateLive marks a drop that is purchasable now.
	StateLive ReleaseState = "live"
)

// ParseReleaseState converts a string into a known ReleaseState.
func ParseReleaseState(value string) (ReleaseState, bool) {
	normalized := ReleaseState(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case StateUpcoming, StateLive:
		return normalized, true
	}
	return "", false
}

// StockStatus describes a listing's declared availability.
type StockStatus string

const (
	StockLow StockStatus = "low_stock"
	StockIn  StockStatus = "in_stock"
	StockOut StockStatus = "out_of_stock"
)

// Item is a candidate product listing supplied by a discovery source.
//
// Every field except Title and URL is optional; Normalize fills defaults so a
// sparse listing never fails downstream. Release state and limited-edition
// flags come from the enrichment layer upstream of this core.
type Item struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	URL            string       `json:"url"`
	Brand          string       `json:"brand"`
	Category       string       `json:"category"`
	Store          string       `json:"store"`
	Price          float64      `json:"price"`
	LimitedEdition bool         `json:"limited_edition"`
	Source         string       `json:"source"`
	ReleaseDate    string       `json:"release_date"`
	ReleaseState   ReleaseState `json:"release_state"`
	StockStatus    StockStatus  `json:"stock_status"`

	// Engagement metrics populated by source-specific collectors.
	HypeScore  float64 `json:"hype_score"`
	Engagement float64 `json:"engagement"`
	Upvotes    float64 `json:"upvotes"`
	Velocity   float64 `json:"velocity"`

	Meta map[string]string `json:"meta,omitempty"`
}

// Normalize trims fields and fills defaults in place. A missing ID receives a
// generated UUID. An empty release state defaults to live; an unrecognized
// value is logged as a warning and also treated as live.
func Normalize(item *Item, logger *slog.Logger) {
	if item == nil {
		return
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	item.ID = strings.TrimSpace(item.ID)
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.Title = strings.TrimSpace(item.Title)
	item.URL = strings.TrimSpace(item.URL)
	item.Brand = strings.TrimSpace(item.Brand)
	item.Category = strings.TrimSpace(item.Category)
	item.Store = strings.TrimSpace(item.Store)
	item.Source = strings.ToLower(strings.TrimSpace(item.Source))
	item.ReleaseDate = strings.TrimSpace(item.ReleaseDate)

	raw := strings.TrimSpace(string(item.ReleaseState))
	state, ok := ParseReleaseState(raw)
	if !ok {
		if raw != "" {
			logger.Warn("unrecognized release state, treating as live",
				logging.String(logging.FieldItemID, item.ID),
				logging.String(logging.FieldReleaseState, raw))
		}
		state = StateLive
	}
	item.ReleaseState = state

	switch item.StockStatus {
	case StockLow, StockIn, StockOut, "":
	default:
		item.StockStatus = ""
	}
}

// ReleaseTime parses the free-form release date. The second return value is
// false when the date is missing or unparseable.
func (i *Item) ReleaseTime() (time.Time, bool) {
	if i == nil || strings.TrimSpace(i.ReleaseDate) == "" {
		return time.Time{}, false
	}
	parsed, err := dateparse.ParseAny(i.ReleaseDate)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
