package scoring

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"dropwatch/internal/config"
	"dropwatch/internal/dropid"
	"dropwatch/internal/logging"
	"dropwatch/internal/product"
)

// Component weights. They sum to 1.0 so the weighted base stays in [0, 1].
const (
	weightHype       = 0.30
	weightBrandTier  = 0.25
	weightRecency    = 0.20
	weightEngagement = 0.15
	weightScarcity   = 0.10
)

const (
	fullTransitionBonus = 10.0
	halfTransitionBonus = 5.0

	recencyDecayPerHour = 0.1

	brandUnknownScore = 0.3
	brandMissingScore = 0.2

	recencyUnparseableScore = 0.3
	recencyMissingScore     = 0.5

	engagementStorefrontScore = 0.6
	engagementUnknownScore    = 0.4
)

// StateReader exposes the dedupe store's recorded state to the scorer. The
// scorer only ever reads; it never owns or mutates dedupe state.
type StateReader interface {
	PriorState(fingerprint string) (product.ReleaseState, bool)
}

// Breakdown itemizes how a score was assembled. It is recomputed per call and
// never persisted.
type Breakdown struct {
	Hype               float64 `json:"hype"`
	BrandTier          float64 `json:"brand_tier"`
	Recency            float64 `json:"recency"`
	Engagement         float64 `json:"engagement"`
	Scarcity           float64 `json:"scarcity"`
	WeightedBase       float64 `json:"weighted_base"`
	SourceReliability  float64 `json:"source_reliability"`
	CategoryMultiplier float64 `json:"category_multiplier"`
	TransitionBonus    float64 `json:"transition_bonus"`
	Final              float64 `json:"final"`
	Error              string  `json:"error,omitempty"`
}

// Scored pairs an item with its computed priority.
type Scored struct {
	Item      *product.Item `json:"item"`
	Score     float64       `json:"score"`
	Breakdown Breakdown     `json:"breakdown"`
}

// Scorer maps items to priority scores using curated lookup tables.
type Scorer struct {
	tables  config.Scoring
	topTier float64
	logger  *slog.Logger
	now     func() time.Time
}

// NewScorer builds a scorer around the configured lookup tables.
func NewScorer(tables config.Scoring, logger *slog.Logger) *Scorer {
	topTier := 0.0
	for _, tier := range tables.BrandTiers {
		if tier.Multiplier > topTier {
			topTier = tier.Multiplier
		}
	}
	if topTier == 0 {
		topTier = 1
	}
	return &Scorer{
		tables:  tables,
		topTier: topTier,
		logger:  logging.NewComponentLogger(logger, "scoring"),
		now:     time.Now,
	}
}

// Score computes the priority for one item. states may be nil; without dedupe
// context the transition bonus falls back to a title-keyword heuristic.
func (s *Scorer) Score(item *product.Item, states StateReader) (score float64, breakdown Breakdown) {
	defer func() {
		if r := recover(); r != nil {
			score = 0
			breakdown.Final = 0
			breakdown.Error = fmt.Sprintf("scoring failed: %v", r)
			s.logger.Warn("recovered scoring panic",
				logging.String(logging.FieldItemID, itemID(item)),
				logging.Any("panic", r))
		}
	}()

	if item == nil {
		breakdown.Error = "scoring failed: nil item"
		return 0, breakdown
	}

	breakdown.Hype = clamp01(item.HypeScore / 100)
	breakdown.BrandTier = s.brandTier(item.Brand)
	breakdown.Recency = s.recency(item)
	breakdown.Engagement = s.engagement(item)
	breakdown.Scarcity = s.scarcity(item)

	breakdown.WeightedBase = breakdown.Hype*weightHype +
		breakdown.BrandTier*weightBrandTier +
		breakdown.Recency*weightRecency +
		breakdown.Engagement*weightEngagement +
		breakdown.Scarcity*weightScarcity

	breakdown.SourceReliability = s.sourceReliability(item.Source)
	breakdown.CategoryMultiplier = s.categoryMultiplier(item.Category)
	breakdown.TransitionBonus = s.transitionBonus(item, states)

	raw := breakdown.WeightedBase*breakdown.SourceReliability*breakdown.CategoryMultiplier*100 +
		breakdown.TransitionBonus
	breakdown.Final = round2(math.Min(100, math.Max(0, raw)))
	return breakdown.Final, breakdown
}

// ScoreBatch scores every item and returns the results sorted by score
// descending. The sort is stable, so ties keep their original feed order.
func (s *Scorer) ScoreBatch(items []*product.Item, states StateReader) []Scored {
	scored := make([]Scored, 0, len(items))
	for _, item := range items {
		value, breakdown := s.Score(item, states)
		scored = append(scored, Scored{Item: item, Score: value, Breakdown: breakdown})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// brandTier normalizes a brand's tier multiplier against the top tier.
func (s *Scorer) brandTier(brand string) float64 {
	normalized := strings.ToLower(strings.TrimSpace(brand))
	if normalized == "" {
		return brandMissingScore
	}
	for _, tier := range s.tables.BrandTiers {
		for _, candidate := range tier.Brands {
			if candidate == normalized {
				return clamp01(tier.Multiplier / s.topTier)
			}
		}
	}
	return brandUnknownScore
}

// recency decays exponentially with the listing's age in hours.
func (s *Scorer) recency(item *product.Item) float64 {
	if strings.TrimSpace(item.ReleaseDate) == "" {
		return recencyMissingScore
	}
	released, ok := item.ReleaseTime()
	if !ok {
		return recencyUnparseableScore
	}
	ageHours := s.now().Sub(released).Hours()
	return clamp01(math.Exp(-recencyDecayPerHour * ageHours))
}

// engagement normalizes source-specific popularity metrics.
func (s *Scorer) engagement(item *product.Item) float64 {
	source := strings.ToLower(strings.TrimSpace(item.Source))
	switch source {
	case "twitter":
		return clamp01(math.Log10(math.Max(0, item.Engagement)+1) / 4)
	case "reddit":
		upvotes := clamp01(item.Upvotes / 500)
		velocity := clamp01(item.Velocity / 100)
		return (upvotes + velocity) / 2
	}
	for _, storefront := range s.tables.StorefrontSources {
		if source == storefront {
			return engagementStorefrontScore
		}
	}
	return engagementUnknownScore
}

// scarcity sums limited-edition, stock, and title-keyword signals.
func (s *Scorer) scarcity(item *product.Item) float64 {
	total := 0.0
	if item.LimitedEdition {
		total += 0.6
	}
	switch item.StockStatus {
	case product.StockLow:
		total += 0.3
	case product.StockIn:
		total += 0.2
	case product.StockOut:
		total += 0.1
	}

	title := strings.ToLower(item.Title)
	hits := 0
	for _, keyword := range s.tables.ScarcityKeywords {
		if strings.Contains(title, keyword) {
			hits++
			if hits == 3 {
				break
			}
		}
	}
	total += float64(hits) * 0.1

	return clamp01(total)
}

func (s *Scorer) sourceReliability(source string) float64 {
	if value, ok := s.tables.SourceReliability[strings.ToLower(strings.TrimSpace(source))]; ok {
		return value
	}
	return s.tables.DefaultSourceReliability
}

func (s *Scorer) categoryMultiplier(category string) float64 {
	if value, ok := s.tables.CategoryMultipliers[strings.ToLower(strings.TrimSpace(category))]; ok {
		return value
	}
	return 1.0
}

// transitionBonus rewards catching a limited drop the moment it goes live.
// With dedupe context the bonus requires a recorded upcoming announcement;
// without it, a transition keyword in the title earns half credit.
func (s *Scorer) transitionBonus(item *product.Item, states StateReader) float64 {
	if !item.LimitedEdition || effectiveState(item) != product.StateLive {
		return 0
	}
	if states != nil {
		prior, ok := states.PriorState(dropid.Fingerprint(item))
		if ok && prior == product.StateUpcoming {
			return fullTransitionBonus
		}
		return 0
	}
	title := strings.ToLower(item.Title)
	for _, keyword := range s.tables.TransitionKeywords {
		if strings.Contains(title, keyword) {
			return halfTransitionBonus
		}
	}
	return 0
}

func effectiveState(item *product.Item) product.ReleaseState {
	if state, ok := product.ParseReleaseState(string(item.ReleaseState)); ok {
		return state
	}
	return product.StateLive
}

func clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func itemID(item *product.Item) string {
	if item == nil {
		return ""
	}
	return item.ID
}
