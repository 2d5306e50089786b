package dedupe

import (
	"log/slog"
	"sync"
	"time"

	"dropwatch/internal/dropid"
	"dropwatch/internal/logging"
	"dropwatch/internal/product"
)

// MatchType classifies the outcome of a duplicate check.
type MatchType string

const (
	MatchNone                MatchType = "none"
	MatchExactDuplicate      MatchType = "exact_duplicate"
	MatchUpcomingDuplicate   MatchType = "upcoming_duplicate"
	MatchLiveDuplicate       MatchType = "live_duplicate"
	MatchStateTransition     MatchType = "state_transition_allowed"
	MatchBackwardsTransition MatchType = "backwards_state_transition"
)

// Record tracks the posting state of one fingerprint.
type Record struct {
	Fingerprint    string               `json:"fingerprint"`
	State          product.ReleaseState `json:"state"`
	FirstSeen      time.Time            `json:"first_seen"`
	LastSeen       time.Time            `json:"last_seen"`
	ItemID         string               `json:"item_id"`
	LimitedEdition bool                 `json:"limited_edition"`
}

// Decision is the outcome of a duplicate check.
type Decision struct {
	Duplicate  bool
	Match      MatchType
	ExistingID string
}

// Admission is the result of an atomic decide-and-commit. It carries enough
// state for Rollback to undo the commit if a later step fails.
type Admission struct {
	Decision
	Admitted    bool
	Fingerprint string

	previous    Record
	existed     bool
	limitedItem bool
}

// Retention holds the eviction windows for cleanup passes.
type Retention struct {
	Standard time.Duration
	Limited  time.Duration
}

// Stats aggregates store counters for diagnostics.
type Stats struct {
	TotalItems          int                          `json:"total_items"`
	LimitedEditionItems int                          `json:"limited_edition_items"`
	ProductStates       int                          `json:"product_states"`
	StateBreakdown      map[product.ReleaseState]int `json:"state_breakdown"`
}

// Store owns the fingerprint map. All admission decisions flow through it.
type Store struct {
	mu        sync.RWMutex
	records   map[string]Record
	admitted  int
	limited   int
	retention Retention
	logger    *slog.Logger
	now       func() time.Time
}

// NewStore creates an empty dedupe store with the provided retention windows.
func NewStore(retention Retention, logger *slog.Logger) *Store {
	if retention.Standard <= 0 {
		retention.Standard = 7 * 24 * time.Hour
	}
	if retention.Limited <= retention.Standard {
		retention.Limited = 21 * 24 * time.Hour
	}
	return &Store{
		records:   make(map[string]Record),
		retention: retention,
		logger:    logging.NewComponentLogger(logger, "dedupe"),
		now:       time.Now,
	}
}

// IsDuplicate reports whether admitting the item would be blocked. It never
// mutates the store; repeated calls return the same outcome until an Admit
// changes the underlying record.
func (s *Store) IsDuplicate(item *product.Item) Decision {
	fingerprint := dropid.Fingerprint(item)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.decide(item, fingerprint)
}

// Admit runs the duplicate check and, when admission is allowed, commits the
// record mutation inside the same critical section. A separate check-then-add
// sequence would let two racing submissions for the same fingerprint both
// pass the check; Admit closes that window.
func (s *Store) Admit(item *product.Item) Admission {
	fingerprint := dropid.Fingerprint(item)

	s.mu.Lock()
	defer s.mu.Unlock()

	decision := s.decide(item, fingerprint)
	admission := Admission{Decision: decision, Fingerprint: fingerprint}
	if decision.Duplicate {
		return admission
	}

	previous, existed := s.records[fingerprint]
	admission.previous = previous
	admission.existed = existed
	admission.Admitted = true

	now := s.now()
	if decision.Match == MatchStateTransition {
		// Legal upcoming -> live transition mutates the state field only;
		// the record keeps its original first-seen time and item ID.
		record := previous
		record.State = product.StateLive
		record.LastSeen = now
		s.records[fingerprint] = record
	} else {
		s.records[fingerprint] = Record{
			Fingerprint:    fingerprint,
			State:          effectiveState(item),
			FirstSeen:      now,
			LastSeen:       now,
			ItemID:         item.ID,
			LimitedEdition: item.LimitedEdition,
		}
	}

	s.admitted++
	if item.LimitedEdition {
		s.limited++
		admission.limitedItem = true
	}

	s.logger.Debug("admitted fingerprint",
		logging.String(logging.FieldFingerprint, fingerprint),
		logging.String(logging.FieldItemID, item.ID),
		logging.String(logging.FieldMatchType, string(decision.Match)),
		logging.Bool("limited_edition", item.LimitedEdition))

	return admission
}

// Rollback undoes a successful Admit, restoring the record and counters to
// their prior state. Calling it with a rejected admission is a no-op.
func (s *Store) Rollback(admission Admission) {
	if !admission.Admitted {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if admission.existed {
		s.records[admission.Fingerprint] = admission.previous
	} else {
		delete(s.records, admission.Fingerprint)
	}
	s.admitted--
	if admission.limitedItem {
		s.limited--
	}
}

// decide applies the admission rule. Callers must hold at least a read lock.
//
// Limited-edition decision table:
//
//	prior none     + any        -> allowed
//	prior upcoming + upcoming   -> blocked (upcoming_duplicate)
//	prior upcoming + live       -> allowed (state_transition_allowed)
//	prior live     + live       -> blocked (live_duplicate)
//	prior live     + upcoming   -> blocked (backwards_state_transition)
//
// The table applies only when the recorded fingerprint and the incoming item
// are both limited. Non-limited fingerprints allow exactly one admission
// ever, and a later source re-listing the same drop as limited must not
// reopen them through the transition rule.
func (s *Store) decide(item *product.Item, fingerprint string) Decision {
	record, exists := s.records[fingerprint]
	if !exists {
		return Decision{Match: MatchNone}
	}

	// Fail closed: a record holding an unknown state is treated as a
	// duplicate. A false block costs one missed post; a false admit posts
	// the same drop twice.
	if record.State != product.StateUpcoming && record.State != product.StateLive {
		s.logger.Warn("corrupt dedupe record, failing closed",
			logging.String(logging.FieldFingerprint, fingerprint),
			logging.String(logging.FieldReleaseState, string(record.State)))
		return Decision{Duplicate: true, Match: MatchExactDuplicate, ExistingID: record.ItemID}
	}

	if item == nil || !item.LimitedEdition || !record.LimitedEdition {
		return Decision{Duplicate: true, Match: MatchExactDuplicate, ExistingID: record.ItemID}
	}

	switch incoming := effectiveState(item); {
	case record.State == product.StateUpcoming && incoming == product.StateUpcoming:
		return Decision{Duplicate: true, Match: MatchUpcomingDuplicate, ExistingID: record.ItemID}
	case record.State == product.StateUpcoming && incoming == product.StateLive:
		return Decision{Match: MatchStateTransition, ExistingID: record.ItemID}
	case record.State == product.StateLive && incoming == product.StateLive:
		return Decision{Duplicate: true, Match: MatchLiveDuplicate, ExistingID: record.ItemID}
	default:
		return Decision{Duplicate: true, Match: MatchBackwardsTransition, ExistingID: record.ItemID}
	}
}

// PriorState returns the currently recorded state for a fingerprint.
func (s *Store) PriorState(fingerprint string) (product.ReleaseState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[fingerprint]
	if !ok {
		return "", false
	}
	return record.State, true
}

// Stats returns aggregate counters and a breakdown of recorded states.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	breakdown := make(map[product.ReleaseState]int)
	for _, record := range s.records {
		breakdown[record.State]++
	}
	return Stats{
		TotalItems:          s.admitted,
		LimitedEditionItems: s.limited,
		ProductStates:       len(s.records),
		StateBreakdown:      breakdown,
	}
}

// CleanupOldEntries evicts records older than their retention window and
// returns the number removed. It takes the same write lock as Admit so a
// record cannot be evicted mid-decision.
func (s *Store) CleanupOldEntries() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	evicted := 0
	for fingerprint, record := range s.records {
		window := s.retention.Standard
		if record.LimitedEdition {
			window = s.retention.Limited
		}
		if now.Sub(record.LastSeen) > window {
			delete(s.records, fingerprint)
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.Info("evicted expired dedupe records",
			logging.Int("evicted", evicted),
			logging.Int("remaining", len(s.records)))
	}
	return evicted
}

// Clear removes every record and resets counters.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]Record)
	s.admitted = 0
	s.limited = 0
}

func effectiveState(item *product.Item) product.ReleaseState {
	if item == nil {
		return product.StateLive
	}
	if state, ok := product.ParseReleaseState(string(item.ReleaseState)); ok {
		return state
	}
	return product.StateLive
}
