package testsupport

import (
	"testing"
	"time"

	"dropwatch/internal/config"
	"dropwatch/internal/dedupe"
	"dropwatch/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg, nil)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewDedupeStore builds a dedupe store using the config's retention windows.
func NewDedupeStore(t testing.TB, cfg *config.Config) *dedupe.Store {
	t.Helper()

	return dedupe.NewStore(dedupe.Retention{
		Standard: time.Duration(cfg.Dedupe.RetentionDays) * 24 * time.Hour,
		Limited:  time.Duration(cfg.Dedupe.LimitedRetentionDays) * 24 * time.Hour,
	}, nil)
}
