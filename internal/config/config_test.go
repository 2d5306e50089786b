package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %s, got %s", path, resolved)
	}
	if cfg.Dedupe.RetentionDays != defaultRetentionDays {
		t.Fatalf("expected default retention, got %d", cfg.Dedupe.RetentionDays)
	}
	if cfg.Dedupe.LimitedRetentionDays != defaultLimitedRetentionDays {
		t.Fatalf("expected default limited retention, got %d", cfg.Dedupe.LimitedRetentionDays)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
state_dir = "` + dir + `/state"

[dedupe]
retention_days = 3
limited_retention_days = 30

[scoring.source_reliability]
Twitter = 0.95
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Dedupe.RetentionDays != 3 || cfg.Dedupe.LimitedRetentionDays != 30 {
		t.Fatalf("unexpected retention values: %+v", cfg.Dedupe)
	}
	if cfg.Dedupe.SnapshotPath != filepath.Join(dir, "state", "dedupe.json") {
		t.Fatalf("unexpected snapshot path: %s", cfg.Dedupe.SnapshotPath)
	}
	if got := cfg.Scoring.SourceReliability["twitter"]; got != 0.95 {
		t.Fatalf("expected lowercased reliability key, got %v", cfg.Scoring.SourceReliability)
	}
}

func TestValidateRejectsShortLimitedRetention(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	cfg.Dedupe.LimitedRetentionDays = cfg.Dedupe.RetentionDays
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error when limited retention does not exceed standard")
	}
}

func TestValidateRejectsBadCron(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	cfg.Dedupe.CleanupSchedule = "not a cron spec"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for invalid cron expression")
	}
}

func TestValidateRejectsBadBrandTier(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	cfg.Scoring.BrandTiers[0].Multiplier = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for out-of-range tier multiplier")
	}
}

func TestSampleConfigParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.toml")
	written, err := WriteSample(path)
	if err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if written != path {
		t.Fatalf("unexpected written path: %s", written)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load of sample failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if len(cfg.Scoring.BrandTiers) != 3 {
		t.Fatalf("expected 3 brand tiers, got %d", len(cfg.Scoring.BrandTiers))
	}

	if _, err := WriteSample(path); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected overwrite refusal, got %v", err)
	}
}
