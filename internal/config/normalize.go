package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeDedupe(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeScoring()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDedupe() error {
	if c.Dedupe.RetentionDays == 0 {
		c.Dedupe.RetentionDays = defaultRetentionDays
	}
	if c.Dedupe.LimitedRetentionDays == 0 {
		c.Dedupe.LimitedRetentionDays = defaultLimitedRetentionDays
	}
	if strings.TrimSpace(c.Dedupe.CleanupSchedule) == "" {
		c.Dedupe.CleanupSchedule = defaultCleanupSchedule
	}
	if strings.TrimSpace(c.Dedupe.SnapshotPath) == "" {
		c.Dedupe.SnapshotPath = filepath.Join(c.Paths.StateDir, "dedupe.json")
		return nil
	}
	var err error
	if c.Dedupe.SnapshotPath, err = expandPath(c.Dedupe.SnapshotPath); err != nil {
		return fmt.Errorf("dedupe.snapshot_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// normalizeScoring lowercases every lookup key so scorer lookups stay
// case-insensitive without re-normalizing on each call.
func (c *Config) normalizeScoring() {
	for i, tier := range c.Scoring.BrandTiers {
		c.Scoring.BrandTiers[i].Brands = lowerAll(tier.Brands)
	}
	c.Scoring.ScarcityKeywords = lowerAll(c.Scoring.ScarcityKeywords)
	c.Scoring.TransitionKeywords = lowerAll(c.Scoring.TransitionKeywords)
	c.Scoring.StorefrontSources = lowerAll(c.Scoring.StorefrontSources)
	c.Scoring.SourceReliability = lowerKeys(c.Scoring.SourceReliability)
	c.Scoring.CategoryMultipliers = lowerKeys(c.Scoring.CategoryMultipliers)
	if c.Scoring.DefaultSourceReliability == 0 {
		c.Scoring.DefaultSourceReliability = defaultSourceReliability
	}
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.ToLower(strings.TrimSpace(value))
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func lowerKeys(table map[string]float64) map[string]float64 {
	if table == nil {
		return nil
	}
	out := make(map[string]float64, len(table))
	for key, value := range table {
		trimmed := strings.ToLower(strings.TrimSpace(key))
		if trimmed == "" {
			continue
		}
		out[trimmed] = value
	}
	return out
}
