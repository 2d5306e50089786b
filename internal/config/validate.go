package config

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDedupe(); err != nil {
		return err
	}
	if err := c.validateScoring(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDedupe() error {
	if c.Dedupe.RetentionDays <= 0 {
		return errors.New("dedupe.retention_days must be positive")
	}
	if c.Dedupe.LimitedRetentionDays <= c.Dedupe.RetentionDays {
		return errors.New("dedupe.limited_retention_days must exceed dedupe.retention_days")
	}
	if _, err := cron.ParseStandard(c.Dedupe.CleanupSchedule); err != nil {
		return fmt.Errorf("dedupe.cleanup_schedule: %w", err)
	}
	return nil
}

func (c *Config) validateScoring() error {
	if len(c.Scoring.BrandTiers) == 0 {
		return errors.New("scoring.brand_tiers must not be empty")
	}
	for i, tier := range c.Scoring.BrandTiers {
		if tier.Multiplier <= 0 || tier.Multiplier > 1 {
			return fmt.Errorf("scoring.brand_tiers[%d].multiplier must be in (0, 1]", i)
		}
		if len(tier.Brands) == 0 {
			return fmt.Errorf("scoring.brand_tiers[%d].brands must not be empty", i)
		}
	}
	if c.Scoring.DefaultSourceReliability < 0 || c.Scoring.DefaultSourceReliability > 1 {
		return errors.New("scoring.default_source_reliability must be between 0 and 1")
	}
	for source, value := range c.Scoring.SourceReliability {
		if value < 0 || value > 1 {
			return fmt.Errorf("scoring.source_reliability[%s] must be between 0 and 1", source)
		}
	}
	for category, value := range c.Scoring.CategoryMultipliers {
		if value <= 0 {
			return fmt.Errorf("scoring.category_multipliers[%s] must be positive", category)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
