package config

const (
	defaultStateDir             = "~/.local/share/dropwatch"
	defaultLogDir               = "~/.local/share/dropwatch/logs"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultRetentionDays        = 7
	defaultLimitedRetentionDays = 21
	defaultCleanupSchedule      = "@hourly"
	defaultSourceReliability    = 0.5
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Dedupe: Dedupe{
			RetentionDays:        defaultRetentionDays,
			LimitedRetentionDays: defaultLimitedRetentionDays,
			CleanupSchedule:      defaultCleanupSchedule,
		},
		Scoring: Scoring{
			BrandTiers:               defaultBrandTiers(),
			ScarcityKeywords:         defaultScarcityKeywords(),
			TransitionKeywords:       defaultTransitionKeywords(),
			SourceReliability:        defaultSourceReliabilityTable(),
			DefaultSourceReliability: defaultSourceReliability,
			CategoryMultipliers:      defaultCategoryMultipliers(),
			StorefrontSources:        defaultStorefrontSources(),
		},
	}
}

// defaultBrandTiers returns the curated brand tiers, highest hype first.
func defaultBrandTiers() []BrandTier {
	return []BrandTier{
		{
			Multiplier: 1.0,
			Brands: []string{
				"nike", "jordan", "supreme", "yeezy",
				"playstation", "xbox", "nintendo", "nvidia", "apple",
			},
		},
		{
			Multiplier: 0.8,
			Brands: []string{
				"adidas", "new balance", "lego", "sony", "amd",
				"pokemon", "bape", "off-white",
			},
		},
		{
			Multiplier: 0.6,
			Brands: []string{
				"puma", "reebok", "asics", "vans", "converse",
				"samsung", "razer", "funko",
			},
		},
	}
}

func defaultScarcityKeywords() []string {
	return []string{
		"limited", "exclusive", "rare", "numbered",
		"sold out", "last chance", "while supplies last",
	}
}

func defaultTransitionKeywords() []string {
	return []string{
		"now live", "just dropped", "available now", "in stock now",
		"on sale now", "live now",
	}
}

func defaultSourceReliabilityTable() map[string]float64 {
	return map[string]float64{
		"twitter": 0.9,
		"reddit":  0.8,
		"rss":     0.7,
		"amazon":  0.85,
		"shopify": 0.75,
	}
}

func defaultCategoryMultipliers() map[string]float64 {
	return map[string]float64{
		"sneakers":     1.8,
		"electronics":  2.2,
		"collectibles": 1.6,
	}
}

func defaultStorefrontSources() []string {
	return []string{"amazon", "shopify", "bestbuy", "walmart", "target"}
}
