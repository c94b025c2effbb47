package services

import (
	"os"
)

type FeatureFlags struct {
	weightStrategy     string
	analyticsDisabled  bool
	paginationDisabled bool
}

func NewFeatureFlags() *FeatureFlags {
	strategy := StrategyRuleDelta
	if os.Getenv("FEATURE_WEIGHT_STRATEGY") == StrategyProfileTable {
		strategy = StrategyProfileTable
	}

	return &FeatureFlags{
		weightStrategy:     strategy,
		analyticsDisabled:  os.Getenv("FEATURE_SEARCH_ANALYTICS_DISABLED") == "true",
		paginationDisabled: os.Getenv("FEATURE_PLACES_PAGINATION_DISABLED") == "true",
	}
}

func (f *FeatureFlags) WeightStrategy() string {
	return f.weightStrategy
}

func (f *FeatureFlags) AnalyticsDisabled() bool {
	return f.analyticsDisabled
}

func (f *FeatureFlags) PaginationDisabled() bool {
	return f.paginationDisabled
}
