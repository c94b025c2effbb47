package places

import (
	"fmt"

	"github.com/platefinder/backend/internal/domain/providers"
	"github.com/platefinder/backend/pkg/config"
)

// NewProvider selects a places provider implementation from config.
func NewProvider(cfg config.PlacesConfig) (providers.PlacesProvider, error) {
	switch cfg.Provider {
	case "google":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("google places provider requires PLACES_API_KEY")
		}
		return NewGooglePlacesProvider(cfg.APIKey, GoogleProviderOptions{
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
		}), nil
	case "mock", "":
		return NewMockPlacesProvider(), nil
	default:
		return nil, fmt.Errorf("unknown places provider %q", cfg.Provider)
	}
}
