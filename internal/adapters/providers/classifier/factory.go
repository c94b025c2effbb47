package classifier

import (
	"github.com/platefinder/backend/internal/domain/providers"
	"github.com/platefinder/backend/internal/infrastructure/clients/openai"
	"github.com/platefinder/backend/pkg/config"
)

// NewClassifier returns the OpenAI classifier when an API key is configured
// and the keyword heuristic otherwise.
func NewClassifier(cfg *config.OpenAIConfig) (providers.QueryClassifier, error) {
	if cfg == nil || cfg.APIKey == "" {
		return NewHeuristicClassifier(), nil
	}
	return openai.NewClient(cfg)
}
