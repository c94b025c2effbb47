package providers

import (
	"context"

	"github.com/platefinder/backend/internal/domain/entities"
)

// QuerySignals is the structured output of the classification stage.
type QuerySignals struct {
	Route              entities.SearchRoute `json:"route"`
	CuisineTerm        string               `json:"cuisine_term,omitempty"`
	CityText           string               `json:"city_text,omitempty"`
	Landmark           string               `json:"landmark,omitempty"`
	DetectedLanguage   string               `json:"detected_language"`
	LanguageConfidence float64              `json:"language_confidence"`

	ProximityIntent  bool `json:"proximity_intent"`
	BudgetIntent     bool `json:"budget_intent"`
	QualityIntent    bool `json:"quality_intent"`
	OpenNowRequested bool `json:"open_now_requested"`

	PriceIntent     *int     `json:"price_intent,omitempty"`
	MinRatingBucket *float64 `json:"min_rating_bucket,omitempty"`
	Kosher          bool     `json:"kosher"`
	GlutenFree      bool     `json:"gluten_free"`
}

// ClassificationHints carries request-side context that helps classification.
type ClassificationHints struct {
	SessionID    string
	RegionCode   string
	HasLocation  bool
	PreviousText string
}

// QueryClassifier defines the interface for the classification/intent stage
type QueryClassifier interface {
	// Classify extracts structured signals from a raw user query
	Classify(ctx context.Context, query string, hints ClassificationHints) (*QuerySignals, error)
}
