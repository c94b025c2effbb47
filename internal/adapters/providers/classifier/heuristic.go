package classifier

import (
	"context"
	"strings"
	"unicode"

	"github.com/platefinder/backend/internal/domain/entities"
	"github.com/platefinder/backend/internal/domain/providers"
)

// HeuristicClassifier is a keyword-based fallback used when no OpenAI key is
// configured. It is deliberately conservative: it only flags intents it can
// match literally and reports low confidence for language detection by script.
type HeuristicClassifier struct{}

// NewHeuristicClassifier creates a new heuristic classifier
func NewHeuristicClassifier() providers.QueryClassifier {
	return &HeuristicClassifier{}
}

var proximityTerms = []string{"near me", "nearby", "around me", "close by", "walking distance", "לידי", "בסביבה", "рядом"}
var budgetTerms = []string{"cheap", "affordable", "budget", "inexpensive", "זול", "дешев"}
var qualityTerms = []string{"best", "top rated", "top-rated", "great", "הכי טוב", "лучш"}
var openNowTerms = []string{"open now", "open late", "still open", "פתוח עכשיו", "открыт"}
var kosherTerms = []string{"kosher", "כשר", "кошер"}
var glutenFreeTerms = []string{"gluten free", "gluten-free", "ללא גלוטן", "без глютена"}

// Classify extracts structured signals from a raw user query
func (h *HeuristicClassifier) Classify(ctx context.Context, query string, hints providers.ClassificationHints) (*providers.QuerySignals, error) {
	lowered := strings.ToLower(strings.TrimSpace(query))

	signals := &providers.QuerySignals{
		Route:            entities.RouteTextSearch,
		ProximityIntent:  containsAny(lowered, proximityTerms),
		BudgetIntent:     containsAny(lowered, budgetTerms),
		QualityIntent:    containsAny(lowered, qualityTerms),
		OpenNowRequested: containsAny(lowered, openNowTerms),
		Kosher:           containsAny(lowered, kosherTerms),
		GlutenFree:       containsAny(lowered, glutenFreeTerms),
	}

	if signals.ProximityIntent && hints.HasLocation {
		signals.Route = entities.RouteNearby
	}
	if signals.QualityIntent {
		bucket := 4.0
		signals.MinRatingBucket = &bucket
	}
	if signals.BudgetIntent {
		price := 2
		signals.PriceIntent = &price
	}

	signals.DetectedLanguage, signals.LanguageConfidence = detectByScript(query)
	return signals, nil
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// detectByScript guesses the query language from its dominant script. Latin
// text defaults to English with low confidence since the script alone cannot
// distinguish Latin-alphabet languages.
func detectByScript(text string) (string, float64) {
	var hebrew, arabic, cyrillic, latin int
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Hebrew, r):
			hebrew++
		case unicode.Is(unicode.Arabic, r):
			arabic++
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}

	switch {
	case hebrew > latin && hebrew >= arabic && hebrew >= cyrillic:
		return "he", 0.9
	case arabic > latin && arabic >= cyrillic:
		return "ar", 0.9
	case cyrillic > latin:
		return "ru", 0.7
	default:
		return "en", 0.5
	}
}
