package openai

import (
	"encoding/json"
	"fmt"

	"github.com/platefinder/backend/internal/domain/providers"
)

const classifySystemPrompt = `You classify restaurant search queries. Return ONLY valid JSON with this schema:
{
  "route": "TEXTSEARCH" | "NEARBY" | "LANDMARK",
  "cuisine_term": string (cuisine mentioned in the query, in the query's language, or ""),
  "city_text": string (city or neighborhood mentioned, or ""),
  "landmark": string (named landmark to search around, or ""),
  "detected_language": string (BCP 47 code of the query language, e.g. "he", "en", "ru"),
  "language_confidence": number (0..1),
  "proximity_intent": bool ("near me", "nearby", "walking distance"),
  "budget_intent": bool ("cheap", "affordable", low price words),
  "quality_intent": bool ("best", "top rated", quality words),
  "open_now_requested": bool ("open now", "open late"),
  "price_intent": int 1-4 or null,
  "min_rating_bucket": number (4 or 4.5) or null,
  "kosher": bool,
  "gluten_free": bool
}
Use NEARBY only when the query is about the user's own surroundings. Use LANDMARK when the query names a specific place to search around. Otherwise use TEXTSEARCH. Never invent a cuisine or city the query does not contain.`

func buildClassifyUserPrompt(query string, hints providers.ClassificationHints) string {
	return fmt.Sprintf(
		"Query: %s\nRegion: %s\nDevice location available: %t\nPrevious query: %s\n",
		query, hints.RegionCode, hints.HasLocation, hints.PreviousText,
	)
}

func parseSignalsPayload(data []byte) (*providers.QuerySignals, error) {
	var signals providers.QuerySignals
	if err := json.Unmarshal(data, &signals); err != nil {
		return nil, fmt.Errorf("failed to parse classification payload: %w", err)
	}
	return &signals, nil
}
