package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// NormalizedCuisine contains the normalized output for a free-text cuisine term.
type NormalizedCuisine struct {
	Key          string
	DisplayName  string
	OriginalTerm string
	Matched      bool
}

// CuisineNormalizer maps free-text cuisine terms ("sushi bar", "shawarma") to a
// canonical cuisine key used by the ranking pipeline.
type CuisineNormalizer struct {
	aliases map[string]string // lowercased alias -> canonical key
	display map[string]string // canonical key -> display name
}

// defaultCuisineAliases covers the common terms the classifier emits. A JSON
// override file can extend or replace entries at startup.
var defaultCuisineAliases = map[string]string{
	"italian": "italian", "pizza": "italian", "pizzeria": "italian", "pasta": "italian",
	"japanese": "japanese", "sushi": "japanese", "ramen": "japanese", "izakaya": "japanese",
	"chinese": "chinese", "dim sum": "chinese", "szechuan": "chinese",
	"mexican": "mexican", "taco": "mexican", "tacos": "mexican", "burrito": "mexican",
	"middle eastern": "middle_eastern", "shawarma": "middle_eastern", "hummus": "middle_eastern",
	"falafel": "middle_eastern", "kebab": "middle_eastern",
	"indian": "indian", "curry": "indian", "tandoori": "indian",
	"thai": "thai", "pad thai": "thai",
	"french": "french", "bistro": "french", "brasserie": "french",
	"american": "american", "burger": "american", "burgers": "american", "bbq": "american",
	"steakhouse": "steakhouse", "steak": "steakhouse", "grill": "steakhouse",
	"seafood": "seafood", "fish": "seafood",
	"vegan": "vegan", "vegetarian": "vegetarian", "salad": "vegetarian",
	"cafe": "cafe", "coffee": "cafe", "brunch": "cafe", "bakery": "cafe",
	"georgian": "georgian", "khachapuri": "georgian",
	"korean": "korean", "korean bbq": "korean",
	"vietnamese": "vietnamese", "pho": "vietnamese",
	"greek": "greek", "mediterranean": "mediterranean",
	"ethiopian": "ethiopian",
	"spanish":   "spanish", "tapas": "spanish",
}

var cuisineDisplayNames = map[string]string{
	"italian": "Italian", "japanese": "Japanese", "chinese": "Chinese",
	"mexican": "Mexican", "middle_eastern": "Middle Eastern", "indian": "Indian",
	"thai": "Thai", "french": "French", "american": "American",
	"steakhouse": "Steakhouse", "seafood": "Seafood", "vegan": "Vegan",
	"vegetarian": "Vegetarian", "cafe": "Cafe", "georgian": "Georgian",
	"korean": "Korean", "vietnamese": "Vietnamese", "greek": "Greek",
	"mediterranean": "Mediterranean", "ethiopian": "Ethiopian", "spanish": "Spanish",
}

// NewCuisineNormalizer creates a normalizer with the built-in alias table.
func NewCuisineNormalizer() *CuisineNormalizer {
	aliases := make(map[string]string, len(defaultCuisineAliases))
	for k, v := range defaultCuisineAliases {
		aliases[k] = v
	}
	display := make(map[string]string, len(cuisineDisplayNames))
	for k, v := range cuisineDisplayNames {
		display[k] = v
	}
	return &CuisineNormalizer{aliases: aliases, display: display}
}

// NewCuisineNormalizerFromFile creates a normalizer extended with aliases from
// a JSON file of the form {"alias": "canonical_key"}.
func NewCuisineNormalizerFromFile(path string) (*CuisineNormalizer, error) {
	n := NewCuisineNormalizer()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cuisine alias file: %w", err)
	}
	var extra map[string]string
	if err := json.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("failed to parse cuisine alias file: %w", err)
	}
	for alias, key := range extra {
		n.aliases[strings.ToLower(strings.TrimSpace(alias))] = strings.ToLower(strings.TrimSpace(key))
	}
	return n, nil
}

// Normalize maps a free-text term to its canonical cuisine key. Unmatched
// terms return Matched=false with an empty key so callers can drop the cuisine
// signal instead of guessing.
func (n *CuisineNormalizer) Normalize(term string) *NormalizedCuisine {
	original := term
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		return &NormalizedCuisine{OriginalTerm: original}
	}

	if key, ok := n.aliases[t]; ok {
		return &NormalizedCuisine{
			Key:          key,
			DisplayName:  n.displayName(key),
			OriginalTerm: original,
			Matched:      true,
		}
	}

	// Try the individual words of a multi-word term, longest word first wins.
	best := ""
	for _, w := range strings.Fields(t) {
		if key, ok := n.aliases[w]; ok {
			if best == "" || len(w) > len(best) {
				best = key
			}
		}
	}
	if best != "" {
		return &NormalizedCuisine{
			Key:          best,
			DisplayName:  n.displayName(best),
			OriginalTerm: original,
			Matched:      true,
		}
	}

	return &NormalizedCuisine{OriginalTerm: original}
}

func (n *CuisineNormalizer) displayName(key string) string {
	if d, ok := n.display[key]; ok {
		return d
	}
	return key
}
