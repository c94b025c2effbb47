package search

import (
	"testing"
	"time"

	"github.com/platefinder/backend/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool        { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestBuildFilterBy_SessionOnly(t *testing.T) {
	got := buildFilterBy("s1", entities.FinalFilters{})
	assert.Equal(t, "session_id:=s1", got)
}

func TestBuildFilterBy_AllFilters(t *testing.T) {
	filters := entities.FinalFilters{
		OpenState:       boolPtr(true),
		Kosher:          boolPtr(true),
		GlutenFree:      boolPtr(true),
		MinRatingBucket: floatPtr(4.0),
	}

	got := buildFilterBy("s1", filters)

	assert.Equal(t, "session_id:=s1 && open:=open && kosher:=true && gluten_free:=true && rating:>=4", got)
}

func TestBuildFilterBy_OpenWindowExcludesClosed(t *testing.T) {
	at := time.Date(2026, 8, 28, 19, 0, 0, 0, time.UTC)
	got := buildFilterBy("s1", entities.FinalFilters{OpenAt: &at})
	assert.Equal(t, "session_id:=s1 && open:!=closed", got)
}

func TestBuildFilterBy_FalseDietaryFlagsAddNoClause(t *testing.T) {
	filters := entities.FinalFilters{
		Kosher:     boolPtr(false),
		GlutenFree: boolPtr(false),
	}
	got := buildFilterBy("s1", filters)
	assert.Equal(t, "session_id:=s1", got)
}

func TestDocumentRoundTrip(t *testing.T) {
	rating := 4.5
	reviews := 120
	price := 2
	score := 0.8
	original := &entities.Restaurant{
		ID:           "r1",
		Name:         "Falafel House",
		Address:      "12 Allenby St",
		Location:     entities.Location{Latitude: 32.0853, Longitude: 34.7818},
		Rating:       &rating,
		ReviewCount:  &reviews,
		PriceLevel:   &price,
		Open:         entities.OpenStatusOpen,
		CuisineKeys:  []string{"middle_eastern"},
		CuisineScore: &score,
		Tags:         []string{"vegan_options"},
		Kosher:       true,
		FetchedAt:    time.Unix(1756300000, 0),
	}

	doc := buildDocument("s1", 3, original)
	assert.Equal(t, "s1:r1", doc["id"])
	assert.Equal(t, 3, doc["position"])

	// Typesense hands numbers back as float64.
	doc["review_count"] = float64(reviews)
	doc["price_level"] = float64(price)
	doc["fetched_at"] = float64(1756300000)
	doc["location"] = []interface{}{32.0853, 34.7818}
	doc["cuisine_keys"] = []interface{}{"middle_eastern"}
	doc["tags"] = []interface{}{"vegan_options"}

	parsed := parseDocument(doc)

	assert.Equal(t, "r1", parsed.ID)
	assert.Equal(t, original.Name, parsed.Name)
	assert.Equal(t, original.Address, parsed.Address)
	assert.Equal(t, original.Location, parsed.Location)
	require.NotNil(t, parsed.Rating)
	assert.Equal(t, rating, *parsed.Rating)
	require.NotNil(t, parsed.ReviewCount)
	assert.Equal(t, reviews, *parsed.ReviewCount)
	assert.Equal(t, entities.OpenStatusOpen, parsed.Open)
	assert.Equal(t, []string{"middle_eastern"}, parsed.CuisineKeys)
	assert.True(t, parsed.Kosher)
	assert.False(t, parsed.GlutenFree)
	assert.Equal(t, original.FetchedAt, parsed.FetchedAt)
}

func TestParseDocument_MissingOptionalFields(t *testing.T) {
	parsed := parseDocument(map[string]interface{}{
		"id":         "s1:r2",
		"name":       "Mystery Diner",
		"session_id": "s1",
	})

	assert.Equal(t, "r2", parsed.ID)
	assert.Nil(t, parsed.Rating)
	assert.Nil(t, parsed.ReviewCount)
	assert.Equal(t, entities.OpenStatusUnknown, parsed.Open)
}
