package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefinder/backend/internal/domain/entities"
	"github.com/platefinder/backend/internal/domain/providers"
)

const textSearchBody = `{
	"status": "OK",
	"next_page_token": "token-2",
	"results": [
		{
			"place_id": "p1",
			"name": "Kosher Sushi Bar",
			"formatted_address": "1 Rothschild Blvd",
			"geometry": {"location": {"lat": 32.06, "lng": 34.77}},
			"rating": 4.5,
			"user_ratings_total": 230,
			"price_level": 2,
			"types": ["restaurant", "food"],
			"opening_hours": {"open_now": true}
		},
		{
			"place_id": "p2",
			"name": "Trattoria",
			"vicinity": "5 Allenby St",
			"geometry": {"location": {"lat": 32.07, "lng": 34.78}},
			"rating": 4.1,
			"user_ratings_total": 88,
			"opening_hours": {"open_now": false}
		},
		{
			"place_id": "p3",
			"name": "Noodle House",
			"geometry": {"location": {"lat": 32.08, "lng": 34.79}}
		}
	]
}`

func newTestGoogleProvider(serverURL string) providers.PlacesProvider {
	return NewGooglePlacesProvider("test-key", GoogleProviderOptions{
		TextSearchURL:   serverURL + "/textsearch",
		NearbySearchURL: serverURL + "/nearbysearch",
		HTTPClient:      http.DefaultClient,
		RateLimitRPS:    1000,
		RateLimitBurst:  1000,
	})
}

func TestGoogleTextSearch_MapsResults(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "he", r.URL.Query().Get("language"))
		w.Write([]byte(textSearchBody))
	}))
	defer server.Close()

	provider := newTestGoogleProvider(server.URL)
	page, err := provider.TextSearch(context.Background(), providers.PlacesQuery{
		Text:     "sushi tel aviv",
		Language: "he",
	})
	require.NoError(t, err)
	assert.Equal(t, "sushi tel aviv", gotQuery)
	assert.Equal(t, "token-2", page.NextPageToken)
	require.Len(t, page.Restaurants, 3)

	first := page.Restaurants[0]
	assert.Equal(t, "p1", first.ID)
	assert.Equal(t, "1 Rothschild Blvd", first.Address)
	assert.Equal(t, entities.OpenStatusOpen, first.Open)
	assert.True(t, first.Kosher)
	require.NotNil(t, first.Rating)
	assert.Equal(t, 4.5, *first.Rating)
	require.NotNil(t, first.PriceLevel)
	assert.Equal(t, 2, *first.PriceLevel)

	second := page.Restaurants[1]
	assert.Equal(t, "5 Allenby St", second.Address)
	assert.Equal(t, entities.OpenStatusClosed, second.Open)
	assert.False(t, second.Kosher)

	third := page.Restaurants[2]
	assert.Equal(t, entities.OpenStatusUnknown, third.Open)
	assert.Nil(t, third.Rating)
	assert.Nil(t, third.ReviewCount)
	assert.Nil(t, third.PriceLevel)
}

func TestGoogleNearbySearch_RequiresLocation(t *testing.T) {
	provider := newTestGoogleProvider("http://unused")
	_, err := provider.NearbySearch(context.Background(), providers.PlacesQuery{Text: "pizza"})
	assert.Error(t, err)
}

func TestGoogleNearbySearch_SendsLocationAndType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "restaurant", q.Get("type"))
		assert.Equal(t, "pizza", q.Get("keyword"))
		assert.NotEmpty(t, q.Get("location"))
		assert.Equal(t, "3000", q.Get("radius"))
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer server.Close()

	provider := newTestGoogleProvider(server.URL)
	page, err := provider.NearbySearch(context.Background(), providers.PlacesQuery{
		Text:     "pizza",
		Location: &entities.Location{Latitude: 32.06, Longitude: 34.77},
	})
	require.NoError(t, err)
	assert.Empty(t, page.Restaurants)
	assert.Empty(t, page.NextPageToken)
}

func TestGoogleSearch_APIErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "bad key", "results": []}`))
	}))
	defer server.Close()

	provider := newTestGoogleProvider(server.URL)
	_, err := provider.TextSearch(context.Background(), providers.PlacesQuery{Text: "sushi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestGoogleNextPage_SendsToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token-2", r.URL.Query().Get("pagetoken"))
		w.Write([]byte(`{"status": "OK", "results": []}`))
	}))
	defer server.Close()

	provider := newTestGoogleProvider(server.URL)
	_, err := provider.NextPage(context.Background(), "token-2", "en")
	require.NoError(t, err)
}

func TestMockProvider_Deterministic(t *testing.T) {
	provider := NewMockPlacesProvider()
	query := providers.PlacesQuery{Text: "Sushi "}

	a, err := provider.TextSearch(context.Background(), query)
	require.NoError(t, err)
	b, err := provider.TextSearch(context.Background(), providers.PlacesQuery{Text: "sushi"})
	require.NoError(t, err)

	require.Len(t, a.Restaurants, mockPageSize)
	assert.Equal(t, a.Restaurants[0].ID, b.Restaurants[0].ID)
	assert.NotEmpty(t, a.NextPageToken)

	next, err := provider.NextPage(context.Background(), a.NextPageToken, "en")
	require.NoError(t, err)
	assert.NotEqual(t, a.Restaurants[0].ID, next.Restaurants[0].ID)
	assert.Empty(t, next.NextPageToken)
}
