package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/platefinder/backend/internal/domain/entities"
	"github.com/platefinder/backend/internal/domain/providers"
)

const (
	googleTextSearchURL   = "https://maps.googleapis.com/maps/api/place/textsearch/json"
	googleNearbySearchURL = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"
	defaultHTTPTimeout    = 8 * time.Second
	defaultRadiusMeters   = 3000
)

// GooglePlacesProvider implements PlacesProvider against the Google Places
// Web Service. Calls go through a rate limiter and a circuit breaker so a
// degraded upstream sheds load instead of stacking timeouts.
type GooglePlacesProvider struct {
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	textURL    string
	nearbyURL  string
}

// GoogleProviderOptions overrides defaults, mainly for tests.
type GoogleProviderOptions struct {
	TextSearchURL   string
	NearbySearchURL string
	HTTPClient      *http.Client
	RateLimitRPS    float64
	RateLimitBurst  int
}

// NewGooglePlacesProvider creates a new Google places provider
func NewGooglePlacesProvider(apiKey string, opts GoogleProviderOptions) providers.PlacesProvider {
	if opts.TextSearchURL == "" {
		opts.TextSearchURL = googleTextSearchURL
	}
	if opts.NearbySearchURL == "" {
		opts.NearbySearchURL = googleNearbySearchURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = 10
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 20
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "google-places",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &GooglePlacesProvider{
		apiKey:     apiKey,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimitRPS), opts.RateLimitBurst),
		breaker:    breaker,
		textURL:    opts.TextSearchURL,
		nearbyURL:  opts.NearbySearchURL,
	}
}

type googlePlacesResponse struct {
	Results       []googlePlaceResult `json:"results"`
	NextPageToken string              `json:"next_page_token"`
	Status        string              `json:"status"`
	ErrorMessage  string              `json:"error_message"`
}

type googlePlaceResult struct {
	PlaceID          string `json:"place_id"`
	Name             string `json:"name"`
	FormattedAddress string `json:"formatted_address"`
	Vicinity         string `json:"vicinity"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	PriceLevel       *int     `json:"price_level"`
	Types            []string `json:"types"`
	OpeningHours     *struct {
		OpenNow *bool `json:"open_now"`
	} `json:"opening_hours"`
}

// TextSearch resolves a free-text query, optionally biased by location
func (g *GooglePlacesProvider) TextSearch(ctx context.Context, query providers.PlacesQuery) (*providers.PlacesPage, error) {
	params := url.Values{}
	params.Set("query", query.Text)
	if query.Language != "" {
		params.Set("language", query.Language)
	}
	if query.Region != "" {
		params.Set("region", strings.ToLower(query.Region))
	}
	if query.Location != nil {
		params.Set("location", fmt.Sprintf("%f,%f", query.Location.Latitude, query.Location.Longitude))
		params.Set("radius", fmt.Sprintf("%d", radiusOrDefault(query.RadiusMeters)))
	}
	if query.OpenNow {
		params.Set("opennow", "true")
	}

	return g.doSearch(ctx, g.textURL, params)
}

// NearbySearch finds restaurants around a coordinate
func (g *GooglePlacesProvider) NearbySearch(ctx context.Context, query providers.PlacesQuery) (*providers.PlacesPage, error) {
	if query.Location == nil {
		return nil, fmt.Errorf("nearby search requires a location")
	}

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", query.Location.Latitude, query.Location.Longitude))
	params.Set("radius", fmt.Sprintf("%d", radiusOrDefault(query.RadiusMeters)))
	params.Set("type", "restaurant")
	if query.Text != "" {
		params.Set("keyword", query.Text)
	}
	if query.Language != "" {
		params.Set("language", query.Language)
	}
	if query.OpenNow {
		params.Set("opennow", "true")
	}

	return g.doSearch(ctx, g.nearbyURL, params)
}

// NextPage fetches the continuation of a previous search
func (g *GooglePlacesProvider) NextPage(ctx context.Context, token string, language string) (*providers.PlacesPage, error) {
	params := url.Values{}
	params.Set("pagetoken", token)
	if language != "" {
		params.Set("language", language)
	}
	return g.doSearch(ctx, g.textURL, params)
}

func (g *GooglePlacesProvider) doSearch(ctx context.Context, baseURL string, params url.Values) (*providers.PlacesPage, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params.Set("key", g.apiKey)
	requestURL := baseURL + "?" + params.Encode()

	body, err := g.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := g.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("places API returned status %d", resp.StatusCode)
		}

		var decoded googlePlacesResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return nil, fmt.Errorf("failed to decode places response: %w", err)
		}
		return &decoded, nil
	})
	if err != nil {
		return nil, err
	}

	decoded := body.(*googlePlacesResponse)
	switch decoded.Status {
	case "OK", "ZERO_RESULTS":
	default:
		return nil, fmt.Errorf("places API status %s: %s", decoded.Status, decoded.ErrorMessage)
	}

	page := &providers.PlacesPage{
		Restaurants:   make([]*entities.Restaurant, 0, len(decoded.Results)),
		NextPageToken: decoded.NextPageToken,
	}
	now := time.Now()
	for _, result := range decoded.Results {
		page.Restaurants = append(page.Restaurants, mapPlaceResult(result, now))
	}
	return page, nil
}

func mapPlaceResult(result googlePlaceResult, fetchedAt time.Time) *entities.Restaurant {
	r := &entities.Restaurant{
		ID:      result.PlaceID,
		Name:    result.Name,
		Address: result.FormattedAddress,
		Location: entities.Location{
			Latitude:  result.Geometry.Location.Lat,
			Longitude: result.Geometry.Location.Lng,
		},
		Open:      entities.OpenStatusUnknown,
		Tags:      result.Types,
		FetchedAt: fetchedAt,
	}
	if r.Address == "" {
		r.Address = result.Vicinity
	}

	if result.Rating > 0 {
		rating := result.Rating
		r.Rating = &rating
	}
	if result.UserRatingsTotal > 0 {
		reviews := result.UserRatingsTotal
		r.ReviewCount = &reviews
	}
	r.PriceLevel = result.PriceLevel

	if result.OpeningHours != nil && result.OpeningHours.OpenNow != nil {
		if *result.OpeningHours.OpenNow {
			r.Open = entities.OpenStatusOpen
		} else {
			r.Open = entities.OpenStatusClosed
		}
	}

	// Google has no first-class dietary attributes; name is the only signal.
	lowered := strings.ToLower(result.Name)
	r.Kosher = strings.Contains(lowered, "kosher")
	r.GlutenFree = strings.Contains(lowered, "gluten free") || strings.Contains(lowered, "gluten-free")

	return r
}

func radiusOrDefault(radius float64) int {
	if radius <= 0 {
		return defaultRadiusMeters
	}
	return int(radius)
}
