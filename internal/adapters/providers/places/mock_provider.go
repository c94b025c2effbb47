package places

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/platefinder/backend/internal/domain/entities"
	"github.com/platefinder/backend/internal/domain/providers"
)

const mockPageSize = 20

// MockPlacesProvider returns deterministic fake restaurants for local
// development and integration tests. The same query always yields the
// same results, so the pipeline stays reproducible without an API key.
type MockPlacesProvider struct{}

// NewMockPlacesProvider creates a new mock places provider
func NewMockPlacesProvider() providers.PlacesProvider {
	return &MockPlacesProvider{}
}

var mockCuisines = []struct {
	name string
	key  string
}{
	{"Sushi", "japanese"},
	{"Trattoria", "italian"},
	{"Hummus Bar", "middle_eastern"},
	{"Taqueria", "mexican"},
	{"Bistro", "french"},
	{"Noodle House", "chinese"},
}

// TextSearch resolves a free-text query, optionally biased by location
func (m *MockPlacesProvider) TextSearch(ctx context.Context, query providers.PlacesQuery) (*providers.PlacesPage, error) {
	return m.generatePage(query, 0)
}

// NearbySearch finds restaurants around a coordinate
func (m *MockPlacesProvider) NearbySearch(ctx context.Context, query providers.PlacesQuery) (*providers.PlacesPage, error) {
	if query.Location == nil {
		return nil, fmt.Errorf("nearby search requires a location")
	}
	return m.generatePage(query, 0)
}

// NextPage fetches the continuation of a previous search
func (m *MockPlacesProvider) NextPage(ctx context.Context, token string, language string) (*providers.PlacesPage, error) {
	var seed uint32
	var offset int
	if _, err := fmt.Sscanf(token, "mock:%d:%d", &seed, &offset); err != nil {
		return nil, fmt.Errorf("invalid page token %q", token)
	}
	return buildPage(seed, offset), nil
}

func (m *MockPlacesProvider) generatePage(query providers.PlacesQuery, offset int) (*providers.PlacesPage, error) {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(query.Text))))
	if query.Location != nil {
		fmt.Fprintf(h, "%.2f,%.2f", query.Location.Latitude, query.Location.Longitude)
	}
	return buildPage(h.Sum32(), offset), nil
}

func buildPage(seed uint32, offset int) *providers.PlacesPage {
	baseLat := 32.06 + float64(seed%100)/10000
	baseLng := 34.77 + float64(seed%100)/10000

	page := &providers.PlacesPage{
		Restaurants: make([]*entities.Restaurant, 0, mockPageSize),
	}
	now := time.Now()
	for i := 0; i < mockPageSize; i++ {
		n := offset + i
		cuisine := mockCuisines[(int(seed)+n)%len(mockCuisines)]
		rating := 3.0 + float64((int(seed)+n*7)%21)/10
		reviews := 10 + (int(seed)+n*13)%990
		price := 1 + (int(seed)+n)%4

		open := entities.OpenStatusUnknown
		switch n % 3 {
		case 0:
			open = entities.OpenStatusOpen
		case 1:
			open = entities.OpenStatusClosed
		}

		page.Restaurants = append(page.Restaurants, &entities.Restaurant{
			ID:          fmt.Sprintf("mock-%d-%d", seed, n),
			Name:        fmt.Sprintf("%s %d", cuisine.name, n+1),
			Address:     fmt.Sprintf("%d Dizengoff St", n+1),
			Location:    entities.Location{Latitude: baseLat + float64(n)*0.001, Longitude: baseLng + float64(n)*0.001},
			Rating:      &rating,
			ReviewCount: &reviews,
			PriceLevel:  &price,
			Open:        open,
			Tags:        []string{"restaurant", cuisine.key},
			Kosher:      n%4 == 0,
			GlutenFree:  n%5 == 0,
			FetchedAt:   now,
		})
	}

	// Two pages are enough to exercise pagination.
	if offset == 0 {
		page.NextPageToken = fmt.Sprintf("mock:%d:%d", seed, mockPageSize)
	}
	return page
}
