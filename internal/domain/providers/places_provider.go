package providers

import (
	"context"

	"github.com/platefinder/backend/internal/domain/entities"
)

// PlacesQuery describes one lookup against the external places provider.
type PlacesQuery struct {
	Text         string
	Language     string
	Region       string
	Location     *entities.Location
	RadiusMeters float64
	OpenNow      bool
	Limit        int
}

// PlacesPage is one page of provider results plus the continuation token.
type PlacesPage struct {
	Restaurants   []*entities.Restaurant
	NextPageToken string
}

// PlacesProvider defines the interface for external restaurant lookups
type PlacesProvider interface {
	// TextSearch resolves a free-text query, optionally biased by location
	TextSearch(ctx context.Context, query PlacesQuery) (*PlacesPage, error)

	// NearbySearch finds restaurants around a coordinate
	NearbySearch(ctx context.Context, query PlacesQuery) (*PlacesPage, error)

	// NextPage fetches the continuation of a previous search
	NextPage(ctx context.Context, token string, language string) (*PlacesPage, error)
}
