package entities

import "time"

// OpenStatus is the tri-state opening signal reported by the places provider.
type OpenStatus string

const (
	OpenStatusOpen    OpenStatus = "open"
	OpenStatusClosed  OpenStatus = "closed"
	OpenStatusUnknown OpenStatus = "unknown"
)

// Location represents geographical coordinates
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// IsZero reports whether the location carries no coordinates. Providers that
// return a result without geometry leave the zero value, which must not be
// scored as a real point in the Gulf of Guinea.
func (l Location) IsZero() bool {
	return l.Latitude == 0 && l.Longitude == 0
}

// Restaurant represents one externally-fetched restaurant candidate.
type Restaurant struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Address      string     `json:"address"`
	Location     Location   `json:"location"`
	Rating       *float64   `json:"rating,omitempty"`
	ReviewCount  *int       `json:"review_count,omitempty"`
	PriceLevel   *int       `json:"price_level,omitempty"`
	Open         OpenStatus `json:"open"`
	CuisineKeys  []string   `json:"cuisine_keys,omitempty"`
	CuisineScore *float64   `json:"cuisine_score,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	Kosher       bool       `json:"kosher,omitempty"`
	GlutenFree   bool       `json:"gluten_free,omitempty"`
	FetchedAt    time.Time  `json:"fetched_at"`
}

// HasCuisine reports whether the restaurant carries the given cuisine key.
func (r *Restaurant) HasCuisine(key string) bool {
	for _, k := range r.CuisineKeys {
		if k == key {
			return true
		}
	}
	return false
}
