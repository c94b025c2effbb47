package entities

import "time"

// SearchRoute identifies which provider lookup strategy a query resolved to.
type SearchRoute string

const (
	RouteTextSearch SearchRoute = "TEXTSEARCH"
	RouteNearby     SearchRoute = "NEARBY"
	RouteLandmark   SearchRoute = "LANDMARK"
)

// SearchContext is one point-in-time snapshot of resolved search parameters.
// The requery engine compares consecutive snapshots by value; nothing in the
// pipeline mutates a snapshot after it is built.
type SearchContext struct {
	Query           string      `json:"query"`
	Route           SearchRoute `json:"route"`
	UserLocation    *Location   `json:"user_location,omitempty"`
	CityText        string      `json:"city_text,omitempty"`
	RegionCode      string      `json:"region_code,omitempty"`
	RadiusMeters    *float64    `json:"radius_meters,omitempty"`
	OpenNow         *bool       `json:"open_now,omitempty"`
	PriceIntent     *int        `json:"price_intent,omitempty"`
	MinRatingBucket *float64    `json:"min_rating_bucket,omitempty"`
	Kosher          *bool       `json:"kosher,omitempty"`
	GlutenFree      *bool       `json:"gluten_free,omitempty"`
	CuisineKey      string      `json:"cuisine_key,omitempty"`
}

// PoolStats is a snapshot of how many externally-fetched candidates survive
// local filtering.
type PoolStats struct {
	TotalCandidates  int `json:"total_candidates"`
	AfterSoftFilters int `json:"after_soft_filters"`
	RequestedLimit   int `json:"requested_limit"`
}

// OpenWindow is an opening-hours range constraint.
type OpenWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// FinalFilters is the relaxable subset of the search context. The relaxation
// engine nulls at most one field per call and always returns a fresh value.
type FinalFilters struct {
	OpenState       *bool       `json:"open_state,omitempty"` // open-now constraint
	OpenAt          *time.Time  `json:"open_at,omitempty"`
	OpenBetween     *OpenWindow `json:"open_between,omitempty"`
	Kosher          *bool       `json:"kosher,omitempty"`
	GlutenFree      *bool       `json:"gluten_free,omitempty"`
	MinRatingBucket *float64    `json:"min_rating_bucket,omitempty"`
}

// Clone returns a copy of the filters. Pointer fields are reassigned, never
// mutated through, so a shallow copy is sufficient for relaxation steps.
func (f FinalFilters) Clone() FinalFilters {
	return f
}
