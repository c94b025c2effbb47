package services

import (
	"github.com/platefinder/backend/internal/domain/entities"
	"github.com/platefinder/backend/pkg/utils"
)

// Requery decision reasons, checked in order; first match wins.
const (
	RequeryReasonFirstRequest  = "first_request"
	RequeryReasonQueryChanged  = "query_changed"
	RequeryReasonRouteChanged  = "route_changed"
	RequeryReasonLocation      = "location_anchor_changed"
	RequeryReasonRadius        = "radius_changed_significantly"
	RequeryReasonPoolExhausted = "pool_exhausted_after_filters"
	RequeryReasonSoftFilters   = "soft_filters_only"
	RequeryReasonNoChanges     = "no_changes_detected"
)

// RequeryConfig holds the thresholds for requery decisions.
type RequeryConfig struct {
	// LocationDriftMeters is how far user coordinates may move before the
	// location anchor counts as changed.
	LocationDriftMeters float64

	// RadiusGrowthRatio is the relative radius increase that forces a fresh
	// provider call (0.5 means +50%).
	RadiusGrowthRatio float64

	// PoolFloor is the smallest post-filter candidate pool worth re-filtering
	// locally; anything at or below forces a provider call.
	PoolFloor int
}

// ContextChangeset names what differed between two context snapshots.
type ContextChangeset struct {
	SoftFilters []string `json:"soft_filters,omitempty"`
}

// RequeryDecision is the outcome of comparing two search-context snapshots.
type RequeryDecision struct {
	DoProvider bool
	Reason     string
	Changeset  *ContextChangeset
}

// RequeryService decides whether a fresh places-provider lookup is needed or
// the cached candidate pool can simply be re-filtered. Pure value comparison
// over the two snapshots; no network or store access.
type RequeryService struct {
	cfg RequeryConfig
}

// NewRequeryService creates a new requery service
func NewRequeryService(cfg RequeryConfig) *RequeryService {
	return &RequeryService{cfg: cfg}
}

// Evaluate applies the ordered decision rules to prev/next snapshots plus the
// current candidate-pool statistics.
func (s *RequeryService) Evaluate(prev *entities.SearchContext, next entities.SearchContext, pool *entities.PoolStats) RequeryDecision {
	if prev == nil {
		return RequeryDecision{DoProvider: true, Reason: RequeryReasonFirstRequest}
	}

	if prev.Query != next.Query {
		return RequeryDecision{DoProvider: true, Reason: RequeryReasonQueryChanged}
	}

	if prev.Route != next.Route {
		return RequeryDecision{DoProvider: true, Reason: RequeryReasonRouteChanged}
	}

	if s.locationAnchorChanged(prev, &next) {
		return RequeryDecision{DoProvider: true, Reason: RequeryReasonLocation}
	}

	if s.radiusGrewSignificantly(prev.RadiusMeters, next.RadiusMeters) {
		return RequeryDecision{DoProvider: true, Reason: RequeryReasonRadius}
	}

	// A drained pool forces a provider call even when only soft filters moved.
	if pool != nil && pool.AfterSoftFilters <= s.cfg.PoolFloor {
		return RequeryDecision{DoProvider: true, Reason: RequeryReasonPoolExhausted}
	}

	if soft := softFilterChanges(prev, &next); len(soft) > 0 {
		return RequeryDecision{
			Reason:    RequeryReasonSoftFilters,
			Changeset: &ContextChangeset{SoftFilters: soft},
		}
	}

	return RequeryDecision{Reason: RequeryReasonNoChanges}
}

func (s *RequeryService) locationAnchorChanged(prev, next *entities.SearchContext) bool {
	if prev.CityText != next.CityText {
		return true
	}

	switch {
	case prev.UserLocation == nil && next.UserLocation == nil:
		return false
	case prev.UserLocation == nil || next.UserLocation == nil:
		return true
	}

	drift := utils.HaversineMeters(
		prev.UserLocation.Latitude, prev.UserLocation.Longitude,
		next.UserLocation.Latitude, next.UserLocation.Longitude,
	)
	return drift > s.cfg.LocationDriftMeters
}

func (s *RequeryService) radiusGrewSignificantly(prev, next *float64) bool {
	if prev == nil || next == nil {
		// Appearing or disappearing radius is handled as a route/anchor
		// concern; only growth of an existing radius matters here.
		return prev == nil && next != nil
	}
	if *prev <= 0 {
		return *next > 0
	}
	return (*next-*prev)/(*prev) > s.cfg.RadiusGrowthRatio
}

// softFilterChanges lists the soft-filter fields that differ between the two
// snapshots. Soft filters apply locally to already-fetched candidates.
func softFilterChanges(prev, next *entities.SearchContext) []string {
	var changed []string

	if !boolPtrEqual(prev.OpenNow, next.OpenNow) {
		changed = append(changed, "openNow")
	}
	if !intPtrEqual(prev.PriceIntent, next.PriceIntent) {
		changed = append(changed, "priceIntent")
	}
	if !floatPtrEqual(prev.MinRatingBucket, next.MinRatingBucket) {
		changed = append(changed, "minRatingBucket")
	}
	if !boolPtrEqual(prev.Kosher, next.Kosher) {
		changed = append(changed, "isKosher")
	}
	if !boolPtrEqual(prev.GlutenFree, next.GlutenFree) {
		changed = append(changed, "isGlutenFree")
	}

	return changed
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
