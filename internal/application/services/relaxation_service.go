package services

import (
	"github.com/platefinder/backend/internal/domain/entities"
)

// Relaxation step field names, in the fixed priority order they relax.
const (
	RelaxFieldOpenState   = "openState"
	RelaxFieldOpenAt      = "openAt"
	RelaxFieldOpenBetween = "openBetween"
	RelaxFieldKosher      = "isKosher"
	RelaxFieldGlutenFree  = "isGlutenFree"
	RelaxFieldMinRating   = "minRatingBucket"
)

// RelaxationConfig holds the bounds of the filter-loosening policy.
type RelaxationConfig struct {
	// MinResults is the smallest post-filter count considered sufficient.
	MinResults int

	// MaxAttempts bounds how many relax calls the orchestrator may drive.
	MaxAttempts int
}

// RelaxationStep records one loosened filter field.
type RelaxationStep struct {
	Field  string      `json:"field"`
	From   interface{} `json:"from"`
	To     interface{} `json:"to"`
	Reason string      `json:"reason"`
}

// RelaxationResult is the outcome of one relaxation call.
type RelaxationResult struct {
	Relaxed     bool
	Steps       []RelaxationStep
	NextFilters entities.FinalFilters
}

// RelaxationService incrementally loosens restrictive filters when too few
// candidates survive filtering. Exactly one field relaxes per call, in fixed
// priority; the input filters value is never mutated.
type RelaxationService struct {
	cfg RelaxationConfig
}

// NewRelaxationService creates a new relaxation service
func NewRelaxationService(cfg RelaxationConfig) *RelaxationService {
	return &RelaxationService{cfg: cfg}
}

// RelaxIfTooFew relaxes the highest-priority remaining filter when count is
// insufficient and attempts remain.
func (s *RelaxationService) RelaxIfTooFew(count, attempt int, filters entities.FinalFilters) RelaxationResult {
	result := RelaxationResult{NextFilters: filters.Clone()}

	if count >= s.cfg.MinResults || attempt >= s.cfg.MaxAttempts {
		return result
	}

	next := filters.Clone()

	// Priority 1: opening-hours constraints, cheapest-to-drop first.
	switch {
	case next.OpenState != nil:
		result.Steps = append(result.Steps, RelaxationStep{
			Field: RelaxFieldOpenState, From: *next.OpenState, To: nil,
			Reason: "dropped open-now constraint to widen pool",
		})
		next.OpenState = nil
	case next.OpenAt != nil:
		result.Steps = append(result.Steps, RelaxationStep{
			Field: RelaxFieldOpenAt, From: *next.OpenAt, To: nil,
			Reason: "dropped open-at constraint to widen pool",
		})
		next.OpenAt = nil
	case next.OpenBetween != nil:
		result.Steps = append(result.Steps, RelaxationStep{
			Field: RelaxFieldOpenBetween, From: *next.OpenBetween, To: nil,
			Reason: "dropped open-between constraint to widen pool",
		})
		next.OpenBetween = nil

	// Priority 2: dietary flags.
	case next.Kosher != nil:
		result.Steps = append(result.Steps, RelaxationStep{
			Field: RelaxFieldKosher, From: *next.Kosher, To: nil,
			Reason: "dropped kosher constraint to widen pool",
		})
		next.Kosher = nil
	case next.GlutenFree != nil:
		result.Steps = append(result.Steps, RelaxationStep{
			Field: RelaxFieldGlutenFree, From: *next.GlutenFree, To: nil,
			Reason: "dropped gluten-free constraint to widen pool",
		})
		next.GlutenFree = nil

	// Priority 3: rating floor, last resort.
	case next.MinRatingBucket != nil:
		result.Steps = append(result.Steps, RelaxationStep{
			Field: RelaxFieldMinRating, From: *next.MinRatingBucket, To: nil,
			Reason: "dropped rating floor as last resort",
		})
		next.MinRatingBucket = nil

	default:
		return result
	}

	result.Relaxed = true
	result.NextFilters = next
	return result
}

// CanRelaxFurther reports whether any relaxable field remains. The
// orchestrator uses it to stop retrying once nothing is left to loosen.
func CanRelaxFurther(filters entities.FinalFilters) bool {
	return filters.OpenState != nil ||
		filters.OpenAt != nil ||
		filters.OpenBetween != nil ||
		filters.Kosher != nil ||
		filters.GlutenFree != nil ||
		filters.MinRatingBucket != nil
}
