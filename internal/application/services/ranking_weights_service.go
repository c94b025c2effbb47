package services

import (
	"fmt"
	"math"

	"github.com/platefinder/backend/internal/domain/entities"
)

// Weight strategy names.
const (
	StrategyRuleDelta    = "rule_delta"
	StrategyProfileTable = "profile_table"
)

// Named weight profiles. Kept as precomputed fallback presets; the rule-delta
// engine is the primary strategy.
const (
	ProfileBalanced         = "balanced"
	ProfileCuisineFocused   = "cuisine_focused"
	ProfileQualityFocused   = "quality_focused"
	ProfileProximityFocused = "proximity_focused"
	ProfileNoLocation       = "no_location"
	ProfileRuleDelta        = "rule_delta"
)

// IntentSignals are the query/intent facts the weight engine derives from.
type IntentSignals struct {
	Route            entities.SearchRoute
	CuisineKey       string
	HasUserLocation  bool
	HasCuisineScores bool
	OpenNowRequested bool
	ProximityIntent  bool
	BudgetIntent     bool
	QualityIntent    bool
}

// RankingWeightConfig holds the rule-delta clamp bounds and strategy choice.
type RankingWeightConfig struct {
	Strategy string
	ClampMin int
	ClampMax int
}

// ComputedWeights is a weight vector plus the observability trail of how it
// was produced.
type ComputedWeights struct {
	Weights       entities.RankingWeights
	Profile       string
	TriggerFlags  []string
	EnforcerRules []string
}

// RankingWeightService computes a deterministic ranking-weight vector from
// intent signals and applies the final invariant-enforcement pass.
type RankingWeightService struct {
	cfg RankingWeightConfig
}

// NewRankingWeightService creates a new ranking weight service
func NewRankingWeightService(cfg RankingWeightConfig) *RankingWeightService {
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyRuleDelta
	}
	if cfg.ClampMin == 0 && cfg.ClampMax == 0 {
		cfg.ClampMin, cfg.ClampMax = 5, 50
	}
	return &RankingWeightService{cfg: cfg}
}

// Compute runs the configured strategy and the invariant enforcer. Same
// signals always produce the same vector.
func (s *RankingWeightService) Compute(sig IntentSignals) ComputedWeights {
	var (
		weights entities.RankingWeights
		profile string
		flags   []string
	)

	if s.cfg.Strategy == StrategyProfileTable {
		profile = SelectProfile(sig)
		weights, _ = ProfileWeights(profile)
	} else {
		profile = ProfileRuleDelta
		weights, flags = s.computeRuleDelta(sig)
	}

	enforced := EnforceWeightInvariants(weights, sig)

	return ComputedWeights{
		Weights:       enforced.Weights,
		Profile:       profile,
		TriggerFlags:  flags,
		EnforcerRules: enforced.AppliedRules,
	}
}

// --- profile table strategy -------------------------------------------------

var weightProfiles = map[string]entities.RankingWeights{
	ProfileBalanced:         {Rating: 0.30, Reviews: 0.20, Distance: 0.25, OpenBoost: 0.10, CuisineMatch: 0.15},
	ProfileCuisineFocused:   {Rating: 0.25, Reviews: 0.15, Distance: 0.20, OpenBoost: 0.10, CuisineMatch: 0.30},
	ProfileQualityFocused:   {Rating: 0.40, Reviews: 0.30, Distance: 0.15, OpenBoost: 0.05, CuisineMatch: 0.10},
	ProfileProximityFocused: {Rating: 0.20, Reviews: 0.15, Distance: 0.40, OpenBoost: 0.10, CuisineMatch: 0.15},
	ProfileNoLocation:       {Rating: 0.40, Reviews: 0.25, Distance: 0.00, OpenBoost: 0.10, CuisineMatch: 0.25},
}

// ProfileWeights returns the named preset vector (components sum to 1.0).
func ProfileWeights(name string) (entities.RankingWeights, bool) {
	w, ok := weightProfiles[name]
	return w, ok
}

// SelectProfile maps intent signals to a preset name. Checked in order of
// specificity.
func SelectProfile(sig IntentSignals) string {
	switch {
	case !sig.HasUserLocation:
		return ProfileNoLocation
	case sig.CuisineKey != "":
		return ProfileCuisineFocused
	case sig.QualityIntent:
		return ProfileQualityFocused
	case sig.ProximityIntent || sig.Route == entities.RouteNearby:
		return ProfileProximityFocused
	default:
		return ProfileBalanced
	}
}

// --- rule-delta strategy ----------------------------------------------------

const ruleDeltaTotal = 100

type intWeights struct {
	rating, reviews, distance, openBoost, cuisineMatch int
}

// ruleDeltaBaseline is the balanced starting point; components sum to 100.
var ruleDeltaBaseline = intWeights{rating: 30, reviews: 20, distance: 25, openBoost: 10, cuisineMatch: 15}

// weightRule is one deterministic additive adjustment. Deltas are chosen to
// sum to zero per rule so the vector stays near 100 before clamping.
type weightRule struct {
	name    string
	applies func(IntentSignals) bool
	delta   intWeights
}

var weightRules = []weightRule{
	{
		name:    "proximity_intent",
		applies: func(s IntentSignals) bool { return s.ProximityIntent },
		delta:   intWeights{distance: +15, rating: -8, reviews: -7},
	},
	{
		name:    "quality_intent",
		applies: func(s IntentSignals) bool { return s.QualityIntent },
		delta:   intWeights{rating: +12, reviews: +8, distance: -10, openBoost: -5, cuisineMatch: -5},
	},
	{
		name:    "budget_intent",
		applies: func(s IntentSignals) bool { return s.BudgetIntent },
		delta:   intWeights{reviews: +5, rating: -5},
	},
	{
		name:    "cuisine_intent",
		applies: func(s IntentSignals) bool { return s.CuisineKey != "" },
		delta:   intWeights{cuisineMatch: +15, distance: -5, reviews: -5, openBoost: -5},
	},
	{
		name:    "open_now_requested",
		applies: func(s IntentSignals) bool { return s.OpenNowRequested },
		delta:   intWeights{openBoost: +10, rating: -5, reviews: -5},
	},
	{
		name:    "landmark_route",
		applies: func(s IntentSignals) bool { return s.Route == entities.RouteLandmark },
		delta:   intWeights{distance: +10, cuisineMatch: -5, openBoost: -5},
	},
}

// computeRuleDelta applies the ordered rule set to the baseline, clamps every
// component, renormalizes to exactly 100 and asserts the post-conditions.
func (s *RankingWeightService) computeRuleDelta(sig IntentSignals) (entities.RankingWeights, []string) {
	w := ruleDeltaBaseline
	var fired []string

	for _, rule := range weightRules {
		if !rule.applies(sig) {
			continue
		}
		fired = append(fired, rule.name)
		w.rating += rule.delta.rating
		w.reviews += rule.delta.reviews
		w.distance += rule.delta.distance
		w.openBoost += rule.delta.openBoost
		w.cuisineMatch += rule.delta.cuisineMatch
	}

	w = clampWeights(w, s.cfg.ClampMin, s.cfg.ClampMax)
	w = renormalizeToTotal(w, ruleDeltaTotal)
	s.assertRuleDeltaPostconditions(w, sig)

	return entities.RankingWeights{
		Rating:       float64(w.rating),
		Reviews:      float64(w.reviews),
		Distance:     float64(w.distance),
		OpenBoost:    float64(w.openBoost),
		CuisineMatch: float64(w.cuisineMatch),
	}, fired
}

func clampWeights(w intWeights, min, max int) intWeights {
	clamp := func(v int) int {
		if v < min {
			return min
		}
		if v > max {
			return max
		}
		return v
	}
	return intWeights{
		rating:       clamp(w.rating),
		reviews:      clamp(w.reviews),
		distance:     clamp(w.distance),
		openBoost:    clamp(w.openBoost),
		cuisineMatch: clamp(w.cuisineMatch),
	}
}

// renormalizeToTotal scales components so they sum to exactly total: scale,
// round, then assign the rounding remainder to the currently-largest
// component.
func renormalizeToTotal(w intWeights, total int) intWeights {
	sum := w.rating + w.reviews + w.distance + w.openBoost + w.cuisineMatch
	if sum == total || sum == 0 {
		return w
	}

	factor := float64(total) / float64(sum)
	scaled := intWeights{
		rating:       int(math.Round(float64(w.rating) * factor)),
		reviews:      int(math.Round(float64(w.reviews) * factor)),
		distance:     int(math.Round(float64(w.distance) * factor)),
		openBoost:    int(math.Round(float64(w.openBoost) * factor)),
		cuisineMatch: int(math.Round(float64(w.cuisineMatch) * factor)),
	}

	remainder := total - (scaled.rating + scaled.reviews + scaled.distance + scaled.openBoost + scaled.cuisineMatch)
	if remainder != 0 {
		switch largestComponent(scaled) {
		case "rating":
			scaled.rating += remainder
		case "reviews":
			scaled.reviews += remainder
		case "distance":
			scaled.distance += remainder
		case "openBoost":
			scaled.openBoost += remainder
		default:
			scaled.cuisineMatch += remainder
		}
	}

	return scaled
}

func largestComponent(w intWeights) string {
	name, best := "rating", w.rating
	if w.reviews > best {
		name, best = "reviews", w.reviews
	}
	if w.distance > best {
		name, best = "distance", w.distance
	}
	if w.openBoost > best {
		name, best = "openBoost", w.openBoost
	}
	if w.cuisineMatch > best {
		name = "cuisineMatch"
	}
	return name
}

// assertRuleDeltaPostconditions panics when the engine produced an invalid
// vector. This is a programmer-error guard for a broken rule table, not a
// recoverable condition.
func (s *RankingWeightService) assertRuleDeltaPostconditions(w intWeights, sig IntentSignals) {
	sum := w.rating + w.reviews + w.distance + w.openBoost + w.cuisineMatch
	if sum != ruleDeltaTotal {
		panic(fmt.Sprintf("ranking weights: sum %d != %d after renormalization (signals %+v, weights %+v)", sum, ruleDeltaTotal, sig, w))
	}
	for name, v := range map[string]int{
		"rating": w.rating, "reviews": w.reviews, "distance": w.distance,
		"openBoost": w.openBoost, "cuisineMatch": w.cuisineMatch,
	} {
		if v < s.cfg.ClampMin || v > s.cfg.ClampMax {
			panic(fmt.Sprintf("ranking weights: component %s=%d outside [%d,%d] (signals %+v)", name, v, s.cfg.ClampMin, s.cfg.ClampMax, sig))
		}
	}
}

// --- invariant enforcer -----------------------------------------------------

// Enforcer rule names, reported for observability.
const (
	EnforcerRuleZeroCuisine  = "zero_cuisine_match:no_cuisine_signal"
	EnforcerRuleZeroDistance = "zero_distance:no_user_location"
	EnforcerRuleZeroOpen     = "zero_open_boost:no_open_now_request"
	EnforcerRuleRenormalized = "renormalized_surviving_components"
)

// EnforcedWeights is the enforcer output: the adjusted vector plus the rules
// that fired.
type EnforcedWeights struct {
	Weights      entities.RankingWeights
	AppliedRules []string
}

// EnforceWeightInvariants forces any component without a supporting signal to
// zero, regardless of what the upstream strategy produced, then renormalizes
// the surviving components so the vector keeps its original total.
func EnforceWeightInvariants(w entities.RankingWeights, sig IntentSignals) EnforcedWeights {
	total := w.Sum()
	var applied []string

	if (sig.CuisineKey == "" || !sig.HasCuisineScores) && w.CuisineMatch != 0 {
		w.CuisineMatch = 0
		applied = append(applied, EnforcerRuleZeroCuisine)
	}
	if !sig.HasUserLocation && w.Distance != 0 {
		w.Distance = 0
		applied = append(applied, EnforcerRuleZeroDistance)
	}
	if !sig.OpenNowRequested && w.OpenBoost != 0 {
		w.OpenBoost = 0
		applied = append(applied, EnforcerRuleZeroOpen)
	}

	if len(applied) > 0 {
		if survivors := w.Sum(); survivors > 0 && total > 0 {
			factor := total / survivors
			w.Rating *= factor
			w.Reviews *= factor
			w.Distance *= factor
			w.OpenBoost *= factor
			w.CuisineMatch *= factor
			applied = append(applied, EnforcerRuleRenormalized)
		}
	}

	return EnforcedWeights{Weights: w, AppliedRules: applied}
}

// DominantFactor names the heaviest component of a weight vector.
func DominantFactor(w entities.RankingWeights) string {
	name, best := "rating", w.Rating
	if w.Reviews > best {
		name, best = "reviews", w.Reviews
	}
	if w.Distance > best {
		name, best = "distance", w.Distance
	}
	if w.OpenBoost > best {
		name, best = "open_boost", w.OpenBoost
	}
	if w.CuisineMatch > best {
		name = "cuisine_match"
	}
	return name
}
