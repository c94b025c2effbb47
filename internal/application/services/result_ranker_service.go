package services

import (
	"sort"

	"github.com/platefinder/backend/internal/domain/entities"
	"github.com/platefinder/backend/pkg/utils"
)

// reviewCountHalfPoint is where the review-count transform reaches 0.5; the
// transform n/(n+k) is bounded in [0,1) and strictly monotonic.
const reviewCountHalfPoint = 50.0

// distanceDecayKm is where the inverse-distance sub-score reaches 0.5.
const distanceDecayKm = 2.0

// RankedResult pairs a candidate with its composite score. Candidates are
// never mutated and never carry ranking metadata themselves.
type RankedResult struct {
	Restaurant     *entities.Restaurant
	Score          float64
	ScoreBreakdown map[string]float64
}

// ResultRanker orders candidates by a deterministic multi-factor score
// combined from the resolved weight vector.
type ResultRanker struct{}

// NewResultRanker creates a new result ranker
func NewResultRanker() *ResultRanker {
	return &ResultRanker{}
}

// Rank produces a new ordered list. Ties on the exact composite score break
// by raw rating desc, then raw review count desc, then original provider
// order, so the externally-provided order is preserved whenever no weighted
// factor distinguishes two candidates.
func (s *ResultRanker) Rank(candidates []*entities.Restaurant, weights entities.RankingWeights, userLoc *entities.Location) []RankedResult {
	if len(candidates) == 0 {
		return nil
	}

	w := weights.Normalized()

	scored := make([]RankedResult, len(candidates))
	order := make(map[*entities.Restaurant]int, len(candidates))
	for i, r := range candidates {
		score, breakdown := s.score(r, w, userLoc)
		scored[i] = RankedResult{
			Restaurant:     r,
			Score:          score,
			ScoreBreakdown: breakdown,
		}
		order[r] = i
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if ra, rb := rawRating(a.Restaurant), rawRating(b.Restaurant); ra != rb {
			return ra > rb
		}
		if va, vb := rawReviews(a.Restaurant), rawReviews(b.Restaurant); va != vb {
			return va > vb
		}
		return order[a.Restaurant] < order[b.Restaurant]
	})

	return scored
}

func (s *ResultRanker) score(r *entities.Restaurant, w entities.RankingWeights, userLoc *entities.Location) (float64, map[string]float64) {
	breakdown := make(map[string]float64)

	breakdown["rating"] = (rawRating(r) / 5.0) * w.Rating
	breakdown["reviews"] = reviewSubScore(rawReviews(r)) * w.Reviews

	// Distance only contributes when the weight is live, a user location
	// exists, and the candidate itself has coordinates; the invariant
	// enforcer already zeroes the weight when the user location is missing,
	// this guards direct callers and geometry-less provider results.
	distScore := 0.0
	if w.Distance > 0 && userLoc != nil && !r.Location.IsZero() {
		km := utils.HaversineKm(userLoc.Latitude, userLoc.Longitude, r.Location.Latitude, r.Location.Longitude)
		distScore = 1.0 / (1.0 + km/distanceDecayKm)
	}
	breakdown["distance"] = distScore * w.Distance

	breakdown["open"] = openSubScore(r.Open) * w.OpenBoost

	cuisine := 0.0
	if r.CuisineScore != nil {
		cuisine = clampUnit(*r.CuisineScore)
	}
	breakdown["cuisine"] = cuisine * w.CuisineMatch

	total := breakdown["rating"] + breakdown["reviews"] + breakdown["distance"] + breakdown["open"] + breakdown["cuisine"]
	return total, breakdown
}

func rawRating(r *entities.Restaurant) float64 {
	if r.Rating == nil {
		return 0
	}
	return *r.Rating
}

func rawReviews(r *entities.Restaurant) float64 {
	if r.ReviewCount == nil {
		return 0
	}
	return float64(*r.ReviewCount)
}

func reviewSubScore(n float64) float64 {
	if n <= 0 {
		return 0
	}
	return n / (n + reviewCountHalfPoint)
}

func openSubScore(status entities.OpenStatus) float64 {
	switch status {
	case entities.OpenStatusOpen:
		return 1.0
	case entities.OpenStatusClosed:
		return 0.0
	default:
		return 0.5
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
