package entities

// RankingWeights is the weight vector consumed by the result ranker. Depending
// on the producing strategy the components sum to 1.0 (profile table) or to
// 100 (rule-delta engine); Normalized converts either to fractions.
type RankingWeights struct {
	Rating       float64 `json:"rating"`
	Reviews      float64 `json:"reviews"`
	Distance     float64 `json:"distance"`
	OpenBoost    float64 `json:"open_boost"`
	CuisineMatch float64 `json:"cuisine_match"`
}

// Sum returns the total of all components.
func (w RankingWeights) Sum() float64 {
	return w.Rating + w.Reviews + w.Distance + w.OpenBoost + w.CuisineMatch
}

// Normalized returns the weights scaled so the components sum to 1.0. A zero
// vector is returned unchanged.
func (w RankingWeights) Normalized() RankingWeights {
	total := w.Sum()
	if total == 0 {
		return w
	}
	return RankingWeights{
		Rating:       w.Rating / total,
		Reviews:      w.Reviews / total,
		Distance:     w.Distance / total,
		OpenBoost:    w.OpenBoost / total,
		CuisineMatch: w.CuisineMatch / total,
	}
}

// RankingSignals is published alongside results so the assistant layer can
// explain why the ordering looks the way it does.
type RankingSignals struct {
	Profile        string    `json:"profile"`
	DominantFactor string    `json:"dominant_factor"`
	TriggerFlags   []string  `json:"trigger_flags,omitempty"`
	EnforcerRules  []string  `json:"enforcer_rules,omitempty"`
	Pool           PoolStats `json:"pool"`
	RelaxSteps     []string  `json:"relax_steps,omitempty"`
	RequeryReason  string    `json:"requery_reason,omitempty"`
}
