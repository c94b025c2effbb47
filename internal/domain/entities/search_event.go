package entities

import (
	"time"
)

// SearchEvent represents a single search interaction for analytics.
type SearchEvent struct {
	ID            string    `json:"id" db:"id"`
	JobID         string    `json:"job_id" db:"job_id"`
	SessionID     string    `json:"session_id,omitempty" db:"session_id"`
	Query         string    `json:"query" db:"query"`
	Route         string    `json:"route" db:"route"`
	CuisineKey    string    `json:"cuisine_key,omitempty" db:"cuisine_key"`
	Language      string    `json:"language,omitempty" db:"language"`
	DedupReason   string    `json:"dedup_reason" db:"dedup_reason"`
	RequeryReason string    `json:"requery_reason" db:"requery_reason"`
	RelaxSteps    int       `json:"relax_steps" db:"relax_steps"`
	WeightProfile string    `json:"weight_profile" db:"weight_profile"`
	ResultCount   int       `json:"result_count" db:"result_count"`
	PoolTotal     int       `json:"pool_total" db:"pool_total"`
	PoolAfterSoft int       `json:"pool_after_soft" db:"pool_after_soft"`
	LatencyMs     int       `json:"latency_ms" db:"latency_ms"`
	UserLatitude  float64   `json:"user_latitude" db:"user_latitude"`
	UserLongitude float64   `json:"user_longitude" db:"user_longitude"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
