package entities

import (
	"time"
)

// JobStatus represents the lifecycle state of a search job
type JobStatus string

const (
	JobStatusPending     JobStatus = "PENDING"
	JobStatusRunning     JobStatus = "RUNNING"
	JobStatusDoneSuccess JobStatus = "DONE_SUCCESS"
	JobStatusDoneFailed  JobStatus = "DONE_FAILED"
	JobStatusDoneClarify JobStatus = "DONE_CLARIFY"
	JobStatusDoneStopped JobStatus = "DONE_STOPPED"
)

// IsTerminal reports whether the status is a final state
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusDoneSuccess, JobStatusDoneFailed, JobStatusDoneClarify, JobStatusDoneStopped:
		return true
	}
	return false
}

// SearchJob represents one asynchronous run of the search pipeline. The job
// store owns all mutation; decision engines only read these records.
type SearchJob struct {
	ID             string        `json:"id"`
	RequestID      string        `json:"request_id"`
	SessionID      string        `json:"session_id"`
	IdempotencyKey string        `json:"idempotency_key"`
	Status         JobStatus     `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	Result         *SearchResult `json:"result,omitempty"`
	FailureCode    string        `json:"failure_code,omitempty"`
}

// SearchResult is the terminal payload of a successful job.
type SearchResult struct {
	Restaurants []*Restaurant  `json:"restaurants"`
	Scores      []float64      `json:"scores"`
	Signals     RankingSignals `json:"signals"`
	Narration   string         `json:"narration,omitempty"`
	Language    string         `json:"language,omitempty"`
}
