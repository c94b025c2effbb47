package services

import (
	"fmt"
	"time"

	"github.com/platefinder/backend/internal/domain/entities"
)

// Dedup decision reasons.
const (
	DedupReasonNoCandidate       = "NO_CANDIDATE"
	DedupReasonCachedResult      = "CACHED_RESULT"
	DedupReasonPreviousJobFailed = "PREVIOUS_JOB_FAILED"
	DedupReasonStaleUpdated      = "STALE_RUNNING_UPDATED"
	DedupReasonStaleCreated      = "STALE_RUNNING_CREATED"
	DedupReasonRunningFresh      = "RUNNING_FRESH"
)

// DedupConfig holds the staleness thresholds for job reuse decisions.
type DedupConfig struct {
	// MaxRunningAge bounds both the created-at and updated-at age of a
	// RUNNING job before it is considered abandoned.
	MaxRunningAge time.Duration
}

// DedupDecision is the outcome of evaluating a job-store candidate.
type DedupDecision struct {
	ShouldReuse bool
	Reason      string
	ExistingJob *entities.SearchJob
	Age         time.Duration
	UpdatedAge  time.Duration
}

// DedupService decides whether an existing job's result (or in-flight run) can
// be returned instead of re-running the pipeline. Pure: it never mutates the
// candidate record; marking a stale job failed is the caller's responsibility.
type DedupService struct {
	cfg DedupConfig
}

// NewDedupService creates a new dedup service
func NewDedupService(cfg DedupConfig) *DedupService {
	return &DedupService{cfg: cfg}
}

// Evaluate maps a job-store lookup result to a reuse/new-job decision. The
// caller supplies now so the decision stays deterministic and testable.
func (s *DedupService) Evaluate(candidate *entities.SearchJob, now time.Time) DedupDecision {
	if candidate == nil {
		return DedupDecision{Reason: DedupReasonNoCandidate}
	}

	age := now.Sub(candidate.CreatedAt)
	updatedAge := now.Sub(candidate.UpdatedAt)

	decision := DedupDecision{
		ExistingJob: candidate,
		Age:         age,
		UpdatedAge:  updatedAge,
	}

	switch candidate.Status {
	case entities.JobStatusDoneSuccess:
		// A finished result is reused unconditionally; the freshness window
		// was already applied by the job-store lookup.
		decision.ShouldReuse = true
		decision.Reason = DedupReasonCachedResult

	case entities.JobStatusDoneFailed:
		decision.Reason = DedupReasonPreviousJobFailed

	case entities.JobStatusRunning:
		switch {
		case updatedAge > s.cfg.MaxRunningAge:
			decision.Reason = DedupReasonStaleUpdated
		case age > s.cfg.MaxRunningAge:
			decision.Reason = DedupReasonStaleCreated
		default:
			decision.ShouldReuse = true
			decision.Reason = DedupReasonRunningFresh
		}

	default:
		// PENDING, DONE_CLARIFY, DONE_STOPPED: attach to the existing job so
		// the client sees the clarification / stop outcome instead of
		// triggering a duplicate run.
		decision.ShouldReuse = true
		decision.Reason = fmt.Sprintf("STATUS_%s", candidate.Status)
	}

	return decision
}
