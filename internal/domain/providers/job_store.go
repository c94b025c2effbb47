package providers

import (
	"context"
	"time"

	"github.com/platefinder/backend/internal/domain/entities"
)

// JobStore persists search jobs keyed by idempotency key. At-most-one
// execution is only as strong as CreateIfAbsent; the decision engines assume,
// never guarantee, that property.
type JobStore interface {
	// FindCandidate returns the job currently registered for the key within
	// the freshness window, or nil when none qualifies. The second return is
	// the job ID the key is bound to regardless of eligibility ("" when the
	// key is unbound), so callers can supersede a dead binding atomically.
	FindCandidate(ctx context.Context, key string, freshWindow time.Duration) (*entities.SearchJob, string, error)

	// CreateIfAbsent atomically registers the job for its idempotency key.
	// Returns false when another job won the race; callers should re-fetch
	// and reuse the winner.
	CreateIfAbsent(ctx context.Context, job *entities.SearchJob, ttl time.Duration) (bool, error)

	// Replace atomically rebinds the idempotency key from supersededJobID to
	// the new job. Returns false when the key is bound to some other job,
	// meaning a concurrent submission already superseded the old one.
	Replace(ctx context.Context, job *entities.SearchJob, supersededJobID string, ttl time.Duration) (bool, error)

	// GetByID returns a job by its ID
	GetByID(ctx context.Context, id string) (*entities.SearchJob, error)

	// Update persists status/result changes on an existing job
	Update(ctx context.Context, job *entities.SearchJob) error
}
