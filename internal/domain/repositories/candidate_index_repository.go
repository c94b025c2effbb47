package repositories

import (
	"context"

	"github.com/platefinder/backend/internal/domain/entities"
)

// CandidateIndexRepository holds externally-fetched restaurant candidates so
// soft-filter changes can be answered locally without a new provider call.
type CandidateIndexRepository interface {
	// InitSchema ensures the index collection exists
	InitSchema(ctx context.Context) error

	// IndexBatch stores a fetched candidate pool under a session
	IndexBatch(ctx context.Context, sessionID string, restaurants []*entities.Restaurant) error

	// Filter returns the session's candidates surviving the given filters
	Filter(ctx context.Context, sessionID string, filters entities.FinalFilters, limit int) ([]*entities.Restaurant, error)

	// Count returns how many of the session's candidates survive the filters
	Count(ctx context.Context, sessionID string, filters entities.FinalFilters) (int, error)

	// Clear drops a session's candidate pool
	Clear(ctx context.Context, sessionID string) error
}
