package repositories

import (
	"context"

	"github.com/platefinder/backend/internal/domain/entities"
)

// RequeryBreakdown aggregates how often each requery reason fired.
type RequeryBreakdown struct {
	Reason string `json:"reason" db:"requery_reason"`
	Count  int    `json:"count" db:"count"`
}

// SearchAnalyticsRepository records pipeline outcomes for offline analysis.
type SearchAnalyticsRepository interface {
	// LogEvent records one completed (or failed) search run
	LogEvent(ctx context.Context, event *entities.SearchEvent) error

	// GetZeroResultQueries returns recent searches that produced no results
	GetZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error)

	// GetRequeryBreakdown returns counts per requery reason
	GetRequeryBreakdown(ctx context.Context, limit int) ([]*RequeryBreakdown, error)
}
