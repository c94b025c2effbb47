package services

import (
	"context"
	"time"

	"github.com/platefinder/backend/internal/domain/entities"
	"github.com/platefinder/backend/internal/domain/repositories"
	"github.com/platefinder/backend/internal/infrastructure/observability"
)

type SearchAnalyticsService struct {
	repo repositories.SearchAnalyticsRepository
}

func NewSearchAnalyticsService(repo repositories.SearchAnalyticsRepository) *SearchAnalyticsService {
	return &SearchAnalyticsService{repo: repo}
}

// TrackSearch records the event in the background so the pipeline never blocks
// on analytics writes.
func (s *SearchAnalyticsService) TrackSearch(ctx context.Context, event *entities.SearchEvent) {
	go func() {
		// Fresh context: the pipeline context may already be done.
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.repo.LogEvent(bgCtx, event); err != nil {
			observability.GetLogger().Warn().
				Err(err).
				Str("job_id", event.JobID).
				Msg("failed to log search event")
		}
	}()
}

func (s *SearchAnalyticsService) GetZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error) {
	return s.repo.GetZeroResultQueries(ctx, limit)
}

func (s *SearchAnalyticsService) GetRequeryBreakdown(ctx context.Context, limit int) ([]*repositories.RequeryBreakdown, error) {
	return s.repo.GetRequeryBreakdown(ctx, limit)
}
