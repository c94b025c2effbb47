package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/platefinder/backend/internal/domain/entities"
	"github.com/platefinder/backend/internal/domain/repositories"
	"github.com/platefinder/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/platefinder/backend/pkg/errors"
)

const searchAnalyticsTable = "search_analytics"

// SearchAnalyticsAdapter persists search pipeline outcomes to Postgres.
type SearchAnalyticsAdapter struct {
	db   *sqlx.DB
	goqu *goqu.Database
}

// NewSearchAnalyticsAdapter creates a new search analytics adapter
func NewSearchAnalyticsAdapter(client *postgres.Client) repositories.SearchAnalyticsRepository {
	return newSearchAnalyticsAdapter(client.DB())
}

func newSearchAnalyticsAdapter(db *sql.DB) *SearchAnalyticsAdapter {
	return &SearchAnalyticsAdapter{
		db:   sqlx.NewDb(db, "postgres"),
		goqu: goqu.New("postgres", db),
	}
}

// LogEvent records one completed (or failed) search run
func (a *SearchAnalyticsAdapter) LogEvent(ctx context.Context, event *entities.SearchEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	record := goqu.Record{
		"id":              event.ID,
		"job_id":          event.JobID,
		"session_id":      event.SessionID,
		"query":           event.Query,
		"route":           event.Route,
		"cuisine_key":     sql.NullString{String: event.CuisineKey, Valid: event.CuisineKey != ""},
		"language":        sql.NullString{String: event.Language, Valid: event.Language != ""},
		"dedup_reason":    event.DedupReason,
		"requery_reason":  event.RequeryReason,
		"relax_steps":     event.RelaxSteps,
		"weight_profile":  event.WeightProfile,
		"result_count":    event.ResultCount,
		"pool_total":      event.PoolTotal,
		"pool_after_soft": event.PoolAfterSoft,
		"latency_ms":      event.LatencyMs,
		"user_latitude":   event.UserLatitude,
		"user_longitude":  event.UserLongitude,
		"created_at":      event.CreatedAt,
	}

	query, args, err := a.goqu.Insert(searchAnalyticsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to log search event", err)
	}
	return nil
}

// GetZeroResultQueries returns recent searches that produced no results
func (a *SearchAnalyticsAdapter) GetZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	query, args, err := a.goqu.Select(
		"id", "job_id", "session_id", "query", "route",
		goqu.COALESCE(goqu.C("cuisine_key"), "").As("cuisine_key"),
		goqu.COALESCE(goqu.C("language"), "").As("language"),
		"dedup_reason", "requery_reason", "relax_steps", "weight_profile",
		"result_count", "pool_total", "pool_after_soft", "latency_ms",
		"user_latitude", "user_longitude", "created_at",
	).From(searchAnalyticsTable).
		Where(goqu.C("result_count").Eq(0)).
		Order(goqu.C("created_at").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get zero result queries", err)
	}
	defer rows.Close()

	var events []*entities.SearchEvent
	for rows.Next() {
		e := &entities.SearchEvent{}
		if err := rows.StructScan(e); err != nil {
			return nil, apperrors.NewInternalError("failed to scan search event", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetRequeryBreakdown returns counts per requery reason
func (a *SearchAnalyticsAdapter) GetRequeryBreakdown(ctx context.Context, limit int) ([]*repositories.RequeryBreakdown, error) {
	if limit <= 0 {
		limit = 20
	}

	query, args, err := a.goqu.Select(
		goqu.C("requery_reason"),
		goqu.COUNT(goqu.Star()).As("count"),
	).From(searchAnalyticsTable).
		GroupBy(goqu.C("requery_reason")).
		Order(goqu.I("count").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get requery breakdown", err)
	}
	defer rows.Close()

	var breakdown []*repositories.RequeryBreakdown
	for rows.Next() {
		b := &repositories.RequeryBreakdown{}
		if err := rows.StructScan(b); err != nil {
			return nil, apperrors.NewInternalError("failed to scan requery breakdown", err)
		}
		breakdown = append(breakdown, b)
	}
	return breakdown, rows.Err()
}
