package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/platefinder/backend/internal/domain/entities"
	apperrors "github.com/platefinder/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	return db, mock
}

func TestLogEvent_InsertsRow(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	adapter := newSearchAnalyticsAdapter(db)

	mock.ExpectExec(`INSERT INTO "search_analytics"`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	event := &entities.SearchEvent{
		JobID:         "job-1",
		SessionID:     "s1",
		Query:         "pizza",
		Route:         "TEXTSEARCH",
		DedupReason:   "NO_CANDIDATE",
		RequeryReason: "first_request",
		WeightProfile: "rule_delta",
		ResultCount:   5,
	}

	err := adapter.LogEvent(context.Background(), event)

	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogEvent_WrapsDatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	adapter := newSearchAnalyticsAdapter(db)

	mock.ExpectExec(`INSERT INTO "search_analytics"`).
		WillReturnError(errors.New("connection reset"))

	err := adapter.LogEvent(context.Background(), &entities.SearchEvent{JobID: "job-1", Query: "pizza"})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(err))
}

func TestGetZeroResultQueries_ScansRows(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	adapter := newSearchAnalyticsAdapter(db)

	createdAt := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "job_id", "session_id", "query", "route", "cuisine_key", "language",
		"dedup_reason", "requery_reason", "relax_steps", "weight_profile",
		"result_count", "pool_total", "pool_after_soft", "latency_ms",
		"user_latitude", "user_longitude", "created_at",
	}).AddRow(
		"e1", "job-1", "s1", "vegan sushi in holon", "TEXTSEARCH", "japanese", "en",
		"NO_CANDIDATE", "first_request", 2, "rule_delta",
		0, 12, 0, 840,
		32.01, 34.77, createdAt,
	)

	mock.ExpectQuery(`SELECT .+ FROM "search_analytics"`).WillReturnRows(rows)

	events, err := adapter.GetZeroResultQueries(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "vegan sushi in holon", events[0].Query)
	assert.Equal(t, "japanese", events[0].CuisineKey)
	assert.Equal(t, 0, events[0].ResultCount)
	assert.Equal(t, 2, events[0].RelaxSteps)
	assert.Equal(t, createdAt, events[0].CreatedAt)
}

func TestGetRequeryBreakdown_ScansRows(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	adapter := newSearchAnalyticsAdapter(db)

	rows := sqlmock.NewRows([]string{"requery_reason", "count"}).
		AddRow("first_request", 42).
		AddRow("soft_filters_only", 17)

	mock.ExpectQuery(`SELECT .+ FROM "search_analytics" GROUP BY`).WillReturnRows(rows)

	breakdown, err := adapter.GetRequeryBreakdown(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, breakdown, 2)
	assert.Equal(t, "first_request", breakdown[0].Reason)
	assert.Equal(t, 42, breakdown[0].Count)
}
