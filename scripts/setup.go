package main

import (
	"context"
	"log"
	"os"

	"github.com/platefinder/backend/internal/adapters/search"
	"github.com/platefinder/backend/internal/infrastructure/clients/postgres"
	"github.com/platefinder/backend/internal/infrastructure/clients/typesense"
	"github.com/platefinder/backend/pkg/config"
)

const searchAnalyticsDDL = `
CREATE TABLE IF NOT EXISTS search_analytics (
	id              UUID PRIMARY KEY,
	job_id          TEXT NOT NULL,
	session_id      TEXT NOT NULL,
	query           TEXT NOT NULL,
	route           TEXT NOT NULL,
	cuisine_key     TEXT,
	language        TEXT,
	dedup_reason    TEXT NOT NULL DEFAULT '',
	requery_reason  TEXT NOT NULL DEFAULT '',
	relax_steps     INTEGER NOT NULL DEFAULT 0,
	weight_profile  TEXT NOT NULL DEFAULT '',
	result_count    INTEGER NOT NULL DEFAULT 0,
	pool_total      INTEGER NOT NULL DEFAULT 0,
	pool_after_soft INTEGER NOT NULL DEFAULT 0,
	latency_ms      INTEGER NOT NULL DEFAULT 0,
	user_latitude   DOUBLE PRECISION NOT NULL DEFAULT 0,
	user_longitude  DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_search_analytics_created_at
	ON search_analytics (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_search_analytics_zero_results
	ON search_analytics (created_at DESC) WHERE result_count = 0;
CREATE INDEX IF NOT EXISTS idx_search_analytics_requery_reason
	ON search_analytics (requery_reason);
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping search_analytics before setup")
		if _, err := pgClient.DB().ExecContext(ctx, `DROP TABLE IF EXISTS search_analytics`); err != nil {
			log.Fatalf("Failed to drop search_analytics: %v", err)
		}
	}

	if _, err := pgClient.DB().ExecContext(ctx, searchAnalyticsDDL); err != nil {
		log.Fatalf("Failed to create search_analytics schema: %v", err)
	}
	log.Println("search_analytics schema ready")

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Fatalf("Failed to connect to Typesense: %v", err)
	}
	candidateIndex := search.NewTypesenseAdapter(tsClient)
	if err := candidateIndex.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to init candidate index schema: %v", err)
	}
	log.Println("candidate index schema ready")
}
