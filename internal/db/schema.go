package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS sale_history (
		id           BIGSERIAL PRIMARY KEY,
		timestamp    TIMESTAMPTZ NOT NULL,
		analysis_day DATE NOT NULL,
		source       TEXT NOT NULL,
		price_usd    DOUBLE PRECISION NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sale_history_day ON sale_history (analysis_day, source)`,
	`CREATE TABLE IF NOT EXISTS analysis_runs (
		id             BIGSERIAL PRIMARY KEY,
		timestamp      TIMESTAMPTZ NOT NULL,
		analysis_day   DATE NOT NULL,
		source         TEXT NOT NULL,
		currency       TEXT NOT NULL,
		spot_price_usd DOUBLE PRECISION NOT NULL,
		fetched        INT NOT NULL,
		skipped        INT NOT NULL,
		invalid        INT NOT NULL,
		outliers       INT NOT NULL,
		median_usd     DOUBLE PRECISION,
		summary        JSONB,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_runs_source ON analysis_runs (source, timestamp DESC)`,
}

// EnsureSchema creates the tables and indexes if they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
