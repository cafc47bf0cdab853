package db

import (
	"context"
	"database/sql"
	"fmt"
)

// MigrateUp creates the snapshot schema. It is idempotent.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS article_snapshots (
    id           TEXT PRIMARY KEY,
    url          TEXT NOT NULL,
    title        TEXT NOT NULL,
    source_count INTEGER NOT NULL DEFAULT 1,
    published_at TIMESTAMPTZ NOT NULL,
    payload      JSONB NOT NULL,
    snapshot_at  TIMESTAMPTZ NOT NULL
)`); err != nil {
		return fmt.Errorf("create article_snapshots: %w", err)
	}

	indexes := []string{
		// ORDER BY published_at DESC in Latest
		`CREATE INDEX IF NOT EXISTS idx_article_snapshots_published_at ON article_snapshots(published_at DESC)`,
		// retention pruning
		`CREATE INDEX IF NOT EXISTS idx_article_snapshots_snapshot_at ON article_snapshots(snapshot_at)`,
		// most-repeated queries
		`CREATE INDEX IF NOT EXISTS idx_article_snapshots_source_count ON article_snapshots(source_count DESC)`,
	}
	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// MigrateDown drops the snapshot schema and all stored snapshots.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS article_snapshots CASCADE`); err != nil {
		return fmt.Errorf("drop article_snapshots: %w", err)
	}
	return nil
}
