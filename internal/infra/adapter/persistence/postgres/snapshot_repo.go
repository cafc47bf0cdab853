// Package postgres implements the repository contracts on PostgreSQL through database/sql
// and the pgx driver.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/observability/metrics"
	"news-aggregator/internal/repository"
	"news-aggregator/internal/resilience/retry"
)

const upsertSnapshot = `
INSERT INTO article_snapshots (id, url, title, source_count, published_at, payload, snapshot_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
    url          = EXCLUDED.url,
    title        = EXCLUDED.title,
    source_count = EXCLUDED.source_count,
    published_at = EXCLUDED.published_at,
    payload      = EXCLUDED.payload,
    snapshot_at  = EXCLUDED.snapshot_at`

type SnapshotRepo struct {
	db          *sql.DB
	retryConfig retry.Config
}

var _ repository.SnapshotRepository = (*SnapshotRepo)(nil)

func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db, retryConfig: retry.DBConfig()}
}

// Save upserts every non-nil article inside a single transaction.
func (repo *SnapshotRepo) Save(ctx context.Context, articles []*entity.Article, takenAt time.Time) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("snapshot_save", time.Since(start)) }()

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Save: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertSnapshot)
	if err != nil {
		return fmt.Errorf("Save: prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, a := range articles {
		if a == nil {
			continue
		}
		payload, mErr := json.Marshal(a)
		if mErr != nil {
			return fmt.Errorf("Save: marshal %s: %w", a.ID, mErr)
		}
		if _, err = stmt.ExecContext(ctx, a.ID, a.URL, a.Title, a.SourceCount,
			a.PublishedAt.UTC(), payload, takenAt.UTC()); err != nil {
			return fmt.Errorf("Save: exec %s: %w", a.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("Save: commit: %w", err)
	}
	return nil
}

// Latest returns stored articles ordered by published_at DESC, ties by id.
func (repo *SnapshotRepo) Latest(ctx context.Context, limit int) ([]*entity.Article, error) {
	const query = `
SELECT payload
FROM article_snapshots
ORDER BY published_at DESC, id
LIMIT $1`
	return repo.query(ctx, "snapshot_latest", query, limit)
}

// MostRepeated returns stored articles with source_count >= minSources, ordered by
// source_count DESC then published_at DESC.
func (repo *SnapshotRepo) MostRepeated(ctx context.Context, minSources, limit int) ([]*entity.Article, error) {
	const query = `
SELECT payload
FROM article_snapshots
WHERE source_count >= $1
ORDER BY source_count DESC, published_at DESC, id
LIMIT $2`
	return repo.query(ctx, "snapshot_most_repeated", query, minSources, limit)
}

// Prune deletes rows whose snapshot_at is before cutoff.
func (repo *SnapshotRepo) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM article_snapshots WHERE snapshot_at < $1`

	start := time.Now()
	defer func() { metrics.RecordDBQuery("snapshot_prune", time.Since(start)) }()

	res, err := repo.db.ExecContext(ctx, query, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("Prune: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("Prune: rows affected: %w", err)
	}
	return n, nil
}

// query runs a payload-returning SELECT with retry on transient errors and decodes
// every row from its JSON wire form.
func (repo *SnapshotRepo) query(ctx context.Context, op, query string, args ...any) ([]*entity.Article, error) {
	if limit, ok := args[len(args)-1].(int); ok && limit <= 0 {
		return []*entity.Article{}, nil
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery(op, time.Since(start)) }()

	return retry.Do(ctx, repo.retryConfig, func(ctx context.Context) ([]*entity.Article, error) {
		rows, err := repo.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		defer func() { _ = rows.Close() }()

		articles := make([]*entity.Article, 0, 64)
		for rows.Next() {
			var payload []byte
			if err := rows.Scan(&payload); err != nil {
				return nil, fmt.Errorf("%s: Scan: %w", op, err)
			}
			var a entity.Article
			if err := json.Unmarshal(payload, &a); err != nil {
				return nil, fmt.Errorf("%s: decode: %w", op, err)
			}
			articles = append(articles, &a)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return articles, nil
	})
}
