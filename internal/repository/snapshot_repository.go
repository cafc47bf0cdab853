// Package repository declares the persistence contracts used by the application.
package repository

import (
	"context"
	"time"

	"news-aggregator/internal/domain/entity"
)

// SnapshotRepository stores the merged articles of periodic aggregation runs.
type SnapshotRepository interface {
	// Save upserts articles by ID and stamps them with takenAt.
	// All rows are written in one transaction.
	Save(ctx context.Context, articles []*entity.Article, takenAt time.Time) error
	// Latest returns up to limit stored articles, newest publication first.
	Latest(ctx context.Context, limit int) ([]*entity.Article, error)
	// MostRepeated returns up to limit stored articles reported by at least minSources
	// sources, highest source count first.
	MostRepeated(ctx context.Context, minSources, limit int) ([]*entity.Article, error)
	// Prune deletes articles last seen before cutoff and returns how many were removed.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}
