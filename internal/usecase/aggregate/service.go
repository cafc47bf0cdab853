package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"news-aggregator/internal/common/pagination"
	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/observability/logging"
	"news-aggregator/internal/observability/metrics"
	"news-aggregator/internal/observability/tracing"
	"news-aggregator/internal/usecase/dedup"
)

const (
	opFetch      = "fetch"
	opSearch     = "search"
	opCategories = "categories"
)

// Service aggregates articles from several news sources.
// It is safe for concurrent use; it holds no mutable state after construction.
type Service struct {
	sources  []Source
	strategy dedup.Strategy
	logger   *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger sets the logger used for per-source failure reports.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// SourceStats describes one source's contribution to an aggregation call.
type SourceStats struct {
	Name     string
	Articles int
	Duration time.Duration
	Err      error
}

// SnapshotResult is the complete deduplicated, date-sorted article set of one fetch,
// together with per-source statistics.
type SnapshotResult struct {
	Articles []*entity.Article
	Sources  []SourceStats
	TakenAt  time.Time
}

// NewService creates an aggregation Service over sources using the given strategy.
// The strategy is fixed for the lifetime of the Service.
//
// It fails when no source is given, when two sources share a name, or when the strategy
// is not one of the declared values.
func NewService(sources []Source, strategy dedup.Strategy, opts ...Option) (*Service, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	if !strategy.Valid() {
		return nil, fmt.Errorf("%w: %d", dedup.ErrUnknownStrategy, int(strategy))
	}

	seen := make(map[string]struct{}, len(sources))
	for _, src := range sources {
		if src == nil {
			return nil, fmt.Errorf("%w: nil source", ErrNoSources)
		}
		if _, dup := seen[src.Name()]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSource, src.Name())
		}
		seen[src.Name()] = struct{}{}
	}

	s := &Service{
		sources:  append([]Source(nil), sources...),
		strategy: strategy,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Strategy returns the deduplication strategy of the service.
func (s *Service) Strategy() dedup.Strategy {
	return s.strategy
}

// SourceNames returns the names of the registered sources in registration order.
func (s *Service) SourceNames() []string {
	names := make([]string, 0, len(s.sources))
	for _, src := range s.sources {
		names = append(names, src.Name())
	}
	return names
}

// FetchArticles returns one page of the latest deduplicated articles across all sources.
//
// Every source is queried concurrently for the first Offset+Limit articles. A failing
// source contributes nothing and is logged; the call itself never fails because of it.
// An offset past the end of the merged set yields an empty slice.
func (s *Service) FetchArticles(ctx context.Context, q FetchQuery) ([]*entity.Article, error) {
	start := time.Now()
	defer func() { metrics.RecordAggregation(opFetch, time.Since(start)) }()

	window := windowSize(q.Offset, q.Limit)
	if window == 0 {
		return []*entity.Article{}, nil
	}
	perSource := FetchQuery{Category: q.Category, Limit: window, Offset: 0}

	articles, _ := s.gather(ctx, opFetch, func(ctx context.Context, src Source) ([]*entity.Article, error) {
		return src.FetchArticles(ctx, perSource)
	})
	return pagination.Slice(s.mergeAndSort(articles), q.Offset, q.Limit), nil
}

// SearchArticles runs query against every source concurrently and returns one page of
// the deduplicated matches, newest first. A blank query yields an empty slice.
func (s *Service) SearchArticles(ctx context.Context, query string, limit, offset int) ([]*entity.Article, error) {
	start := time.Now()
	defer func() { metrics.RecordAggregation(opSearch, time.Since(start)) }()

	query = strings.TrimSpace(query)
	window := windowSize(offset, limit)
	if query == "" || window == 0 {
		return []*entity.Article{}, nil
	}

	articles, _ := s.gather(ctx, opSearch, func(ctx context.Context, src Source) ([]*entity.Article, error) {
		return src.SearchArticles(ctx, query, window, 0)
	})
	return pagination.Slice(s.mergeAndSort(articles), offset, limit), nil
}

// Snapshot fetches up to perSourceLimit articles per source (optionally restricted to a
// category) and returns the whole merged, sorted set with per-source statistics.
func (s *Service) Snapshot(ctx context.Context, category string, perSourceLimit int) (*SnapshotResult, error) {
	start := time.Now()
	q := FetchQuery{Category: category, Limit: perSourceLimit, Offset: 0}

	articles, stats := s.gather(ctx, opFetch, func(ctx context.Context, src Source) ([]*entity.Article, error) {
		return src.FetchArticles(ctx, q)
	})
	merged := s.mergeAndSort(articles)
	metrics.RecordAggregation("snapshot", time.Since(start))

	return &SnapshotResult{
		Articles: merged,
		Sources:  stats,
		TakenAt:  start,
	}, nil
}

// Categories returns the sorted union of every source's categories.
// Sources that fail are skipped.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	lists := make([][]string, len(s.sources))

	var g errgroup.Group
	for i, src := range s.sources {
		g.Go(func() error {
			cats, err := callSource(ctx, src, opCategories, func(ctx context.Context) ([]string, error) {
				return src.Categories(ctx)
			})
			if err != nil {
				logging.WithSource(s.logger, src.Name()).Warn("failed to list categories",
					slog.Any("error", err))
				return nil
			}
			lists[i] = cats
			return nil
		})
	}
	_ = g.Wait()

	set := make(map[string]struct{})
	out := make([]string, 0)
	for _, cats := range lists {
		for _, c := range cats {
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			if _, ok := set[c]; ok {
				continue
			}
			set[c] = struct{}{}
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out, nil
}

// CheckSourcesHealth probes every source concurrently and reports availability by name.
// Each probe is bounded by HealthProbeTimeout; a probe that errors, panics or times out
// reports false.
func (s *Service) CheckSourcesHealth(ctx context.Context) map[string]bool {
	results := make([]bool, len(s.sources))

	var g errgroup.Group
	for i, src := range s.sources {
		g.Go(func() error {
			results[i] = probe(ctx, src)
			metrics.RecordSourceHealth(src.Name(), results[i])
			return nil
		})
	}
	_ = g.Wait()

	health := make(map[string]bool, len(s.sources))
	for i, src := range s.sources {
		health[src.Name()] = results[i]
	}
	return health
}

// gather calls every source concurrently and waits for all of them. Failures are logged
// and turned into empty contributions. Results are flattened in source registration
// order so the merge input does not depend on response timing.
func (s *Service) gather(
	ctx context.Context,
	op string,
	call func(context.Context, Source) ([]*entity.Article, error),
) ([]*entity.Article, []SourceStats) {
	results := make([][]*entity.Article, len(s.sources))
	stats := make([]SourceStats, len(s.sources))

	var g errgroup.Group
	for i, src := range s.sources {
		g.Go(func() error {
			started := time.Now()
			articles, err := callSource(ctx, src, op, func(ctx context.Context) ([]*entity.Article, error) {
				return call(ctx, src)
			})
			elapsed := time.Since(started)

			metrics.RecordSourceCall(src.Name(), op, elapsed, len(articles), err)
			stats[i] = SourceStats{Name: src.Name(), Duration: elapsed, Err: err}
			if err != nil {
				logging.WithSource(s.logger, src.Name()).Warn("source call failed, continuing without it",
					slog.String("operation", op),
					slog.Duration("duration", elapsed),
					slog.Any("error", err))
				return nil
			}
			stats[i].Articles = len(articles)
			results[i] = articles
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, r := range results {
		total += len(r)
	}
	flat := make([]*entity.Article, 0, total)
	for _, r := range results {
		flat = append(flat, r...)
	}
	return flat, stats
}

// mergeAndSort deduplicates articles and orders them newest first. The sort is stable,
// so articles with equal timestamps keep their post-merge order.
func (s *Service) mergeAndSort(articles []*entity.Article) []*entity.Article {
	merged := dedup.Deduplicate(articles, s.strategy)
	metrics.RecordDedup(s.strategy.String(), len(articles), len(merged))

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedAt.After(merged[j].PublishedAt)
	})
	return merged
}

// callSource runs fn inside a span for src and converts a panic into an error.
func callSource[T any](ctx context.Context, src Source, op string, fn func(context.Context) (T, error)) (result T, err error) {
	ctx, span := tracing.GetTracer().Start(ctx, "source."+op)
	span.SetAttributes(attribute.String("source.name", src.Name()))
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("source %q panicked: %v", src.Name(), r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	return fn(ctx)
}

// probe runs src.IsAvailable with a bounded deadline. The result channel is buffered so
// a probe that ignores its context can finish later without blocking.
func probe(ctx context.Context, src Source) bool {
	ctx, cancel := context.WithTimeout(ctx, HealthProbeTimeout)
	defer cancel()

	done := make(chan bool, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- false
			}
		}()
		done <- src.IsAvailable(ctx)
	}()

	select {
	case ok := <-done:
		return ok
	case <-ctx.Done():
		return false
	}
}

// windowSize returns how many leading articles are needed to serve [offset, offset+limit).
func windowSize(offset, limit int) int {
	if limit <= 0 {
		return 0
	}
	offset = max(offset, 0)
	if w := offset + limit; w > 0 {
		return w
	}
	return limit
}
