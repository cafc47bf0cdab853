package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"news-aggregator/internal/common/pagination"
	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/observability/logging"
	"news-aggregator/internal/observability/metrics"
	"news-aggregator/internal/resilience/circuitbreaker"
	"news-aggregator/internal/resilience/retry"
	"news-aggregator/internal/usecase/aggregate"
)

const (
	// maxBodySize bounds a single feed document (10MB).
	maxBodySize = 10 * 1024 * 1024

	// maxConcurrentFeeds caps parallel feed downloads per source.
	maxConcurrentFeeds = 4

	defaultUserAgent = "NewsAggregatorBot/1.0"
)

// Config describes one feed-backed source.
type Config struct {
	// Name is the source name reported on every article.
	Name string
	// URLs lists the RSS/Atom documents merged into this source.
	URLs []string
	// Categories are attached to every article and reported by Categories.
	Categories []string
	// Timeout bounds a single feed download. Zero means 15s.
	Timeout time.Duration
	// UserAgent is sent with every request. Empty means a default bot agent.
	UserAgent string
}

// Source is an aggregate.Source that merges several RSS/Atom feeds.
type Source struct {
	cfg         Config
	client      *http.Client
	breakers    map[string]*circuitbreaker.CircuitBreaker
	retryConfig retry.Config
	logger      *slog.Logger
	now         func() time.Time
}

var _ aggregate.Source = (*Source)(nil)

// Option customizes a Source.
type Option func(*Source)

// WithHTTPClient replaces the HTTP client used for downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Source) {
		if client != nil {
			s.client = client
		}
	}
}

// WithRetryConfig replaces the retry policy of feed downloads.
func WithRetryConfig(cfg retry.Config) Option {
	return func(s *Source) { s.retryConfig = cfg }
}

// WithLogger sets the logger for feed failures and skipped entries.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used to default missing publication dates.
func WithClock(now func() time.Time) Option {
	return func(s *Source) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a feed source. Blank URLs are ignored; duplicates are fetched once.
func New(cfg Config, opts ...Option) (*Source, error) {
	cfg.Name = strings.TrimSpace(cfg.Name)
	if cfg.Name == "" {
		return nil, fmt.Errorf("feed: name is required")
	}

	urls := make([]string, 0, len(cfg.URLs))
	seen := make(map[string]struct{}, len(cfg.URLs))
	for _, u := range cfg.URLs {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("feed %q: %w", cfg.Name, ErrNoFeedURLs)
	}
	cfg.URLs = urls

	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	breakers := make(map[string]*circuitbreaker.CircuitBreaker, len(urls))
	for _, u := range urls {
		breakers[u] = circuitbreaker.New(circuitbreaker.FeedFetchConfig(cfg.Name + ":" + u))
	}

	s := &Source{
		cfg:         cfg,
		client:      &http.Client{Timeout: cfg.Timeout},
		breakers:    breakers,
		retryConfig: retry.FeedFetchConfig(),
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name returns the configured source name.
func (s *Source) Name() string {
	return s.cfg.Name
}

// FetchArticles returns the newest entries across all feeds of the source.
// A non-empty category keeps only entries carrying it (case-insensitive).
func (s *Source) FetchArticles(ctx context.Context, q aggregate.FetchQuery) ([]*entity.Article, error) {
	if q.Limit <= 0 {
		return []*entity.Article{}, nil
	}
	articles, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	if q.Category != "" {
		articles = keep(articles, func(a *entity.Article) bool { return hasCategory(a, q.Category) })
	}
	return pagination.Slice(articles, q.Offset, q.Limit), nil
}

// SearchArticles returns entries whose title or description contains query,
// ignoring case.
func (s *Source) SearchArticles(ctx context.Context, query string, limit, offset int) ([]*entity.Article, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" || limit <= 0 {
		return []*entity.Article{}, nil
	}
	articles, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	matches := keep(articles, func(a *entity.Article) bool {
		return strings.Contains(strings.ToLower(a.Title), needle) ||
			strings.Contains(strings.ToLower(a.Description), needle)
	})
	return pagination.Slice(matches, offset, limit), nil
}

// Categories returns the configured categories together with every category found in
// the feeds. When the feeds cannot be fetched the configured list alone is returned,
// unless it is empty.
func (s *Source) Categories(ctx context.Context) ([]string, error) {
	articles, err := s.fetchAll(ctx)
	if err != nil && len(s.cfg.Categories) == 0 {
		return nil, err
	}
	cats := mergeCategories(s.cfg.Categories, nil)
	for _, a := range articles {
		cats = mergeCategories(cats, a.Categories)
	}
	return cats, nil
}

// IsAvailable reports whether at least one feed URL can be downloaded and parsed.
// Probes bypass retry but still go through the circuit breakers.
func (s *Source) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, aggregate.HealthProbeTimeout)
	defer cancel()

	for _, u := range s.cfg.URLs {
		_, err := circuitbreaker.Execute(s.breakers[u], func() (*gofeed.Feed, error) {
			return s.download(ctx, u)
		})
		if err == nil {
			return true
		}
		s.logger.Debug("feed health probe failed",
			slog.String("source", s.cfg.Name),
			slog.String("url", u),
			slog.Any("error", err))
	}
	return false
}

// fetchAll downloads every feed concurrently and returns the distinct entries newest
// first. It fails only when every feed failed.
func (s *Source) fetchAll(ctx context.Context) ([]*entity.Article, error) {
	results := make([][]*entity.Article, len(s.cfg.URLs))
	errs := make([]error, len(s.cfg.URLs))

	var g errgroup.Group
	g.SetLimit(maxConcurrentFeeds)
	for i, u := range s.cfg.URLs {
		g.Go(func() error {
			articles, err := s.fetchOne(ctx, u)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", u, err)
				logging.WithSource(s.logger, s.cfg.Name).Warn("feed fetch failed",
					slog.String("url", u),
					slog.Any("error", err))
				return nil
			}
			results[i] = articles
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed == len(s.cfg.URLs) {
		return nil, fmt.Errorf("feed %q: %w: %w", s.cfg.Name, ErrAllFeedsFailed, errors.Join(errs...))
	}

	seen := make(map[string]struct{})
	out := make([]*entity.Article, 0)
	for _, articles := range results {
		for _, a := range articles {
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out, nil
}

// fetchOne downloads one feed with retry and circuit breaker and converts its entries.
func (s *Source) fetchOne(ctx context.Context, feedURL string) ([]*entity.Article, error) {
	cb := s.breakers[feedURL]
	parsed, err := retry.Do(ctx, s.retryConfig, func(ctx context.Context) (*gofeed.Feed, error) {
		return circuitbreaker.Execute(cb, func() (*gofeed.Feed, error) {
			return s.download(ctx, feedURL)
		})
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			s.logger.Warn("feed fetch circuit breaker open, request rejected",
				slog.String("source", s.cfg.Name),
				slog.String("url", feedURL),
				slog.String("state", cb.State().String()))
		}
		return nil, err
	}

	now := s.now()
	articles := make([]*entity.Article, 0, len(parsed.Items))
	skipped := 0
	for _, it := range parsed.Items {
		if it == nil {
			continue
		}
		art, err := toArticle(it, s.cfg.Name, s.cfg.Categories, now)
		if err != nil {
			skipped++
			s.logger.Debug("skipping malformed feed entry",
				slog.String("source", s.cfg.Name),
				slog.String("url", feedURL),
				slog.Any("error", err))
			continue
		}
		articles = append(articles, art)
	}
	metrics.RecordSkippedItems(s.cfg.Name, skipped)
	return articles, nil
}

// download performs a single GET and parses the body. Non-2xx responses become
// *retry.HTTPError so that 5xx and 429 are retried.
func (s *Source) download(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return parsed, nil
}

func keep(articles []*entity.Article, pred func(*entity.Article) bool) []*entity.Article {
	out := make([]*entity.Article, 0, len(articles))
	for _, a := range articles {
		if pred(a) {
			out = append(out, a)
		}
	}
	return out
}

func hasCategory(a *entity.Article, category string) bool {
	category = strings.TrimSpace(category)
	for _, c := range a.Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}
