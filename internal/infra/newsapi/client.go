package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"news-aggregator/internal/common/pagination"
	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/observability/logging"
	"news-aggregator/internal/observability/metrics"
	"news-aggregator/internal/resilience/circuitbreaker"
	"news-aggregator/internal/resilience/retry"
	"news-aggregator/internal/usecase/aggregate"
)

const (
	topHeadlinesPath = "/v2/top-headlines"
	everythingPath   = "/v2/everything"

	// maxBodySize bounds the response body read from the provider (5MB).
	maxBodySize = 5 * 1024 * 1024

	// removedMarker is the title the provider puts on retracted articles.
	removedMarker = "[Removed]"
)

// Client is an aggregate.Source backed by a NewsAPI-compatible REST service.
type Client struct {
	cfg            Config
	httpClient     *http.Client
	limiter        *rate.Limiter
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	logger         *slog.Logger
	now            func() time.Time
}

var _ aggregate.Source = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRetryConfig replaces the retry policy.
func WithRetryConfig(cfg retry.Config) Option {
	return func(c *Client) { c.retryConfig = cfg }
}

// WithLogger sets the logger used for skipped items and breaker events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source used to default missing publication dates.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a NewsAPI client. The configuration is validated first.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &Client{
		cfg:            cfg,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		limiter:        rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		circuitBreaker: circuitbreaker.New(circuitbreaker.NewsAPIConfig("newsapi-" + cfg.Name)),
		retryConfig:    retry.NewsAPIConfig(),
		logger:         slog.Default(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name returns the configured source name.
func (c *Client) Name() string {
	return c.cfg.Name
}

// FetchArticles returns the latest headlines, optionally restricted to a category.
func (c *Client) FetchArticles(ctx context.Context, q aggregate.FetchQuery) ([]*entity.Article, error) {
	pageSize, ok := pageSizeFor(q.Offset, q.Limit)
	if !ok {
		return []*entity.Article{}, nil
	}

	params := url.Values{}
	if c.cfg.Country != "" {
		params.Set("country", c.cfg.Country)
	}
	if q.Category != "" {
		params.Set("category", strings.ToLower(q.Category))
	}
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("page", "1")

	resp, err := c.get(ctx, topHeadlinesPath, params)
	if err != nil {
		return nil, err
	}
	var categories []string
	if q.Category != "" {
		categories = []string{strings.ToLower(q.Category)}
	}
	return pagination.Slice(c.toArticles(resp.Articles, categories), q.Offset, q.Limit), nil
}

// SearchArticles queries the everything endpoint, newest first.
func (c *Client) SearchArticles(ctx context.Context, query string, limit, offset int) ([]*entity.Article, error) {
	query = strings.TrimSpace(query)
	pageSize, ok := pageSizeFor(offset, limit)
	if query == "" || !ok {
		return []*entity.Article{}, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("sortBy", "publishedAt")
	if c.cfg.Language != "" {
		params.Set("language", c.cfg.Language)
	}
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("page", "1")

	resp, err := c.get(ctx, everythingPath, params)
	if err != nil {
		return nil, err
	}
	return pagination.Slice(c.toArticles(resp.Articles, nil), offset, limit), nil
}

// Categories returns the fixed category list of the top-headlines endpoint.
func (c *Client) Categories(context.Context) ([]string, error) {
	return append([]string(nil), defaultCategories...), nil
}

// IsAvailable issues a single-article headline request.
// It reports false on any failure, including an open circuit.
func (c *Client) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, aggregate.HealthProbeTimeout)
	defer cancel()

	params := url.Values{}
	if c.cfg.Country != "" {
		params.Set("country", c.cfg.Country)
	}
	params.Set("pageSize", "1")

	_, err := circuitbreaker.Execute(c.circuitBreaker, func() (*apiResponse, error) {
		return c.doRequest(ctx, topHeadlinesPath, params)
	})
	if err != nil {
		c.logger.Debug("newsapi health probe failed",
			slog.String("source", c.cfg.Name),
			slog.Any("error", err))
		return false
	}
	return true
}

// get performs a GET with retry and circuit breaker protection.
func (c *Client) get(ctx context.Context, path string, params url.Values) (*apiResponse, error) {
	resp, err := retry.Do(ctx, c.retryConfig, func(ctx context.Context) (*apiResponse, error) {
		return circuitbreaker.Execute(c.circuitBreaker, func() (*apiResponse, error) {
			return c.doRequest(ctx, path, params)
		})
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			c.logger.Warn("newsapi circuit breaker open, request rejected",
				slog.String("source", c.cfg.Name),
				slog.String("state", c.circuitBreaker.State().String()))
		}
		return nil, fmt.Errorf("newsapi %s: %w", path, err)
	}
	return resp, nil
}

// doRequest performs a single rate-limited request and decodes the envelope.
func (c *Client) doRequest(ctx context.Context, path string, params url.Values) (*apiResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := c.cfg.BaseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var decoded apiResponse
	decodeErr := json.Unmarshal(body, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && decoded.Message != "" {
			msg = decoded.Code + ": " + decoded.Message
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, &retry.HTTPError{StatusCode: resp.StatusCode, Message: msg})
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if decoded.Status == statusError {
		return nil, fmt.Errorf("%w: %s: %s", ErrUpstream, decoded.Code, decoded.Message)
	}
	return &decoded, nil
}

// toArticles converts provider records, skipping malformed or retracted ones.
func (c *Client) toArticles(records []apiArticle, categories []string) []*entity.Article {
	now := c.now()
	out := make([]*entity.Article, 0, len(records))
	skipped := 0

	for _, r := range records {
		art, err := r.toEntity(c.cfg.Name, categories, now)
		if err != nil {
			skipped++
			logging.WithSource(c.logger, c.cfg.Name).Debug("skipping malformed article",
				slog.String("url", r.URL),
				slog.Any("error", err))
			continue
		}
		out = append(out, art)
	}

	metrics.RecordSkippedItems(c.cfg.Name, skipped)
	return out
}

// pageSizeFor returns the page size needed to serve [offset, offset+limit) from the
// first page, capped at the provider maximum. ok is false when nothing is requested.
func pageSizeFor(offset, limit int) (size int, ok bool) {
	if limit <= 0 {
		return 0, false
	}
	size = max(offset, 0) + limit
	if size <= 0 || size > maxPageSize {
		size = maxPageSize
	}
	return size, true
}
