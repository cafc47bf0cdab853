package aggregate_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/usecase/aggregate"
)

var errUpstream = errors.New("upstream unavailable")

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// fakeSource is a configurable in-memory aggregate.Source.
type fakeSource struct {
	name       string
	articles   []*entity.Article
	categories []string
	err        error
	panicMsg   string
	available  bool
	block      bool
	onCall     func()

	mu      sync.Mutex
	queries []aggregate.FetchQuery
	calls   int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchArticles(ctx context.Context, q aggregate.FetchQuery) ([]*entity.Article, error) {
	f.record(q)
	return f.result()
}

func (f *fakeSource) SearchArticles(ctx context.Context, query string, limit, offset int) ([]*entity.Article, error) {
	f.record(aggregate.FetchQuery{Category: query, Limit: limit, Offset: offset})
	return f.result()
}

func (f *fakeSource) Categories(ctx context.Context) ([]string, error) {
	f.record(aggregate.FetchQuery{})
	if f.err != nil {
		return nil, f.err
	}
	return f.categories, nil
}

func (f *fakeSource) IsAvailable(ctx context.Context) bool {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.block {
		time.Sleep(time.Second)
	}
	return f.available
}

func (f *fakeSource) record(q aggregate.FetchQuery) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.calls++
	f.mu.Unlock()
	if f.onCall != nil {
		f.onCall()
	}
}

func (f *fakeSource) result() ([]*entity.Article, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.articles, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// art builds an article published hoursAgo before baseTime.
func art(t *testing.T, source, url, title string, hoursAgo int) *entity.Article {
	t.Helper()
	a, err := entity.NewArticle(entity.ArticleInput{
		Title:       title,
		URL:         url,
		SourceName:  source,
		PublishedAt: baseTime.Add(-time.Duration(hoursAgo) * time.Hour),
	}, baseTime)
	require.NoError(t, err)
	return a
}

// withSources returns a copy of a reported by the given sources.
func withSources(a *entity.Article, sources ...string) *entity.Article {
	c := *a
	c.SourceNames = sources
	c.SourceCount = len(sources)
	return &c
}

func titlesOf(articles []*entity.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.Title)
	}
	return out
}
