package entity_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-aggregator/internal/domain/entity"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newArticle(t *testing.T, url, title, source string) *entity.Article {
	t.Helper()
	a, err := entity.NewArticle(entity.ArticleInput{
		Title:      title,
		URL:        url,
		SourceName: source,
	}, fixedNow)
	require.NoError(t, err)
	return a
}

func TestNewArticleID_Deterministic(t *testing.T) {
	id1 := entity.NewArticleID("https://Example.com/news/1")
	id2 := entity.NewArticleID("https://Example.com/news/1")
	id3 := entity.NewArticleID("https://example.com/news/2")

	assert.Equal(t, id1, id2)
	assert.NotEqual(t, id1, id3)
	assert.Regexp(t, `^example\.com-[0-9a-f]{16}$`, id1)
}

func TestNewArticleID_UnparsableURL(t *testing.T) {
	id := entity.NewArticleID("not a url")
	assert.Regexp(t, `^article-[0-9a-f]{16}$`, id)
}

func TestNewArticle(t *testing.T) {
	tests := []struct {
		name      string
		in        entity.ArticleInput
		wantField string
	}{
		{
			name:      "missing title",
			in:        entity.ArticleInput{URL: "https://example.com/a", SourceName: "A"},
			wantField: "title",
		},
		{
			name:      "blank url",
			in:        entity.ArticleInput{Title: "Hello", URL: "   ", SourceName: "A"},
			wantField: "url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := entity.NewArticle(tt.in, fixedNow)
			require.Error(t, err)
			assert.True(t, errors.Is(err, entity.ErrValidationFailed))

			var vErr *entity.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestNewArticle_Defaults(t *testing.T) {
	a := newArticle(t, "https://example.com/a", "  Hello  ", "Feed A")

	assert.Equal(t, "Hello", a.Title)
	assert.Equal(t, fixedNow, a.PublishedAt)
	assert.Equal(t, 1, a.SourceCount)
	assert.Equal(t, []string{"Feed A"}, a.SourceNames)
}

func TestArticle_Merge(t *testing.T) {
	a := newArticle(t, "https://example.com/a", "Story", "A")
	b := newArticle(t, "https://other.com/a", "Story copy", "B")

	merged := a.Merge(b)

	assert.Equal(t, a.URL, merged.URL)
	assert.Equal(t, a.Title, merged.Title)
	assert.Equal(t, []string{"A", "B"}, merged.SourceNames)
	assert.Equal(t, 2, merged.SourceCount)

	// inputs untouched
	assert.Equal(t, []string{"A"}, a.SourceNames)
	assert.Equal(t, 1, a.SourceCount)
	assert.Equal(t, []string{"B"}, b.SourceNames)
}

func TestArticle_Merge_SameSourceDoesNotInflate(t *testing.T) {
	a := newArticle(t, "https://example.com/a", "Story", "A")
	again := newArticle(t, "https://example.com/a?utm=1", "Story", "A")

	merged := a.Merge(again).Merge(again).Merge(a)

	assert.Equal(t, []string{"A"}, merged.SourceNames)
	assert.Equal(t, 1, merged.SourceCount)
}

func TestArticle_Merge_InvariantHoldsAcrossSequences(t *testing.T) {
	sources := []string{"A", "B", "A", "C", "B", "C", "D", "A"}
	acc := newArticle(t, "https://example.com/a", "Story", sources[0])
	for _, s := range sources[1:] {
		acc = acc.Merge(newArticle(t, "https://example.com/a", "Story", s))

		assert.Equal(t, len(acc.SourceNames), acc.SourceCount)
		seen := map[string]bool{}
		for _, n := range acc.SourceNames {
			assert.False(t, seen[n], "duplicate source %q", n)
			seen[n] = true
		}
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, acc.SourceNames)
}

func TestArticle_HasSourceAndSameAs(t *testing.T) {
	a := newArticle(t, "https://example.com/a", "Story", "A")
	b := newArticle(t, "https://example.com/a", "Edited headline", "B")

	assert.True(t, a.HasSource("A"))
	assert.False(t, a.HasSource("B"))
	assert.True(t, a.SameAs(b))
	assert.False(t, a.SameAs(newArticle(t, "https://example.com/b", "Story", "A")))
}

func TestArticle_JSONRoundTrip(t *testing.T) {
	a := &entity.Article{
		ID:          "example.com-0123456789abcdef",
		Title:       "Title",
		Description: "Desc",
		Content:     "Body",
		URL:         "https://example.com/a",
		ImageURL:    "https://example.com/a.png",
		PublishedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		SourceName:  "A",
		Author:      "Jane",
		Categories:  []string{"tech"},
		SourceCount: 2,
		SourceNames: []string{"A", "B"},
	}

	data, err := json.Marshal(a)
	require.NoError(t, err)

	var got entity.Article
	require.NoError(t, json.Unmarshal(data, &got))

	assert.True(t, got.SameAs(a))
	assert.True(t, got.PublishedAt.Equal(a.PublishedAt))
	got.PublishedAt = a.PublishedAt
	assert.Equal(t, *a, got)
}

func TestArticle_UnmarshalDefaults(t *testing.T) {
	payload := `{"id":"x","title":"T","url":"https://example.com","publishedAt":"2024-01-02T03:04:05Z","sourceName":"Feed"}`

	var got entity.Article
	require.NoError(t, json.Unmarshal([]byte(payload), &got))

	assert.Equal(t, 1, got.SourceCount)
	assert.Equal(t, []string{"Feed"}, got.SourceNames)
	assert.Empty(t, got.Description)
	assert.Empty(t, got.Categories)
}

func TestArticle_UnmarshalRepairsCount(t *testing.T) {
	payload := `{"id":"x","title":"T","url":"u","publishedAt":"2024-01-02T03:04:05Z","sourceName":"A","sourceCount":5,"sourceNames":["A","B","A"]}`

	var got entity.Article
	require.NoError(t, json.Unmarshal([]byte(payload), &got))

	assert.Equal(t, []string{"A", "B"}, got.SourceNames)
	assert.Equal(t, 2, got.SourceCount)
}

func TestArticle_UnmarshalBadTimestamp(t *testing.T) {
	var got entity.Article
	err := json.Unmarshal([]byte(`{"id":"x","publishedAt":"yesterday"}`), &got)
	assert.Error(t, err)
}
