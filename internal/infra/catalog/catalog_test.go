package catalog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-aggregator/internal/config"
	"news-aggregator/internal/usecase/aggregate"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func names(sources []aggregate.Source) []string {
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		out = append(out, s.Name())
	}
	return out
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	cat, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cat.Feeds)
	assert.Nil(t, cat.NewsAPI)
}

func TestLoad_InvalidFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feeds:\n  - name: x\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestBuild_FeedsAndNewsAPI(t *testing.T) {
	t.Setenv("NEWSAPI_KEY", "test-key")
	cat := &config.Sources{
		Feeds: []config.FeedSource{
			{Name: "Tech", URLs: []string{"https://example.com/rss"}},
			{Name: "World", URLs: []string{"https://example.org/atom"}},
		},
		NewsAPI: &config.NewsAPISource{Name: "Headlines", Country: "gb"},
	}

	sources, err := Build(cat, discard())
	require.NoError(t, err)
	assert.Equal(t, []string{"Tech", "World", "Headlines"}, names(sources))
}

func TestBuild_NewsAPIFromKeyOnly(t *testing.T) {
	t.Setenv("NEWSAPI_KEY", "test-key")

	sources, err := Build(nil, discard())
	require.NoError(t, err)
	assert.Equal(t, []string{"NewsAPI"}, names(sources))
}

func TestBuild_NewsAPIWithoutKeyIsSkipped(t *testing.T) {
	t.Setenv("NEWSAPI_KEY", "")
	cat := &config.Sources{
		Feeds:   []config.FeedSource{{Name: "Tech", URLs: []string{"https://example.com/rss"}}},
		NewsAPI: &config.NewsAPISource{Name: "NewsAPI"},
	}

	sources, err := Build(cat, discard())
	require.NoError(t, err)
	assert.Equal(t, []string{"Tech"}, names(sources))
}

func TestBuild_NothingConfigured(t *testing.T) {
	t.Setenv("NEWSAPI_KEY", "")

	_, err := Build(&config.Sources{}, discard())
	assert.ErrorIs(t, err, aggregate.ErrNoSources)
}
