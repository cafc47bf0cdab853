// Package catalog turns the source catalogue file into aggregate.Source adapters.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"news-aggregator/internal/config"
	"news-aggregator/internal/infra/feed"
	"news-aggregator/internal/infra/newsapi"
	"news-aggregator/internal/usecase/aggregate"
)

// Load reads the catalogue at path. A missing file yields an empty catalogue so that a
// deployment can run on NewsAPI alone; any other read or validation error is returned.
func Load(path string) (*config.Sources, error) {
	cat, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return &config.Sources{}, nil
	}
	return cat, err
}

// Build creates one adapter per catalogue entry.
//
// NewsAPI is enabled by a newsapi block in the catalogue or, without one, by a non-empty
// NEWSAPI_KEY. A newsapi block without a key is skipped with a warning rather than
// failing startup.
func Build(cat *config.Sources, logger *slog.Logger) ([]aggregate.Source, error) {
	if cat == nil {
		cat = &config.Sources{}
	}

	sources := make([]aggregate.Source, 0, len(cat.Feeds)+1)
	for _, f := range cat.Feeds {
		src, err := feed.New(feed.Config{
			Name:       f.Name,
			URLs:       f.URLs,
			Categories: f.Categories,
			Timeout:    f.Timeout,
			UserAgent:  f.UserAgent,
		}, feed.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("feed source %q: %w", f.Name, err)
		}
		sources = append(sources, src)
	}

	apiCfg := newsapi.LoadConfigFromEnv(newsapi.DefaultConfig())
	if cat.NewsAPI != nil {
		apiCfg.Name = cat.NewsAPI.Name
		if cat.NewsAPI.Country != "" {
			apiCfg.Country = cat.NewsAPI.Country
		}
		if cat.NewsAPI.Language != "" {
			apiCfg.Language = cat.NewsAPI.Language
		}
	}
	switch {
	case apiCfg.APIKey != "":
		client, err := newsapi.New(apiCfg, newsapi.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("newsapi source: %w", err)
		}
		sources = append(sources, client)
	case cat.NewsAPI != nil:
		logger.Warn("newsapi source configured without NEWSAPI_KEY, skipping",
			slog.String("source", apiCfg.Name))
	}

	if len(sources) == 0 {
		return nil, aggregate.ErrNoSources
	}
	return sources, nil
}
