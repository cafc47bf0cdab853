package newsapi

import (
	"fmt"
	"time"

	"news-aggregator/pkg/config"
)

// DefaultBaseURL is the public NewsAPI endpoint.
const DefaultBaseURL = "https://newsapi.org"

// maxPageSize is the largest page the provider serves.
const maxPageSize = 100

// Categories served by the top-headlines endpoint.
var defaultCategories = []string{
	"business", "entertainment", "general", "health", "science", "sports", "technology",
}

// Config holds the adapter configuration.
type Config struct {
	// Name is the source name reported on every article.
	Name string
	// BaseURL is the scheme and host of the API, without trailing slash.
	BaseURL string
	// APIKey is sent in the X-Api-Key header.
	APIKey string
	// Country restricts top headlines (ISO 3166-1 alpha-2), empty for all.
	Country string
	// Language restricts search results (ISO 639-1), empty for all.
	Language string
	// RequestsPerSecond caps the outbound request rate. Burst is always 1.
	RequestsPerSecond float64
	// Timeout bounds a single HTTP request.
	Timeout time.Duration
}

// DefaultConfig returns a configuration for the public NewsAPI endpoint.
func DefaultConfig() Config {
	return Config{
		Name:              "NewsAPI",
		BaseURL:           DefaultBaseURL,
		Country:           "us",
		RequestsPerSecond: 1,
		Timeout:           10 * time.Second,
	}
}

// LoadConfigFromEnv overlays NEWSAPI_* environment variables on top of base.
//
//   - NEWSAPI_KEY: API key
//   - NEWSAPI_BASE_URL: endpoint override
//   - NEWSAPI_COUNTRY, NEWSAPI_LANGUAGE: result filters
//   - NEWSAPI_RPS: request rate limit
//   - NEWSAPI_TIMEOUT: per-request timeout
func LoadConfigFromEnv(base Config) Config {
	base.APIKey = config.GetEnvString("NEWSAPI_KEY", base.APIKey)
	base.BaseURL = config.GetEnvString("NEWSAPI_BASE_URL", base.BaseURL)
	base.Country = config.GetEnvString("NEWSAPI_COUNTRY", base.Country)
	base.Language = config.GetEnvString("NEWSAPI_LANGUAGE", base.Language)
	base.RequestsPerSecond = config.GetEnvFloat("NEWSAPI_RPS", base.RequestsPerSecond)
	base.Timeout = config.GetEnvDuration("NEWSAPI_TIMEOUT", base.Timeout)
	return base
}

// Validate checks that the configuration can be used to build a client.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("newsapi: name is required")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("newsapi: base url is required")
	}
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("newsapi: requests per second must be positive, got %v", c.RequestsPerSecond)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("newsapi: timeout must be positive, got %v", c.Timeout)
	}
	return nil
}
