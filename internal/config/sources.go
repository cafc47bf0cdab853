// Package config loads the news source catalogue from a YAML file.
//
// The file lists feed-backed sources and optionally configures the NewsAPI source:
//
//	feeds:
//	  - name: Tech Feeds
//	    urls:
//	      - https://example.com/rss
//	      - https://example.org/atom.xml
//	    categories: [technology]
//	    timeout: 15s
//	newsapi:
//	  name: NewsAPI
//	  country: us
//	  language: en
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNoSources indicates a catalogue that declares no source at all.
var ErrNoSources = errors.New("no sources configured")

// Sources is the decoded source catalogue.
type Sources struct {
	Feeds   []FeedSource   `yaml:"feeds"`
	NewsAPI *NewsAPISource `yaml:"newsapi"`
}

// FeedSource groups RSS/Atom documents under one source name.
type FeedSource struct {
	Name       string        `yaml:"name"`
	URLs       []string      `yaml:"urls"`
	Categories []string      `yaml:"categories"`
	Timeout    time.Duration `yaml:"timeout"`
	UserAgent  string        `yaml:"user_agent"`
}

// NewsAPISource configures the NewsAPI adapter. The API key is never read from the
// file; it comes from NEWSAPI_KEY.
type NewsAPISource struct {
	Name     string `yaml:"name"`
	Country  string `yaml:"country"`
	Language string `yaml:"language"`
}

// Load reads and validates the catalogue at path.
func Load(path string) (*Sources, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file %s: %w", path, err)
	}
	s, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("sources file %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a YAML catalogue. Unknown keys are rejected.
func Parse(raw []byte) (*Sources, error) {
	var s Sources
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	s.normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Names returns every configured source name, feeds first.
func (s *Sources) Names() []string {
	names := make([]string, 0, len(s.Feeds)+1)
	for _, f := range s.Feeds {
		names = append(names, f.Name)
	}
	if s.NewsAPI != nil {
		names = append(names, s.NewsAPI.Name)
	}
	return names
}

// Validate reports every problem of the catalogue at once: missing or duplicate names,
// feed sources without URLs, malformed URLs and negative timeouts.
func (s *Sources) Validate() error {
	if len(s.Feeds) == 0 && s.NewsAPI == nil {
		return ErrNoSources
	}

	var errs []error
	seen := make(map[string]struct{})
	checkName := func(where, name string) {
		if name == "" {
			errs = append(errs, fmt.Errorf("%s: name is required", where))
			return
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			errs = append(errs, fmt.Errorf("%s: duplicate source name %q", where, name))
			return
		}
		seen[key] = struct{}{}
	}

	for i, f := range s.Feeds {
		where := fmt.Sprintf("feeds[%d]", i)
		checkName(where, f.Name)
		if len(f.URLs) == 0 {
			errs = append(errs, fmt.Errorf("%s: at least one url is required", where))
		}
		for _, raw := range f.URLs {
			if err := validateFeedURL(raw); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", where, err))
			}
		}
		if f.Timeout < 0 {
			errs = append(errs, fmt.Errorf("%s: timeout must not be negative", where))
		}
	}
	if s.NewsAPI != nil {
		checkName("newsapi", s.NewsAPI.Name)
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %w", errors.Join(errs...))
	}
	return nil
}

func (s *Sources) normalize() {
	for i := range s.Feeds {
		f := &s.Feeds[i]
		f.Name = strings.TrimSpace(f.Name)
		urls := f.URLs[:0]
		for _, u := range f.URLs {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
		f.URLs = urls
	}
	if s.NewsAPI != nil {
		s.NewsAPI.Name = strings.TrimSpace(s.NewsAPI.Name)
		if s.NewsAPI.Name == "" {
			s.NewsAPI.Name = "NewsAPI"
		}
	}
}

func validateFeedURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid url %q: host is required", raw)
	}
	return nil
}
