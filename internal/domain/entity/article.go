// Package entity defines the core domain entities and validation logic for the application.
// It contains the canonical Article record produced by every news source, the merge
// semantics used when duplicate reports of one story are collapsed, and domain errors.
package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"time"
)

// idHashLength is the number of hex characters of the URL hash kept in an article ID.
const idHashLength = 16

// Article represents a single news story as reported by one or more sources.
//
// An Article is treated as an immutable value outside the aggregation pipeline.
// Merging two reports of the same story produces a new Article (see Merge).
//
// Invariant: SourceCount == len(SourceNames) and SourceNames holds no duplicates.
type Article struct {
	ID          string
	Title       string
	Description string
	Content     string
	URL         string
	ImageURL    string
	PublishedAt time.Time
	SourceName  string
	Author      string
	Categories  []string
	SourceCount int
	SourceNames []string
}

// ArticleInput carries the raw fields an adapter extracted from a provider record.
type ArticleInput struct {
	Title       string
	Description string
	Content     string
	URL         string
	ImageURL    string
	PublishedAt time.Time
	SourceName  string
	Author      string
	Categories  []string
}

// NewArticleID derives a stable identifier from the article's canonical URL.
// The ID is the URL host followed by a truncated SHA-256 of the full URL, so the same
// story fetched twice from the same source always yields the same ID.
func NewArticleID(rawURL string) string {
	host := "article"
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = strings.ToLower(u.Host)
	}
	sum := sha256.Sum256([]byte(rawURL))
	return host + "-" + hex.EncodeToString(sum[:])[:idHashLength]
}

// NewArticle builds an Article from adapter input.
//
// Title and URL are required; a missing value yields a *ValidationError so the caller can
// skip the item. A zero PublishedAt defaults to now. The new article starts with a single
// source: its own SourceName.
func NewArticle(in ArticleInput, now time.Time) (*Article, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "title is required"}
	}
	link := strings.TrimSpace(in.URL)
	if link == "" {
		return nil, &ValidationError{Field: "url", Message: "url is required"}
	}

	publishedAt := in.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = now
	}

	return &Article{
		ID:          NewArticleID(link),
		Title:       title,
		Description: in.Description,
		Content:     in.Content,
		URL:         link,
		ImageURL:    in.ImageURL,
		PublishedAt: publishedAt,
		SourceName:  in.SourceName,
		Author:      in.Author,
		Categories:  cloneStrings(in.Categories),
		SourceCount: 1,
		SourceNames: []string{in.SourceName},
	}, nil
}

// Merge returns a copy of a that also records every source of other.
//
// Display fields (title, URL, description, ...) are kept from a. SourceNames becomes the
// order-preserving set union of both articles' sources and SourceCount its size. Neither
// a nor other is modified. A nil other yields a detached copy of a.
func (a *Article) Merge(other *Article) *Article {
	merged := a.clone()
	var extra []string
	if other != nil {
		extra = other.SourceNames
	}
	merged.SourceNames = UnionSources(a.SourceNames, extra)
	merged.SourceCount = len(merged.SourceNames)
	return merged
}

// HasSource reports whether name is one of the sources that reported the article.
func (a *Article) HasSource(name string) bool {
	for _, s := range a.SourceNames {
		if s == name {
			return true
		}
	}
	return false
}

// SameAs reports whether both articles denote the same logical story.
// Identity is defined by ID alone.
func (a *Article) SameAs(other *Article) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.ID == other.ID
}

// UnionSources returns the distinct names of left followed by the names of right not
// already present, preserving first-seen order.
func UnionSources(left, right []string) []string {
	seen := make(map[string]struct{}, len(left)+len(right))
	out := make([]string, 0, len(left)+len(right))
	for _, names := range [][]string{left, right} {
		for _, n := range names {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}

func (a *Article) clone() *Article {
	c := *a
	c.Categories = cloneStrings(a.Categories)
	c.SourceNames = cloneStrings(a.SourceNames)
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
