package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// articleJSON is the wire and persisted representation of an Article.
type articleJSON struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Content     string   `json:"content,omitempty"`
	URL         string   `json:"url"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	PublishedAt string   `json:"publishedAt"`
	SourceName  string   `json:"sourceName"`
	Author      string   `json:"author,omitempty"`
	Categories  []string `json:"categories"`
	SourceCount *int     `json:"sourceCount,omitempty"`
	SourceNames []string `json:"sourceNames,omitempty"`
}

// MarshalJSON encodes the article with publishedAt as an RFC 3339 timestamp.
func (a Article) MarshalJSON() ([]byte, error) {
	count := a.SourceCount
	categories := a.Categories
	if categories == nil {
		categories = []string{}
	}
	return json.Marshal(articleJSON{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Content:     a.Content,
		URL:         a.URL,
		ImageURL:    a.ImageURL,
		PublishedAt: a.PublishedAt.Format(time.RFC3339Nano),
		SourceName:  a.SourceName,
		Author:      a.Author,
		Categories:  categories,
		SourceCount: &count,
		SourceNames: a.SourceNames,
	})
}

// UnmarshalJSON decodes the wire representation.
//
// Missing sourceNames default to [sourceName]. The decoded names are de-duplicated and
// SourceCount is always recomputed from them, so a stale sourceCount cannot break the
// count invariant.
func (a *Article) UnmarshalJSON(data []byte) error {
	var raw articleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode article: %w", err)
	}

	var publishedAt time.Time
	if raw.PublishedAt != "" {
		t, err := time.Parse(time.RFC3339Nano, raw.PublishedAt)
		if err != nil {
			return fmt.Errorf("decode article publishedAt: %w", err)
		}
		publishedAt = t
	}

	names := UnionSources(raw.SourceNames, nil)
	if len(names) == 0 {
		names = []string{raw.SourceName}
	}

	*a = Article{
		ID:          raw.ID,
		Title:       raw.Title,
		Description: raw.Description,
		Content:     raw.Content,
		URL:         raw.URL,
		ImageURL:    raw.ImageURL,
		PublishedAt: publishedAt,
		SourceName:  raw.SourceName,
		Author:      raw.Author,
		Categories:  raw.Categories,
		SourceCount: len(names),
		SourceNames: names,
	}
	return nil
}
