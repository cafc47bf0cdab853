package newsapi

import (
	"fmt"
	"strings"
	"time"

	"news-aggregator/internal/domain/entity"
)

const statusError = "error"

// apiResponse is the envelope shared by every endpoint.
// Code and Message are only set when Status is "error".
type apiResponse struct {
	Status       string       `json:"status"`
	TotalResults int          `json:"totalResults"`
	Articles     []apiArticle `json:"articles"`
	Code         string       `json:"code,omitempty"`
	Message      string       `json:"message,omitempty"`
}

type apiSource struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

type apiArticle struct {
	Source      apiSource `json:"source"`
	Author      *string   `json:"author"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	URL         string    `json:"url"`
	URLToImage  *string   `json:"urlToImage"`
	PublishedAt string    `json:"publishedAt"`
	Content     *string   `json:"content"`
}

// toEntity converts one provider record. A missing publication date defaults to now;
// a present but unparseable one makes the record malformed.
func (a apiArticle) toEntity(sourceName string, categories []string, now time.Time) (*entity.Article, error) {
	if strings.TrimSpace(a.Title) == removedMarker {
		return nil, &entity.ValidationError{Field: "title", Message: "article was removed by the provider"}
	}

	var publishedAt time.Time
	if raw := strings.TrimSpace(a.PublishedAt); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, &entity.ValidationError{Field: "publishedAt", Message: fmt.Sprintf("invalid timestamp %q", raw)}
		}
		publishedAt = t
	}

	return entity.NewArticle(entity.ArticleInput{
		Title:       a.Title,
		Description: deref(a.Description),
		Content:     deref(a.Content),
		URL:         a.URL,
		ImageURL:    deref(a.URLToImage),
		PublishedAt: publishedAt,
		SourceName:  sourceName,
		Author:      deref(a.Author),
		Categories:  categories,
	}, now)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
