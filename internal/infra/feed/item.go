package feed

import (
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"news-aggregator/internal/domain/entity"
)

// httpPrefix is the scheme prefix used to decide whether a GUID is a usable link.
const httpPrefix = "http"

// toArticle converts a feed entry into an article attributed to sourceName.
//
// An entry without a usable link or title is rejected. A missing date defaults to now,
// but a date the parser could not understand rejects the entry.
func toArticle(it *gofeed.Item, sourceName string, categories []string, now time.Time) (*entity.Article, error) {
	publishedAt, err := entryTime(it)
	if err != nil {
		return nil, err
	}

	return entity.NewArticle(entity.ArticleInput{
		Title:       plainText(it.Title),
		Description: plainText(it.Description),
		Content:     plainText(it.Content),
		URL:         extractLink(it),
		ImageURL:    extractImage(it),
		PublishedAt: publishedAt,
		SourceName:  sourceName,
		Author:      extractAuthor(it),
		Categories:  mergeCategories(categories, it.Categories),
	}, now)
}

// extractLink prefers the explicit link and falls back to the GUID when it looks like
// an HTTP URL.
func extractLink(it *gofeed.Item) string {
	if link := strings.TrimSpace(it.Link); link != "" {
		return link
	}
	if guid := strings.TrimSpace(it.GUID); strings.HasPrefix(guid, httpPrefix) {
		return guid
	}
	return ""
}

// entryTime returns the published date, then the updated date. A zero time means the
// entry carried no date at all.
func entryTime(it *gofeed.Item) (time.Time, error) {
	switch {
	case it.PublishedParsed != nil:
		return *it.PublishedParsed, nil
	case it.UpdatedParsed != nil:
		return *it.UpdatedParsed, nil
	}

	raw := strings.TrimSpace(it.Published)
	if raw == "" {
		raw = strings.TrimSpace(it.Updated)
	}
	if raw != "" {
		return time.Time{}, &entity.ValidationError{Field: "publishedAt", Message: "unparseable date " + raw}
	}
	return time.Time{}, nil
}

// extractImage looks at the item image, then image enclosures, then the first <img>
// embedded in the content or description.
func extractImage(it *gofeed.Item) string {
	if it.Image != nil && strings.TrimSpace(it.Image.URL) != "" {
		return strings.TrimSpace(it.Image.URL)
	}
	for _, enc := range it.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	if src := firstImage(it.Content); src != "" {
		return src
	}
	return firstImage(it.Description)
}

func extractAuthor(it *gofeed.Item) string {
	if it.Author != nil && strings.TrimSpace(it.Author.Name) != "" {
		return strings.TrimSpace(it.Author.Name)
	}
	for _, a := range it.Authors {
		if a != nil && strings.TrimSpace(a.Name) != "" {
			return strings.TrimSpace(a.Name)
		}
	}
	return ""
}

// mergeCategories returns configured followed by the entry's own categories, trimmed and
// de-duplicated case-insensitively.
func mergeCategories(configured, own []string) []string {
	seen := make(map[string]struct{}, len(configured)+len(own))
	out := make([]string, 0, len(configured)+len(own))
	for _, list := range [][]string{configured, own} {
		for _, c := range list {
			c = strings.TrimSpace(c)
			key := strings.ToLower(c)
			if c == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
