// Package dedup collapses duplicate reports of the same story into a single article.
//
// Four strategies are available. ByURL and ByTitle group articles on an exact,
// normalized key. ByTitleSimilarity clusters greedily on fuzzy title similarity.
// Combined runs ByURL and then ByTitleSimilarity over its output. Every strategy merges
// through entity.Article.Merge, so source provenance is a true set union.
package dedup

import (
	"fmt"
	"strings"
)

// Strategy selects how duplicate articles are detected.
type Strategy int

const (
	// ByURL merges articles whose normalized URLs are equal.
	ByURL Strategy = iota
	// ByTitle merges articles whose normalized titles are equal.
	ByTitle
	// ByTitleSimilarity merges articles whose titles are similar above the match threshold.
	ByTitleSimilarity
	// Combined applies ByURL first and ByTitleSimilarity on the result.
	Combined
)

var strategyNames = map[Strategy]string{
	ByURL:             "url",
	ByTitle:           "title",
	ByTitleSimilarity: "titleSimilarity",
	Combined:          "combined",
}

// String returns the configuration name of the strategy.
func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy converts a configuration name (case-insensitive) into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for s, n := range strategyNames {
		if strings.ToLower(n) == want {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Valid reports whether s is one of the declared strategies.
func (s Strategy) Valid() bool {
	_, ok := strategyNames[s]
	return ok
}
