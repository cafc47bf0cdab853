// Package similarity scores how alike two headlines are.
//
// Titles are normalized (lower-cased, trimmed) and compared with the Levenshtein edit
// distance over Unicode code points. The score is 1 - distance/max(len1, len2), so it
// always lies in [0, 1] and is symmetric.
package similarity

import (
	"strings"
	"unicode/utf8"
)

// MatchThreshold is the score a pair of titles must exceed to be treated as the same story.
const MatchThreshold = 0.85

// NormalizeTitle lower-cases a title and trims surrounding whitespace.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// Similarity returns the normalized edit similarity of two titles in [0, 1].
// Identical normalized titles (including two empty titles) score 1.
func Similarity(title1, title2 string) float64 {
	s1 := NormalizeTitle(title1)
	s2 := NormalizeTitle(title2)
	if s1 == s2 {
		return 1.0
	}

	longest := max(utf8.RuneCountInString(s1), utf8.RuneCountInString(s2))
	if longest == 0 {
		return 1.0
	}

	distance := LevenshteinDistance(s1, s2)
	return 1.0 - float64(distance)/float64(longest)
}

// IsMatch reports whether two titles are similar enough to describe the same story.
func IsMatch(title1, title2 string) bool {
	return Similarity(title1, title2) > MatchThreshold
}

// LevenshteinDistance returns the minimum number of single-rune insertions, deletions
// and substitutions needed to turn s1 into s2.
func LevenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	// two rows of the DP matrix; prev[j] is the distance between r1[:i-1] and r2[:j]
	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}
