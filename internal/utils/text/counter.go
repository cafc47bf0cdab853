// Package text provides small helpers for user-supplied text.
package text

import "unicode/utf8"

// CountRunes returns the number of Unicode characters in s.
// Multi-byte characters such as CJK text or emoji count as one.
func CountRunes(s string) int {
	return utf8.RuneCountInString(s)
}

