// Package text holds the rune-aware helpers shared by the AI extraction
// providers. Recipe pages are frequently non-ASCII, so lengths and cuts
// are measured in runes, never bytes.
package text

import "unicode/utf8"

// CountRunes returns the number of Unicode code points in s. Providers
// report and bound prompt sizes with this so a Japanese page and an
// English page of the same length count the same.
func CountRunes(s string) int {
	return utf8.RuneCountInString(s)
}

// TruncateRunes returns s cut to at most max runes. The cut lands on a
// rune boundary, so a multi-byte character is dropped whole rather than
// split into invalid UTF-8.
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	seen := 0
	for i := range s {
		if seen == max {
			return s[:i]
		}
		seen++
	}
	return s
}
