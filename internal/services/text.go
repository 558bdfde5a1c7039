package services

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// sanitizeText strips markup and control characters, collapses blank runs inside lines and trims
// the result to limit runes. Newlines are kept.
func sanitizeText(input string, limit int) string {
	stripped := html.UnescapeString(strictPolicy.Sanitize(input))
	normalized := strings.ReplaceAll(strings.ReplaceAll(stripped, "\r\n", "\n"), "\r", "\n")
	lines := strings.Split(strings.TrimSpace(normalized), "\n")
	for i, line := range lines {
		line = strings.Map(func(r rune) rune {
			if unicode.IsControl(r) {
				return -1
			}
			return r
		}, line)
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	out := strings.TrimSpace(strings.Join(lines, "\n"))
	if limit > 0 {
		if runes := []rune(out); len(runes) > limit {
			out = strings.TrimSpace(string(runes[:limit]))
		}
	}
	return out
}
