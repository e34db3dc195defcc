package utils

import (
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var labelPolicy = bluemonday.StrictPolicy()

// SanitizeLabel strips all markup from a client-supplied label, trims it and
// caps it at maxRunes characters.
func SanitizeLabel(input string, maxRunes int) string {
	return Truncate(strings.TrimSpace(labelPolicy.Sanitize(input)), maxRunes)
}

// Truncate cuts s to at most maxRunes characters without splitting a rune.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}
