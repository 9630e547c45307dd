package rssfeeds

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const quoteChars = "\"“”"

var closedOrPostponedRe = regexp.MustCompile(`(?i)\(closed\)|postponed`)

// NormalizeTitle strips one leading and one trailing straight or curly double
// quote, then one trailing period, repeating until the title is stable so
// that normalizing twice is a no-op.
func NormalizeTitle(title string) string {
	for {
		next := normalizeTitleOnce(title)
		if next == title {
			return next
		}
		title = next
	}
}

func normalizeTitleOnce(s string) string {
	s = strings.TrimSpace(s)
	if r, size := utf8.DecodeRuneInString(s); size > 0 && strings.ContainsRune(quoteChars, r) {
		s = s[size:]
	}
	if r, size := utf8.DecodeLastRuneInString(s); size > 0 && strings.ContainsRune(quoteChars, r) {
		s = s[:len(s)-size]
	}
	s = strings.TrimSuffix(s, ".")
	return strings.TrimSpace(s)
}

// IsClosedOrPostponed reports whether a feed title marks the event as closed
// to the public or postponed.
func IsClosedOrPostponed(title string) bool {
	return closedOrPostponedRe.MatchString(title)
}
