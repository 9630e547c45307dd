package rssfeeds

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	meetingDateRe = regexp.MustCompile(`Meeting Date:\s(\w+,\s\w+\s\d+,\s\d+\s\d+:\d+\s\w{2})`)

	// trailing "(EST)"-style annotation on pubDate
	tzAnnotationRe = regexp.MustCompile(`\s*\([^()]*\)\s*$`)

	meetingDateLayouts = []string{
		"Monday, January 2, 2006 3:04 PM",
		"Monday, Jan 2, 2006 3:04 PM",
	}
)

// ResolveMeetingDate extracts the "Meeting Date: <weekday>, <month> <day>,
// <year> <h>:<mm> <AM/PM>" value embedded in a feed description. The time is
// interpreted in loc. ok is false when no well-formed date is present.
func ResolveMeetingDate(description string, loc *time.Location) (t time.Time, ok bool) {
	m := meetingDateRe.FindStringSubmatch(description)
	if m == nil {
		return time.Time{}, false
	}
	// Go layouts only accept an upper-case meridiem
	value := m[1][:len(m[1])-2] + strings.ToUpper(m[1][len(m[1])-2:])

	for _, layout := range meetingDateLayouts {
		if parsed, err := time.ParseInLocation(layout, value, loc); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// ResolvePublishedDate parses a feed pubDate after removing a trailing
// parenthesized timezone annotation. ok is false when the remainder does not
// parse; callers keep the raw string in that case.
func ResolvePublishedDate(raw string, loc *time.Location) (t time.Time, ok bool) {
	cleaned := strings.TrimSpace(tzAnnotationRe.ReplaceAllString(raw, ""))
	if cleaned == "" {
		return time.Time{}, false
	}
	parsed, err := dateparse.ParseIn(cleaned, loc)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
