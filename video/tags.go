package video

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"hearingwatch/types"
)

// Committee videos are expected to carry the feed event id as
// "EventID=12345" or "Event ID = 12345" in the title or description.
var eventIDTagRe = regexp.MustCompile(`(?i)Event\s?ID\s?=\s?(\d+)`)

var errEmptyTitle = errors.New("stored title is empty")

// ExtractEventID returns the first tagged event id in text.
func ExtractEventID(text string) (int64, bool) {
	m := eventIDTagRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// FindEventTag looks for an event-id tag in the video title, then in its
// description, and reports where it was found.
func FindEventTag(v types.Video) (int64, types.TaggedIn, bool) {
	if id, ok := ExtractEventID(v.Title); ok {
		return id, types.TaggedInTitle, true
	}
	if id, ok := ExtractEventID(v.Description); ok {
		return id, types.TaggedInDescription, true
	}
	return 0, types.TaggedInNone, false
}

// titleContained reports whether a stored event title appears literally in a
// video title. Blank stored titles would match every video and are rejected.
func titleContained(storedTitle, videoTitle string) (bool, error) {
	if strings.TrimSpace(storedTitle) == "" {
		return false, errEmptyTitle
	}
	return strings.Contains(videoTitle, storedTitle), nil
}
