package types

// TaggedStatus is the derived, never-stored classification of an event's video.
type TaggedStatus int

const (
	StatusNoVideoExpected TaggedStatus = iota
	StatusTagOK
	StatusExactMatch
	StatusPresumedMatch
	StatusNoVideoMatch
)

var taggedStatusLabels = [...]string{
	StatusNoVideoExpected: "No video expected",
	StatusTagOK:           "Event ID correctly on video",
	StatusExactMatch:      "No event ID on video - exact match found",
	StatusPresumedMatch:   "No event ID on video - presumed match found",
	StatusNoVideoMatch:    "No video match",
}

func (s TaggedStatus) String() string {
	if s < 0 || int(s) >= len(taggedStatusLabels) {
		return "unknown"
	}
	return taggedStatusLabels[s]
}

// MarshalText renders the status as its report label.
func (s TaggedStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Classify derives the tagged status of e. The branches are evaluated in
// order and exactly one applies.
func Classify(e *CommitteeEvent) TaggedStatus {
	switch {
	case e.ClosedOrPostponed:
		return StatusNoVideoExpected
	case e.TaggedIn != TaggedInNone:
		return StatusTagOK
	case e.YoutubeID != "":
		return StatusExactMatch
	case e.PresumedVideoID != "":
		return StatusPresumedMatch
	default:
		return StatusNoVideoMatch
	}
}
