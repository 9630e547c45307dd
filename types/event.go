package types

import (
	"time"
)

// TaggedIn records which video field carried an explicit event-ID tag.
type TaggedIn string

const (
	TaggedInNone        TaggedIn = ""
	TaggedInTitle       TaggedIn = "title"
	TaggedInDescription TaggedIn = "description"
)

// CommitteeEvent is a committee hearing announced in a committee feed, plus
// whatever video metadata has been matched onto it.
type CommitteeEvent struct {
	CommitteeID       string     `json:"committeeId"`
	EventID           int64      `json:"eventId"`
	EventType         string     `json:"eventType,omitempty"`
	MeetingDate       *time.Time `json:"meetingDate,omitempty"`
	PublishedDate     time.Time  `json:"publishedDate"`
	PublishedDateRaw  string     `json:"publishedDateRaw,omitempty"`
	ClosedOrPostponed bool       `json:"closedOrPostponed"`
	Title             string     `json:"title"`
	CommitteeEventURL string     `json:"committeeEventUrl"`

	YoutubeID          string   `json:"youtubeId,omitempty"`
	YoutubeTitle       string   `json:"youtubeTitle,omitempty"`
	YoutubeDescription string   `json:"youtubeDescription,omitempty"`
	TaggedIn           TaggedIn `json:"taggedIn,omitempty"`

	PresumedVideoID    string `json:"presumedVideoId,omitempty"`
	PresumedVideoTitle string `json:"presumedVideoTitle,omitempty"`

	LastUpdatedData time.Time `json:"lastUpdatedData"`
}

// EventMetadata is the feed-derived part of a CommitteeEvent written on every
// ingestion pass. It never carries video fields.
type EventMetadata struct {
	CommitteeID       string
	EventID           int64
	EventType         string
	MeetingDate       *time.Time
	PublishedDate     time.Time
	PublishedDateRaw  string
	ClosedOrPostponed bool
	Title             string
	CommitteeEventURL string
	LastUpdatedData   time.Time
}

// VideoMatch is the confirmed-match field set. The three video fields and
// TaggedIn are always written together.
type VideoMatch struct {
	YoutubeID          string
	YoutubeTitle       string
	YoutubeDescription string
	TaggedIn           TaggedIn
}

// PresumedMatch is the top hit of a presumed-match search.
type PresumedMatch struct {
	VideoID string
	Title   string
}

// ApplyMetadata overwrites the feed-derived fields of e.
func (e *CommitteeEvent) ApplyMetadata(m EventMetadata) {
	e.CommitteeID = m.CommitteeID
	e.EventID = m.EventID
	e.EventType = m.EventType
	e.MeetingDate = m.MeetingDate
	e.PublishedDate = m.PublishedDate
	e.PublishedDateRaw = m.PublishedDateRaw
	e.ClosedOrPostponed = m.ClosedOrPostponed
	e.Title = m.Title
	e.CommitteeEventURL = m.CommitteeEventURL
	e.LastUpdatedData = m.LastUpdatedData
}

// ApplyVideoMatch overwrites all confirmed-match fields of e.
func (e *CommitteeEvent) ApplyVideoMatch(m VideoMatch) {
	e.YoutubeID = m.YoutubeID
	e.YoutubeTitle = m.YoutubeTitle
	e.YoutubeDescription = m.YoutubeDescription
	e.TaggedIn = m.TaggedIn
}

// HasVideo reports whether a confirmed or presumed video is recorded.
func (e *CommitteeEvent) HasVideo() bool {
	return e.YoutubeID != "" || e.PresumedVideoID != ""
}

// YouTubeLink returns the watch URL of the confirmed video, or "" when none.
func (e *CommitteeEvent) YouTubeLink() string {
	return YouTubeLink(e.YoutubeID)
}

// YouTubeLink builds a watch URL for a video id.
func YouTubeLink(videoID string) string {
	if videoID == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + videoID
}

var eventTypeLabels = map[string]string{
	"HHRG": "Hearing",
	"HMTG": "Meeting",
	"HMKP": "Markup",
}

// EventTypeLabel maps a meeting-type code to a readable label. Unknown codes
// are returned unchanged.
func EventTypeLabel(code string) string {
	if label, ok := eventTypeLabels[code]; ok {
		return label
	}
	return code
}
