package rssfeeds

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

type committeeMeeting struct {
	XMLName     xml.Name `xml:"committee-meeting"`
	MeetingType string   `xml:"meeting-type,attr"`
}

// ParseMeetingType reads the meeting-type attribute of a per-event
// committee-meeting document.
func ParseMeetingType(r io.Reader) (string, error) {
	var doc committeeMeeting
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return "", fmt.Errorf("failed to parse meeting document: %w", err)
	}
	meetingType := strings.TrimSpace(doc.MeetingType)
	if meetingType == "" {
		return "", fmt.Errorf("meeting document has no meeting-type")
	}
	return meetingType, nil
}
