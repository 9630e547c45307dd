package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDecisionTable(t *testing.T) {
	for _, closed := range []bool{false, true} {
		for _, tagged := range []TaggedIn{TaggedInNone, TaggedInTitle, TaggedInDescription} {
			for _, youtubeID := range []string{"", "yt1"} {
				for _, presumedID := range []string{"", "pr1"} {
					e := &CommitteeEvent{
						ClosedOrPostponed: closed,
						TaggedIn:          tagged,
						YoutubeID:         youtubeID,
						PresumedVideoID:   presumedID,
					}

					var want TaggedStatus
					switch {
					case closed:
						want = StatusNoVideoExpected
					case tagged != TaggedInNone:
						want = StatusTagOK
					case youtubeID != "":
						want = StatusExactMatch
					case presumedID != "":
						want = StatusPresumedMatch
					default:
						want = StatusNoVideoMatch
					}

					got := Classify(e)
					assert.Equal(t, want, got, "closed=%v tagged=%q yt=%q presumed=%q", closed, tagged, youtubeID, presumedID)
					assert.Contains(t, taggedStatusLabels[:], got.String())
				}
			}
		}
	}
}

func TestTaggedStatusLabels(t *testing.T) {
	assert.Equal(t, "No video expected", StatusNoVideoExpected.String())
	assert.Equal(t, "Event ID correctly on video", StatusTagOK.String())
	assert.Equal(t, "No event ID on video - exact match found", StatusExactMatch.String())
	assert.Equal(t, "No event ID on video - presumed match found", StatusPresumedMatch.String())
	assert.Equal(t, "No video match", StatusNoVideoMatch.String())
	assert.Equal(t, "unknown", TaggedStatus(42).String())
}

func TestYouTubeLinkAndLabels(t *testing.T) {
	assert.Equal(t, "", YouTubeLink(""))
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", (&CommitteeEvent{YoutubeID: "abc"}).YouTubeLink())
	assert.Equal(t, "Markup", EventTypeLabel("HMKP"))
	assert.Equal(t, "HXYZ", EventTypeLabel("HXYZ"))
}
