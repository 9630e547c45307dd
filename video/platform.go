package video

import (
	"context"
	"time"

	"hearingwatch/types"
)

// Page is one page of an uploads playlist.
type Page struct {
	Videos        []types.Video
	NextPageToken string
}

// SearchQuery scopes a video search to a channel, free text and a
// published-date window.
type SearchQuery struct {
	ChannelID       string
	Query           string
	PublishedAfter  time.Time
	PublishedBefore time.Time
	MaxResults      int64
}

// SearchHit is one ranked search result.
type SearchHit struct {
	VideoID string
	Title   string
}

// Platform is the read side of the video platform API.
type Platform interface {
	// UploadsPlaylist resolves a channel's canonical uploads collection.
	UploadsPlaylist(ctx context.Context, channelID string) (string, error)

	// PlaylistPage returns one page of a playlist, newest first. An empty
	// pageToken requests the first page.
	PlaylistPage(ctx context.Context, playlistID, pageToken string, pageSize int64) (Page, error)

	// Search returns hits ranked by relevance.
	Search(ctx context.Context, q SearchQuery) ([]SearchHit, error)
}
