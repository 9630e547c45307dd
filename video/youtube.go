package video

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"hearingwatch/types"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// YouTube implements Platform on the YouTube Data API v3.
type YouTube struct {
	service *youtube.Service
}

// NewYouTube creates a YouTube client authenticated with an API key.
func NewYouTube(ctx context.Context, apiKey string, opts ...option.ClientOption) (*YouTube, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube api key is required")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create YouTube service: %w", err)
	}
	return &YouTube{service: service}, nil
}

// NewYouTubeWithEndpoint is NewYouTube against a custom endpoint and HTTP client.
func NewYouTubeWithEndpoint(ctx context.Context, apiKey, endpoint string, client *http.Client) (*YouTube, error) {
	return NewYouTube(ctx, apiKey, option.WithEndpoint(endpoint), option.WithHTTPClient(client))
}

func (y *YouTube) UploadsPlaylist(ctx context.Context, channelID string) (string, error) {
	resp, err := y.service.Channels.List([]string{"contentDetails"}).
		Id(channelID).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to get channel %s: %w", channelID, err)
	}
	if len(resp.Items) == 0 || resp.Items[0].ContentDetails == nil || resp.Items[0].ContentDetails.RelatedPlaylists == nil {
		return "", fmt.Errorf("channel %s not found", channelID)
	}

	uploads := resp.Items[0].ContentDetails.RelatedPlaylists.Uploads
	if uploads == "" {
		return "", fmt.Errorf("channel %s has no uploads playlist", channelID)
	}
	return uploads, nil
}

func (y *YouTube) PlaylistPage(ctx context.Context, playlistID, pageToken string, pageSize int64) (Page, error) {
	call := y.service.PlaylistItems.List([]string{"snippet"}).
		PlaylistId(playlistID).
		MaxResults(pageSize).
		Fields("nextPageToken", "items(snippet(title,description,resourceId(videoId)))").
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return Page{}, fmt.Errorf("failed to list playlist %s: %w", playlistID, err)
	}

	page := Page{NextPageToken: resp.NextPageToken}
	for _, item := range resp.Items {
		if item.Snippet == nil || item.Snippet.ResourceId == nil {
			continue
		}
		page.Videos = append(page.Videos, types.Video{
			ID:          item.Snippet.ResourceId.VideoId,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
		})
	}
	return page, nil
}

func (y *YouTube) Search(ctx context.Context, q SearchQuery) ([]SearchHit, error) {
	call := y.service.Search.List([]string{"snippet"}).
		ChannelId(q.ChannelID).
		Q(q.Query).
		Type("video").
		Order("relevance").
		MaxResults(q.MaxResults).
		Context(ctx)
	if !q.PublishedAfter.IsZero() {
		call = call.PublishedAfter(q.PublishedAfter.UTC().Format(time.RFC3339))
	}
	if !q.PublishedBefore.IsZero() {
		call = call.PublishedBefore(q.PublishedBefore.UTC().Format(time.RFC3339))
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search channel %s: %w", q.ChannelID, err)
	}

	hits := make([]SearchHit, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		hit := SearchHit{VideoID: item.Id.VideoId}
		if item.Snippet != nil {
			hit.Title = item.Snippet.Title
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
