package video

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hearingwatch/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newYouTubeServer(t *testing.T) (*YouTube, *[]*http.Request) {
	t.Helper()
	var requests []*http.Request

	mux := http.NewServeMux()
	mux.HandleFunc("/youtube/v3/channels", func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r)
		if r.URL.Query().Get("id") != "UCag" {
			fmt.Fprint(w, `{"items":[]}`)
			return
		}
		fmt.Fprint(w, `{"items":[{"id":"UCag","contentDetails":{"relatedPlaylists":{"uploads":"UUag"}}}]}`)
	})
	mux.HandleFunc("/youtube/v3/playlistItems", func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r)
		if r.URL.Query().Get("pageToken") == "" {
			fmt.Fprint(w, `{"nextPageToken":"CDIQAA","items":[
				{"snippet":{"title":"Farm Bill Markup","description":"EventID=43","resourceId":{"videoId":"v1"}}},
				{"snippet":{"title":"Deleted video"}}
			]}`)
			return
		}
		fmt.Fprint(w, `{"items":[{"snippet":{"title":"Budget Hearing","description":"","resourceId":{"videoId":"v2"}}}]}`)
	})
	mux.HandleFunc("/youtube/v3/search", func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r)
		fmt.Fprint(w, `{"items":[
			{"id":{"kind":"youtube#video","videoId":"s1"},"snippet":{"title":"Budget Hearing Live"}},
			{"id":{"kind":"youtube#channel"}}
		]}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	yt, err := NewYouTubeWithEndpoint(context.Background(), "test-key", srv.URL+"/", srv.Client())
	require.NoError(t, err)
	return yt, &requests
}

func TestNewYouTubeRequiresKey(t *testing.T) {
	_, err := NewYouTube(context.Background(), "")
	assert.Error(t, err)
}

func TestYouTubeUploadsPlaylist(t *testing.T) {
	yt, _ := newYouTubeServer(t)

	playlist, err := yt.UploadsPlaylist(context.Background(), "UCag")
	require.NoError(t, err)
	assert.Equal(t, "UUag", playlist)

	_, err = yt.UploadsPlaylist(context.Background(), "UCmissing")
	assert.Error(t, err)
}

func TestYouTubePlaylistPages(t *testing.T) {
	yt, requests := newYouTubeServer(t)

	page, err := yt.PlaylistPage(context.Background(), "UUag", "", 50)
	require.NoError(t, err)
	assert.Equal(t, "CDIQAA", page.NextPageToken)
	assert.Equal(t, []types.Video{{ID: "v1", Title: "Farm Bill Markup", Description: "EventID=43"}}, page.Videos)

	page, err = yt.PlaylistPage(context.Background(), "UUag", page.NextPageToken, 50)
	require.NoError(t, err)
	assert.Empty(t, page.NextPageToken)
	assert.Equal(t, []types.Video{{ID: "v2", Title: "Budget Hearing"}}, page.Videos)

	last := (*requests)[len(*requests)-1].URL.Query()
	assert.Equal(t, "UUag", last.Get("playlistId"))
	assert.Equal(t, "50", last.Get("maxResults"))
	assert.Equal(t, "CDIQAA", last.Get("pageToken"))
}

func TestYouTubeSearch(t *testing.T) {
	yt, requests := newYouTubeServer(t)
	anchor := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)

	hits, err := yt.Search(context.Background(), SearchQuery{
		ChannelID:       "UCag",
		Query:           "Budget Hearing",
		PublishedAfter:  anchor.AddDate(0, 0, -28),
		PublishedBefore: anchor.AddDate(0, 0, 28),
		MaxResults:      5,
	})
	require.NoError(t, err)
	assert.Equal(t, []SearchHit{{VideoID: "s1", Title: "Budget Hearing Live"}}, hits)

	q := (*requests)[0].URL.Query()
	assert.Equal(t, "UCag", q.Get("channelId"))
	assert.Equal(t, "Budget Hearing", q.Get("q"))
	assert.Equal(t, "video", q.Get("type"))
	assert.Equal(t, "relevance", q.Get("order"))
	assert.Equal(t, "5", q.Get("maxResults"))
	assert.Equal(t, "2021-02-01T10:00:00Z", q.Get("publishedAfter"))
	assert.Equal(t, "2021-03-29T10:00:00Z", q.Get("publishedBefore"))
}
