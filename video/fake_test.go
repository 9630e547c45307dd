package video

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"hearingwatch/storage"
	"hearingwatch/types"

	"github.com/stretchr/testify/require"
)

var errPlatform = errors.New("quota exceeded")

// fakePlatform serves a fixed uploads playlist split into pages and records
// every search it receives.
type fakePlatform struct {
	mu sync.Mutex

	pages      []Page
	endless    bool
	failOnPage int
	playlistOK bool
	pageCalls  int

	hits      map[string][]SearchHit
	searchErr error
	searches  []SearchQuery
}

func newFakePlatform(pages ...Page) *fakePlatform {
	return &fakePlatform{pages: pages, playlistOK: true, hits: map[string][]SearchHit{}}
}

func (f *fakePlatform) UploadsPlaylist(_ context.Context, channelID string) (string, error) {
	if !f.playlistOK {
		return "", errPlatform
	}
	return "UU" + channelID, nil
}

func (f *fakePlatform) PlaylistPage(_ context.Context, _ string, pageToken string, pageSize int64) (Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageCalls++
	if f.failOnPage == f.pageCalls {
		return Page{}, errPlatform
	}

	if f.endless {
		videos := make([]types.Video, pageSize)
		for i := range videos {
			videos[i] = types.Video{ID: fmt.Sprintf("v%d-%d", f.pageCalls, i)}
		}
		return Page{Videos: videos, NextPageToken: fmt.Sprintf("page-%d", f.pageCalls+1)}, nil
	}

	idx := f.pageCalls - 1
	if idx >= len(f.pages) {
		return Page{}, nil
	}
	return f.pages[idx], nil
}

func (f *fakePlatform) Search(_ context.Context, q SearchQuery) ([]SearchHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, q)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.hits[q.Query], nil
}

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func seed(t *testing.T, store storage.Store, events ...types.EventMetadata) {
	t.Helper()
	for i, m := range events {
		if m.CommitteeID == "" {
			m.CommitteeID = "HSAG"
		}
		if m.CommitteeEventURL == "" {
			m.CommitteeEventURL = fmt.Sprintf("https://docs.house.gov/Committee/Calendar/ByEvent.aspx?EventID=%d", m.EventID)
		}
		if m.PublishedDate.IsZero() && m.MeetingDate != nil {
			m.PublishedDate = m.MeetingDate.AddDate(0, 0, -7)
		}
		events[i] = m
		_, err := store.UpsertEvent(context.Background(), m)
		require.NoError(t, err)
	}
}

func mustGet(t *testing.T, store storage.Store, id int64) *types.CommitteeEvent {
	t.Helper()
	e, err := store.GetEvent(context.Background(), id)
	require.NoError(t, err)
	return e
}
