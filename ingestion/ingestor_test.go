package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"hearingwatch/metrics"
	"hearingwatch/rssfeeds"
	"hearingwatch/storage"
	"hearingwatch/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeFeeds struct {
	mu           sync.Mutex
	entries      []rssfeeds.Entry
	feedErr      error
	meetingTypes map[string]string
	requested    []string
}

func (f *fakeFeeds) FetchFeed(_ context.Context, feedURL string) ([]rssfeeds.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = append(f.requested, feedURL)
	if f.feedErr != nil {
		return nil, f.feedErr
	}
	return f.entries, nil
}

func (f *fakeFeeds) FetchMeetingType(_ context.Context, docURL string) (string, error) {
	if t, ok := f.meetingTypes[docURL]; ok {
		return t, nil
	}
	return "", fmt.Errorf("GET %s returned 404", docURL)
}

var agriculture = types.Committee{Type: "house", Name: "Agriculture", ThomasID: "HSAG", HouseCommitteeID: "AG", YoutubeID: "UCag"}

func entry(guid, title, meeting string) rssfeeds.Entry {
	return rssfeeds.Entry{
		GUID:         guid,
		Title:        title,
		Link:         "https://docs.house.gov/Committee/Calendar/ByEvent.aspx?EventID=" + guid,
		Description:  "Meeting Date: " + meeting,
		PubDate:      "Wed, 24 Feb 2021 14:32:57 -0500 (EST)",
		EnclosureURL: "https://docs.house.gov/meeting/" + guid + ".xml",
	}
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestIngestIsIdempotent(t *testing.T) {
	store := storage.NewMemoryStore()
	feeds := &fakeFeeds{
		entries: []rssfeeds.Entry{
			entry("111906", `"Full Committee Markup."`, "Wednesday, March 3, 2021 10:00 AM"),
			entry("111907", "Member Briefing (Closed)", "Thursday, March 4, 2021 1:00 PM"),
		},
		meetingTypes: map[string]string{
			"https://docs.house.gov/meeting/111906.xml": "HMKP",
			"https://docs.house.gov/meeting/111907.xml": "HMTG",
		},
	}

	first := time.Date(2021, 4, 1, 12, 0, 0, 0, time.UTC)
	ing := NewIngestor(store, feeds, time.UTC, nil, WithClock(fixedClock(first)))
	res, err := ing.Ingest(context.Background(), agriculture)
	require.NoError(t, err)
	assert.Equal(t, Result{Entries: 2, Stored: 2}, res)
	assert.Equal(t, []string{"https://docs.house.gov/Committee/RSS.ashx?Code=AG00"}, feeds.requested)

	before, err := store.ListAll(context.Background())
	require.NoError(t, err)

	second := first.Add(time.Hour)
	ing = NewIngestor(store, feeds, time.UTC, nil, WithClock(fixedClock(second)))
	_, err = ing.Ingest(context.Background(), agriculture)
	require.NoError(t, err)

	after, err := ing.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, after, 2)

	for idx := range after {
		assert.True(t, second.Equal(after[idx].LastUpdatedData))
		b, a := *before[idx], *after[idx]
		b.LastUpdatedData, a.LastUpdatedData = time.Time{}, time.Time{}
		assert.Equal(t, b, a)
	}

	markup, err := store.GetEvent(context.Background(), 111906)
	require.NoError(t, err)
	assert.Equal(t, "Full Committee Markup", markup.Title)
	assert.Equal(t, "HMKP", markup.EventType)
	assert.Equal(t, "HSAG", markup.CommitteeID)
	assert.False(t, markup.ClosedOrPostponed)
	require.NotNil(t, markup.MeetingDate)
	assert.True(t, time.Date(2021, 3, 3, 10, 0, 0, 0, time.UTC).Equal(*markup.MeetingDate))
	assert.True(t, time.Date(2021, 2, 24, 19, 32, 57, 0, time.UTC).Equal(markup.PublishedDate))

	briefing, err := store.GetEvent(context.Background(), 111907)
	require.NoError(t, err)
	assert.True(t, briefing.ClosedOrPostponed)
}

func TestIngestSkipsFutureEvents(t *testing.T) {
	store := storage.NewMemoryStore()
	feeds := &fakeFeeds{entries: []rssfeeds.Entry{
		entry("1", "Past Hearing", "Monday, March 1, 2021 10:00 AM"),
		entry("2", "Future Hearing", "Friday, December 31, 2021 10:00 AM"),
	}}

	ing := NewIngestor(store, feeds, time.UTC, nil, WithClock(fixedClock(time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC))))
	res, err := ing.Ingest(context.Background(), agriculture)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stored)
	assert.Equal(t, 1, res.Future)

	_, err = store.GetEvent(context.Background(), 2)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestIngestPartialEntries(t *testing.T) {
	store := storage.NewMemoryStore()
	logger, logs := newObservedLogger()

	undated := entry("3", "Undated Hearing", "")
	undated.Description = "Location: 1300 LHOB"
	undated.PubDate = "not a date (EST)"
	undated.EnclosureURL = "https://docs.house.gov/meeting/missing.xml"

	feeds := &fakeFeeds{entries: []rssfeeds.Entry{
		undated,
		{GUID: "abc", Title: "Bad guid"},
	}}

	rec := metrics.NewRecorder()
	ing := NewIngestor(store, feeds, time.UTC, logger, WithMetrics(rec))
	res, err := ing.Ingest(context.Background(), agriculture)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stored)
	assert.Equal(t, 1, res.Failed)

	e, err := store.GetEvent(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, e.MeetingDate)
	assert.True(t, e.PublishedDate.IsZero())
	assert.Equal(t, "not a date (EST)", e.PublishedDateRaw)
	assert.Empty(t, e.EventType)

	assert.Equal(t, 1, logs.FilterMessage("could not parse meeting date").Len())
	assert.Equal(t, 1, logs.FilterMessage("could not parse published date").Len())
	assert.Equal(t, 1, logs.FilterMessage("could not resolve event type").Len())
	assert.Equal(t, 1, logs.FilterMessage("skipping entry with non-numeric guid").Len())
}

func TestIngestURLConflicts(t *testing.T) {
	store := storage.NewMemoryStore()
	logger, logs := newObservedLogger()
	ctx := context.Background()

	original := entry("42", "Hearing", "Monday, March 1, 2021 10:00 AM")
	feeds := &fakeFeeds{entries: []rssfeeds.Entry{original}}
	ing := NewIngestor(store, feeds, time.UTC, logger)
	_, err := ing.Ingest(ctx, agriculture)
	require.NoError(t, err)

	// same eventId, new url: the later write wins and the change is logged
	relinked := original
	relinked.Link = "https://docs.house.gov/relinked/42"
	feeds.entries = []rssfeeds.Entry{relinked}
	_, err = ing.Ingest(ctx, agriculture)
	require.NoError(t, err)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, relinked.Link, all[0].CommitteeEventURL)
	assert.Equal(t, 1, logs.FilterMessage("committee event url changed").Len())

	// another eventId claiming that url is rejected, logged, and not returned
	thief := entry("43", "Other Hearing", "Monday, March 1, 2021 11:00 AM")
	thief.Link = relinked.Link
	feeds.entries = []rssfeeds.Entry{thief}
	res, err := ing.Ingest(ctx, agriculture)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, logs.FilterMessage("committee event url collision").Len())

	_, err = store.GetEvent(ctx, 43)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestIngestCommitteeErrors(t *testing.T) {
	ing := NewIngestor(storage.NewMemoryStore(), &fakeFeeds{}, time.UTC, nil)

	sub := agriculture
	sub.ThomasID = "HSAG15"
	_, err := ing.Ingest(context.Background(), sub)
	assert.True(t, errors.Is(err, rssfeeds.ErrSubcommitteeUnsupported))

	down := &fakeFeeds{feedErr: errors.New("connection refused")}
	ing = NewIngestor(storage.NewMemoryStore(), down, time.UTC, nil)
	_, err = ing.Ingest(context.Background(), agriculture)
	assert.ErrorContains(t, err, "connection refused")
}
