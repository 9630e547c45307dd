// Package ingestion loads committee feed entries into the event store.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"hearingwatch/logging"
	"hearingwatch/metrics"
	"hearingwatch/rssfeeds"
	"hearingwatch/storage"
	"hearingwatch/types"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FeedSource is the feed transport used by the Ingestor.
type FeedSource interface {
	FetchFeed(ctx context.Context, feedURL string) ([]rssfeeds.Entry, error)
	FetchMeetingType(ctx context.Context, docURL string) (string, error)
}

// Result summarizes one committee ingestion pass.
type Result struct {
	Entries int
	Stored  int
	Future  int
	Failed  int
}

// Ingestor fetches committee feeds and upserts their entries.
type Ingestor struct {
	store   storage.Store
	feeds   FeedSource
	loc     *time.Location
	logger  *zap.Logger
	metrics *metrics.Recorder
	now     func() time.Time
}

// Option customizes an Ingestor.
type Option func(*Ingestor)

// WithClock overrides the ingestion clock used for the future-event check
// and lastUpdatedData.
func WithClock(now func() time.Time) Option {
	return func(i *Ingestor) { i.now = now }
}

// WithMetrics records per-entry outcomes.
func WithMetrics(r *metrics.Recorder) Option {
	return func(i *Ingestor) { i.metrics = r }
}

// NewIngestor creates an Ingestor. loc is the zone feed meeting dates are written in.
func NewIngestor(store storage.Store, feeds FeedSource, loc *time.Location, logger *zap.Logger, opts ...Option) *Ingestor {
	if loc == nil {
		loc = time.UTC
	}
	i := &Ingestor{
		store:  store,
		feeds:  feeds,
		loc:    loc,
		logger: logging.NopIfNil(logger),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Ingest fetches a committee's feed and upserts every past entry. Entry-level
// failures are logged and counted; only feed resolution and fetch failures
// are returned.
func (i *Ingestor) Ingest(ctx context.Context, committee types.Committee) (Result, error) {
	logger := i.logger.With(zap.String(logging.FieldCommitteeID, committee.ThomasID))

	feedURL, err := rssfeeds.ResolveFeedURL(committee)
	if err != nil {
		return Result{}, err
	}

	entries, err := i.feeds.FetchFeed(ctx, feedURL)
	if err != nil {
		return Result{}, fmt.Errorf("committee %s: %w", committee.ThomasID, err)
	}
	logger.Info("fetched committee feed", zap.String("url", feedURL), zap.Int("entries", len(entries)))

	outcomes := make([]entryOutcome, len(entries))
	var g errgroup.Group
	for idx, entry := range entries {
		idx, entry := idx, entry
		g.Go(func() error {
			outcomes[idx] = i.ingestEntry(ctx, logger, committee.ThomasID, entry)
			return nil
		})
	}
	_ = g.Wait()

	res := Result{Entries: len(entries)}
	for _, o := range outcomes {
		switch o {
		case outcomeStored:
			res.Stored++
		case outcomeFuture:
			res.Future++
		case outcomeFailed:
			res.Failed++
		}
		i.metrics.FeedEntry(string(o))
	}

	logger.Info("committee ingestion complete",
		zap.Int("stored", res.Stored),
		zap.Int("future", res.Future),
		zap.Int("failed", res.Failed))
	return res, nil
}

type entryOutcome string

const (
	outcomeStored entryOutcome = "stored"
	outcomeFuture entryOutcome = "future"
	outcomeFailed entryOutcome = "failed"
)

func (i *Ingestor) ingestEntry(ctx context.Context, logger *zap.Logger, committeeID string, entry rssfeeds.Entry) entryOutcome {
	eventID, err := strconv.ParseInt(entry.GUID, 10, 64)
	if err != nil {
		logger.Warn("skipping entry with non-numeric guid", zap.String(logging.FieldText, entry.GUID))
		return outcomeFailed
	}
	logger = logger.With(zap.Int64(logging.FieldEventID, eventID))

	now := i.now()
	m := types.EventMetadata{
		CommitteeID:       committeeID,
		EventID:           eventID,
		ClosedOrPostponed: rssfeeds.IsClosedOrPostponed(entry.Title),
		Title:             rssfeeds.NormalizeTitle(entry.Title),
		CommitteeEventURL: entry.Link,
		PublishedDateRaw:  entry.PubDate,
		LastUpdatedData:   now,
	}

	if meeting, ok := rssfeeds.ResolveMeetingDate(entry.Description, i.loc); ok {
		// a hearing that hasn't happened can't have a recording yet
		if meeting.After(now) {
			logger.Debug("skipping future event", zap.Time("meeting_date", meeting))
			return outcomeFuture
		}
		m.MeetingDate = &meeting
	} else {
		logger.Warn("could not parse meeting date", zap.String(logging.FieldText, entry.Description))
	}

	if published, ok := rssfeeds.ResolvePublishedDate(entry.PubDate, i.loc); ok {
		m.PublishedDate = published
	} else {
		logger.Warn("could not parse published date", zap.String(logging.FieldText, entry.PubDate))
	}

	if entry.EnclosureURL != "" {
		meetingType, err := i.feeds.FetchMeetingType(ctx, entry.EnclosureURL)
		if err != nil {
			logger.Warn("could not resolve event type",
				zap.String("url", entry.EnclosureURL), zap.Error(err))
		} else {
			m.EventType = meetingType
		}
	}

	res, err := i.store.UpsertEvent(ctx, m)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateURL) {
			logger.Error("committee event url collision", zap.String("url", m.CommitteeEventURL), zap.Error(err))
		} else {
			logger.Error("failed to save committee event", zap.Error(err))
		}
		return outcomeFailed
	}
	if res.PreviousURL != "" {
		logger.Warn("committee event url changed",
			zap.String("previous_url", res.PreviousURL),
			zap.String("url", m.CommitteeEventURL))
	}
	return outcomeStored
}

// ListAll returns every stored event in export order (committeeId ascending,
// meetingDate descending).
func (i *Ingestor) ListAll(ctx context.Context) ([]*types.CommitteeEvent, error) {
	return i.store.ListAll(ctx)
}
