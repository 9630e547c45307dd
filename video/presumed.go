package video

import (
	"context"
	"sync"
	"time"

	"hearingwatch/config"
	"hearingwatch/logging"
	"hearingwatch/types"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PresumedSummary counts the outcome of one MatchMissingVideos pass.
type PresumedSummary struct {
	Candidates int
	Searched   int
	Saved      int
}

// needsPresumedSearch reports whether an event is still waiting for a video.
func needsPresumedSearch(e *types.CommitteeEvent) bool {
	return !e.ClosedOrPostponed && !e.HasVideo()
}

// searchAnchor is the date a presumed search is centered on: the meeting
// date when known, the feed published date otherwise.
func searchAnchor(e *types.CommitteeEvent) (time.Time, bool) {
	if e.MeetingDate != nil && !e.MeetingDate.IsZero() {
		return *e.MeetingDate, true
	}
	if !e.PublishedDate.IsZero() {
		return e.PublishedDate, true
	}
	return time.Time{}, false
}

// MatchMissingVideos searches the channel for each open committee event that
// has no confirmed video and records the most relevant hit as a presumed
// match. Events that already carry a presumed match are left unchanged.
func (m *Matcher) MatchMissingVideos(ctx context.Context, committeeID, channelID string) (PresumedSummary, error) {
	events, err := m.store.ListByCommittee(ctx, committeeID)
	if err != nil {
		return PresumedSummary{}, err
	}

	logger := m.logger.With(
		zap.String(logging.FieldCommitteeID, committeeID),
		zap.String(logging.FieldChannelID, channelID))

	var (
		summary PresumedSummary
		mu      sync.Mutex
		g       errgroup.Group
	)
	for _, e := range events {
		e := e
		if !needsPresumedSearch(e) {
			continue
		}
		summary.Candidates++

		anchor, ok := searchAnchor(e)
		if !ok {
			logger.Warn("skipping presumed search without a date", zap.Int64(logging.FieldEventID, e.EventID))
			continue
		}

		g.Go(func() error {
			searched, saved := m.presumeVideo(ctx, logger, channelID, e, anchor)

			mu.Lock()
			defer mu.Unlock()
			if searched {
				summary.Searched++
			}
			if saved {
				summary.Saved++
			}
			return nil
		})
	}
	_ = g.Wait()

	logger.Info("presumed video search complete",
		zap.Int("candidates", summary.Candidates),
		zap.Int("searched", summary.Searched),
		zap.Int("saved", summary.Saved))
	return summary, nil
}

func (m *Matcher) presumeVideo(ctx context.Context, logger *zap.Logger, channelID string, e *types.CommitteeEvent, anchor time.Time) (searched, saved bool) {
	logger = logger.With(zap.Int64(logging.FieldEventID, e.EventID))

	hits, err := m.platform.Search(ctx, SearchQuery{
		ChannelID:       channelID,
		Query:           e.Title,
		PublishedAfter:  anchor.Add(-config.PresumedSearchWindow),
		PublishedBefore: anchor.Add(config.PresumedSearchWindow),
		MaxResults:      config.PresumedSearchResults,
	})
	if err != nil {
		logger.Error("presumed video search failed", zap.Error(err))
		return false, false
	}
	if len(hits) == 0 {
		logger.Debug("no presumed video found", zap.String(logging.FieldText, e.Title))
		return true, false
	}

	top := hits[0]
	saved, err = m.store.SetPresumedMatch(ctx, e.EventID, types.PresumedMatch{VideoID: top.VideoID, Title: top.Title})
	if err != nil {
		logger.Error("failed to save presumed video", zap.String(logging.FieldVideoID, top.VideoID), zap.Error(err))
		return true, false
	}
	if saved {
		m.metrics.PresumedMatch()
		logger.Info("saved presumed video",
			zap.String(logging.FieldVideoID, top.VideoID),
			zap.String(logging.FieldText, top.Title))
	}
	return true, saved
}
