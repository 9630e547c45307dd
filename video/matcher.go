package video

import (
	"context"
	"errors"
	"strings"
	"sync"

	"hearingwatch/logging"
	"hearingwatch/metrics"
	"hearingwatch/storage"
	"hearingwatch/types"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Tier names a matching strategy.
type Tier string

const (
	TierTag            Tier = "tag"
	TierExactTitle     Tier = "exact_title"
	TierContainedTitle Tier = "contained_title"
)

// MatchSummary counts the outcome of one LoadAndMatch pass.
type MatchSummary struct {
	Videos    int
	ByTier    map[Tier]int
	Unmatched int
}

// strategy is one tier of the decision list. matched reports whether the
// tier claimed the video; later tiers are not consulted once it does.
type strategy struct {
	tier Tier
	run  func(ctx context.Context, committeeID string, v types.Video) (matched bool, err error)
}

// Matcher maps channel videos back onto stored committee events.
type Matcher struct {
	store    storage.Store
	platform Platform
	catalog  *Catalog
	logger   *zap.Logger
	metrics  *metrics.Recorder
}

// MatcherOption customizes a Matcher.
type MatcherOption func(*Matcher)

// WithMatchMetrics records matches per tier.
func WithMatchMetrics(r *metrics.Recorder) MatcherOption {
	return func(m *Matcher) { m.metrics = r }
}

// NewMatcher creates a Matcher reading videos from platform.
func NewMatcher(store storage.Store, platform Platform, logger *zap.Logger, opts ...MatcherOption) *Matcher {
	logger = logging.NopIfNil(logger)
	m := &Matcher{
		store:    store,
		platform: platform,
		catalog:  NewCatalog(platform, logger),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LoadAndMatch fetches the channel's recent uploads and matches each one
// onto the committee's events. Videos are matched concurrently.
func (m *Matcher) LoadAndMatch(ctx context.Context, committeeID, channelID string) MatchSummary {
	videos := m.catalog.FetchRecent(ctx, channelID)
	return m.MatchVideos(ctx, committeeID, videos)
}

// MatchVideos applies the tiered strategies to each video.
func (m *Matcher) MatchVideos(ctx context.Context, committeeID string, videos []types.Video) MatchSummary {
	summary := MatchSummary{Videos: len(videos), ByTier: make(map[Tier]int)}
	var mu sync.Mutex

	var g errgroup.Group
	for _, v := range videos {
		v := v
		g.Go(func() error {
			tier, ok := m.matchVideo(ctx, committeeID, v)

			mu.Lock()
			defer mu.Unlock()
			if ok {
				summary.ByTier[tier]++
			} else {
				summary.Unmatched++
			}
			return nil
		})
	}
	_ = g.Wait()

	m.logger.Info("video matching complete",
		zap.String(logging.FieldCommitteeID, committeeID),
		zap.Int("videos", summary.Videos),
		zap.Int("tagged", summary.ByTier[TierTag]),
		zap.Int("exact_title", summary.ByTier[TierExactTitle]),
		zap.Int("contained_title", summary.ByTier[TierContainedTitle]),
		zap.Int("unmatched", summary.Unmatched))
	return summary
}

func (m *Matcher) strategies() []strategy {
	return []strategy{
		{tier: TierTag, run: m.matchTag},
		{tier: TierExactTitle, run: m.matchExactTitle},
		{tier: TierContainedTitle, run: m.matchContainedTitle},
	}
}

// matchVideo runs the strategies in precedence order and stops at the first
// that claims the video.
func (m *Matcher) matchVideo(ctx context.Context, committeeID string, v types.Video) (Tier, bool) {
	for _, s := range m.strategies() {
		matched, err := s.run(ctx, committeeID, v)
		if err != nil {
			m.logger.Error("video match failed",
				zap.String(logging.FieldCommitteeID, committeeID),
				zap.String(logging.FieldVideoID, v.ID),
				zap.String("tier", string(s.tier)),
				zap.String(logging.FieldText, v.Title),
				zap.Error(err))
			return s.tier, false
		}
		if matched {
			m.metrics.VideoMatch(string(s.tier))
			return s.tier, true
		}
	}
	return "", false
}

func confirmedMatch(v types.Video, taggedIn types.TaggedIn) types.VideoMatch {
	return types.VideoMatch{
		YoutubeID:          v.ID,
		YoutubeTitle:       v.Title,
		YoutubeDescription: v.Description,
		TaggedIn:           taggedIn,
	}
}

// matchTag handles videos carrying an explicit event id. A tag is
// authoritative: when the tagged event is not stored the video is still
// considered claimed and no title matching is attempted.
func (m *Matcher) matchTag(ctx context.Context, _ string, v types.Video) (bool, error) {
	eventID, taggedIn, ok := FindEventTag(v)
	if !ok {
		return false, nil
	}

	err := m.store.SetVideoMatch(ctx, eventID, confirmedMatch(v, taggedIn))
	if errors.Is(err, storage.ErrNotFound) {
		m.logger.Warn("tagged event is not stored",
			zap.Int64(logging.FieldEventID, eventID),
			zap.String(logging.FieldVideoID, v.ID),
			zap.String("tagged_in", string(taggedIn)))
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (m *Matcher) matchExactTitle(ctx context.Context, committeeID string, v types.Video) (bool, error) {
	if strings.TrimSpace(v.Title) == "" {
		return false, nil
	}
	return m.store.SetVideoMatchByTitle(ctx, committeeID, v.Title, confirmedMatch(v, types.TaggedInNone))
}

// matchContainedTitle claims the video for the first committee event (most
// recent meeting first) whose title appears inside the video title.
//
// TODO: a generic stored title such as "Markup" is contained in many video
// titles and wins for all of them; candidates are not ranked by closeness.
func (m *Matcher) matchContainedTitle(ctx context.Context, committeeID string, v types.Video) (bool, error) {
	events, err := m.store.ListByCommittee(ctx, committeeID)
	if err != nil {
		return false, err
	}

	for _, e := range events {
		ok, err := titleContained(e.Title, v.Title)
		if err != nil {
			m.logger.Warn("error matching title",
				zap.Int64(logging.FieldEventID, e.EventID),
				zap.String(logging.FieldVideoID, v.ID),
				zap.String(logging.FieldText, v.Title),
				zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		if err := m.store.SetVideoMatch(ctx, e.EventID, confirmedMatch(v, types.TaggedInNone)); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}
