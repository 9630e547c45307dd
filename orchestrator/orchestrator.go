package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"hearingwatch/committees"
	"hearingwatch/ingestion"
	"hearingwatch/logging"
	"hearingwatch/metrics"
	"hearingwatch/notify"
	"hearingwatch/rssfeeds"
	"hearingwatch/storage"
	"hearingwatch/types"
	"hearingwatch/video"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrAlreadyRunning is returned when a run is requested while one is in progress.
var ErrAlreadyRunning = errors.New("refresh already running")

// CommitteeSource lists every known committee.
type CommitteeSource interface {
	Fetch(ctx context.Context) ([]types.Committee, error)
}

type Ingester interface {
	Ingest(ctx context.Context, committee types.Committee) (ingestion.Result, error)
}

type VideoMatcher interface {
	LoadAndMatch(ctx context.Context, committeeID, channelID string) video.MatchSummary
	MatchMissingVideos(ctx context.Context, committeeID, channelID string) (video.PresumedSummary, error)
}

type Exporter interface {
	Export(ctx context.Context, events []*types.CommitteeEvent, committees map[string]types.Committee) error
}

// Deps wires an Orchestrator. Notifier and Metrics are optional.
type Deps struct {
	Committees     CommitteeSource
	Ingester       Ingester
	Matcher        VideoMatcher
	Store          storage.Store
	Exporter       Exporter
	Notifier       notify.Notifier
	Metrics        *metrics.Recorder
	PushgatewayURL string
	Logger         *zap.Logger
	Now            func() time.Time
}

// Orchestrator drives complete refresh runs. At most one run is in flight.
type Orchestrator struct {
	deps    Deps
	logger  *zap.Logger
	running atomic.Bool
}

func New(deps Deps) *Orchestrator {
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Orchestrator{deps: deps, logger: logging.NopIfNil(deps.Logger)}
}

// CommitteeReport is the outcome of one committee's pipeline.
type CommitteeReport struct {
	CommitteeID string
	Skipped     bool
	IngestErr   error
	Ingest      ingestion.Result
	Match       video.MatchSummary
	Presumed    video.PresumedSummary
}

// Report is the outcome of a run.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Committees []CommitteeReport
	Events     int
}

// Running reports whether a run is in progress.
func (o *Orchestrator) Running() bool {
	return o.running.Load()
}

// RunOnce executes a single end-to-end cycle: load the committee list, run
// every committee's ingest and match pipeline concurrently, then export the
// full event list. Committee-level failures are logged and do not fail the
// run; an unreachable committee list, store, or export sink does.
func (o *Orchestrator) RunOnce(ctx context.Context) (*Report, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	defer o.running.Store(false)

	report := &Report{RunID: uuid.NewString(), StartedAt: o.deps.Now()}
	logger := o.logger.With(zap.String(logging.FieldRunID, report.RunID))
	logger.Info("refresh started")

	err := o.run(ctx, logger, report)
	report.FinishedAt = o.deps.Now()

	msg := notify.RunCompleted{
		RunID:      report.RunID,
		Committees: len(report.Committees),
		Events:     report.Events,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
	}
	if err != nil {
		msg.Error = err.Error()
	}
	if nerr := o.deps.Notifier.RunCompleted(ctx, msg); nerr != nil {
		logger.Warn("failed to publish run notification", zap.Error(nerr))
	}

	o.deps.Metrics.RunFinished(report.FinishedAt)
	if perr := o.deps.Metrics.Push(ctx, o.deps.PushgatewayURL, "hearingwatch"); perr != nil {
		logger.Warn("failed to push metrics", zap.Error(perr))
	}

	if err != nil {
		logger.Error("refresh failed", zap.Error(err))
		return report, err
	}
	logger.Info("refresh complete",
		zap.Int("committees", len(report.Committees)),
		zap.Int("events", report.Events),
		zap.Duration("took", report.FinishedAt.Sub(report.StartedAt)))
	return report, nil
}

func (o *Orchestrator) run(ctx context.Context, logger *zap.Logger, report *Report) error {
	logger.Info("loading committee list")
	all, err := o.deps.Committees.Fetch(ctx)
	if err != nil {
		return err
	}
	tracked := committees.Tracked(all)

	report.Committees = make([]CommitteeReport, len(tracked))
	var g errgroup.Group
	for i, c := range tracked {
		i, c := i, c
		g.Go(func() error {
			report.Committees[i] = o.refreshCommittee(ctx, logger, report.RunID, c)
			return nil
		})
	}
	_ = g.Wait()

	events, err := o.deps.Store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}
	report.Events = len(events)

	if err := o.deps.Exporter.Export(ctx, events, committees.Index(all)); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	return nil
}

// refreshCommittee runs ingest, then confirmed matching, then the presumed
// search. A failed ingest still matches against already-stored events, but
// subcommittees are skipped outright.
func (o *Orchestrator) refreshCommittee(ctx context.Context, logger *zap.Logger, runID string, c types.Committee) CommitteeReport {
	logger = logger.With(zap.String(logging.FieldCommitteeID, c.ThomasID))
	rep := CommitteeReport{CommitteeID: c.ThomasID}

	rep.Ingest, rep.IngestErr = o.deps.Ingester.Ingest(ctx, c)
	switch {
	case errors.Is(rep.IngestErr, rssfeeds.ErrSubcommitteeUnsupported):
		logger.Warn("skipping committee", zap.Error(rep.IngestErr))
		rep.Skipped = true
		return rep
	case rep.IngestErr != nil:
		logger.Error("committee ingestion failed", zap.Error(rep.IngestErr))
	}

	logger.Info("matching videos to events", zap.String(logging.FieldChannelID, c.YoutubeID))
	rep.Match = o.deps.Matcher.LoadAndMatch(ctx, c.ThomasID, c.YoutubeID)

	presumed, err := o.deps.Matcher.MatchMissingVideos(ctx, c.ThomasID, c.YoutubeID)
	if err != nil {
		logger.Error("presumed video search failed", zap.Error(err))
	}
	rep.Presumed = presumed

	msg := notify.CommitteeRefreshed{
		RunID:          runID,
		CommitteeID:    c.ThomasID,
		Stored:         rep.Ingest.Stored,
		Future:         rep.Ingest.Future,
		Failed:         rep.Ingest.Failed,
		Videos:         rep.Match.Videos,
		Tagged:         rep.Match.ByTier[video.TierTag],
		ExactTitle:     rep.Match.ByTier[video.TierExactTitle],
		ContainedTitle: rep.Match.ByTier[video.TierContainedTitle],
		Unmatched:      rep.Match.Unmatched,
		PresumedSaved:  rep.Presumed.Saved,
		FinishedAt:     o.deps.Now(),
	}
	if rep.IngestErr != nil {
		msg.IngestError = rep.IngestErr.Error()
	}
	if err := o.deps.Notifier.CommitteeRefreshed(ctx, msg); err != nil {
		logger.Warn("failed to publish committee notification", zap.Error(err))
	}
	return rep
}
