package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"hearingwatch/logging"
	"hearingwatch/metrics"
	"hearingwatch/orchestrator"
	"hearingwatch/types"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner executes refresh runs.
type Runner interface {
	RunOnce(ctx context.Context) (*orchestrator.Report, error)
	Running() bool
}

// EventLister reads stored committee events.
type EventLister interface {
	ListAll(ctx context.Context) ([]*types.CommitteeEvent, error)
	ListByCommittee(ctx context.Context, committeeID string) ([]*types.CommitteeEvent, error)
}

// Server serves the events API and optionally refreshes on a schedule.
type Server struct {
	runner     Runner
	events     EventLister
	metrics    *metrics.Recorder
	logger     *zap.Logger
	httpServer *http.Server
	cron       *cron.Cron
	mu         sync.Mutex
	runs       sync.WaitGroup
}

// NewServer creates a server listening on port.
func NewServer(runner Runner, events EventLister, recorder *metrics.Recorder, logger *zap.Logger, port string) *Server {
	s := &Server{
		runner:  runner,
		events:  events,
		metrics: recorder,
		logger:  logging.NopIfNil(logger),
		cron:    cron.New(),
	}
	s.httpServer = &http.Server{
		Addr:    ":" + port,
		Handler: s.Router(),
	}
	return s
}

// Router constructs a Gin engine with registered routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	g := r.Group("/api")
	g.GET("/health", s.handleHealth)
	s.registerEventRoutes(g)
	s.registerRefreshRoutes(g)

	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	return r
}

// Start starts the HTTP server in the background.
func (s *Server) Start() {
	s.logger.Info("starting api server", zap.String("addr", s.httpServer.Addr))

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Fatal("http server error", zap.Error(err))
		}
	}()
}

// StartCron schedules refresh runs with a standard five-field cron expression.
func (s *Server) StartCron(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.cron.AddFunc(schedule, func() {
		if s.runner.Running() {
			s.logger.Info("scheduled refresh skipped: a refresh is already running")
			return
		}
		s.logger.Info("scheduled refresh triggered")
		s.startRefresh()
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("refresh schedule started", zap.String("schedule", schedule))
	return nil
}

// Shutdown stops the schedule and the HTTP server, then waits for an
// in-flight refresh to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down api server")

	<-s.cron.Stop().Done()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		s.runs.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// startRefresh runs one refresh in the background.
func (s *Server) startRefresh() {
	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		if _, err := s.runner.RunOnce(context.Background()); err != nil {
			s.logger.Error("refresh failed", zap.Error(err))
		}
	}()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "refreshing": s.runner.Running()})
}
