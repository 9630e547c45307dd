// Package metrics exposes run counters for the ingestion and matching job.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "hearingwatch"

// Recorder owns a private registry so tests and repeated runs never collide
// with the global default registry. A nil *Recorder records nothing.
type Recorder struct {
	registry       *prometheus.Registry
	feedEntries    *prometheus.CounterVec
	videoMatches   *prometheus.CounterVec
	presumedSaved  prometheus.Counter
	lastRunSeconds prometheus.Gauge
}

// NewRecorder creates and registers all collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		feedEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_entries_total",
			Help:      "Committee feed entries processed, by result.",
		}, []string{"result"}),
		videoMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "video_matches_total",
			Help:      "Videos matched onto committee events, by matching tier.",
		}, []string{"tier"}),
		presumedSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "presumed_matches_total",
			Help:      "Presumed video matches recorded.",
		}),
		lastRunSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
	r.registry.MustRegister(r.feedEntries, r.videoMatches, r.presumedSaved, r.lastRunSeconds)
	return r
}

// FeedEntry counts one feed entry outcome (stored, future, failed).
func (r *Recorder) FeedEntry(result string) {
	if r == nil {
		return
	}
	r.feedEntries.WithLabelValues(result).Inc()
}

// VideoMatch counts one confirmed match from the named tier.
func (r *Recorder) VideoMatch(tier string) {
	if r == nil {
		return
	}
	r.videoMatches.WithLabelValues(tier).Inc()
}

// PresumedMatch counts one saved presumed match.
func (r *Recorder) PresumedMatch() {
	if r == nil {
		return
	}
	r.presumedSaved.Inc()
}

// RunFinished stamps the completion time of a run.
func (r *Recorder) RunFinished(at time.Time) {
	if r == nil {
		return
	}
	r.lastRunSeconds.Set(float64(at.Unix()))
}

// Gatherer exposes the private registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Push sends the current values to a Pushgateway. Batch runs call this once
// before exiting.
func (r *Recorder) Push(ctx context.Context, gatewayURL, job string) error {
	if r == nil || gatewayURL == "" {
		return nil
	}
	return push.New(gatewayURL, job).Gatherer(r.registry).PushContext(ctx)
}
