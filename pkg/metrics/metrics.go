// Package metrics records per-run delivery metrics and pushes them to a
// Prometheus Pushgateway when the run ends.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// DefaultJob is the Pushgateway job name used when none is given.
const DefaultJob = "paperco"

// ErrPushFailed indicates the Pushgateway did not accept the metrics.
var ErrPushFailed = errors.New("metrics: push failed")

// Recorder collects the metrics of a single run in its own registry.
// Safe for concurrent use.
type Recorder struct {
	registry   *prometheus.Registry
	recipients *prometheus.CounterVec
	duration   prometheus.Histogram
	aborted    prometheus.Gauge
}

// New creates a Recorder with metrics under namespace (default "paperco").
func New(namespace string) *Recorder {
	if namespace == "" {
		namespace = DefaultJob
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		recipients: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recipients_total",
			Help:      "Recipients processed in the run, by outcome.",
		}, []string{"outcome"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "send_duration_seconds",
			Help:      "Time spent rendering and sending one message.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		aborted: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_aborted",
			Help:      "1 when the run stopped before processing every recipient.",
		}),
	}
}

// ObserveOutcome records one recipient's outcome ("delivered" or "failed")
// and how long it took.
func (r *Recorder) ObserveOutcome(outcome string, elapsed time.Duration) {
	r.recipients.WithLabelValues(outcome).Inc()
	r.duration.Observe(elapsed.Seconds())
}

// SetAborted marks the run as aborted or completed.
func (r *Recorder) SetAborted(aborted bool) {
	if aborted {
		r.aborted.Set(1)
		return
	}
	r.aborted.Set(0)
}

// Registry exposes the underlying registry, e.g. for tests or a scrape handler.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Push sends every collected metric to the Pushgateway at url, replacing
// the previous values for job.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	if job == "" {
		job = DefaultJob
	}
	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return errors.Join(ErrPushFailed, fmt.Errorf("%s: %w", url, err))
	}
	return nil
}
