// Package metrics implements manager.MetricsSink on top of Prometheus,
// giving a NexusManager observability into submission throughput, commit
// latency, completion cost, and nexus fan-out without the core package
// importing client_golang directly.
package metrics

import (
	"net/http"
	"time"

	"github.com/marmos91/nexus/pkg/hook"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sink is the Prometheus-backed manager.MetricsSink.
type Sink struct {
	submissions          *prometheus.CounterVec
	submissionDuration   *prometheus.HistogramVec
	completionIterations prometheus.Histogram
	activeNexusCount     prometheus.Gauge
}

// New registers a fresh set of collectors against reg and returns a Sink
// ready to pass to Manager.SetMetrics. Passing prometheus.NewRegistry()
// keeps a manager's metrics isolated; passing prometheus.DefaultRegisterer
// exposes them on the process-wide /metrics endpoint.
func New(reg prometheus.Registerer) *Sink {
	return &Sink{
		submissions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nexus_submissions_total",
				Help: "Total number of Submit calls, by mode and outcome.",
			},
			[]string{"mode", "outcome"},
		),
		submissionDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nexus_submission_duration_seconds",
				Help:    "Submit call latency in seconds, by mode.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		completionIterations: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "nexus_completion_iterations",
				Help:    "Number of fixed-point rounds Step 4 needed to converge.",
				Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34, 55, 89},
			},
		),
		activeNexusCount: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "nexus_active_nexus_count",
				Help: "Current number of distinct nexuses tracked by the manager.",
			},
		),
	}
}

// ObserveSubmission implements manager.MetricsSink.
func (s *Sink) ObserveSubmission(mode hook.Mode, ok bool, d time.Duration) {
	outcome := "rejected"
	if ok {
		outcome = "committed"
	}
	s.submissions.WithLabelValues(mode.String(), outcome).Inc()
	s.submissionDuration.WithLabelValues(mode.String()).Observe(d.Seconds())
}

// ObserveCompletionIterations implements manager.MetricsSink.
func (s *Sink) ObserveCompletionIterations(n int) {
	s.completionIterations.Observe(float64(n))
}

// SetActiveNexusCount implements manager.MetricsSink.
func (s *Sink) SetActiveNexusCount(n int) {
	s.activeNexusCount.Set(float64(n))
}

// Handler returns an http.Handler serving reg's collected metrics in the
// Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
