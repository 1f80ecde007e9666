// Package metrics records validation run metrics for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a private registry so tests and multiple servers in one
// process do not collide on the default registry.
type Recorder struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	findings *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates a Recorder with its collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tabvet_runs_total",
				Help: "Total number of completed validation runs",
			},
			[]string{"mode"},
		),
		findings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tabvet_findings_total",
				Help: "Total number of findings emitted",
			},
			[]string{"mode", "severity"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tabvet_run_duration_seconds",
				Help:    "Duration of validation runs",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
	}
	r.registry.MustRegister(r.runs, r.findings, r.duration)
	return r
}

// ObserveRun records one completed run.
func (r *Recorder) ObserveRun(mode string, errCount, warnCount int, d time.Duration) {
	r.runs.WithLabelValues(mode).Inc()
	r.findings.WithLabelValues(mode, "error").Add(float64(errCount))
	r.findings.WithLabelValues(mode, "warning").Add(float64(warnCount))
	r.duration.WithLabelValues(mode).Observe(d.Seconds())
}

// Handler serves the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
