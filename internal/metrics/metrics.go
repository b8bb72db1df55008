// Package metrics exposes the worker-side Prometheus instrumentation:
// job counters by kind/status, a processing-duration histogram, and a
// queue-depth gauge set through SetQueueDepth (the worker loop does not
// call SetQueueDepth, so the gauge stays at 0 unless another caller sets
// it). Not present in original_source;
// added because ambient observability is worth carrying even where the
// job-coordination protocol itself stays silent on it.
//
// Grounded on mattcburns-shoal-provision/internal/provisioner/metrics's
// package-level registry + CounterVec/HistogramVec pattern, adapted from a
// package-global registry to one owned per Worker instance so multiple
// workers in a test process don't collide on global state.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the worker's metrics collectors and their backing
// *prometheus.Registry.
type Registry struct {
	registry *prometheus.Registry

	jobsTotal   *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	queueDepth  prometheus.Gauge
}

// New builds a fresh, independently-registered Registry.
func New() *Registry {
	reg := prometheus.NewRegistry()

	jobsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobfabric",
		Subsystem: "worker",
		Name:      "jobs_total",
		Help:      "Total jobs processed, labeled by kind and terminal status.",
	}, []string{"kind", "status"})

	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "jobfabric",
		Subsystem: "worker",
		Name:      "job_duration_seconds",
		Help:      "Duration of JobExecutor.Process calls by job kind.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"kind"})

	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "jobfabric",
		Subsystem: "worker",
		Name:      "queue_depth",
		Help:      "Queue depth last reported via SetQueueDepth.",
	})

	reg.MustRegister(jobsTotal, jobDuration, queueDepth)

	return &Registry{
		registry:    reg,
		jobsTotal:   jobsTotal,
		jobDuration: jobDuration,
		queueDepth:  queueDepth,
	}
}

// ObserveJob records a completed job: its kind, terminal status
// ("succeed"/"failed"), and processing duration.
func (r *Registry) ObserveJob(kind, status string, durationSeconds float64) {
	r.jobsTotal.WithLabelValues(kind, status).Inc()
	r.jobDuration.WithLabelValues(kind).Observe(durationSeconds)
}

// SetQueueDepth records a caller-supplied queue length.
func (r *Registry) SetQueueDepth(depth float64) {
	r.queueDepth.Set(depth)
}

// Handler returns an http.Handler exposing the registry in the Prometheus
// exposition format; cmd/worker serves it on :9102.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
