package infra

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups every Prometheus collector the service exports.
// A nil *Metrics is valid and records nothing, which keeps unit tests free of registries.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	eventsPublished *prometheus.CounterVec
	handlerFailures *prometheus.CounterVec

	pipelineRuns         *prometheus.CounterVec
	pipelineDuration     prometheus.Histogram
	suggestionsPersisted prometheus.Counter

	cacheLookups *prometheus.CounterVec
}

// NewMetrics registers all collectors on reg using prefix for metric names.
func NewMetrics(prefix string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		eventsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_events_published_total",
				Help: "Events published on the in-process bus",
			},
			[]string{"kind"},
		),
		handlerFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_event_handler_failures_total",
				Help: "Event handlers that returned an error or panicked",
			},
			[]string{"kind", "subscriber"},
		),
		pipelineRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_suggestion_runs_total",
				Help: "Suggestion pipeline runs by outcome",
			},
			[]string{"outcome"},
		),
		pipelineDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    prefix + "_suggestion_run_duration_seconds",
				Help:    "Duration of suggestion pipeline runs",
				Buckets: prometheus.DefBuckets,
			},
		),
		suggestionsPersisted: f.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_suggestions_persisted_total",
				Help: "Supplier suggestions written by the pipeline",
			},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_suggestion_cache_lookups_total",
				Help: "Suggestion cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) ObserveHTTP(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}

func (m *Metrics) EventPublished(kind string) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(kind).Inc()
}

func (m *Metrics) HandlerFailed(kind, subscriber string) {
	if m == nil {
		return
	}
	m.handlerFailures.WithLabelValues(kind, subscriber).Inc()
}

// PipelineRun records one finished run. outcome: "completed" | "failed" | "not_found"
func (m *Metrics) PipelineRun(outcome string, d time.Duration, persisted int) {
	if m == nil {
		return
	}
	m.pipelineRuns.WithLabelValues(outcome).Inc()
	m.pipelineDuration.Observe(d.Seconds())
	m.suggestionsPersisted.Add(float64(persisted))
}

// CacheLookup records a suggestion cache result. result: "hit" | "miss" | "error" | "skipped"
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
