// Package metrics exposes pipeline counters for Prometheus.
//
// Collectors live on a private registry so tests can create as many
// Pipelines as they like. A nil *Pipeline is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "memescope"

// Outcome labels how a search attempt ended.
type Outcome string

const (
	OutcomeSuccess    Outcome = "success"
	OutcomeFailure    Outcome = "failure"
	OutcomeSuperseded Outcome = "superseded"
	OutcomeCanceled   Outcome = "canceled"
)

// Pipeline holds the collectors for one process.
type Pipeline struct {
	reg *prometheus.Registry

	searchAttempts prometheus.Counter
	searchResults  *prometheus.CounterVec
	searchLatency  prometheus.Histogram
	pollRefreshes  *prometheus.CounterVec
	pollActive     prometheus.Gauge
	notifications  *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Pipeline {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)

	return &Pipeline{
		reg: reg,
		searchAttempts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_attempts_total",
			Help:      "Analysis requests issued",
		}),
		searchResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_results_total",
			Help:      "Analysis resolutions by outcome",
		}, []string{"outcome"}),
		searchLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_latency_seconds",
			Help:      "Time from request to applied result",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		pollRefreshes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_refreshes_total",
			Help:      "Portfolio performance refreshes by status",
		}, []string{"status"}),
		pollActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "poll_active",
			Help:      "1 while the portfolio poller is running",
		}),
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notifications pushed by kind",
		}, []string{"kind"}),
	}
}

// SearchStarted counts an issued analysis request.
func (p *Pipeline) SearchStarted() {
	if p == nil {
		return
	}
	p.searchAttempts.Inc()
}

// SearchResolved counts a resolution. Latency is only observed for results
// that reached the store.
func (p *Pipeline) SearchResolved(o Outcome, took time.Duration) {
	if p == nil {
		return
	}
	p.searchResults.WithLabelValues(string(o)).Inc()
	if o == OutcomeSuccess || o == OutcomeFailure {
		p.searchLatency.Observe(took.Seconds())
	}
}

// PollRefreshed counts one scheduled refresh.
func (p *Pipeline) PollRefreshed(err error) {
	if p == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.pollRefreshes.WithLabelValues(status).Inc()
}

// SetPollActive tracks whether the poller is running.
func (p *Pipeline) SetPollActive(active bool) {
	if p == nil {
		return
	}
	if active {
		p.pollActive.Set(1)
	} else {
		p.pollActive.Set(0)
	}
}

// Notified counts a notification of the given kind.
func (p *Pipeline) Notified(kind string) {
	if p == nil {
		return
	}
	p.notifications.WithLabelValues(kind).Inc()
}

// Registry returns the underlying registry.
func (p *Pipeline) Registry() *prometheus.Registry {
	return p.reg
}

// Handler serves the registry in the Prometheus text format.
func (p *Pipeline) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}
