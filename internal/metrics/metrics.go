// Package metrics bundles Prometheus collectors for the fetch pipeline.
// All methods are nil-safe so components can run without metrics wired.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	RetriesTotal    prometheus.Counter
	WinesParsed     prometheus.Counter
	ParseFailures   prometheus.Counter
	BatchesTotal    *prometheus.CounterVec
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "winesearcher_requests_total",
			Help: "Total HTTP requests issued by the fetcher, by outcome.",
		},
		[]string{"outcome"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "winesearcher_request_duration_seconds",
			Help:    "HTTP request latency including retries.",
			Buckets: prometheus.DefBuckets,
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "winesearcher_retries_total",
			Help: "Total retry attempts across all requests.",
		},
	)
	winesParsed := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "winesearcher_wines_parsed_total",
			Help: "Total wine records successfully extracted.",
		},
	)
	parseFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "winesearcher_parse_failures_total",
			Help: "Total pages that yielded no wine record.",
		},
	)
	batches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "winesearcher_batches_total",
			Help: "Total orchestrated batches, by outcome.",
		},
		[]string{"outcome"},
	)

	registry.MustRegister(requests, requestDuration, retries, winesParsed, parseFailures, batches)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		RequestDuration: requestDuration,
		RetriesTotal:    retries,
		WinesParsed:     winesParsed,
		ParseFailures:   parseFailures,
		BatchesTotal:    batches,
	}
}

func (m *Metrics) IncRequest(outcome string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

func (m *Metrics) IncWinesParsed() {
	if m == nil {
		return
	}
	m.WinesParsed.Inc()
}

func (m *Metrics) IncParseFailures() {
	if m == nil {
		return
	}
	m.ParseFailures.Inc()
}

func (m *Metrics) IncBatch(outcome string) {
	if m == nil {
		return
	}
	m.BatchesTotal.WithLabelValues(outcome).Inc()
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
