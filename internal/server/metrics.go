package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestTotal    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	QueryRows       prometheus.Histogram
	QueryOutcomes   *prometheus.CounterVec
}

// NewMetrics registers the HTTP and query collectors plus the Go runtime
// and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		RequestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mvq_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mvq_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		QueryRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mvq_query_rows",
			Help:    "Rows returned per membership query",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		QueryOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mvq_query_outcomes_total",
				Help: "Membership queries by outcome",
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(
		m.RequestTotal,
		m.RequestDuration,
		m.QueryRows,
		m.QueryOutcomes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the registry for tests and embedding.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
