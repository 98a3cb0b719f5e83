package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the streaming proxy.
type Metrics struct {
	registry            *prometheus.Registry
	requestsTotal       prometheus.Counter
	errorsTotal         prometheus.Counter
	upstreamErrorsTotal prometheus.Counter
	deniedTotal         prometheus.Counter
	bytesStreamedTotal  prometheus.Counter
	activeStreams       prometheus.Gauge
}

// New creates and registers Prometheus metrics for the proxy.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stream_proxy_requests_total",
		Help: "Total number of HTTP requests received",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stream_proxy_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	upstreamErrorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stream_proxy_upstream_errors_total",
		Help: "Total number of upstream fetches that failed or returned a non-2xx status",
	})
	deniedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stream_proxy_access_denied_total",
		Help: "Total number of gated requests rejected by the access gate",
	})
	bytesStreamedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stream_proxy_bytes_streamed_total",
		Help: "Total number of body bytes written to clients",
	})
	activeStreams := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stream_proxy_active_streams",
		Help: "Number of proxy streams currently in flight",
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		upstreamErrorsTotal,
		deniedTotal,
		bytesStreamedTotal,
		activeStreams,
	)

	return &Metrics{
		registry:            registry,
		requestsTotal:       requestsTotal,
		errorsTotal:         errorsTotal,
		upstreamErrorsTotal: upstreamErrorsTotal,
		deniedTotal:         deniedTotal,
		bytesStreamedTotal:  bytesStreamedTotal,
		activeStreams:       activeStreams,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the error response counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// IncUpstreamErrors increments the upstream failure counter.
func (m *Metrics) IncUpstreamErrors() {
	m.upstreamErrorsTotal.Inc()
}

// IncDenied increments the access-denied counter.
func (m *Metrics) IncDenied() {
	m.deniedTotal.Inc()
}

// AddBytesStreamed adds n to the streamed byte counter.
func (m *Metrics) AddBytesStreamed(n int64) {
	if n > 0 {
		m.bytesStreamedTotal.Add(float64(n))
	}
}

// StreamStarted increments the in-flight stream gauge.
func (m *Metrics) StreamStarted() {
	m.activeStreams.Inc()
}

// StreamFinished decrements the in-flight stream gauge.
func (m *Metrics) StreamFinished() {
	m.activeStreams.Dec()
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
