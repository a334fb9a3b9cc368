package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	ingestEventsTotal  *prometheus.CounterVec
	overridesTotal     *prometheus.CounterVec
	proxyFlagsTotal    prometheus.Counter
	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	liveRosterClients  prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used by the engine.
func RegisterMetrics() {
	registerOnce.Do(func() {
		ingestEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_ingest_events_total",
			Help: "Recognition events processed, labelled by outcome.",
		}, []string{"outcome", "source"})

		overridesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_overrides_total",
			Help: "Manual overrides applied, labelled by new status.",
		}, []string{"status"})

		proxyFlagsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "attendance_proxy_flags_total",
			Help: "Events flagged by the proxy detector.",
		})

		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_http_requests_total",
			Help: "Total number of HTTP requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attendance_http_latency_seconds",
			Help:    "Latency distribution for HTTP requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		liveRosterClients = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "attendance_live_roster_clients",
			Help: "Currently connected live roster websocket clients.",
		})

		prometheus.MustRegister(ingestEventsTotal, overridesTotal, proxyFlagsTotal, httpRequestsTotal, httpLatencySeconds, liveRosterClients)
	})
}

// IngestEvents exposes the counter for processed recognition events.
func IngestEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return ingestEventsTotal
}

// Overrides exposes the counter for manual overrides.
func Overrides() *prometheus.CounterVec {
	RegisterMetrics()
	return overridesTotal
}

// ProxyFlags exposes the counter for proxy detector flags.
func ProxyFlags() prometheus.Counter {
	RegisterMetrics()
	return proxyFlagsTotal
}

// HTTPRequests exposes the counter for HTTP requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for HTTP requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// LiveRosterClients exposes the gauge for connected websocket clients.
func LiveRosterClients() prometheus.Gauge {
	RegisterMetrics()
	return liveRosterClients
}
