package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsPath is where NewMetricsServer exposes the registry.
const MetricsPath = "/metrics"

// Metrics holds server runtime metrics
type Metrics struct {
	ConnectionsTotal  prometheus.Counter
	ActiveConnections prometheus.Gauge
	ResponsesTotal    *prometheus.CounterVec
	ErrorsTotal       *prometheus.CounterVec
	Latency           prometheus.Histogram
}

// Error kinds used as the "kind" label of ErrorsTotal
const (
	errKindRead   = "read"
	errKindWrite  = "write"
	errKindPanic  = "panic"
	errKindAccept = "accept"
)

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scoreserver",
			Name:      "connections_total",
			Help:      "Total number of accepted connections",
		}),
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scoreserver",
			Name:      "active_connections",
			Help:      "Connections currently being served",
		}),
		ResponsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scoreserver",
			Name:      "responses_total",
			Help:      "Responses sent, by status code",
		}, []string{"code"}),
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scoreserver",
			Name:      "errors_total",
			Help:      "Connection errors, by kind",
		}, []string{"kind"}),
		Latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scoreserver",
			Name:      "connection_duration_seconds",
			Help:      "Time from accept to close",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.ConnectionsTotal,
			m.ActiveConnections,
			m.ResponsesTotal,
			m.ErrorsTotal,
			m.Latency,
		)
	}
	return m
}

func (m *Metrics) connOpened() {
	m.ConnectionsTotal.Inc()
	m.ActiveConnections.Inc()
}

func (m *Metrics) connClosed(duration time.Duration) {
	m.ActiveConnections.Dec()
	m.Latency.Observe(duration.Seconds())
}

func (m *Metrics) recordResponse(statusCode int) {
	m.ResponsesTotal.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

func (m *Metrics) recordError(kind string) {
	m.ErrorsTotal.WithLabelValues(kind).Inc()
}

// NewMetricsServer returns an HTTP server exposing reg at MetricsPath on
// addr. It is separate from the score listener.
func NewMetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
