package farmapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records backend call counts and latencies.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics builds the collectors and registers them when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "farmdash",
			Subsystem: "api_client",
			Name:      "requests_total",
			Help:      "Backend requests by method, route and outcome.",
		}, []string{"method", "route", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "farmdash",
			Subsystem: "api_client",
			Name:      "request_duration_seconds",
			Help:      "Backend request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.latency)
	}
	return m
}

func (m *Metrics) observe(method, path, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	route := routeLabel(path)
	m.requests.WithLabelValues(method, route, outcome).Inc()
	m.latency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// routeLabel drops the query string and collapses numeric ids.
func routeLabel(path string) string {
	path, _, _ = strings.Cut(path, "?")
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if _, err := strconv.ParseInt(segment, 10, 64); err == nil {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}

func outcomeLabel(status int) string {
	if status < 100 {
		return "network_error"
	}
	return strconv.Itoa(status/100) + "xx"
}
