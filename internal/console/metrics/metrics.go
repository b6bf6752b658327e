// Package metrics records what the console did against the backend. The
// console is not a server, so metrics are written to a node_exporter textfile
// on exit instead of being scraped.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "proxyconsole"

var histogramBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

// Recorder owns a private registry so tests and repeated runs never collide
// with the default one.
type Recorder struct {
	registry *prometheus.Registry

	// CallsTotal counts backend calls.
	// Labels:
	//   - method: HTTP method
	//   - route: path template, e.g. "/agent/{id}/balance"
	//   - outcome: "success" or the failure kind, e.g. "session_expired"
	CallsTotal *prometheus.CounterVec

	// CallDuration measures backend call latency, including rate limiter waits.
	CallDuration *prometheus.HistogramVec

	// SessionTransitionsTotal counts session state changes.
	// Label:
	//   - status: the state entered, e.g. "authenticated"
	SessionTransitionsTotal *prometheus.CounterVec
}

// New creates a Recorder with all metrics registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		CallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "calls_total",
			Help:      "Total number of backend calls, by outcome.",
		}, []string{"method", "route", "outcome"}),
		CallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "call_duration_seconds",
			Help:      "Latency distribution of backend calls.",
			Buckets:   histogramBuckets,
		}, []string{"method", "route"}),
		SessionTransitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Total number of session state transitions, by state entered.",
		}, []string{"status"}),
	}
}

// ObserveCall implements consolesdk.Observer.
func (r *Recorder) ObserveCall(method, route, outcome string, duration time.Duration) {
	r.CallsTotal.WithLabelValues(method, route, outcome).Inc()
	r.CallDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveTransition records that the session entered status.
func (r *Recorder) ObserveTransition(status string) {
	r.SessionTransitionsTotal.WithLabelValues(status).Inc()
}

// WriteTextfile writes all metrics to path in the text exposition format. An
// empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
