// Package metrics holds the Prometheus collectors of the leaderboard.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Submission outcomes.
const (
	OutcomeAccepted  = "accepted"
	OutcomeUnchanged = "unchanged"
	OutcomeInvalid   = "invalid"
	OutcomeFailed    = "failed"
)

type Metrics struct {
	submissions *prometheus.CounterVec
	players     prometheus.Gauge
	latency     *prometheus.HistogramVec
	throttles   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "runnerboard",
			Subsystem: "scores",
			Name:      "submissions_total",
			Help:      "Score submissions segmented by outcome.",
		}, []string{"outcome"}),
		players: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "runnerboard",
			Subsystem: "scores",
			Name:      "players",
			Help:      "Entries currently held on the board.",
		}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "runnerboard",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		throttles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "runnerboard",
			Subsystem: "http",
			Name:      "throttles_total",
			Help:      "Requests rejected by the rate limiter.",
		}, []string{"route"}),
	}

	reg.MustRegister(m.submissions, m.players, m.latency, m.throttles)
	return m
}

// Submission counts one submission with the given outcome.
func (m *Metrics) Submission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

// Players records the board size.
func (m *Metrics) Players(n int) {
	if m == nil {
		return
	}
	m.players.Set(float64(n))
}

// Request observes how long a request to route took.
func (m *Metrics) Request(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.latency.WithLabelValues(route, method, strconv.Itoa(status)).Observe(d.Seconds())
}

// Throttled counts a request refused by the rate limiter.
func (m *Metrics) Throttled(route string) {
	if m == nil {
		return
	}
	m.throttles.WithLabelValues(route).Inc()
}
