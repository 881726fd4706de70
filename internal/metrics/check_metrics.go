package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/replwatch/replwatch/internal/models"
)

// CheckMetrics manages Prometheus instrumentation for one check process.
// The process is short-lived, so metrics live on a private registry and
// are pushed to a gateway after the run instead of being scraped.
type CheckMetrics struct {
	registry *prometheus.Registry

	// Terminal states per namespace
	outcomes *prometheus.CounterVec

	// Events that actually reached the transport, by verdict
	eventsEmitted *prometheus.CounterVec

	// Per-namespace delivery failures
	emitFailures prometheus.Counter

	// Run-level timings
	runDuration prometheus.Gauge
	lastRun     prometheus.Gauge
}

var (
	checkMetricsInstance *CheckMetrics
	checkMetricsOnce     sync.Once
)

// Get returns the process-wide check metrics instance.
func Get() *CheckMetrics {
	checkMetricsOnce.Do(func() {
		checkMetricsInstance = newCheckMetrics()
	})
	return checkMetricsInstance
}

func newCheckMetrics() *CheckMetrics {
	m := &CheckMetrics{
		registry: prometheus.NewRegistry(),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "replwatch",
				Name:      "namespace_outcomes_total",
				Help:      "Terminal states reached by namespaces in this run",
			},
			[]string{"state"},
		),
		eventsEmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "replwatch",
				Name:      "events_emitted_total",
				Help:      "Alert events delivered to the transport, by verdict",
			},
			[]string{"status"},
		),
		emitFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "replwatch",
				Name:      "emit_failures_total",
				Help:      "Alert events that failed delivery",
			},
		),
		runDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "replwatch",
				Name:      "run_duration_seconds",
				Help:      "Wall-clock duration of the last check run",
			},
		),
		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "replwatch",
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last check run finished",
			},
		),
	}
	m.registry.MustRegister(
		m.outcomes,
		m.eventsEmitted,
		m.emitFailures,
		m.runDuration,
		m.lastRun,
	)
	return m
}

// RecordOutcome counts one namespace's terminal state, the event it
// emitted if any, and any delivery failure.
func (m *CheckMetrics) RecordOutcome(outcome models.Outcome) {
	m.outcomes.WithLabelValues(string(outcome.State)).Inc()
	if outcome.Emitted() && outcome.Verdict != nil {
		m.eventsEmitted.WithLabelValues(outcome.Verdict.Status.String()).Inc()
	}
	if outcome.EmitErr != nil {
		m.emitFailures.Inc()
	}
}

// RecordRun stamps the run duration and completion time.
func (m *CheckMetrics) RecordRun(duration time.Duration) {
	m.runDuration.Set(duration.Seconds())
	m.lastRun.SetToCurrentTime()
}

// Push delivers the registry to a Pushgateway under the given job name.
func (m *CheckMetrics) Push(gatewayURL, job string) error {
	return push.New(gatewayURL, job).Gatherer(m.registry).Push()
}
