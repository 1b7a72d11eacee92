// Package metrics exposes Prometheus collectors for the analysis pipeline.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/policyguard/policyguard/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "policyguard"

// Metrics implements domain.ScanMetrics. Collectors live on a private
// registry so several instances can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	stepDuration  *prometheus.HistogramVec
	stepFailures  *prometheus.CounterVec
	runs          *prometheus.CounterVec
	runsInFlight  prometheus.Gauge
	gateRejection prometheus.Counter
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		stepDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "step_duration_seconds",
				Help:      "Duration of each remote step of an analysis run",
				// Remote calls range from a fast reset to a slow evaluation.
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"step"},
		),

		stepFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "step_failures_total",
				Help:      "Remote steps that failed, by step and error kind",
			},
			[]string{"step", "kind"},
		),

		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Completed analysis runs by outcome",
			},
			[]string{"outcome"},
		),

		runsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runs_in_flight",
			Help:      "Analysis runs currently executing",
		}),

		gateRejection: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_rejections_total",
			Help:      "Runs rejected because another run was in flight",
		}),
	}
}

// ObserveStep records the duration of one step and, if it failed, the
// failure.
func (m *Metrics) ObserveStep(step domain.Step, d time.Duration, err error) {
	m.stepDuration.WithLabelValues(string(step)).Observe(d.Seconds())
	if err != nil {
		m.stepFailures.WithLabelValues(string(step), errorKind(err)).Inc()
	}
}

func (m *Metrics) ObserveRun(outcome string) {
	m.runs.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RunStarted()  { m.runsInFlight.Inc() }
func (m *Metrics) RunFinished() { m.runsInFlight.Dec() }

func (m *Metrics) GateRejected() { m.gateRejection.Inc() }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// errorKind keeps the label set small: only the response class or
// "transport" is recorded.
func errorKind(err error) string {
	var se *domain.StatusError
	if errors.As(err, &se) {
		switch {
		case se.Status >= 500:
			return "5xx"
		case se.Status >= 400:
			return "4xx"
		default:
			return "other"
		}
	}
	return "transport"
}
