package provisioning

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records step outcomes in a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	stepTotal    *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	lockRetries  *prometheus.CounterVec
	runStatus    *prometheus.GaugeVec
}

// NewMetrics creates and registers the installer metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stepTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "horilla",
				Subsystem: "installer",
				Name:      "step_total",
				Help:      "Total number of step executions by final status",
			},
			[]string{"step", "status"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "horilla",
				Subsystem: "installer",
				Name:      "step_duration_seconds",
				Help:      "Duration of steps in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.1, 3, 9), // 100ms to ~11min
			},
			[]string{"step"},
		),
		lockRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "horilla",
				Subsystem: "installer",
				Name:      "lock_retries_total",
				Help:      "Total number of retries caused by package manager lock contention",
			},
			[]string{"command"},
		),
		runStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "horilla",
				Subsystem: "installer",
				Name:      "last_run_status",
				Help:      "Status of the last run (1 for the status it ended in)",
			},
			[]string{"status"},
		),
	}
	m.registry.MustRegister(m.stepTotal, m.stepDuration, m.lockRetries, m.runStatus)
	return m
}

// Registry exposes the registry for export and tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) recordStep(step string, status StepStatus, duration time.Duration) {
	if m == nil {
		return
	}
	m.stepTotal.WithLabelValues(step, string(status)).Inc()
	m.stepDuration.WithLabelValues(step).Observe(duration.Seconds())
}

func (m *Metrics) recordLockRetry(command string) {
	if m == nil {
		return
	}
	m.lockRetries.WithLabelValues(command).Inc()
}

func (m *Metrics) recordRun(status PipelineStatus, degraded bool) {
	if m == nil {
		return
	}
	m.runStatus.Reset()
	label := string(status)
	if degraded {
		label = "degraded"
	}
	m.runStatus.WithLabelValues(label).Set(1)
}

// WriteTextfile writes the metrics in the node exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
