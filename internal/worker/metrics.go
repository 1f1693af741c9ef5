package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/airwatch/airwatch/internal/jobs"
)

// Metrics holds the Prometheus collectors for job execution.
type Metrics struct {
	MessagesReceived prometheus.Counter
	MessagesInvalid  prometheus.Counter
	JobsFinished     *prometheus.CounterVec   // labels: job, status={success,failure}
	JobDuration      *prometheus.HistogramVec // labels: job
	WorkerRunning    prometheus.Gauge
}

// NewMetrics creates metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.MessagesReceived,
		m.MessagesInvalid,
		m.JobsFinished,
		m.JobDuration,
		m.WorkerRunning,
	)
	return m
}

// NewMetricsForTesting creates unregistered metrics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		MessagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "airwatch_worker",
			Name:      "messages_received_total",
			Help:      "Total job messages received from the subscription.",
		}),
		MessagesInvalid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "airwatch_worker",
			Name:      "messages_invalid_total",
			Help:      "Job messages dropped because they could not be decoded.",
		}),
		JobsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airwatch_worker",
			Name:      "jobs_finished_total",
			Help:      "Jobs finished by name and final status.",
		}, []string{"job", "status"}),
		JobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "airwatch_worker",
			Name:      "job_duration_seconds",
			Help:      "Job execution time in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"job"}),
		WorkerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "airwatch_worker",
			Name:      "running",
			Help:      "1 while the worker is consuming, 0 otherwise.",
		}),
	}
}

// JobFinished records a finished job.
func (m *Metrics) JobFinished(name string, status jobs.Status, duration time.Duration) {
	m.JobsFinished.WithLabelValues(name, string(status)).Inc()
	m.JobDuration.WithLabelValues(name).Observe(duration.Seconds())
}

var _ jobs.Observer = (*Metrics)(nil)
