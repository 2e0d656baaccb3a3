package taskexec

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics instruments the pool. A nil *metrics records nothing.
type metrics struct {
	pending      prometheus.Gauge
	tasksTotal   *prometheus.CounterVec
	taskDuration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		pending: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "photobroom_taskexec_pending_tasks",
				Help: "Number of tasks waiting for a worker",
			},
		),
		tasksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "photobroom_taskexec_tasks_total",
				Help: "Total number of tasks performed",
			},
			[]string{"task"},
		),
		taskDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "photobroom_taskexec_task_duration_seconds",
				Help:    "Duration of performed tasks",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"task"},
		),
	}
	reg.MustRegister(m.pending, m.tasksTotal, m.taskDuration)
	return m
}

func (m *metrics) queued() {
	if m != nil {
		m.pending.Inc()
	}
}

func (m *metrics) dequeued() {
	if m != nil {
		m.pending.Dec()
	}
}

func (m *metrics) performed(name string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.tasksTotal.WithLabelValues(name).Inc()
	m.taskDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}
