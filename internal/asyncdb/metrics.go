package asyncdb

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics instruments the worker. A nil *metrics records nothing.
type metrics struct {
	queueDepth   prometheus.Gauge
	tasksTotal   *prometheus.CounterVec
	taskDuration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		queueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "photobroom_asyncdb_queue_depth",
				Help: "Number of database tasks waiting for the worker",
			},
		),
		tasksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "photobroom_asyncdb_tasks_total",
				Help: "Total number of database tasks executed",
			},
			[]string{"task", "status"}, // status is "ok" or "error"
		),
		taskDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "photobroom_asyncdb_task_duration_seconds",
				Help:    "Duration of database tasks",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"task"},
		),
	}
	reg.MustRegister(m.queueDepth, m.tasksTotal, m.taskDuration)
	return m
}

func (m *metrics) setDepth(depth int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}

func (m *metrics) record(name string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.tasksTotal.WithLabelValues(name, status).Inc()
	m.taskDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}
