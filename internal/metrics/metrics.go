package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for snapshot loads and outbox
// delivery. A nil *Metrics is valid and records nothing.
type Metrics struct {
	snapshots *prometheus.CounterVec
	duracion  prometheus.Histogram
	pushes    *prometheus.CounterVec
	pendiente prometheus.Gauge
	muertos   *prometheus.CounterVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the collectors against registerer, or the default
// Prometheus registerer when it is nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = build(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return build(registerer)
}

func build(r prometheus.Registerer) *Metrics {
	m := &Metrics{
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "novapos_snapshot_total",
			Help: "Remote snapshot loads by result.",
		}, []string{"result"}),
		duracion: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "novapos_snapshot_duration_seconds",
			Help:    "Time spent fetching and applying a remote snapshot.",
			Buckets: prometheus.DefBuckets,
		}),
		pushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "novapos_outbox_push_total",
			Help: "Outbox deliveries to the remote by action and result.",
		}, []string{"action", "result"}),
		pendiente: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "novapos_outbox_pending",
			Help: "Commands waiting in the outbox.",
		}),
		muertos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "novapos_outbox_dead_letter_total",
			Help: "Commands moved to the dead-letter list.",
		}, []string{"action"}),
	}
	r.MustRegister(m.snapshots, m.duracion, m.pushes, m.pendiente, m.muertos)
	return m
}

// Snapshot records one initialization attempt. result is "ok", "offline" or
// "error".
func (m *Metrics) Snapshot(result string, inicio time.Time) {
	if m == nil {
		return
	}
	m.snapshots.WithLabelValues(result).Inc()
	m.duracion.Observe(time.Since(inicio).Seconds())
}

func (m *Metrics) Push(action string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.pushes.WithLabelValues(action, result).Inc()
}

func (m *Metrics) Pendientes(n int) {
	if m == nil {
		return
	}
	m.pendiente.Set(float64(n))
}

func (m *Metrics) DeadLetter(action string) {
	if m == nil {
		return
	}
	m.muertos.WithLabelValues(action).Inc()
}
