//go:build !solution

package rwcoord

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeDoubled  = "doubled"
	outcomeOverflow = "overflow"
)

// Metrics exports coordinator activity to Prometheus.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	reads         prometheus.Counter
	writes        *prometheus.CounterVec
	activeReaders prometheus.Gauge
	count         prometheus.Gauge
}

// NewMetrics registers coordinator collectors on reg.
// It panics if they are already registered there.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		reads: f.NewCounter(prometheus.CounterOpts{
			Name: "rwsem_reads_total",
			Help: "Number of completed reads.",
		}),
		writes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rwsem_writes_total",
			Help: "Number of completed writes by outcome.",
		}, []string{"outcome"}),
		activeReaders: f.NewGauge(prometheus.GaugeOpts{
			Name: "rwsem_active_readers",
			Help: "Readers currently inside the read protocol.",
		}),
		count: f.NewGauge(prometheus.GaugeOpts{
			Name: "rwsem_resource_count",
			Help: "Current value of the shared resource.",
		}),
	}
}

func (m *Metrics) observeRead() {
	if m == nil {
		return
	}
	m.reads.Inc()
}

func (m *Metrics) observeWrite(count int64, overflow bool) {
	if m == nil {
		return
	}
	outcome := outcomeDoubled
	if overflow {
		outcome = outcomeOverflow
	}
	m.writes.WithLabelValues(outcome).Inc()
	m.count.Set(float64(count))
}

func (m *Metrics) setActiveReaders(n int) {
	if m == nil {
		return
	}
	m.activeReaders.Set(float64(n))
}

func (m *Metrics) setCount(count int64) {
	if m == nil {
		return
	}
	m.count.Set(float64(count))
}
