package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts what the engine does. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	ticks   prometheus.Counter
	events  *prometheus.CounterVec
	unlocks *prometheus.CounterVec
	locked  prometheus.Gauge
}

// NewMetrics registers the engine metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ticks: f.NewCounter(prometheus.CounterOpts{
			Name: "tempo_ticks_total",
			Help: "Total evaluation ticks",
		}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tempo_events_total",
			Help: "Events fired by kind",
		}, []string{"kind"}),
		unlocks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tempo_unlocks_total",
			Help: "Lock exits by action",
		}, []string{"action"}),
		locked: f.NewGauge(prometheus.GaugeOpts{
			Name: "tempo_locked",
			Help: "1 while a sacred block holds the lock",
		}),
	}
}

func (m *Metrics) tick() {
	if m == nil {
		return
	}
	m.ticks.Inc()
}

func (m *Metrics) event(ev Event) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(string(ev.Kind)).Inc()
}

func (m *Metrics) unlock(a UnlockAction) {
	if m == nil {
		return
	}
	m.unlocks.WithLabelValues(string(a)).Inc()
}

func (m *Metrics) setLocked(locked bool) {
	if m == nil {
		return
	}
	if locked {
		m.locked.Set(1)
	} else {
		m.locked.Set(0)
	}
}
