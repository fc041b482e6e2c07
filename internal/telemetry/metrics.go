// Package telemetry exposes engine and transport counters to Prometheus.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"sandpile/internal/sandpile"
)

const metricsNamespace = "sandpile"

// Metrics holds the collectors updated from the audio goroutine. Every update
// is a lock-free atomic operation, so a nil *Metrics is also accepted and
// ignored.
type Metrics struct {
	BlocksTotal   prometheus.Counter
	StepsTotal    prometheus.Counter
	SkippedTotal  prometheus.Counter
	GesturesTotal prometheus.Counter

	CellVisits prometheus.Gauge
	Topples    prometheus.Gauge
	Stable     prometheus.Gauge
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BlocksTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "blocks_total",
			Help:      "Audio blocks processed by the host.",
		}),
		StepsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "steps_total",
			Help:      "Automaton steps fired on quarter-beat boundaries.",
		}),
		SkippedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "skipped_steps_total",
			Help:      "Steps postponed because the pile was locked by a reader.",
		}),
		GesturesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "gestures_total",
			Help:      "Queued edits applied on the audio goroutine.",
		}),
		CellVisits: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "cell_visits",
			Help:      "Lifetime cell visits and grain deliveries reported by the engine.",
		}),
		Topples: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "topples",
			Help:      "Lifetime topple events reported by the engine.",
		}),
		Stable: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "stable",
			Help:      "1 when the last step left the pile stable.",
		}),
	}
}

// ObserveBlock records one processed audio block and the gestures it drained.
func (m *Metrics) ObserveBlock(gestures int) {
	if m == nil {
		return
	}
	m.BlocksTotal.Inc()
	if gestures > 0 {
		m.GesturesTotal.Add(float64(gestures))
	}
}

// ObserveStep records the outcome of one step attempt.
func (m *Metrics) ObserveStep(stats sandpile.Stats, ok bool) {
	if m == nil {
		return
	}
	if !ok {
		m.SkippedTotal.Inc()
		return
	}
	m.StepsTotal.Inc()
	m.CellVisits.Set(float64(stats.Steps))
	m.Topples.Set(float64(stats.Topples))
	if stats.Stable {
		m.Stable.Set(1)
	} else {
		m.Stable.Set(0)
	}
}
