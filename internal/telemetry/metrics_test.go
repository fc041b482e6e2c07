package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sandpile/internal/sandpile"
)

func TestMetricsObserveStep(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveStep(sandpile.Stats{Steps: 40, Topples: 3}, true)
	m.ObserveStep(sandpile.Stats{}, false)
	m.ObserveStep(sandpile.Stats{Steps: 90, Topples: 5, Stable: true}, true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StepsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SkippedTotal))
	assert.Equal(t, 90.0, testutil.ToFloat64(m.CellVisits))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.Topples))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Stable))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestMetricsObserveBlock(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.ObserveBlock(0)
	m.ObserveBlock(3)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BlocksTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.GesturesTotal))
}

func TestNilMetricsIgnored(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveBlock(1)
		m.ObserveStep(sandpile.Stats{Stable: true}, true)
	})
}
