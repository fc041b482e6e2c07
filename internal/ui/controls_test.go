package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sandpile/internal/core"
	"sandpile/internal/sandpile"
)

func TestAdjustIntClampsToBounds(t *testing.T) {
	ctrl := core.ParameterControl{Key: "rule", Type: core.ParamTypeInt, Step: 1, Min: 0, Max: 3, HasMin: true, HasMax: true}

	v, ok := adjustInt(ctrl, 1, 1)
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = adjustInt(ctrl, 3, 1)
	assert.False(t, ok)
	_, ok = adjustInt(ctrl, 0, -1)
	assert.False(t, ok)
	_, ok = adjustInt(ctrl, 2, 0)
	assert.False(t, ok)
}

func TestAdjustFloat(t *testing.T) {
	ctrl := core.ParameterControl{Type: core.ParamTypeFloat, Step: 0.05, Min: 0.001, Max: 1, HasMin: true, HasMax: true}

	v, ok := adjustFloat(ctrl, 0.5, -1)
	assert.True(t, ok)
	assert.InDelta(t, 0.45, v, 1e-12)

	v, ok = adjustFloat(ctrl, 0.03, -1)
	assert.True(t, ok)
	assert.Equal(t, 0.001, v)

	_, ok = adjustFloat(ctrl, 1, 1)
	assert.False(t, ok)
}

func TestFormatFloatPrecision(t *testing.T) {
	assert.Equal(t, "0.45", formatFloat(core.ParameterControl{Step: 0.05}, 0.45))
	assert.Equal(t, "0.5", formatFloat(core.ParameterControl{Step: 0.5}, 0.5))
	assert.Equal(t, "0.0010", formatFloat(core.ParameterControl{Step: 0.0001}, 0.001))
}

func TestControlStateRefresh(t *testing.T) {
	s := hudControlState{control: core.ParameterControl{Type: core.ParamTypeFloat, Step: 0.05}}
	s.refresh(core.Parameter{Value: "0.25"}, true)
	assert.True(t, s.hasValue)
	assert.Equal(t, "0.25", s.value)

	s.refresh(core.Parameter{Value: "nope"}, true)
	assert.False(t, s.hasValue)
	assert.Equal(t, "--", s.value)

	s.refresh(core.Parameter{}, false)
	assert.False(t, s.hasValue)
}

func TestReadoutLinesSkipControlledKeys(t *testing.T) {
	cfg := sandpile.DefaultConfig()
	cfg.Width, cfg.Height = 3, 3
	pile, err := sandpile.New(cfg)
	if !assert.NoError(t, err) {
		return
	}
	controls := make([]hudControlState, 0, 2)
	for _, ctrl := range sandpile.ParameterControls() {
		controls = append(controls, hudControlState{control: ctrl})
	}

	lines := readoutLines(pile.Snapshot().Parameters(), controls, nil)
	assert.Contains(t, lines, "Width: 3")
	assert.Contains(t, lines, "Rule name: bounded-iterative")
	for _, line := range lines {
		assert.NotContains(t, line, "Topple probability")
	}
}
