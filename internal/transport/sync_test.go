package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStepper struct {
	steps  int
	refuse bool
}

func (c *countingStepper) TryStep() bool {
	if c.refuse {
		return false
	}
	c.steps++
	return true
}

func TestSyncStepsOncePerQuarterBeat(t *testing.T) {
	st := &countingStepper{}
	s := NewSync(st)

	positions := []float64{0, 0.1, 0.2, 0.25, 0.26, 0.49, 0.5, 0.74, 0.75, 1.0}
	fired := 0
	for _, pos := range positions {
		if s.Process(State{Playing: true, PositionBeats: pos}) {
			fired++
		}
	}
	assert.Equal(t, 4, fired)
	assert.Equal(t, 4, st.steps)
	assert.Equal(t, int64(4), s.Boundary())
}

func TestSyncSkipsBoundariesWithinOneBlock(t *testing.T) {
	st := &countingStepper{}
	s := NewSync(st)

	assert.True(t, s.Process(State{Playing: true, PositionBeats: 2.0}))
	assert.False(t, s.Process(State{Playing: true, PositionBeats: 2.1}))
	assert.Equal(t, 1, st.steps, "a jump across many boundaries still steps once")
}

func TestSyncNeverStepsWhileStopped(t *testing.T) {
	st := &countingStepper{}
	s := NewSync(st)

	for _, pos := range []float64{0, 1, 5, 9.5} {
		assert.False(t, s.Process(State{Playing: false, PositionBeats: pos, BarStartBeats: 8}))
	}
	assert.Zero(t, st.steps)
	assert.Equal(t, int64(32), s.Boundary())

	assert.False(t, s.Process(State{Playing: true, PositionBeats: 8, BarStartBeats: 8}),
		"resuming at the bar start replays nothing")
	assert.True(t, s.Process(State{Playing: true, PositionBeats: 8.25, BarStartBeats: 8}))
	assert.Equal(t, 1, st.steps)
}

func TestSyncReanchorsOnBackwardJump(t *testing.T) {
	st := &countingStepper{}
	s := NewSync(st)

	require.True(t, s.Process(State{Playing: true, PositionBeats: 16}))
	assert.False(t, s.Process(State{Playing: true, PositionBeats: 4}))
	assert.Equal(t, int64(16), s.Boundary())
	assert.True(t, s.Process(State{Playing: true, PositionBeats: 4.25}), "loop playback keeps stepping")
	assert.Equal(t, 2, st.steps)
}

func TestSyncRetriesRefusedStep(t *testing.T) {
	st := &countingStepper{refuse: true}
	s := NewSync(st)

	assert.False(t, s.Process(State{Playing: true, PositionBeats: 1}))
	assert.Equal(t, int64(0), s.Boundary())

	st.refuse = false
	assert.True(t, s.Process(State{Playing: true, PositionBeats: 1.1}))
	assert.False(t, s.Process(State{Playing: true, PositionBeats: 1.2}))
	assert.Equal(t, 1, st.steps)
}
