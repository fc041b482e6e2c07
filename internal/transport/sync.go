// Package transport turns playback transport state into automaton steps.
package transport

import "math"

// State is the host transport as seen at the start of an audio block.
type State struct {
	Playing       bool
	PositionBeats float64
	BarStartBeats float64
}

// Stepper runs one step if it can do so without blocking.
type Stepper interface {
	TryStep() bool
}

// Sync fires at most one step per quarter-beat while the transport plays.
type Sync struct {
	stepper Stepper
	last    int64
}

// NewSync returns a Sync that drives stepper.
func NewSync(stepper Stepper) *Sync {
	return &Sync{stepper: stepper}
}

func quarterBeat(beats float64) int64 {
	return int64(math.Floor(beats * 4))
}

// Process inspects the transport for one block and reports whether a step ran.
// While stopped the boundary follows the bar start, so resuming playback does
// not replay missed steps. A jump backwards while playing re-anchors the
// boundary without stepping. When the stepper declines, the boundary is kept
// and the step is retried on the next block.
func (s *Sync) Process(st State) bool {
	if !st.Playing {
		s.last = quarterBeat(st.BarStartBeats)
		return false
	}
	q := quarterBeat(st.PositionBeats)
	if q < s.last {
		s.last = q
		return false
	}
	if q == s.last {
		return false
	}
	if !s.stepper.TryStep() {
		return false
	}
	s.last = q
	return true
}

// Boundary returns the last quarter-beat index that produced a step.
func (s *Sync) Boundary() int64 { return s.last }
