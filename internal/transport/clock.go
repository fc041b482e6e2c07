package transport

import (
	"math"
	"sync/atomic"
)

// Clock is a standalone playback transport for running without a plugin host.
// Play, Stop, Seek and SetBPM may be called from any goroutine; Advance is
// called only by the audio goroutine.
type Clock struct {
	sampleRate  float64
	beatsPerBar float64

	bpm     atomic.Uint64
	playing atomic.Bool
	seek    atomic.Uint64
	seeking atomic.Bool

	position float64
}

// NewClock returns a stopped clock at beat zero.
func NewClock(bpm float64, beatsPerBar, sampleRate int) *Clock {
	if beatsPerBar <= 0 {
		beatsPerBar = 4
	}
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	c := &Clock{sampleRate: float64(sampleRate), beatsPerBar: float64(beatsPerBar)}
	c.SetBPM(bpm)
	return c
}

// SetBPM changes the tempo. Non-positive values are ignored.
func (c *Clock) SetBPM(bpm float64) {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return
	}
	c.bpm.Store(math.Float64bits(bpm))
}

// BPM returns the current tempo.
func (c *Clock) BPM() float64 { return math.Float64frombits(c.bpm.Load()) }

// SampleRate returns the frames per second the clock advances by.
func (c *Clock) SampleRate() float64 { return c.sampleRate }

// BeatsPerBar returns the bar length used to locate bar starts.
func (c *Clock) BeatsPerBar() float64 { return c.beatsPerBar }

// Play starts the transport.
func (c *Clock) Play() { c.playing.Store(true) }

// Stop halts the transport at its current position.
func (c *Clock) Stop() { c.playing.Store(false) }

// Toggle flips between playing and stopped and returns the new state.
func (c *Clock) Toggle() bool {
	for {
		was := c.playing.Load()
		if c.playing.CompareAndSwap(was, !was) {
			return !was
		}
	}
}

// Playing reports whether the transport runs.
func (c *Clock) Playing() bool { return c.playing.Load() }

// Seek moves the transport to beats on the next Advance.
func (c *Clock) Seek(beats float64) {
	if beats < 0 || math.IsNaN(beats) {
		beats = 0
	}
	c.seek.Store(math.Float64bits(beats))
	c.seeking.Store(true)
}

// Advance returns the transport state at the start of a block of frames and
// then moves the position past the block when playing.
func (c *Clock) Advance(frames int) State {
	if c.seeking.CompareAndSwap(true, false) {
		c.position = math.Float64frombits(c.seek.Load())
	}
	st := State{
		Playing:       c.playing.Load(),
		PositionBeats: c.position,
		BarStartBeats: math.Floor(c.position/c.beatsPerBar) * c.beatsPerBar,
	}
	if st.Playing && frames > 0 {
		c.position += float64(frames) / c.sampleRate * c.BPM() / 60
	}
	return st
}
