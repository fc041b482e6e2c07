package core

import "time"

// FixedStep paces work at a steady period measured against wall-clock time.
type FixedStep struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
}

// NewFixedStep constructs a FixedStep controller that fires once per period.
func NewFixedStep(period time.Duration) *FixedStep {
	fs := &FixedStep{}
	fs.SetPeriod(period)
	return fs
}

// SetPeriod changes the step length. Non-positive periods fall back to 60 Hz.
func (f *FixedStep) SetPeriod(period time.Duration) {
	if period <= 0 {
		period = time.Second / 60
	}
	f.step = period
}

// Period returns the configured step length.
func (f *FixedStep) Period() time.Duration { return f.step }

// Due reports how many whole steps have elapsed since the previous call.
// The first call only anchors the clock.
func (f *FixedStep) Due(now time.Time) int {
	if f.last.IsZero() {
		f.last = now
		return 0
	}
	delta := now.Sub(f.last)
	f.last = now
	if delta < 0 {
		return 0
	}
	f.accumulator += delta
	n := int(f.accumulator / f.step)
	f.accumulator -= time.Duration(n) * f.step
	return n
}
