// Package host emulates a plugin host: it pulls audio blocks, applies queued
// edits and lets the transport decide when the sandpile steps.
package host

import (
	"context"
	"fmt"
	"sync/atomic"

	"sandpile/internal/guard"
	"sandpile/internal/sandpile"
	"sandpile/internal/telemetry"
	"sandpile/internal/transport"
)

// bytesPerFrame is one 16-bit stereo frame.
const bytesPerFrame = 4

// Host is the audio-side owner of a guarded pile. Read and Block must only be
// called from the audio goroutine.
type Host struct {
	guard   *guard.Guard
	clock   *transport.Clock
	sync    *transport.Sync
	metrics *telemetry.Metrics

	blockSize int
	pending   int

	blocks atomic.Uint64
	steps  atomic.Uint64
}

// New wires a host around g. blockSize is the number of frames per processed
// block; metrics may be nil.
func New(g *guard.Guard, clock *transport.Clock, blockSize int, metrics *telemetry.Metrics) *Host {
	if blockSize <= 0 {
		blockSize = 512
	}
	h := &Host{
		guard:     g,
		clock:     clock,
		metrics:   metrics,
		blockSize: blockSize,
	}
	h.sync = transport.NewSync(guardStepper{h})
	return h
}

// FromConfig builds the pile, its guard and the standalone transport
// described by cfg and wires a host around them.
func FromConfig(cfg sandpile.Config, metrics *telemetry.Metrics) (*Host, error) {
	pile, err := sandpile.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("host: %w", err)
	}
	tc := cfg.Transport
	clock := transport.NewClock(tc.BPM, tc.BeatsPerBar, tc.SampleRate)
	return New(guard.New(pile, cfg.GestureQueue), clock, tc.BlockSize, metrics), nil
}

type guardStepper struct{ h *Host }

func (s guardStepper) TryStep() bool {
	stats, ok := s.h.guard.TryStep()
	s.h.metrics.ObserveStep(stats, ok)
	if ok {
		s.h.steps.Add(1)
	}
	return ok
}

// Block processes one audio block of frames and reports whether the pile
// stepped. Queued gestures are applied before the transport is consulted.
func (h *Host) Block(frames int) bool {
	applied := h.guard.Drain()
	stepped := h.sync.Process(h.clock.Advance(frames))
	h.blocks.Add(1)
	h.metrics.ObserveBlock(applied)
	return stepped
}

// Read fills p with silence in whole stereo frames and processes a block
// every time enough frames have been pulled. It lets an audio player drive
// the host from its own real-time goroutine.
func (h *Host) Read(p []byte) (int, error) {
	n := len(p) - len(p)%bytesPerFrame
	if n == 0 {
		return 0, nil
	}
	clear(p[:n])
	h.pending += n / bytesPerFrame
	for h.pending >= h.blockSize {
		h.pending -= h.blockSize
		h.Block(h.blockSize)
	}
	return n, nil
}

// Close satisfies io.Closer for audio players.
func (h *Host) Close() error { return nil }

// RunBlocks processes up to blocks blocks back to back, stopping early when
// ctx is done, and returns how many ran.
func (h *Host) RunBlocks(ctx context.Context, blocks int) int {
	for i := 0; i < blocks; i++ {
		if ctx.Err() != nil {
			return i
		}
		h.Block(h.blockSize)
	}
	return blocks
}

// BlocksForBeats returns how many blocks cover beats at the current tempo.
func (h *Host) BlocksForBeats(beats float64) int {
	if beats <= 0 {
		return 0
	}
	framesPerBeat := h.clock.SampleRate() * 60 / h.clock.BPM()
	blocks := beats * framesPerBeat / float64(h.blockSize)
	n := int(blocks)
	if float64(n) < blocks {
		n++
	}
	return n
}

// BlockSize returns the frames per block.
func (h *Host) BlockSize() int { return h.blockSize }

// Clock returns the transport that drives the host.
func (h *Host) Clock() *transport.Clock { return h.clock }

// Guard returns the shared pile.
func (h *Host) Guard() *guard.Guard { return h.guard }

// Blocks returns the number of processed blocks.
func (h *Host) Blocks() uint64 { return h.blocks.Load() }

// Steps returns the number of steps the transport fired.
func (h *Host) Steps() uint64 { return h.steps.Load() }
