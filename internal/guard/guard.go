// Package guard shares one sandpile between the audio goroutine, which is the
// only writer, and UI goroutines, which read owned snapshots and queue edits.
package guard

import (
	"sync"
	"sync/atomic"

	"sandpile/internal/sandpile"
)

// Health reports how the real-time side has fared.
type Health struct {
	// Degraded is set while the most recent real-time attempt could not run.
	Degraded bool
	// Skipped counts steps abandoned because the lock was busy.
	Skipped uint64
	// Recovered counts panics caught inside the locked region.
	Recovered uint64
	// Rejected counts gestures refused by Submit.
	Rejected uint64
}

// Guard owns a pile behind a single mutex.
type Guard struct {
	mu   sync.Mutex
	pile *sandpile.Pile
	w, h int

	gestures chan sandpile.Gesture

	degraded  atomic.Bool
	skipped   atomic.Uint64
	recovered atomic.Uint64
	rejected  atomic.Uint64
}

// New wraps pile. queue bounds the number of edits waiting for the audio
// goroutine; values below one select a single slot.
func New(pile *sandpile.Pile, queue int) *Guard {
	if queue < 1 {
		queue = 1
	}
	size := pile.Size()
	return &Guard{
		pile:     pile,
		w:        size.W,
		h:        size.H,
		gestures: make(chan sandpile.Gesture, queue),
	}
}

// TryStep runs one step if the lock is free and returns the resulting stats.
// It never blocks: on contention the step is skipped and ok is false.
func (g *Guard) TryStep() (stats sandpile.Stats, ok bool) {
	if !g.mu.TryLock() {
		g.skipped.Add(1)
		g.degraded.Store(true)
		return stats, false
	}
	defer g.mu.Unlock()
	defer g.recoverPanic(&ok)

	g.pile.Step()
	g.degraded.Store(false)
	return g.pile.Stats(), true
}

// Drain applies queued gestures if the lock is free and reports how many were
// applied. Gestures stay queued when the lock is busy.
func (g *Guard) Drain() (n int) {
	if len(g.gestures) == 0 {
		return 0
	}
	if !g.mu.TryLock() {
		g.degraded.Store(true)
		return 0
	}
	defer g.mu.Unlock()
	var ok bool
	defer g.recoverPanic(&ok)

	limit := cap(g.gestures)
	for n < limit {
		select {
		case gesture := <-g.gestures:
			if err := g.pile.Apply(gesture); err != nil {
				g.rejected.Add(1)
			}
			n++
		default:
			return n
		}
	}
	return n
}

func (g *Guard) recoverPanic(ok *bool) {
	if r := recover(); r != nil {
		g.recovered.Add(1)
		g.degraded.Store(true)
		*ok = false
	}
}

// Submit queues a gesture for the audio goroutine without blocking. Gestures
// addressing cells outside the grid, naming an unknown rule, or arriving while
// the queue is full are rejected.
func (g *Guard) Submit(gesture sandpile.Gesture) bool {
	if !g.valid(gesture) {
		g.rejected.Add(1)
		return false
	}
	select {
	case g.gestures <- gesture:
		return true
	default:
		g.rejected.Add(1)
		return false
	}
}

func (g *Guard) valid(gesture sandpile.Gesture) bool {
	switch gesture.Kind {
	case sandpile.GestureAdd, sandpile.GestureRemove, sandpile.GestureSet:
		return gesture.X >= 0 && gesture.Y >= 0 && gesture.X < g.w && gesture.Y < g.h
	case sandpile.GestureRule:
		return gesture.Rule.Valid()
	case sandpile.GestureReset, sandpile.GestureProbability:
		return true
	default:
		return false
	}
}

// Pending reports how many gestures are waiting.
func (g *Guard) Pending() int { return len(g.gestures) }

// SnapshotInto copies the pile into dst, reusing its buffers. It blocks for
// the duration of one O(W*H) copy.
func (g *Guard) SnapshotInto(dst *sandpile.Snapshot) {
	g.mu.Lock()
	g.pile.CopyTo(dst)
	g.mu.Unlock()
}

// Snapshot returns a freshly allocated copy of the pile.
func (g *Guard) Snapshot() *sandpile.Snapshot {
	s := &sandpile.Snapshot{}
	g.SnapshotInto(s)
	return s
}

// Size reports the fixed grid dimensions.
func (g *Guard) Size() (int, int) { return g.w, g.h }

// Health returns the current degradation counters.
func (g *Guard) Health() Health {
	return Health{
		Degraded:  g.degraded.Load(),
		Skipped:   g.skipped.Load(),
		Recovered: g.recovered.Load(),
		Rejected:  g.rejected.Load(),
	}
}
