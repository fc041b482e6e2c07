package guard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sandpile/internal/sandpile"
)

func newTestGuard(t *testing.T, rule sandpile.Rule, queue int) *Guard {
	t.Helper()
	cfg := sandpile.DefaultConfig()
	cfg.Width, cfg.Height = 8, 8
	cfg.Rule = rule
	p, err := sandpile.New(cfg)
	require.NoError(t, err)
	return New(p, queue)
}

func TestTryStepRunsStep(t *testing.T) {
	g := newTestGuard(t, sandpile.BoundedDeterministic, 4)
	require.True(t, g.Submit(sandpile.Gesture{Kind: sandpile.GestureAdd, X: 3, Y: 3, Amount: 4}))
	assert.Equal(t, 1, g.Drain())

	stats, ok := g.TryStep()
	require.True(t, ok)
	assert.Equal(t, uint64(1), stats.Topples)
	assert.True(t, stats.Stable)

	snap := g.Snapshot()
	assert.Equal(t, uint64(0), snap.ValueAt(3, 3))
	assert.Equal(t, uint64(1), snap.ValueAt(2, 3))
	assert.Equal(t, uint64(4), snap.Sum())
}

func TestTryStepSkipsWhenLocked(t *testing.T) {
	g := newTestGuard(t, sandpile.BoundedIterative, 4)
	require.True(t, g.Submit(sandpile.Gesture{Kind: sandpile.GestureAdd, X: 1, Y: 1, Amount: 9}))

	g.mu.Lock()
	_, ok := g.TryStep()
	assert.False(t, ok)
	assert.Equal(t, 0, g.Drain(), "drain must not block")
	assert.Equal(t, 1, g.Pending(), "gestures stay queued")
	h := g.Health()
	assert.True(t, h.Degraded)
	assert.Equal(t, uint64(1), h.Skipped)
	g.mu.Unlock()

	assert.Equal(t, 1, g.Drain())
	_, ok = g.TryStep()
	assert.True(t, ok)
	assert.False(t, g.Health().Degraded)
}

func TestSubmitRejectsInvalidAndOverflow(t *testing.T) {
	g := newTestGuard(t, sandpile.BoundedIterative, 2)

	assert.False(t, g.Submit(sandpile.Gesture{Kind: sandpile.GestureAdd, X: 8, Y: 0, Amount: 1}))
	assert.False(t, g.Submit(sandpile.Gesture{Kind: sandpile.GestureRemove, X: 0, Y: -1, Amount: 1}))
	assert.False(t, g.Submit(sandpile.Gesture{Kind: sandpile.GestureRule, Rule: sandpile.Rule(12)}))
	assert.False(t, g.Submit(sandpile.Gesture{Kind: sandpile.GestureKind(99)}))

	assert.True(t, g.Submit(sandpile.Gesture{Kind: sandpile.GestureProbability, Probability: 0.5}))
	assert.True(t, g.Submit(sandpile.Gesture{Kind: sandpile.GestureRule, Rule: sandpile.ToroidalProbabilistic}))
	assert.False(t, g.Submit(sandpile.Gesture{Kind: sandpile.GestureReset}), "queue is full")

	assert.Equal(t, uint64(5), g.Health().Rejected)

	assert.Equal(t, 2, g.Drain())
	snap := g.Snapshot()
	assert.Equal(t, sandpile.ToroidalProbabilistic, snap.Rule)
	assert.Equal(t, 0.5, snap.Probability)
}

func TestDrainAppliesInOrder(t *testing.T) {
	g := newTestGuard(t, sandpile.BoundedIterative, 8)
	require.True(t, g.Submit(sandpile.Gesture{Kind: sandpile.GestureSet, X: 2, Y: 2, Amount: 10}))
	require.True(t, g.Submit(sandpile.Gesture{Kind: sandpile.GestureRemove, X: 2, Y: 2, Amount: 4}))
	require.True(t, g.Submit(sandpile.Gesture{Kind: sandpile.GestureAdd, X: 2, Y: 2, Amount: 1}))

	assert.Equal(t, 3, g.Drain())
	assert.Equal(t, uint64(7), g.Snapshot().ValueAt(2, 2))
	assert.Equal(t, 0, g.Drain())
}

func TestPanicInsideLockIsRecovered(t *testing.T) {
	g := &Guard{pile: &sandpile.Pile{}, gestures: make(chan sandpile.Gesture, 1)}

	assert.NotPanics(t, func() {
		_, ok := g.TryStep()
		assert.False(t, ok)
	})
	h := g.Health()
	assert.True(t, h.Degraded)
	assert.Equal(t, uint64(1), h.Recovered)

	require.True(t, g.mu.TryLock(), "lock released after recovery")
	g.mu.Unlock()
}

func TestConcurrentStepsAndSnapshots(t *testing.T) {
	g := newTestGuard(t, sandpile.ToroidalDeterministic, 64)
	for i := 0; i < 8; i++ {
		require.True(t, g.Submit(sandpile.Gesture{Kind: sandpile.GestureAdd, X: i, Y: i, Amount: 3}))
	}
	require.True(t, g.Submit(sandpile.Gesture{Kind: sandpile.GestureAdd, X: 4, Y: 4, Amount: 20}))
	require.Equal(t, 9, g.Drain())
	const mass = 8*3 + 20

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			g.Drain()
			g.TryStep()
		}
	}()

	var snap sandpile.Snapshot
	for i := 0; i < 500; i++ {
		g.SnapshotInto(&snap)
		require.Equal(t, uint64(mass), snap.Sum(), "snapshot %d saw a torn grid", i)
		g.Submit(sandpile.Gesture{Kind: sandpile.GestureProbability, Probability: 1})
	}
	close(stop)
	wg.Wait()

	g.Drain()
	h := g.Health()
	assert.Zero(t, h.Recovered)
}
