package sandpile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLowerProbabilityTakesLonger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 5, 5
	cfg.Rule = ToroidalProbabilistic
	cfg.InitialPile = 12
	cfg.Seed = 100

	results, err := ProbabilitySweep(context.Background(), cfg, []float64{0.8, 0.2}, 120, 100000, 4)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		assert.Zero(t, r.Unsettled, "p=%v", r.Probability)
		assert.Equal(t, 120, r.Trials)
		assert.Greater(t, r.MeanSteps, 1.0)
	}
	assert.Greater(t, results[1].MeanSteps, results[0].MeanSteps,
		"mean steps at p=0.2 (%.1f) should exceed p=0.8 (%.1f)", results[1].MeanSteps, results[0].MeanSteps)
}

func TestStepsToStabilityIsDeterministicPerSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 6, 6
	cfg.Rule = ToroidalProbabilistic
	cfg.Probability = 0.5
	cfg.InitialPile = 16

	a, okA, err := StepsToStability(cfg, 42, 100000)
	require.NoError(t, err)
	b, okB, err := StepsToStability(cfg, 42, 100000)
	require.NoError(t, err)
	assert.True(t, okA)
	assert.True(t, okB)
	assert.Equal(t, a, b)
}

func TestStepsToStabilityReportsLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 3, 3
	cfg.Rule = ToroidalProbabilistic
	cfg.InitialPile = 60

	n, ok, err := StepsToStability(cfg, 1, 25)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 25, n)
}

func TestProbabilitySweepValidatesInput(t *testing.T) {
	_, err := ProbabilitySweep(context.Background(), DefaultConfig(), []float64{1}, 0, 10, 1)
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.Width = 0
	_, err = ProbabilitySweep(context.Background(), cfg, []float64{1}, 2, 10, 1)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ProbabilitySweep(ctx, DefaultConfig(), []float64{1}, 2, 10, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
