package sandpile

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// TrialResult summarises repeated relaxations at one probability.
type TrialResult struct {
	Probability float64
	Trials      int
	MeanSteps   float64
	MaxSteps    int
	// Unsettled counts trials that hit the step limit before stabilising.
	Unsettled int
}

// StepsToStability resets a pile built from cfg with seed and steps it until
// the stability flag is raised or maxSteps is reached.
func StepsToStability(cfg Config, seed int64, maxSteps int) (int, bool, error) {
	p, err := New(cfg)
	if err != nil {
		return 0, false, err
	}
	p.Reset(seed)
	for n := 1; n <= maxSteps; n++ {
		p.Step()
		if p.stats.Stable {
			return n, true, nil
		}
	}
	return maxSteps, false, nil
}

// ProbabilitySweep measures the mean number of steps to stability for every
// probability in probs, running trials relaxations each across workers
// goroutines. Trial i uses seed cfg.Seed+i so results are reproducible.
func ProbabilitySweep(ctx context.Context, cfg Config, probs []float64, trials, maxSteps, workers int) ([]TrialResult, error) {
	if trials <= 0 {
		return nil, fmt.Errorf("probability sweep: trials must be positive, got %d", trials)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	steps := make([][]int, len(probs))
	settled := make([][]bool, len(probs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for pi, prob := range probs {
		steps[pi] = make([]int, trials)
		settled[pi] = make([]bool, trials)
		trialCfg := cfg
		trialCfg.Probability = prob
		for t := 0; t < trials; t++ {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				n, ok, err := StepsToStability(trialCfg, cfg.Seed+int64(t), maxSteps)
				if err != nil {
					return err
				}
				steps[pi][t] = n
				settled[pi][t] = ok
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]TrialResult, len(probs))
	for pi, prob := range probs {
		res := TrialResult{Probability: clampProbability(prob, 1), Trials: trials}
		total := 0
		for t, n := range steps[pi] {
			total += n
			if n > res.MaxSteps {
				res.MaxSteps = n
			}
			if !settled[pi][t] {
				res.Unsettled++
			}
		}
		res.MeanSteps = float64(total) / float64(trials)
		results[pi] = res
	}
	return results, nil
}
