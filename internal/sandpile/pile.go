package sandpile

import (
	"fmt"
	"math"

	"sandpile/internal/core"
)

// minProbability is the lowest accepted topple probability.
const minProbability = 0.001

// defaultBudgetPerCell scales the per-step topple budget with the grid area.
const defaultBudgetPerCell = 256

// Stats reports the engine counters. Steps counts cell visits and grain
// deliveries; Topples counts avalanche events. Stable is true once a step
// finished without leaving any eligible cell unstable.
type Stats struct {
	Steps   uint64
	Topples uint64
	Stable  bool
}

// Pile owns a sandpile grid and applies the configured topple rule to it.
// A Pile is not safe for concurrent use; share it through guard.Guard.
type Pile struct {
	cfg Config

	grid        *core.CountGrid
	rule        Rule
	probability float64
	budget      int
	stats       Stats

	rng     *core.RNG
	work    worklist
	display []uint8
}

var _ core.Sim = (*Pile)(nil)

// New allocates a pile from cfg. The grid is sized once and never resized.
func New(cfg Config) (*Pile, error) {
	grid, err := core.NewCountGrid(cfg.Width, cfg.Height)
	if err != nil {
		return nil, fmt.Errorf("new sandpile: %w", err)
	}
	if !cfg.Rule.Valid() {
		return nil, fmt.Errorf("new sandpile: %w: %d", ErrUnknownRule, uint8(cfg.Rule))
	}
	total := cfg.Width * cfg.Height
	budget := cfg.AvalancheBudget
	if budget <= 0 {
		budget = defaultBudgetPerCell * total
	}
	p := &Pile{
		cfg:         cfg,
		grid:        grid,
		rule:        cfg.Rule,
		probability: clampProbability(cfg.Probability, 1),
		budget:      budget,
		rng:         core.NewRNG(cfg.Seed),
		work:        newWorklist(total),
		display:     make([]uint8, total),
	}
	p.placeInitialPile()
	p.stats.Stable = !p.hasUnstable()
	return p, nil
}

// Name returns the simulation identifier.
func (p *Pile) Name() string { return "sandpile" }

// Size reports the grid dimensions.
func (p *Pile) Size() core.Size { return core.Size{W: p.grid.W, H: p.grid.H} }

// Cells returns the palette index of every cell; see Snapshot.Display.
func (p *Pile) Cells() []uint8 {
	fillDisplay(p.display, p.grid.Counts(), p.grid.W, p.grid.H, p.rule.Bounded())
	return p.display
}

// Rule returns the active topple rule.
func (p *Pile) Rule() Rule { return p.rule }

// SetRule switches the topple rule. Pending avalanche work is dropped and the
// pile is treated as perturbed.
func (p *Pile) SetRule(r Rule) error {
	if !r.Valid() {
		return fmt.Errorf("set rule: %w: %d", ErrUnknownRule, uint8(r))
	}
	p.rule = r
	p.work.reset()
	p.stats.Stable = false
	return nil
}

// Probability returns the per-direction topple probability.
func (p *Pile) Probability() float64 { return p.probability }

// SetProbability clamps v to [0.001, 1] and stores it. NaN is ignored.
func (p *Pile) SetProbability(v float64) {
	p.probability = clampProbability(v, p.probability)
}

func clampProbability(v, fallback float64) float64 {
	switch {
	case math.IsNaN(v):
		return fallback
	case v < minProbability:
		return minProbability
	case v > 1:
		return 1
	default:
		return v
	}
}

// Stats returns a copy of the engine counters.
func (p *Pile) Stats() Stats { return p.stats }

// Step applies exactly one full-grid pass of the configured rule.
func (p *Pile) Step() {
	switch p.rule {
	case BoundedDeterministic:
		p.relaxBounded()
	case BoundedIterative:
		p.sweepBounded()
	case ToroidalDeterministic:
		p.relaxToroidal()
	case ToroidalProbabilistic:
		p.sweepToroidal()
	}
}

// Reset zeroes every cell, clears the stability flag and reseeds the random
// source. A zero seed falls back to the configured seed. When the config
// carries an initial pile it is dropped on the centre cell afterwards.
// Lifetime counters are kept.
func (p *Pile) Reset(seed int64) {
	if seed == 0 {
		seed = p.cfg.Seed
	}
	p.grid.Clear()
	p.work.reset()
	p.rng.Reseed(seed)
	p.placeInitialPile()
	p.stats.Stable = false
}

func (p *Pile) placeInitialPile() {
	if p.cfg.InitialPile == 0 {
		return
	}
	cells := p.grid.Counts()
	cells[p.grid.Index(p.grid.W/2, p.grid.H/2)] = p.cfg.InitialPile
}

// ValueAt returns the grain count at (x, y).
func (p *Pile) ValueAt(x, y int) (uint64, error) {
	return p.grid.Get(x, y)
}

// SetValueAt overwrites the grain count at (x, y).
func (p *Pile) SetValueAt(v uint64, x, y int) error {
	if err := p.grid.Set(x, y, v); err != nil {
		return err
	}
	p.stats.Stable = false
	return nil
}

// AddAt drops n grains on (x, y).
func (p *Pile) AddAt(n uint64, x, y int) error {
	if err := p.grid.AddAt(n, x, y); err != nil {
		return err
	}
	p.stats.Stable = false
	return nil
}

// RemoveAt takes up to n grains from (x, y); the count saturates at zero.
func (p *Pile) RemoveAt(n uint64, x, y int) error {
	if err := p.grid.RemoveAt(n, x, y); err != nil {
		return err
	}
	p.stats.Stable = false
	return nil
}

// Sum returns the number of grains on the grid, ring included.
func (p *Pile) Sum() uint64 { return p.grid.Sum() }

// hasUnstable reports whether any cell the active rule may topple holds more
// than three grains.
func (p *Pile) hasUnstable() bool {
	cells := p.grid.Counts()
	w, h := p.grid.W, p.grid.H
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if cells[y*w+x] < toppleThreshold {
				continue
			}
			if !p.rule.Bounded() || p.grid.Interior(x, y) {
				return true
			}
		}
	}
	return false
}
