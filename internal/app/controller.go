package app

import (
	"log/slog"
	"strconv"

	"golang.org/x/time/rate"

	"sandpile/internal/core"
	"sandpile/internal/guard"
	"sandpile/internal/sandpile"
	"sandpile/internal/transport"
)

const (
	maxPileAmount = 100000
	minBPM        = 20
	maxBPM        = 300

	// paintRate bounds the gestures a held mouse button may queue per second.
	paintRate  = 30
	paintBurst = 4
)

// Controller turns UI input into gestures for the audio goroutine and into
// transport changes. It never touches the pile directly.
type Controller struct {
	guard   *guard.Guard
	clock   *transport.Clock
	logger  *slog.Logger
	painter *rate.Limiter

	pileAmount uint64
	seed       int64
}

// NewController returns a controller that queues edits on g.
func NewController(g *guard.Guard, clock *transport.Clock, pileAmount uint64, seed int64, logger *slog.Logger) *Controller {
	if pileAmount == 0 {
		pileAmount = 1
	}
	return &Controller{
		guard:      g,
		clock:      clock,
		logger:     logger,
		painter:    rate.NewLimiter(paintRate, paintBurst),
		pileAmount: min(pileAmount, maxPileAmount),
		seed:       seed,
	}
}

// Controls lists the engine controls followed by the UI-side ones.
func (c *Controller) Controls() []core.ParameterControl {
	return append(sandpile.ParameterControls(),
		core.ParameterControl{Key: "pile_amount", Label: "Grains per click", Type: core.ParamTypeInt, Step: 50, Min: 1, Max: maxPileAmount, HasMin: true, HasMax: true},
		core.ParameterControl{Key: "bpm", Label: "Tempo", Type: core.ParamTypeFloat, Step: 5, Min: minBPM, Max: maxBPM, HasMin: true, HasMax: true},
	)
}

// Parameters extends the snapshot parameters with the UI and transport state.
func (c *Controller) Parameters(snap *sandpile.Snapshot) core.ParameterSnapshot {
	params := snap.Parameters()
	params.Groups = append(params.Groups, core.ParameterGroup{
		Name: "Input",
		Params: []core.Parameter{
			{Key: "pile_amount", Label: "Grains per click", Type: core.ParamTypeInt, Value: strconv.FormatUint(c.pileAmount, 10)},
			{Key: "bpm", Label: "Tempo", Type: core.ParamTypeFloat, Value: strconv.FormatFloat(c.clock.BPM(), 'f', -1, 64)},
			{Key: "playing", Label: "Playing", Type: core.ParamTypeBool, Value: strconv.FormatBool(c.clock.Playing())},
		},
	})
	return params
}

// SetIntParameter implements core.IntParameterSetter.
func (c *Controller) SetIntParameter(key string, value int) bool {
	switch key {
	case "rule":
		return c.submit(sandpile.Gesture{Kind: sandpile.GestureRule, Rule: sandpile.Rule(value)})
	case "pile_amount":
		if value < 1 || value > maxPileAmount {
			return false
		}
		c.pileAmount = uint64(value)
		return true
	default:
		return false
	}
}

// SetFloatParameter implements core.FloatParameterSetter.
func (c *Controller) SetFloatParameter(key string, value float64) bool {
	switch key {
	case "probability":
		return c.submit(sandpile.Gesture{Kind: sandpile.GestureProbability, Probability: value})
	case "bpm":
		if value < minBPM || value > maxBPM {
			return false
		}
		c.clock.SetBPM(value)
		return true
	default:
		return false
	}
}

// PileAmount returns the grains moved per click.
func (c *Controller) PileAmount() uint64 { return c.pileAmount }

// AddAt queues pile-amount grains on (x, y).
func (c *Controller) AddAt(x, y int) bool {
	return c.submit(sandpile.Gesture{Kind: sandpile.GestureAdd, X: x, Y: y, Amount: c.pileAmount})
}

// RemoveAt queues the removal of pile-amount grains from (x, y).
func (c *Controller) RemoveAt(x, y int) bool {
	return c.submit(sandpile.Gesture{Kind: sandpile.GestureRemove, X: x, Y: y, Amount: c.pileAmount})
}

// Paint is AddAt or RemoveAt for a held mouse button. Calls beyond the paint
// rate are dropped so a drag cannot flood the gesture queue.
func (c *Controller) Paint(x, y int, add bool) bool {
	if !c.painter.Allow() {
		return false
	}
	if add {
		return c.AddAt(x, y)
	}
	return c.RemoveAt(x, y)
}

// AddCentre is AddAt on the centre cell.
func (c *Controller) AddCentre() bool {
	w, h := c.guard.Size()
	return c.AddAt(w/2, h/2)
}

// RemoveCentre is RemoveAt on the centre cell.
func (c *Controller) RemoveCentre() bool {
	w, h := c.guard.Size()
	return c.RemoveAt(w/2, h/2)
}

// Reset queues a reset. A zero seed reuses the last one.
func (c *Controller) Reset(seed int64) bool {
	if seed != 0 {
		c.seed = seed
	}
	return c.submit(sandpile.Gesture{Kind: sandpile.GestureReset, Seed: c.seed})
}

// CycleRule queues the rule following current.
func (c *Controller) CycleRule(current sandpile.Rule) bool {
	rules := sandpile.Rules()
	next := rules[0]
	for i, r := range rules {
		if r == current {
			next = rules[(i+1)%len(rules)]
			break
		}
	}
	return c.submit(sandpile.Gesture{Kind: sandpile.GestureRule, Rule: next})
}

// ApplyConfig queues the live-adjustable differences between prev and next:
// rule, probability and tempo. Grid dimensions cannot change on a running
// pile and are reported instead.
func (c *Controller) ApplyConfig(prev, next sandpile.Config) {
	if next.Width != prev.Width || next.Height != prev.Height {
		c.logger.Warn("grid size changes need a restart", "width", next.Width, "height", next.Height)
	}
	if next.Rule != prev.Rule {
		c.submit(sandpile.Gesture{Kind: sandpile.GestureRule, Rule: next.Rule})
	}
	if next.Probability != prev.Probability {
		c.submit(sandpile.Gesture{Kind: sandpile.GestureProbability, Probability: next.Probability})
	}
	if next.Transport.BPM != prev.Transport.BPM {
		c.clock.SetBPM(next.Transport.BPM)
	}
}

// TogglePlay starts or stops the standalone transport.
func (c *Controller) TogglePlay() bool {
	playing := c.clock.Toggle()
	c.logger.Info("transport", "playing", playing, "bpm", c.clock.BPM())
	return playing
}

func (c *Controller) submit(g sandpile.Gesture) bool {
	if c.guard.Submit(g) {
		return true
	}
	c.logger.Debug("gesture rejected", "kind", g.Kind, "x", g.X, "y", g.Y, "pending", c.guard.Pending())
	return false
}
