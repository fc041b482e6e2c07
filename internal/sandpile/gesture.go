package sandpile

import "fmt"

// GestureKind enumerates the edits a UI may request.
type GestureKind uint8

const (
	GestureAdd GestureKind = iota
	GestureRemove
	GestureSet
	GestureReset
	GestureRule
	GestureProbability
)

func (k GestureKind) String() string {
	switch k {
	case GestureAdd:
		return "add"
	case GestureRemove:
		return "remove"
	case GestureSet:
		return "set"
	case GestureReset:
		return "reset"
	case GestureRule:
		return "rule"
	case GestureProbability:
		return "probability"
	default:
		return fmt.Sprintf("gesture(%d)", uint8(k))
	}
}

// Gesture is a single edit, already translated to grid coordinates. Only the
// fields relevant to Kind are read.
type Gesture struct {
	Kind        GestureKind
	X, Y        int
	Amount      uint64
	Seed        int64
	Rule        Rule
	Probability float64
}

// Apply performs the edit described by g. Every edit is O(1) except reset,
// which is O(W*H).
func (p *Pile) Apply(g Gesture) error {
	switch g.Kind {
	case GestureAdd:
		return p.AddAt(g.Amount, g.X, g.Y)
	case GestureRemove:
		return p.RemoveAt(g.Amount, g.X, g.Y)
	case GestureSet:
		return p.SetValueAt(g.Amount, g.X, g.Y)
	case GestureReset:
		p.Reset(g.Seed)
		return nil
	case GestureRule:
		return p.SetRule(g.Rule)
	case GestureProbability:
		p.SetProbability(g.Probability)
		return nil
	default:
		return fmt.Errorf("apply %v: unsupported gesture", g.Kind)
	}
}
