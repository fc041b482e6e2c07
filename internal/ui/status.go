package ui

import (
	"fmt"
	"image/color"
	"math"

	"sandpile/internal/guard"
	"sandpile/internal/sandpile"
)

// Status is the transport and real-time health shown next to the grid.
type Status struct {
	Playing bool
	BPM     float64
	Steps   uint64
	Pending int
	Health  guard.Health
}

func statusLines(snap *sandpile.Snapshot, st Status, dst []string) []string {
	transport := "stopped"
	if st.Playing {
		transport = "playing"
	}
	stable := "settling"
	if snap.Stats.Stable {
		stable = "stable"
	}
	dst = append(dst,
		fmt.Sprintf("%s  p=%.3f  %s", snap.Rule, snap.Probability, stable),
		fmt.Sprintf("grains %d  topples %d", snap.Sum(), snap.Stats.Topples),
		fmt.Sprintf("%s %.1f bpm  steps %d", transport, st.BPM, st.Steps),
	)
	if st.Health.Degraded || st.Health.Skipped > 0 || st.Health.Recovered > 0 {
		dst = append(dst, fmt.Sprintf("skipped %d  recovered %d", st.Health.Skipped, st.Health.Recovered))
	}
	if st.Pending > 0 || st.Health.Rejected > 0 {
		dst = append(dst, fmt.Sprintf("queued %d  rejected %d", st.Pending, st.Health.Rejected))
	}
	return dst
}

// heatIntensity maps an unstable count onto [0,1] on a log scale relative to
// the tallest pile. Stable cells map to zero.
func heatIntensity(count, peak uint64) float64 {
	if count < 4 || peak < 4 {
		return 0
	}
	if peak == 4 {
		return 1
	}
	return clamp01(math.Log(float64(count)/3) / math.Log(float64(peak)/3))
}

func peakCount(counts []uint64) uint64 {
	var peak uint64
	for _, c := range counts {
		peak = max(peak, c)
	}
	return peak
}

func heatColor(t float64) color.RGBA {
	t = clamp01(t)
	stops := []struct {
		t   float64
		col color.RGBA
	}{
		{0.0, color.RGBA{R: 120, G: 40, B: 160, A: 90}},
		{0.5, color.RGBA{R: 230, G: 60, B: 60, A: 170}},
		{1.0, color.RGBA{R: 255, G: 240, B: 200, A: 230}},
	}
	for i := 1; i < len(stops); i++ {
		curr := stops[i]
		if t <= curr.t {
			prev := stops[i-1]
			return lerpRGBA(prev.col, curr.col, (t-prev.t)/(curr.t-prev.t))
		}
	}
	return stops[len(stops)-1].col
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	t = clamp01(t)
	return color.RGBA{
		R: lerpComponent(a.R, b.R, t),
		G: lerpComponent(a.G, b.G, t),
		B: lerpComponent(a.B, b.B, t),
		A: lerpComponent(a.A, b.A, t),
	}
}

func lerpComponent(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
