//go:build !ebiten

package ui

import "sandpile/internal/core"

// HUD is a no-op placeholder for headless builds.
type HUD struct{}

// NewHUD returns nil in the headless build.
func NewHUD(string, []core.ParameterControl, core.IntParameterSetter, core.FloatParameterSetter, int) *HUD {
	return nil
}

// Update is a no-op in the headless build.
func (h *HUD) Update(int, core.ParameterSnapshot) {}

// Draw is a no-op in the headless build.
func (h *HUD) Draw(any, int, int) {}
