package ui

import (
	"image"
	"math"
	"strconv"

	"sandpile/internal/core"
)

type hudControlState struct {
	control core.ParameterControl
	value   string

	intValue   int
	floatValue float64
	hasValue   bool

	top       int
	minusRect image.Rectangle
	plusRect  image.Rectangle
}

// refresh parses param into the control state.
func (s *hudControlState) refresh(param core.Parameter, ok bool) {
	s.hasValue = false
	s.value = "--"
	if !ok {
		return
	}
	switch s.control.Type {
	case core.ParamTypeInt:
		parsed, err := strconv.Atoi(param.Value)
		if err != nil {
			return
		}
		s.intValue = parsed
		s.floatValue = float64(parsed)
		s.value = strconv.Itoa(parsed)
		s.hasValue = true
	case core.ParamTypeFloat:
		parsed, err := strconv.ParseFloat(param.Value, 64)
		if err != nil {
			return
		}
		s.floatValue = parsed
		s.value = formatFloat(s.control, parsed)
		s.hasValue = true
	}
}

// adjustInt returns the value one step from current in direction, clamped to
// the control bounds. ok is false when the value would not change.
func adjustInt(ctrl core.ParameterControl, current, direction int) (int, bool) {
	if direction == 0 {
		return current, false
	}
	step := int(math.Round(ctrl.Step))
	if step <= 0 {
		step = 1
	}
	target := current + direction*step
	if ctrl.HasMin {
		target = max(target, int(math.Round(ctrl.Min)))
	}
	if ctrl.HasMax {
		target = min(target, int(math.Round(ctrl.Max)))
	}
	return target, target != current
}

// adjustFloat is adjustInt for float controls.
func adjustFloat(ctrl core.ParameterControl, current float64, direction int) (float64, bool) {
	if direction == 0 {
		return current, false
	}
	step := ctrl.Step
	if step <= 0 {
		step = 0.05
	}
	target := current + float64(direction)*step
	if ctrl.HasMin && target < ctrl.Min {
		target = ctrl.Min
	}
	if ctrl.HasMax && target > ctrl.Max {
		target = ctrl.Max
	}
	return target, math.Abs(target-current) >= 1e-9
}

func formatFloat(ctrl core.ParameterControl, value float64) string {
	step := ctrl.Step
	if step <= 0 {
		step = 0.05
	}
	precision := 1
	switch {
	case step < 0.001:
		precision = 4
	case step < 0.01:
		precision = 3
	case step < 0.1:
		precision = 2
	}
	return strconv.FormatFloat(value, 'f', precision, 64)
}

// readoutLines appends "Label: value" for every parameter that has no control.
func readoutLines(snapshot core.ParameterSnapshot, controls []hudControlState, dst []string) []string {
	for _, group := range snapshot.Groups {
		for _, param := range group.Params {
			if hasControl(controls, param.Key) {
				continue
			}
			dst = append(dst, param.Label+": "+param.Value)
		}
	}
	return dst
}

func hasControl(controls []hudControlState, key string) bool {
	for i := range controls {
		if controls[i].control.Key == key {
			return true
		}
	}
	return false
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}
