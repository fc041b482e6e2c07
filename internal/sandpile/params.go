package sandpile

import (
	"strconv"

	"sandpile/internal/core"
)

// ParameterControls lists the engine values the HUD may adjust.
func ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "rule", Label: "Rule", Type: core.ParamTypeInt, Step: 1, Min: 0, Max: float64(ruleCount - 1), HasMin: true, HasMax: true},
		{Key: "probability", Label: "Topple probability", Type: core.ParamTypeFloat, Step: 0.05, Min: minProbability, Max: 1, HasMin: true, HasMax: true},
	}
}

// Parameters describes a snapshot for the HUD.
func (s *Snapshot) Parameters() core.ParameterSnapshot {
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "Grid",
			Params: []core.Parameter{
				intParam("w", "Width", s.W),
				intParam("h", "Height", s.H),
				uintParam("grains", "Grains", s.Sum()),
			},
		},
		{
			Name: "Rule",
			Params: []core.Parameter{
				intParam("rule", "Rule", int(s.Rule)),
				{Key: "rule_name", Label: "Rule name", Type: core.ParamTypeText, Value: s.Rule.String()},
				floatParam("probability", "Topple probability", s.Probability),
			},
		},
		{
			Name: "Stats",
			Params: []core.Parameter{
				uintParam("steps", "Steps", s.Stats.Steps),
				uintParam("topples", "Topples", s.Stats.Topples),
				{Key: "stable", Label: "Stable", Type: core.ParamTypeBool, Value: strconv.FormatBool(s.Stats.Stable)},
			},
		},
	}}
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func uintParam(key, label string, value uint64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatUint(value, 10),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}
