package sandpile

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// TransportConfig describes the standalone host transport that drives steps.
type TransportConfig struct {
	BPM         float64 `yaml:"bpm"`
	BeatsPerBar int     `yaml:"beats_per_bar"`
	SampleRate  int     `yaml:"sample_rate"`
	BlockSize   int     `yaml:"block_size"`
}

// Config controls the pile dimensions, rule and the surrounding runtime.
type Config struct {
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	Rule   Rule `yaml:"rule"`

	Probability float64 `yaml:"probability"`
	Seed        int64   `yaml:"seed"`
	InitialPile uint64  `yaml:"initial_pile"`

	// AvalancheBudget caps topple events per step for the recursive rules.
	// Zero selects 256 events per cell.
	AvalancheBudget int `yaml:"avalanche_budget"`
	// GestureQueue is the capacity of the UI-to-audio edit queue.
	GestureQueue int `yaml:"gesture_queue"`

	Transport TransportConfig `yaml:"transport"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Width:        25,
		Height:       25,
		Rule:         BoundedIterative,
		Probability:  1,
		Seed:         1337,
		GestureQueue: 64,
		Transport: TransportConfig{
			BPM:         120,
			BeatsPerBar: 4,
			SampleRate:  48000,
			BlockSize:   512,
		},
	}
}

// LoadConfig reads a YAML file over the defaults. Keys missing from the file
// keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %q: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	c.Merge(cfg)
	return c
}

// Merge applies flag-style key/value overrides to c. Unparseable or out of
// range values are ignored.
func (c *Config) Merge(cfg map[string]string) {
	if cfg == nil {
		return
	}
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Width = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Height = parsed
		}
	}
	if v, ok := cfg["rule"]; ok {
		if parsed, err := ParseRule(v); err == nil {
			c.Rule = parsed
		}
	}
	if v, ok := cfg["probability"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.Probability = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["initial_pile"]; ok {
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.InitialPile = parsed
		}
	}
	if v, ok := cfg["avalanche_budget"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.AvalancheBudget = parsed
		}
	}
	if v, ok := cfg["gesture_queue"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.GestureQueue = parsed
		}
	}
	if v, ok := cfg["bpm"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			c.Transport.BPM = parsed
		}
	}
	if v, ok := cfg["beats_per_bar"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Transport.BeatsPerBar = parsed
		}
	}
	if v, ok := cfg["sample_rate"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Transport.SampleRate = parsed
		}
	}
	if v, ok := cfg["block_size"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Transport.BlockSize = parsed
		}
	}
	c.normalize()
}

func (c *Config) normalize() {
	c.Probability = clampProbability(c.Probability, 1)
	if c.AvalancheBudget < 0 {
		c.AvalancheBudget = 0
	}
	if c.GestureQueue <= 0 {
		c.GestureQueue = 64
	}
	d := DefaultConfig().Transport
	if c.Transport.BPM <= 0 {
		c.Transport.BPM = d.BPM
	}
	if c.Transport.BeatsPerBar <= 0 {
		c.Transport.BeatsPerBar = d.BeatsPerBar
	}
	if c.Transport.SampleRate <= 0 {
		c.Transport.SampleRate = d.SampleRate
	}
	if c.Transport.BlockSize <= 0 {
		c.Transport.BlockSize = d.BlockSize
	}
}
