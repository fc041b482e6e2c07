package app

import (
	"flag"
	"strconv"

	"sandpile/internal/sandpile"
)

// Config represents the command-line parameters for the application.
type Config struct {
	ConfigPath string
	Rule       string
	W, H       int
	Scale      int
	TPS        int
	Seed       int64
	Pile       uint64
	PileAmount uint64
	BPM        float64
	LogLevel   string
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	d := sandpile.DefaultConfig()
	return &Config{
		Rule:       d.Rule.String(),
		W:          d.Width,
		H:          d.Height,
		Scale:      16,
		TPS:        60,
		Seed:       d.Seed,
		Pile:       5000,
		PileAmount: 100,
		BPM:        d.Transport.BPM,
		LogLevel:   "info",
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigPath, "config", c.ConfigPath, "YAML engine configuration")
	fs.StringVar(&c.Rule, "rule", c.Rule, "topple rule: bounded, bounded-iterative, torus or torus-probabilistic")
	fs.IntVar(&c.W, "w", c.W, "grid width")
	fs.IntVar(&c.H, "h", c.H, "grid height")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for pile reset")
	fs.Uint64Var(&c.Pile, "pile", c.Pile, "grains dropped on the centre cell at reset")
	fs.Uint64Var(&c.PileAmount, "amount", c.PileAmount, "grains added or removed per click")
	fs.Float64Var(&c.BPM, "bpm", c.BPM, "standalone transport tempo")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn or error")
}

// flagKeys maps flag names onto sandpile.Config.Merge keys.
var flagKeys = map[string]string{
	"rule": "rule",
	"w":    "w",
	"h":    "h",
	"seed": "seed",
	"pile": "initial_pile",
	"bpm":  "bpm",
}

// Engine resolves the engine configuration. The YAML file, when given, is
// read over the defaults; flags set explicitly on fs override it. Without a
// file the flag values, defaults included, are used throughout.
func (c *Config) Engine(fs *flag.FlagSet) (sandpile.Config, error) {
	cfg := sandpile.DefaultConfig()
	overrides := map[string]string{}
	if c.ConfigPath != "" {
		loaded, err := sandpile.LoadConfig(c.ConfigPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
		fs.Visit(func(f *flag.Flag) {
			if key, ok := flagKeys[f.Name]; ok {
				overrides[key] = f.Value.String()
			}
		})
	} else {
		overrides = c.values()
	}
	if v, ok := overrides["rule"]; ok {
		if _, err := sandpile.ParseRule(v); err != nil {
			return cfg, err
		}
	}
	cfg.Merge(overrides)
	return cfg, nil
}

func (c *Config) values() map[string]string {
	return map[string]string{
		"rule":         c.Rule,
		"w":            strconv.Itoa(c.W),
		"h":            strconv.Itoa(c.H),
		"seed":         strconv.FormatInt(c.Seed, 10),
		"initial_pile": strconv.FormatUint(c.Pile, 10),
		"bpm":          strconv.FormatFloat(c.BPM, 'f', -1, 64),
	}
}
