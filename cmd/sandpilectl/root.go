package main

import (
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"sandpile/internal/logging"
	"sandpile/internal/sandpile"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logJSON    bool

	rule        string
	width       int
	height      int
	seed        int64
	pile        uint64
	probability float64
	bpm         float64
}

// overrideKeys maps persistent flag names onto sandpile.Config.Merge keys.
var overrideKeys = map[string]string{
	"rule":        "rule",
	"width":       "w",
	"height":      "h",
	"seed":        "seed",
	"pile":        "initial_pile",
	"probability": "probability",
	"bpm":         "bpm",
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	d := sandpile.DefaultConfig()

	root := &cobra.Command{
		Use:           "sandpilectl",
		Short:         "Run the sandpile engine headless",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "YAML engine configuration")
	pf.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	pf.BoolVar(&opts.logJSON, "log-json", false, "log as JSON")
	pf.StringVar(&opts.rule, "rule", d.Rule.String(), "topple rule: bounded, bounded-iterative, torus or torus-probabilistic")
	pf.IntVar(&opts.width, "width", d.Width, "grid width")
	pf.IntVar(&opts.height, "height", d.Height, "grid height")
	pf.Int64Var(&opts.seed, "seed", d.Seed, "random seed")
	pf.Uint64Var(&opts.pile, "pile", d.InitialPile, "grains dropped on the centre cell")
	pf.Float64Var(&opts.probability, "probability", d.Probability, "topple probability for the stochastic sweeps")
	pf.Float64Var(&opts.bpm, "bpm", d.Transport.BPM, "standalone transport tempo")

	root.AddCommand(newRunCmd(opts), newRelaxCmd(opts), newTrialsCmd(opts))
	return root
}

func (o *rootOptions) logger(cmd *cobra.Command) (*slog.Logger, error) {
	return logging.New(cmd.ErrOrStderr(), logging.Config{Level: o.logLevel, JSON: o.logJSON})
}

// engineConfig loads the YAML file, if any, and applies the flags the user set.
func (o *rootOptions) engineConfig(cmd *cobra.Command) (sandpile.Config, error) {
	cfg := sandpile.DefaultConfig()
	if o.configPath != "" {
		loaded, err := sandpile.LoadConfig(o.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	values := map[string]string{
		"rule":        o.rule,
		"width":       strconv.Itoa(o.width),
		"height":      strconv.Itoa(o.height),
		"seed":        strconv.FormatInt(o.seed, 10),
		"pile":        strconv.FormatUint(o.pile, 10),
		"probability": strconv.FormatFloat(o.probability, 'f', -1, 64),
		"bpm":         strconv.FormatFloat(o.bpm, 'f', -1, 64),
	}
	overrides := map[string]string{}
	for name, key := range overrideKeys {
		if cmd.Flags().Changed(name) {
			overrides[key] = values[name]
		}
	}
	if v, ok := overrides["rule"]; ok {
		if _, err := sandpile.ParseRule(v); err != nil {
			return cfg, err
		}
	}
	cfg.Merge(overrides)
	return cfg, nil
}
