package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"sandpile/internal/sandpile"
)

type relaxOptions struct {
	maxSteps int
	quiet    bool
}

func newRelaxCmd(root *rootOptions) *cobra.Command {
	opts := &relaxOptions{}
	cmd := &cobra.Command{
		Use:   "relax",
		Short: "Step the pile until it is stable and print the final grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := root.logger(cmd)
			if err != nil {
				return err
			}
			cfg, err := root.engineConfig(cmd)
			if err != nil {
				return err
			}
			pile, err := sandpile.New(cfg)
			if err != nil {
				return err
			}
			n := 0
			for !pile.Stats().Stable && n < opts.maxSteps {
				pile.Step()
				n++
			}
			stats := pile.Stats()
			if !stats.Stable {
				logger.Warn("step limit reached before the pile settled", "max_steps", opts.maxSteps)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "rule=%s steps=%d visits=%d topples=%d stable=%t grains=%d\n",
				pile.Rule(), n, stats.Steps, stats.Topples, stats.Stable, pile.Sum())
			if !opts.quiet {
				writeGrid(out, pile.Snapshot())
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.maxSteps, "max-steps", 100000, "give up after this many steps")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "omit the grid")
	return cmd
}

// writeGrid prints one row per line. Stable counts print as digits and
// larger piles as '#'.
func writeGrid(w io.Writer, snap *sandpile.Snapshot) {
	var sb strings.Builder
	for y := 0; y < snap.H; y++ {
		sb.Reset()
		for x := 0; x < snap.W; x++ {
			c := snap.ValueAt(x, y)
			if c >= 4 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte(byte('0' + c))
			}
		}
		fmt.Fprintln(w, sb.String())
	}
}
