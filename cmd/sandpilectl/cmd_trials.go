package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"sandpile/internal/sandpile"
)

type trialsOptions struct {
	probs    []float64
	trials   int
	maxSteps int
	workers  int
}

func newTrialsCmd(root *rootOptions) *cobra.Command {
	opts := &trialsOptions{}
	cmd := &cobra.Command{
		Use:   "trials",
		Short: "Measure mean steps to stability across topple probabilities",
		Long: `Relaxes the configured pile repeatedly for each probability and reports
how many steps it took to settle. Trial i uses seed+i.

Example:
  sandpilectl trials --rule torus-probabilistic --width 5 --height 5 --pile 12 --probs 0.2,0.5,0.8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := root.logger(cmd)
			if err != nil {
				return err
			}
			cfg, err := root.engineConfig(cmd)
			if err != nil {
				return err
			}
			start := time.Now()
			results, err := sandpile.ProbabilitySweep(cmd.Context(), cfg, opts.probs, opts.trials, opts.maxSteps, opts.workers)
			if err != nil {
				return err
			}
			logger.Info("trials finished", "rule", cfg.Rule, "probabilities", len(results), "trials", opts.trials, "elapsed", time.Since(start))

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "probability\tmean\tmax\tunsettled")
			for _, r := range results {
				fmt.Fprintf(tw, "%.3f\t%.2f\t%d\t%d\n", r.Probability, r.MeanSteps, r.MaxSteps, r.Unsettled)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Float64SliceVar(&opts.probs, "probs", []float64{0.25, 0.5, 0.75, 1}, "topple probabilities to measure")
	cmd.Flags().IntVar(&opts.trials, "trials", 20, "relaxations per probability")
	cmd.Flags().IntVar(&opts.maxSteps, "max-steps", 10000, "step limit per relaxation")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "concurrent relaxations, 0 for one per CPU")
	return cmd
}
