package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"sandpile/internal/app"
	"sandpile/internal/confwatch"
	"sandpile/internal/core"
	"sandpile/internal/host"
	"sandpile/internal/sandpile"
	"sandpile/internal/telemetry"
)

type runOptions struct {
	bars        float64
	realtime    bool
	watch       bool
	metricsAddr string
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play the transport and step the pile on every quarter beat",
		Long: `Plays the standalone transport for a number of bars. Each audio block
drains queued edits and the pile steps once per quarter beat.

Examples:
  sandpilectl run --bars 8
  sandpilectl run --realtime --metrics-addr :9102 --bars 64
  sandpilectl run --realtime --config pile.yaml --watch --bars 64`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, root, opts)
		},
	}
	cmd.Flags().Float64Var(&opts.bars, "bars", 4, "bars to play")
	cmd.Flags().BoolVar(&opts.realtime, "realtime", false, "pace blocks at the audio rate instead of as fast as possible")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "apply rule, probability and tempo changes from --config while running")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	return cmd
}

func runRun(cmd *cobra.Command, root *rootOptions, opts *runOptions) error {
	logger, err := root.logger(cmd)
	if err != nil {
		return err
	}
	logger = logger.With("run_id", uuid.NewString()[:8])
	cfg, err := root.engineConfig(cmd)
	if err != nil {
		return err
	}
	if opts.watch && root.configPath == "" {
		return errors.New("--watch needs --config")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	h, err := host.FromConfig(cfg, telemetry.NewMetrics(reg))
	if err != nil {
		return err
	}
	blocks := h.BlocksForBeats(opts.bars * h.Clock().BeatsPerBar())
	h.Clock().Play()
	logger.Info("playing", "rule", cfg.Rule, "bars", opts.bars, "blocks", blocks, "bpm", h.Clock().BPM(), "realtime", opts.realtime)

	g, gctx := errgroup.WithContext(cmd.Context())
	// ctx ends the helpers once playback is over.
	ctx, finish := context.WithCancel(gctx)
	defer finish()

	if opts.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: opts.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			logger.Info("serving metrics", "addr", opts.metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}
	if opts.watch {
		w, err := confwatch.New(root.configPath, 0, logger)
		if err != nil {
			return err
		}
		ctrl := app.NewController(h.Guard(), h.Clock(), 1, cfg.Seed, logger)
		current := cfg
		g.Go(func() error {
			return w.Run(ctx, func(next sandpile.Config) {
				ctrl.ApplyConfig(current, next)
				current = next
			})
		})
	}
	g.Go(func() error {
		defer finish()
		if opts.realtime {
			return playRealtime(ctx, h, blocks, logger)
		}
		h.RunBlocks(ctx, blocks)
		return ctx.Err()
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	snap := h.Guard().Snapshot()
	health := h.Guard().Health()
	fmt.Fprintf(cmd.OutOrStdout(), "blocks=%d steps=%d grains=%d topples=%d stable=%t skipped=%d\n",
		h.Blocks(), h.Steps(), snap.Sum(), snap.Stats.Topples, snap.Stats.Stable, health.Skipped)
	return nil
}

// playRealtime processes blocks at the rate an audio device would pull them.
func playRealtime(ctx context.Context, h *host.Host, blocks int, logger *slog.Logger) error {
	period := time.Duration(float64(h.BlockSize()) / h.Clock().SampleRate() * float64(time.Second))
	pacer := core.NewFixedStep(period)
	pacer.Due(time.Now())
	ticker := time.NewTicker(max(period/2, time.Millisecond))
	defer ticker.Stop()

	ran := 0
	for ran < blocks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			before := ran
			for n := pacer.Due(now); n > 0 && ran < blocks; n-- {
				h.Block(h.BlockSize())
				ran++
			}
			if ran/1000 != before/1000 {
				logger.Debug("progress", "blocks", ran, "steps", h.Steps())
			}
		}
	}
	return nil
}
