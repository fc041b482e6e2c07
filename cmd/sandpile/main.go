//go:build ebiten

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"sandpile/internal/app"
	"sandpile/internal/confwatch"
	"sandpile/internal/host"
	"sandpile/internal/logging"
	"sandpile/internal/sandpile"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	logger, err := logging.New(os.Stderr, logging.Config{Level: cfg.LogLevel})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	engine, err := cfg.Engine(flag.CommandLine)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	h, err := host.FromConfig(engine, nil)
	if err != nil {
		logger.Error("building sandpile", "error", err)
		os.Exit(1)
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 1
	}

	game := app.New(h, cfg, logger)
	defer game.Close()

	if cfg.ConfigPath != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		watchConfig(ctx, cfg.ConfigPath, engine, game.Controller(), logger)
	}

	ebiten.SetWindowTitle("sandpile - " + engine.Rule.String())
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(game.Layout(0, 0))

	logger.Info("starting", "rule", engine.Rule, "w", engine.Width, "h", engine.Height, "initial_pile", engine.InitialPile)
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Error("game stopped", "error", err)
		os.Exit(1)
	}
}

func watchConfig(ctx context.Context, path string, current sandpile.Config, ctrl *app.Controller, logger *slog.Logger) {
	w, err := confwatch.New(path, 0, logger)
	if err != nil {
		logger.Warn("config reload disabled", "error", err)
		return
	}
	go w.Run(ctx, func(next sandpile.Config) {
		ctrl.ApplyConfig(current, next)
		current = next
	})
}
