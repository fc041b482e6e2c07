//go:build ebiten

package app

import (
	"log/slog"
	"time"

	"sandpile/internal/core"
	"sandpile/internal/guard"
	"sandpile/internal/host"
	"sandpile/internal/render"
	"sandpile/internal/sandpile"
	"sandpile/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	hudWidth           = 240
	audioBufferLatency = 40 * time.Millisecond
)

// Game adapts a guarded sandpile to the ebiten.Game interface. The pile is
// stepped by the host on the audio goroutine; Update only reads snapshots and
// queues gestures.
type Game struct {
	host    *host.Host
	guard   *guard.Guard
	ctrl    *Controller
	painter *render.GridPainter
	overlay *ui.Overlay
	hud     *ui.HUD
	logger  *slog.Logger

	snap     sandpile.Snapshot
	cells    []uint8
	cursor   int
	degraded bool

	w, h  int
	scale int

	player   *audio.Player
	fallback *core.FixedStep
}

// New constructs a Game around h. Audio playback drives the host; when no
// audio device is available the host is paced from Update instead.
func New(h *host.Host, cfg *Config, logger *slog.Logger) *Game {
	g := h.Guard()
	w, hh := g.Size()
	ctrl := NewController(g, h.Clock(), cfg.PileAmount, cfg.Seed, logger)
	game := &Game{
		host:    h,
		guard:   g,
		ctrl:    ctrl,
		painter: render.NewGridPainter(w, hh, sandpile.Palette()),
		overlay: ui.NewOverlay(cfg.Scale),
		hud:     ui.NewHUD("sandpile", ctrl.Controls(), ctrl, ctrl, hudWidth),
		logger:  logger,
		cursor:  -1,
		w:       w,
		h:       hh,
		scale:   cfg.Scale,
	}
	game.startAudio()
	g.SnapshotInto(&game.snap)
	return game
}

func (g *Game) startAudio() {
	clock := g.host.Clock()
	ctx := audio.NewContext(int(clock.SampleRate()))
	player, err := ctx.NewPlayer(g.host)
	if err != nil {
		g.logger.Warn("audio player unavailable, pacing steps from the UI", "error", err)
		period := time.Duration(float64(g.host.BlockSize()) / clock.SampleRate() * float64(time.Second))
		g.fallback = core.NewFixedStep(period)
		return
	}
	player.SetBufferSize(audioBufferLatency)
	player.Play()
	g.player = player
	g.logger.Info("audio started", "sample_rate", clock.SampleRate(), "block_size", g.host.BlockSize())
}

// Controller returns the input controller, for edits from outside the UI
// such as configuration reloads.
func (g *Game) Controller() *Controller { return g.ctrl }

// Close stops audio playback.
func (g *Game) Close() error {
	if g.player == nil {
		return nil
	}
	return g.player.Close()
}

// Update handles input and refreshes the snapshot.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.ctrl.TogglePlay()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.ctrl.Reset(0)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.ctrl.Reset(time.Now().UnixNano())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.ctrl.CycleRule(g.snap.Rule)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		g.ctrl.AddCentre()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		g.ctrl.RemoveCentre()
	}

	g.cursor = -1
	if x, y, ok := g.cellUnderCursor(); ok {
		g.cursor = y*g.w + x
		switch {
		case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
			g.ctrl.AddAt(x, y)
		case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight):
			g.ctrl.RemoveAt(x, y)
		case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
			g.ctrl.Paint(x, y, true)
		case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
			g.ctrl.Paint(x, y, false)
		}
	}

	if g.fallback != nil {
		for n := g.fallback.Due(time.Now()); n > 0; n-- {
			g.host.Block(g.host.BlockSize())
		}
	}

	g.overlay.Update()
	g.guard.SnapshotInto(&g.snap)
	g.hud.Update(g.w*g.scale, g.ctrl.Parameters(&g.snap))
	g.watchHealth()
	return nil
}

func (g *Game) watchHealth() {
	health := g.guard.Health()
	if health.Degraded == g.degraded {
		return
	}
	g.degraded = health.Degraded
	if health.Degraded {
		g.logger.Warn("real-time path degraded", "skipped", health.Skipped, "recovered", health.Recovered)
		return
	}
	g.logger.Info("real-time path recovered", "skipped", health.Skipped)
}

func (g *Game) cellUnderCursor() (int, int, bool) {
	mx, my := ebiten.CursorPosition()
	if mx < 0 || my < 0 {
		return 0, 0, false
	}
	x, y := mx/g.scale, my/g.scale
	if x >= g.w || y >= g.h {
		return 0, 0, false
	}
	return x, y, true
}

// Draw renders the latest snapshot.
func (g *Game) Draw(screen *ebiten.Image) {
	g.cells = g.snap.Display(g.cells)
	g.painter.Blit(screen, g.cells, g.cursor, g.scale)
	clock := g.host.Clock()
	g.overlay.Draw(screen, &g.snap, ui.Status{
		Playing: clock.Playing(),
		BPM:     clock.BPM(),
		Steps:   g.host.Steps(),
		Pending: g.guard.Pending(),
		Health:  g.guard.Health(),
	})
	g.hud.Draw(screen, g.w*g.scale, g.h*g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.w*g.scale + hudWidth, g.h * g.scale
}
