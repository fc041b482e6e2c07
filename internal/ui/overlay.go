//go:build ebiten

package ui

import (
	"image/color"

	"sandpile/internal/sandpile"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// Overlay draws optional visuals on top of the grid: a heat map of unstable
// piles (key 1) and a status readout (key 2).
type Overlay struct {
	scale      int
	showHeat   bool
	showStatus bool

	heatImg *ebiten.Image
	heatBuf []byte
	lines   []string
}

// NewOverlay constructs a new overlay instance. The status readout starts on.
func NewOverlay(scale int) *Overlay {
	return &Overlay{scale: scale, showStatus: true}
}

// Update toggles the overlay layers.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showHeat = !o.showHeat
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showStatus = !o.showStatus
	}
}

// Draw renders the enabled layers for snap onto screen.
func (o *Overlay) Draw(screen *ebiten.Image, snap *sandpile.Snapshot, st Status) {
	if snap == nil || snap.W <= 0 || snap.H <= 0 {
		return
	}
	if o.showHeat {
		o.drawHeat(screen, snap)
	}
	if o.showStatus {
		o.lines = statusLines(snap, st, o.lines[:0])
		face := basicfont.Face7x13
		for i, line := range o.lines {
			y := 16 + i*15
			text.Draw(screen, line, face, 7, y+1, color.Black)
			text.Draw(screen, line, face, 6, y, color.RGBA{R: 240, G: 240, B: 250, A: 255})
		}
	}
}

func (o *Overlay) drawHeat(screen *ebiten.Image, snap *sandpile.Snapshot) {
	total := snap.W * snap.H
	if o.heatImg == nil || o.heatImg.Bounds().Dx() != snap.W || o.heatImg.Bounds().Dy() != snap.H {
		o.heatImg = ebiten.NewImage(snap.W, snap.H)
		o.heatBuf = make([]byte, 4*total)
	}

	peak := peakCount(snap.Counts)
	for i, c := range snap.Counts {
		base := i * 4
		t := heatIntensity(c, peak)
		if t == 0 {
			clear(o.heatBuf[base : base+4])
			continue
		}
		col := heatColor(t)
		// Premultiplied alpha.
		a := uint16(col.A)
		o.heatBuf[base+0] = uint8(uint16(col.R) * a / 255)
		o.heatBuf[base+1] = uint8(uint16(col.G) * a / 255)
		o.heatBuf[base+2] = uint8(uint16(col.B) * a / 255)
		o.heatBuf[base+3] = col.A
	}

	o.heatImg.WritePixels(o.heatBuf)
	op := &ebiten.DrawImageOptions{}
	scale := o.scale
	if scale <= 0 {
		scale = 1
	}
	op.GeoM.Scale(float64(scale), float64(scale))
	screen.DrawImage(o.heatImg, op)
}
