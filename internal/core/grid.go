package core

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidDimensions is returned when a grid is requested with a
	// non-positive width or height.
	ErrInvalidDimensions = errors.New("invalid grid dimensions")
	// ErrOutOfBounds is returned for coordinates outside [0,W)×[0,H).
	ErrOutOfBounds = errors.New("coordinate out of bounds")
)

// CountGrid stores a 2D grid of grain counts in row-major order.
type CountGrid struct {
	W, H int
	data []uint64
}

// NewCountGrid allocates a zeroed grid with the given dimensions.
func NewCountGrid(w, h int) (*CountGrid, error) {
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}
	return &CountGrid{W: w, H: h, data: make([]uint64, w*h)}, nil
}

// Counts exposes the backing slice so hot loops can read/write values directly.
func (g *CountGrid) Counts() []uint64 { return g.data }

// Index returns the linear slice index for coordinates (x, y).
func (g *CountGrid) Index(x, y int) int { return y*g.W + x }

// Wrap applies toroidal wrapping to the provided coordinates.
func (g *CountGrid) Wrap(x, y int) (int, int) {
	x = (x%g.W + g.W) % g.W
	y = (y%g.H + g.H) % g.H
	return x, y
}

// InBounds reports whether (x, y) addresses a cell of the grid.
func (g *CountGrid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.W && y < g.H
}

// Interior reports whether (x, y) lies strictly inside the outermost ring.
func (g *CountGrid) Interior(x, y int) bool {
	return x >= 1 && y >= 1 && x < g.W-1 && y < g.H-1
}

// Get returns the count at (x, y).
func (g *CountGrid) Get(x, y int) (uint64, error) {
	if !g.InBounds(x, y) {
		return 0, fmt.Errorf("get (%d,%d) on %dx%d: %w", x, y, g.W, g.H, ErrOutOfBounds)
	}
	return g.data[g.Index(x, y)], nil
}

// Set overwrites the count at (x, y).
func (g *CountGrid) Set(x, y int, v uint64) error {
	if !g.InBounds(x, y) {
		return fmt.Errorf("set (%d,%d) on %dx%d: %w", x, y, g.W, g.H, ErrOutOfBounds)
	}
	g.data[g.Index(x, y)] = v
	return nil
}

// AddAt adds amount grains at (x, y), saturating at math.MaxUint64.
func (g *CountGrid) AddAt(amount uint64, x, y int) error {
	if !g.InBounds(x, y) {
		return fmt.Errorf("add (%d,%d) on %dx%d: %w", x, y, g.W, g.H, ErrOutOfBounds)
	}
	i := g.Index(x, y)
	if g.data[i] > math.MaxUint64-amount {
		g.data[i] = math.MaxUint64
		return nil
	}
	g.data[i] += amount
	return nil
}

// RemoveAt removes up to amount grains at (x, y); the count never drops below zero.
func (g *CountGrid) RemoveAt(amount uint64, x, y int) error {
	if !g.InBounds(x, y) {
		return fmt.Errorf("remove (%d,%d) on %dx%d: %w", x, y, g.W, g.H, ErrOutOfBounds)
	}
	i := g.Index(x, y)
	if amount >= g.data[i] {
		g.data[i] = 0
		return nil
	}
	g.data[i] -= amount
	return nil
}

// Clear fills the grid with zeros.
func (g *CountGrid) Clear() {
	for i := range g.data {
		g.data[i] = 0
	}
}

// CopyFrom overwrites g with the contents of src. Both grids must share
// dimensions; otherwise g is left untouched and false is returned.
func (g *CountGrid) CopyFrom(src *CountGrid) bool {
	if src == nil || src.W != g.W || src.H != g.H {
		return false
	}
	copy(g.data, src.data)
	return true
}

// Clone returns an owned deep copy of the grid.
func (g *CountGrid) Clone() *CountGrid {
	return &CountGrid{W: g.W, H: g.H, data: append([]uint64(nil), g.data...)}
}

// Sum returns the total number of grains on the grid, ring included.
func (g *CountGrid) Sum() uint64 {
	var total uint64
	for _, v := range g.data {
		total += v
	}
	return total
}

// InteriorSum returns the number of grains held by interior cells only.
func (g *CountGrid) InteriorSum() uint64 {
	var total uint64
	for y := 1; y < g.H-1; y++ {
		row := g.data[y*g.W : (y+1)*g.W]
		for x := 1; x < g.W-1; x++ {
			total += row[x]
		}
	}
	return total
}
