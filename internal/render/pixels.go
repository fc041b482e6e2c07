// Package render turns palette-indexed cells into RGBA pixels.
package render

import "image/color"

var hoverColor = color.RGBA{R: 120, G: 170, B: 255, A: 255}

// fillPaletteRGBA converts cell values into RGBA pixels using a palette. When
// the palette is empty the buffer is cleared to transparent black. Indices
// past the end of the palette use its last color.
func fillPaletteRGBA(buf []byte, cells []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		clear(buf[:4*len(cells)])
		return
	}

	last := len(palette) - 1
	for i, c := range cells {
		idx := int(c)
		if idx > last {
			idx = last
		}
		base := i * 4
		col := palette[idx]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// highlightRGBA blends the pixel at cell i halfway towards col.
func highlightRGBA(buf []byte, i int, col color.RGBA) {
	base := i * 4
	if i < 0 || base+3 >= len(buf) {
		return
	}
	buf[base+0] = uint8((uint16(buf[base+0]) + uint16(col.R)) / 2)
	buf[base+1] = uint8((uint16(buf[base+1]) + uint16(col.G)) / 2)
	buf[base+2] = uint8((uint16(buf[base+2]) + uint16(col.B)) / 2)
	buf[base+3] = 255
}
