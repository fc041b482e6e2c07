package sandpile

import "image/color"

const (
	// DisplayOverflow is the palette index for cells holding four grains or more.
	DisplayOverflow = 4
	// DisplayRing is the palette index for the absorbing ring in bounded mode.
	DisplayRing = 5
)

var sandpilePalette = []color.RGBA{
	{R: 200, G: 210, B: 209, A: 255},
	{R: 104, G: 144, B: 77, A: 255},
	{R: 20, G: 71, B: 30, A: 255},
	{R: 238, G: 155, B: 1, A: 255},
	{R: 218, G: 106, B: 0, A: 255},
	{R: 255, G: 255, B: 255, A: 255},
}

// Palette exposes the colors indexed by Cells and Snapshot.Display.
func Palette() []color.RGBA {
	return sandpilePalette
}

func fillDisplay(dst []uint8, counts []uint64, w, h int, bounded bool) {
	for i, c := range counts {
		if c >= DisplayOverflow {
			dst[i] = DisplayOverflow
		} else {
			dst[i] = uint8(c)
		}
	}
	if !bounded {
		return
	}
	for x := 0; x < w; x++ {
		dst[x] = DisplayRing
		dst[(h-1)*w+x] = DisplayRing
	}
	for y := 0; y < h; y++ {
		dst[y*w] = DisplayRing
		dst[y*w+w-1] = DisplayRing
	}
}
