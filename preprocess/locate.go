package preprocess

import "github.com/gogpu/sketch/grid"

// DefaultInkThreshold is the intensity a cell must exceed to count as ink.
const DefaultInkThreshold = 0.08

// Locate returns the smallest box covering every cell whose value exceeds
// tau. ok is false when nothing exceeds tau, which is how an empty canvas
// is signalled.
func Locate(g *grid.Grid, tau float64) (box grid.Box, ok bool) {
	w, h := g.Width(), g.Height()
	data := g.Raw()

	minX, minY := w, h
	maxX, maxY := -1, -1

	for y := 0; y < h; y++ {
		row := data[y*w : (y+1)*w]
		for x, v := range row {
			if v <= tau {
				continue
			}
			minX = min(minX, x)
			maxX = max(maxX, x)
			minY = min(minY, y)
			maxY = max(maxY, y)
		}
	}

	if maxX < 0 {
		return grid.Box{}, false
	}
	return grid.Box{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1}, true
}
