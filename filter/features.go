package filter

import "github.com/gogpu/sketch/grid"

// Features holds the four display grids derived from a canonical grid:
// absolute Sobel responses in each direction and their 2×2 max-pooled
// reductions.
type Features struct {
	// EdgesX is the normalized |SobelX| response (vertical strokes).
	EdgesX *grid.Grid

	// EdgesY is the normalized |SobelY| response (horizontal strokes).
	EdgesY *grid.Grid

	// PooledX is MaxPool2(EdgesX).
	PooledX *grid.Grid

	// PooledY is MaxPool2(EdgesY).
	PooledY *grid.Grid
}

// Extract computes the display features of g.
func Extract(g *grid.Grid) Features {
	ex := NormalizeAbs(Convolve(g, SobelX))
	ey := NormalizeAbs(Convolve(g, SobelY))
	return Features{
		EdgesX:  ex,
		EdgesY:  ey,
		PooledX: MaxPool2(ex),
		PooledY: MaxPool2(ey),
	}
}

// All returns the four grids in display order: EdgesX, EdgesY, PooledX,
// PooledY.
func (f Features) All() []*grid.Grid {
	return []*grid.Grid{f.EdgesX, f.EdgesY, f.PooledX, f.PooledY}
}

// Names returns labels matching All.
func (f Features) Names() []string {
	return []string{"edges_x", "edges_y", "pooled_x", "pooled_y"}
}
