package scene

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/tilepath/grid"
)

// Viewport places a Cols x Rows tile map on screen.
type Viewport struct {
	OffsetX  float64
	OffsetY  float64
	TileSize float64
	Cols     int
	Rows     int
}

// CenterViewport centres the map inside a screen of the given size.
func CenterViewport(screenW, screenH float64, cols, rows int, tileSize float64) Viewport {
	mapW := float64(cols) * tileSize
	mapH := float64(rows) * tileSize
	return Viewport{
		OffsetX:  (screenW - mapW) / 2,
		OffsetY:  (screenH - mapH) / 2,
		TileSize: tileSize,
		Cols:     cols,
		Rows:     rows,
	}
}

// Bounds returns the screen-space rectangle covered by the map.
func (v Viewport) Bounds() cp.BB {
	return cp.BB{
		L: v.OffsetX,
		B: v.OffsetY,
		R: v.OffsetX + float64(v.Cols)*v.TileSize,
		T: v.OffsetY + float64(v.Rows)*v.TileSize,
	}
}

// ScreenToCell converts a screen position to a tile. ok is false outside the
// map.
func (v Viewport) ScreenToCell(sx, sy float64) (grid.Cell, bool) {
	if !v.Bounds().ContainsVect(cp.Vector{X: sx, Y: sy}) {
		return grid.Cell{}, false
	}
	c := grid.Cell{
		X: int(math.Floor((sx - v.OffsetX) / v.TileSize)),
		Y: int(math.Floor((sy - v.OffsetY) / v.TileSize)),
	}
	if c.X >= v.Cols || c.Y >= v.Rows {
		return grid.Cell{}, false
	}
	return c, true
}
