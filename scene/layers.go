package scene

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/milk9111/tilepath/grid"
)

// TileLayer draws a coloured square for every listed cell.
type TileLayer struct {
	TileSize float64
	Color    color.Color
	Cells    func() []grid.Cell
}

func (l *TileLayer) Draw(dst *ebiten.Image, ox, oy float64) {
	if l.Cells == nil {
		return
	}
	size := float32(l.TileSize)
	for _, c := range l.Cells() {
		x := float32(ox + float64(c.X)*l.TileSize)
		y := float32(oy + float64(c.Y)*l.TileSize)
		vector.FillRect(dst, x, y, size, size, l.Color, false)
	}
}

// GridLines outlines a Cols x Rows board.
type GridLines struct {
	Cols, Rows int
	TileSize   float64
	Color      color.Color
}

func (g *GridLines) Draw(dst *ebiten.Image, ox, oy float64) {
	size := float32(g.TileSize)
	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			vector.StrokeRect(dst, float32(ox)+float32(x)*size, float32(oy)+float32(y)*size, size, size, 1, g.Color, false)
		}
	}
}

// Positioner exposes a world position.
type Positioner interface {
	Position() (float64, float64)
}

// Marker draws a filled square centred on a Positioner.
type Marker struct {
	Target Positioner
	Size   float64
	Color  color.Color
}

func (m *Marker) Draw(dst *ebiten.Image, ox, oy float64) {
	if m.Target == nil {
		return
	}
	x, y := m.Target.Position()
	half := m.Size / 2
	vector.FillRect(dst, float32(ox+x-half), float32(oy+y-half), float32(m.Size), float32(m.Size), m.Color, false)
}
