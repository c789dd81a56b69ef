// Package grid holds the walkability map that paths are searched over.
package grid

import (
	"fmt"
	"math"
)

// State is the walkability of a single cell.
type State uint8

const (
	Walkable State = 0
	Blocked  State = 1
)

func (s State) String() string {
	switch s {
	case Walkable:
		return "walkable"
	case Blocked:
		return "blocked"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Cell is a tile coordinate.
type Cell struct {
	X int
	Y int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Center returns the world-space centre of the cell for the given tile size.
func (c Cell) Center(tileSize float64) (float64, float64) {
	half := tileSize * 0.5
	return float64(c.X)*tileSize + half, float64(c.Y)*tileSize + half
}

// CellAt projects a world-space point back onto the grid.
func CellAt(x, y, tileSize float64) Cell {
	return Cell{
		X: int(math.Floor(x / tileSize)),
		Y: int(math.Floor(y / tileSize)),
	}
}

// Path is an ordered waypoint sequence from start to end, inclusive.
type Path []Cell

// Clone returns an independent copy of the path.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Equal reports whether both paths visit the same cells in the same order.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// BoundsError reports a cell outside [0,Width)x[0,Height).
type BoundsError struct {
	Cell   Cell
	Width  int
	Height int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("grid: cell %s out of range %dx%d", e.Cell, e.Width, e.Height)
}

// Grid is a fixed-size walkability map. Only cell state changes after
// construction, and only through MarkBlocked.
type Grid struct {
	width  int
	height int
	cells  []State

	onBlocked []func(Cell)
}

// New creates an all-walkable grid.
func New(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid: invalid dimensions %dx%d", width, height)
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]State, width*height),
	}, nil
}

// FromRows builds a grid from row-major rows of 0/1 values.
func FromRows(rows [][]int) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("grid: no rows")
	}
	g, err := New(len(rows[0]), len(rows))
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if len(row) != g.width {
			return nil, fmt.Errorf("grid: row %d has %d cells, want %d", y, len(row), g.width)
		}
		for x, v := range row {
			if v != 0 {
				g.cells[y*g.width+x] = Blocked
			}
		}
	}
	return g, nil
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// InBounds reports whether c lies inside the grid.
func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.width && c.Y < g.height
}

func (g *Grid) boundsError(c Cell) error {
	return &BoundsError{Cell: c, Width: g.width, Height: g.height}
}

// Query returns the state of c.
func (g *Grid) Query(c Cell) (State, error) {
	if !g.InBounds(c) {
		return Blocked, g.boundsError(c)
	}
	return g.cells[c.Y*g.width+c.X], nil
}

// Walkable reports whether c is in range and walkable.
func (g *Grid) Walkable(c Cell) bool {
	if !g.InBounds(c) {
		return false
	}
	return g.cells[c.Y*g.width+c.X] == Walkable
}

// MarkBlocked blocks c. Blocking an already blocked cell is a no-op and
// reports changed=false without notifying listeners.
func (g *Grid) MarkBlocked(c Cell) (bool, error) {
	if !g.InBounds(c) {
		return false, g.boundsError(c)
	}
	idx := c.Y*g.width + c.X
	if g.cells[idx] == Blocked {
		return false, nil
	}
	g.cells[idx] = Blocked
	for _, fn := range g.onBlocked {
		fn(c)
	}
	return true, nil
}

// OnBlocked registers fn to run after every successful MarkBlocked.
func (g *Grid) OnBlocked(fn func(Cell)) {
	if fn == nil {
		return
	}
	g.onBlocked = append(g.onBlocked, fn)
}

// Snapshot returns a copy that shares no state with g. Listeners are not
// copied.
func (g *Grid) Snapshot() *Grid {
	cells := make([]State, len(g.cells))
	copy(cells, g.cells)
	return &Grid{width: g.width, height: g.height, cells: cells}
}

// Blocked returns every blocked cell in row-major order.
func (g *Grid) Blocked() []Cell {
	out := make([]Cell, 0, 32)
	for i, s := range g.cells {
		if s == Blocked {
			out = append(out, Cell{X: i % g.width, Y: i / g.width})
		}
	}
	return out
}

// Rows returns the grid as row-major 0/1 rows.
func (g *Grid) Rows() [][]int {
	rows := make([][]int, g.height)
	for y := range rows {
		rows[y] = make([]int, g.width)
		for x := range rows[y] {
			rows[y][x] = int(g.cells[y*g.width+x])
		}
	}
	return rows
}
