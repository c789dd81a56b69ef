package levels

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/milk9111/tilepath/grid"
)

//go:embed *.json
var LevelsFS embed.FS

// Default is the embedded level used when none is configured.
const Default = "demo.json"

// Layer names the game reads.
const (
	LayerBase      = "Base"
	LayerCollision = "Collision"
	LayerStart     = "Start"
	LayerEnd       = "End"
)

var ErrMissingMarker = errors.New("levels: start or end marker not found")

type Level struct {
	TileSize  int     `json:"tileSize"`
	MapWidth  int     `json:"mapWidth"`
	MapHeight int     `json:"mapHeight"`
	Layers    []Layer `json:"layers"`
}

type Layer struct {
	Name     string `json:"name"`
	Tiles    []Tile `json:"tiles"`
	Collider bool   `json:"collider"`
}

type Tile struct {
	ID string `json:"id"`
	X  int    `json:"x"`
	Y  int    `json:"y"`
}

// Parse decodes and validates a level.
func Parse(data []byte) (*Level, error) {
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("unmarshal level: %w", err)
	}
	if lvl.MapWidth <= 0 || lvl.MapHeight <= 0 {
		return nil, fmt.Errorf("level: invalid size %dx%d", lvl.MapWidth, lvl.MapHeight)
	}
	if lvl.TileSize <= 0 {
		lvl.TileSize = 32
	}
	for _, l := range lvl.Layers {
		for _, t := range l.Tiles {
			if t.X < 0 || t.X >= lvl.MapWidth || t.Y < 0 || t.Y >= lvl.MapHeight {
				return nil, fmt.Errorf("level: layer %q tile (%d,%d) out of range", l.Name, t.X, t.Y)
			}
		}
	}
	return &lvl, nil
}

func LoadLevelFromFS(name string) (*Level, error) {
	data, err := fs.ReadFile(LevelsFS, name)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return Parse(data)
}

func LoadFile(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return Parse(data)
}

// Load reads name from disk when such a file exists and from the embedded
// levels otherwise. An empty name loads Default.
func Load(name string) (*Level, error) {
	if name == "" {
		return LoadLevelFromFS(Default)
	}
	if _, err := os.Stat(name); err == nil {
		return LoadFile(name)
	}
	return LoadLevelFromFS(name)
}

// Layer returns the first layer called name, or nil.
func (l *Level) Layer(name string) *Layer {
	for i := range l.Layers {
		if l.Layers[i].Name == name {
			return &l.Layers[i]
		}
	}
	return nil
}

// Cells returns the layer's tile coordinates.
func (l *Layer) Cells() []grid.Cell {
	if l == nil {
		return nil
	}
	out := make([]grid.Cell, 0, len(l.Tiles))
	for _, t := range l.Tiles {
		out = append(out, grid.Cell{X: t.X, Y: t.Y})
	}
	return out
}

// StartEnd returns the first tile of the Start and End layers.
func (l *Level) StartEnd() (grid.Cell, grid.Cell, error) {
	start, end := l.Layer(LayerStart), l.Layer(LayerEnd)
	if start == nil || end == nil || len(start.Tiles) == 0 || len(end.Tiles) == 0 {
		return grid.Cell{}, grid.Cell{}, ErrMissingMarker
	}
	s, e := start.Tiles[0], end.Tiles[0]
	return grid.Cell{X: s.X, Y: s.Y}, grid.Cell{X: e.X, Y: e.Y}, nil
}

// Collisions returns every blocked cell: the Collision layer plus any layer
// flagged as a collider.
func (l *Level) Collisions() []grid.Cell {
	seen := make(map[grid.Cell]struct{})
	var out []grid.Cell
	for _, layer := range l.Layers {
		if layer.Name != LayerCollision && !layer.Collider {
			continue
		}
		for _, c := range layer.Cells() {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// Grid builds the walkability grid. It does not notify anyone.
func (l *Level) Grid() (*grid.Grid, error) {
	g, err := grid.New(l.MapWidth, l.MapHeight)
	if err != nil {
		return nil, err
	}
	for _, c := range l.Collisions() {
		if _, err := g.MarkBlocked(c); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// NewCollisions lists the cells lvl blocks that g still has walkable. Cells
// are never unblocked during a session, so removed collisions are ignored.
func NewCollisions(g *grid.Grid, lvl *Level) ([]grid.Cell, error) {
	if g.Width() != lvl.MapWidth || g.Height() != lvl.MapHeight {
		return nil, fmt.Errorf("level: size changed from %dx%d to %dx%d",
			g.Width(), g.Height(), lvl.MapWidth, lvl.MapHeight)
	}
	var out []grid.Cell
	for _, c := range lvl.Collisions() {
		if g.Walkable(c) {
			out = append(out, c)
		}
	}
	return out, nil
}
