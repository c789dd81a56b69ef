package levels

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/tilepath/grid"
	"github.com/milk9111/tilepath/pathfind"
)

const small = `{
 "tileSize": 16,
 "mapWidth": 4,
 "mapHeight": 3,
 "layers": [
  {"name": "Collision", "tiles": [{"id": "4", "x": 1, "y": 1}]},
  {"name": "Rocks", "collider": true, "tiles": [{"id": "3", "x": 2, "y": 1}, {"id": "3", "x": 1, "y": 1}]},
  {"name": "Start", "tiles": [{"id": "2", "x": 0, "y": 0}]},
  {"name": "End", "tiles": [{"id": "5", "x": 3, "y": 2}]}
 ]
}`

func TestParse(t *testing.T) {
	lvl, err := Parse([]byte(small))
	require.NoError(t, err)
	assert.Equal(t, 16, lvl.TileSize)

	start, end, err := lvl.StartEnd()
	require.NoError(t, err)
	assert.Equal(t, grid.Cell{X: 0, Y: 0}, start)
	assert.Equal(t, grid.Cell{X: 3, Y: 2}, end)

	assert.ElementsMatch(t, []grid.Cell{{X: 1, Y: 1}, {X: 2, Y: 1}}, lvl.Collisions())

	g, err := lvl.Grid()
	require.NoError(t, err)
	assert.False(t, g.Walkable(grid.Cell{X: 1, Y: 1}))
	assert.False(t, g.Walkable(grid.Cell{X: 2, Y: 1}))
	assert.True(t, g.Walkable(grid.Cell{X: 3, Y: 1}))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: `{`},
		{name: "zero size", data: `{"mapWidth": 0, "mapHeight": 3}`},
		{name: "tile out of range", data: `{"mapWidth": 2, "mapHeight": 2, "layers": [{"name": "Collision", "tiles": [{"x": 2, "y": 0}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestMissingMarker(t *testing.T) {
	lvl, err := Parse([]byte(`{"mapWidth": 2, "mapHeight": 2, "layers": [{"name": "Start", "tiles": [{"x": 0, "y": 0}]}]}`))
	require.NoError(t, err)
	_, _, err = lvl.StartEnd()
	assert.ErrorIs(t, err, ErrMissingMarker)
	assert.Equal(t, 32, lvl.TileSize)
}

func TestEmbeddedDemoIsRoutable(t *testing.T) {
	lvl, err := Load("")
	require.NoError(t, err)
	g, err := lvl.Grid()
	require.NoError(t, err)
	start, end, err := lvl.StartEnd()
	require.NoError(t, err)

	path, ok := pathfind.Search(g, start, end, pathfind.Options{})
	require.True(t, ok)
	assert.Equal(t, start, path[0])
	assert.Equal(t, end, path[len(path)-1])
}

func TestLoadFromDiskAndDiff(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "small.json")
	require.NoError(t, os.WriteFile(path, []byte(small), 0o644))

	lvl, err := Load(path)
	require.NoError(t, err)
	g, err := lvl.Grid()
	require.NoError(t, err)

	lvl.Layers[0].Tiles = append(lvl.Layers[0].Tiles, Tile{ID: "4", X: 3, Y: 0})
	added, err := NewCollisions(g, lvl)
	require.NoError(t, err)
	assert.Equal(t, []grid.Cell{{X: 3, Y: 0}}, added)

	lvl.MapWidth = 5
	_, err = NewCollisions(g, lvl)
	assert.Error(t, err)
}

func TestWatcherReportsLevelWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	path := filepath.Join(dir, "small.json")
	require.NoError(t, os.WriteFile(path, []byte(small), 0o644))

	select {
	case got := <-w.Events:
		assert.Equal(t, path, got)
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for level write")
	}
}
