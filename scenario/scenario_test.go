package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/tilepath/grid"
)

type gridHost struct {
	g *grid.Grid
}

func (h *gridHost) Block(c grid.Cell) (bool, error) { return h.g.MarkBlocked(c) }
func (h *gridHost) Walkable(c grid.Cell) bool       { return h.g.Walkable(c) }
func (h *gridHost) EntityCell() grid.Cell           { return grid.Cell{X: 1, Y: 2} }
func (h *gridHost) RouteState() string              { return "following" }

func newHost(t *testing.T, w, h int) *gridHost {
	t.Helper()
	g, err := grid.New(w, h)
	require.NoError(t, err)
	return &gridHost{g: g}
}

func TestStepBlocksOnFrame(t *testing.T) {
	host := newHost(t, 5, 5)
	src := `
if frame == 2 {
    block(1, 1)
    block(1, 1)
    block(9, 9)
}
if frame == 3 { stop() }
`
	r, err := Compile("inline", []byte(src), host, nil)
	require.NoError(t, err)

	for frame := 0; frame < 10; frame++ {
		require.NoError(t, r.Step(frame))
	}
	assert.True(t, r.Stopped())
	assert.Equal(t, 1, r.Blocked())
	assert.False(t, host.g.Walkable(grid.Cell{X: 1, Y: 1}))
	assert.Len(t, host.g.Blocked(), 1)
}

func TestScriptSeesHost(t *testing.T) {
	host := newHost(t, 5, 5)
	src := `
pos := entity_cell()
if pos[0] == 1 && pos[1] == 2 && route_state() == "following" && walkable(0, 0) {
    block(pos[0], pos[1])
}
`
	r, err := Compile("inline", []byte(src), host, nil)
	require.NoError(t, err)
	require.NoError(t, r.Step(0))
	assert.False(t, host.g.Walkable(grid.Cell{X: 1, Y: 2}))
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		compile bool
	}{
		{name: "syntax", src: `if frame == {`, compile: true},
		{name: "wrong arity", src: `block(1)`},
		{name: "wrong type", src: `block("a", 1)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Compile(tt.name, []byte(tt.src), newHost(t, 3, 3), nil)
			if tt.compile {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Error(t, r.Step(0))
		})
	}

	_, err := Compile("nil host", []byte(`x := 1`), nil, nil)
	assert.Error(t, err)
}

func TestEmbeddedWallScript(t *testing.T) {
	src, err := Load("wall.tengo")
	require.NoError(t, err)

	host := newHost(t, 20, 15)
	r, err := Compile("wall.tengo", src, host, nil)
	require.NoError(t, err)
	for frame := 0; frame < 40 && !r.Stopped(); frame++ {
		require.NoError(t, r.Step(frame))
	}
	assert.True(t, r.Stopped())
	assert.Equal(t, 12, r.Blocked())
	assert.True(t, host.g.Walkable(grid.Cell{X: 15, Y: 13}))

	_, err = Load("missing.tengo")
	assert.Error(t, err)
}
