package main

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/tilepath/config"
	"github.com/milk9111/tilepath/grid"
	"github.com/milk9111/tilepath/route"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	cfg := config.Default()
	w, err := NewWorld(cfg, log.New(io.Discard))
	require.NoError(t, err)
	t.Cleanup(w.Close)
	return w
}

func TestSimulateDemoLevel(t *testing.T) {
	w := newTestWorld(t)
	res, err := simulate(context.Background(), w, config.Sim{Frames: 2000}, true)
	require.NoError(t, err)

	assert.True(t, res.Arrived)
	assert.Zero(t, res.Reroutes)
	assert.Equal(t, w.end, w.entity.Cell())
	assert.Equal(t, route.Following, w.coord.State())

	var out bytes.Buffer
	res.print(&out)
	assert.Contains(t, out.String(), "arrived:  true")
}

func TestSimulateWallScenario(t *testing.T) {
	w := newTestWorld(t)
	res, err := simulate(context.Background(), w, config.Sim{Frames: 2000, Scenario: "wall.tengo"}, true)
	require.NoError(t, err)

	assert.True(t, res.Arrived)
	assert.GreaterOrEqual(t, res.Reroutes, 1)
	assert.Zero(t, res.Blocked)
	assert.Contains(t, w.Path(), grid.Cell{X: 15, Y: 13})
	for _, c := range w.Path() {
		assert.True(t, w.Walkable(c), "route crosses blocked cell %s", c)
	}
}

func TestWorldBlock(t *testing.T) {
	w := newTestWorld(t)

	changed, err := w.Block(grid.Cell{X: 3, Y: 3})
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = w.Block(grid.Cell{X: 3, Y: 3})
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = w.Block(grid.Cell{X: -1, Y: 3})
	var bounds *grid.BoundsError
	assert.ErrorAs(t, err, &bounds)
}

func TestWorldBlockAllLogsFailures(t *testing.T) {
	var logs bytes.Buffer
	w, err := NewWorld(config.Default(), log.New(&logs))
	require.NoError(t, err)
	t.Cleanup(w.Close)

	applied := w.blockAll([]grid.Cell{{X: 4, Y: 4}, {X: 99, Y: 99}, {X: 4, Y: 4}})
	assert.Equal(t, 1, applied)
	assert.False(t, w.Walkable(grid.Cell{X: 4, Y: 4}))
	assert.Contains(t, logs.String(), "block tile")
	assert.Contains(t, logs.String(), "(99,99)")
}

func TestWorldWatchRejectsEmbeddedLevel(t *testing.T) {
	w := newTestWorld(t)
	assert.Error(t, w.Watch())
}

func TestFormatPath(t *testing.T) {
	assert.Equal(t, "(0,0) (1,1)", formatPath(grid.Path{{X: 0, Y: 0}, {X: 1, Y: 1}}))
	assert.Empty(t, formatPath(nil))
}
