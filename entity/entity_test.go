package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/tilepath/events"
	"github.com/milk9111/tilepath/grid"
	"github.com/milk9111/tilepath/scene"
)

const tile = 32.0

func newEntity(t *testing.T, start grid.Cell, speed float64) (*Entity, *scene.Ticker, *events.Bus) {
	t.Helper()
	tk := scene.NewTicker()
	bus := events.NewBus()
	e := New(start, Options{TileSize: tile, Speed: speed, Ticker: tk, Bus: bus})
	return e, tk, bus
}

func TestSetPathRejectsEmpty(t *testing.T) {
	e, tk, _ := newEntity(t, grid.Cell{}, 5)
	assert.ErrorIs(t, e.SetPath(nil), ErrEmptyPath)
	assert.ErrorIs(t, e.SetPath(grid.Path{}), ErrEmptyPath)
	assert.Equal(t, Idle, e.State())
	assert.Zero(t, tk.Len())
}

func TestArrivesExactlyOnLastWaypoint(t *testing.T) {
	e, tk, bus := newEntity(t, grid.Cell{X: 0, Y: 0}, 5)
	reached := 0
	bus.Subscribe(events.EntityReachedEnd, func(ev events.Event) {
		ref := ev.Data.(events.EntityRef)
		assert.Equal(t, e.ID(), ref.ID)
		reached++
	})

	path := grid.Path{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 1}}
	require.NoError(t, e.SetPath(path))
	assert.Equal(t, Moving, e.State())

	total := tile + tile*math.Sqrt2
	ticks := int(math.Ceil(total/5)) + 2
	for i := 0; i < ticks; i++ {
		tk.Tick(1)
	}

	assert.Equal(t, Arrived, e.State())
	x, y := e.Position()
	wx, wy := grid.Cell{X: 2, Y: 1}.Center(tile)
	assert.Equal(t, wx, x)
	assert.Equal(t, wy, y)
	assert.Equal(t, 2, e.Index())
	assert.Equal(t, 1, reached)
	assert.Zero(t, tk.Len(), "arrived entity must leave the ticker")
}

func TestAdvanceNeverOvershoots(t *testing.T) {
	e, _, _ := newEntity(t, grid.Cell{X: 0, Y: 0}, 7)
	e.ticker = nil
	path := grid.Path{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 1}}
	require.NoError(t, e.SetPath(path))

	for i := 0; i < 100 && e.State() == Moving; i++ {
		prev := e.Index()
		e.Advance(1)
		x, y := e.Position()
		if e.Index() != prev {
			wx, wy := path[e.Index()].Center(tile)
			assert.Equal(t, wx, x)
			assert.Equal(t, wy, y)
			continue
		}
		// Still between waypoints: never past the target along x.
		tx, _ := path[e.Index()+1].Center(tile)
		assert.LessOrEqual(t, x, tx+1e-9)
	}
	assert.Equal(t, Arrived, e.State())
}

func TestSetPathWhileMovingSubscribesOnce(t *testing.T) {
	e, tk, _ := newEntity(t, grid.Cell{X: 0, Y: 0}, 1)
	require.NoError(t, e.SetPath(grid.Path{{X: 0, Y: 0}, {X: 5, Y: 0}}))
	require.NoError(t, e.SetPath(grid.Path{{X: 0, Y: 0}, {X: 0, Y: 5}}))
	require.NoError(t, e.SetPath(grid.Path{{X: 0, Y: 0}, {X: 0, Y: 5}}))
	assert.Equal(t, 1, tk.Len())

	x0, y0 := e.Position()
	tk.Tick(1)
	x1, y1 := e.Position()
	assert.Equal(t, x0, x1)
	assert.InDelta(t, y0+1, y1, 1e-9, "a double subscription would move twice per tick")
}

func TestSetPathAfterArrival(t *testing.T) {
	e, tk, _ := newEntity(t, grid.Cell{X: 0, Y: 0}, 100)
	require.NoError(t, e.SetPath(grid.Path{{X: 0, Y: 0}, {X: 1, Y: 0}}))
	tk.Tick(1)
	require.Equal(t, Arrived, e.State())

	require.NoError(t, e.SetPath(grid.Path{{X: 1, Y: 0}, {X: 1, Y: 1}}))
	assert.Equal(t, Moving, e.State())
	assert.Equal(t, 1, tk.Len())
	tk.Tick(1)
	assert.Equal(t, Arrived, e.State())
	assert.Equal(t, grid.Cell{X: 1, Y: 1}, e.Cell())
}

func TestSingleWaypointPathArrivesOnFirstTick(t *testing.T) {
	e, tk, _ := newEntity(t, grid.Cell{X: 3, Y: 3}, 5)
	require.NoError(t, e.SetPath(grid.Path{{X: 3, Y: 3}}))
	assert.Equal(t, Moving, e.State())
	tk.Tick(1)
	assert.Equal(t, Arrived, e.State())
	assert.Zero(t, tk.Len())
}

func TestSingleWaypointFromOffCentreWalksToCentre(t *testing.T) {
	e, tk, bus := newEntity(t, grid.Cell{X: 0, Y: 0}, 5)
	reached := 0
	bus.Subscribe(events.EntityReachedEnd, func(events.Event) { reached++ })

	end := grid.Cell{X: 3, Y: 0}
	require.NoError(t, e.SetPath(grid.Path{{X: 0, Y: 0}, end}))
	for i := 0; i < 100 && e.Cell() != end; i++ {
		tk.Tick(1)
	}
	require.Equal(t, end, e.Cell())
	cx, cy := end.Center(tile)
	x, _ := e.Position()
	require.Less(t, x, cx, "entity should be short of the centre")

	// Rerouting from inside the last cell yields a one-cell path.
	require.NoError(t, e.SetPath(grid.Path{end}))
	tk.Tick(1)
	assert.Equal(t, Moving, e.State())
	assert.Zero(t, reached)

	for i := 0; i < 10 && e.State() == Moving; i++ {
		tk.Tick(1)
	}
	assert.Equal(t, Arrived, e.State())
	x, y := e.Position()
	assert.Equal(t, cx, x)
	assert.Equal(t, cy, y)
	assert.Equal(t, 1, reached)
}

func TestPathIsCopied(t *testing.T) {
	e, _, _ := newEntity(t, grid.Cell{}, 1)
	path := grid.Path{{X: 0, Y: 0}, {X: 1, Y: 0}}
	require.NoError(t, e.SetPath(path))
	path[1] = grid.Cell{X: 9, Y: 9}
	assert.Equal(t, grid.Cell{X: 1, Y: 0}, e.Path()[1])

	got := e.Path()
	got[0] = grid.Cell{X: 7, Y: 7}
	assert.Equal(t, grid.Cell{X: 0, Y: 0}, e.Path()[0])
}

func TestCellProjectionMidMove(t *testing.T) {
	e, tk, _ := newEntity(t, grid.Cell{X: 0, Y: 0}, 20)
	require.NoError(t, e.SetPath(grid.Path{{X: 0, Y: 0}, {X: 3, Y: 0}}))
	tk.Tick(1)
	// 16 + 20 = 36 -> second column.
	assert.Equal(t, grid.Cell{X: 1, Y: 0}, e.Cell())
	assert.Equal(t, grid.Path{{X: 0, Y: 0}, {X: 3, Y: 0}}, e.Remaining())
}

func TestStopAndDestroy(t *testing.T) {
	e, tk, bus := newEntity(t, grid.Cell{}, 1)
	destroyed := 0
	bus.Subscribe(events.EntityDestroyed, func(events.Event) { destroyed++ })

	require.NoError(t, e.SetPath(grid.Path{{X: 0, Y: 0}, {X: 4, Y: 0}}))
	e.Stop()
	assert.Equal(t, Idle, e.State())
	assert.Zero(t, tk.Len())
	assert.Len(t, e.Path(), 2)

	e.Destroy()
	e.Destroy()
	assert.Equal(t, 1, destroyed)
	assert.ErrorIs(t, e.SetPath(grid.Path{{X: 0, Y: 0}}), ErrDestroyed)
}
