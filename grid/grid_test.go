package grid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryBounds(t *testing.T) {
	g, err := New(4, 3)
	require.NoError(t, err)

	cases := []struct {
		name string
		cell Cell
		ok   bool
	}{
		{"origin", Cell{0, 0}, true},
		{"far_corner", Cell{3, 2}, true},
		{"negative_x", Cell{-1, 0}, false},
		{"negative_y", Cell{0, -1}, false},
		{"x_eq_width", Cell{4, 0}, false},
		{"y_eq_height", Cell{0, 3}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			state, err := g.Query(c.cell)
			if c.ok {
				require.NoError(t, err)
				assert.Equal(t, Walkable, state)
				return
			}
			var be *BoundsError
			require.True(t, errors.As(err, &be), "expected BoundsError, got %v", err)
			assert.Equal(t, c.cell, be.Cell)
			assert.Equal(t, 4, be.Width)
			assert.Equal(t, 3, be.Height)
		})
	}
}

func TestMarkBlocked(t *testing.T) {
	t.Run("notifies_once", func(t *testing.T) {
		g, err := New(5, 5)
		require.NoError(t, err)

		var seen []Cell
		g.OnBlocked(func(c Cell) { seen = append(seen, c) })

		changed, err := g.MarkBlocked(Cell{2, 2})
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = g.MarkBlocked(Cell{2, 2})
		require.NoError(t, err)
		assert.False(t, changed)

		assert.Equal(t, []Cell{{2, 2}}, seen)
		state, err := g.Query(Cell{2, 2})
		require.NoError(t, err)
		assert.Equal(t, Blocked, state)
	})

	t.Run("out_of_range", func(t *testing.T) {
		g, err := New(2, 2)
		require.NoError(t, err)
		_, err = g.MarkBlocked(Cell{2, 0})
		var be *BoundsError
		assert.True(t, errors.As(err, &be))
		assert.Empty(t, g.Blocked())
	})

	t.Run("idempotent_state", func(t *testing.T) {
		g, err := New(3, 3)
		require.NoError(t, err)
		_, _ = g.MarkBlocked(Cell{1, 1})
		before := g.Rows()
		_, _ = g.MarkBlocked(Cell{1, 1})
		assert.Equal(t, before, g.Rows())
	})
}

func TestSnapshotIsIndependent(t *testing.T) {
	g, err := FromRows([][]int{
		{0, 1},
		{0, 0},
	})
	require.NoError(t, err)

	snap := g.Snapshot()
	_, err = g.MarkBlocked(Cell{0, 1})
	require.NoError(t, err)

	assert.True(t, snap.Walkable(Cell{0, 1}))
	assert.False(t, g.Walkable(Cell{0, 1}))
	assert.Equal(t, []Cell{{1, 0}}, snap.Blocked())
}

func TestFromRowsRejectsRagged(t *testing.T) {
	_, err := FromRows([][]int{{0, 0}, {0}})
	assert.Error(t, err)
}

func TestCellProjection(t *testing.T) {
	x, y := Cell{2, 3}.Center(32)
	assert.Equal(t, 80.0, x)
	assert.Equal(t, 112.0, y)
	assert.Equal(t, Cell{2, 3}, CellAt(x, y, 32))
	assert.Equal(t, Cell{-1, 0}, CellAt(-0.5, 0, 32))
}
