// Package pathfind finds routes across a grid.Grid.
package pathfind

import (
	"container/heap"
	"math"

	"github.com/milk9111/tilepath/grid"
)

// Options tunes a single search.
type Options struct {
	// MaxNodes caps the number of expanded cells; zero means unlimited.
	MaxNodes int
}

type step struct {
	dx, dy int
}

var directions = [...]step{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// Search runs A* from start to end with 8-way movement. A diagonal step is
// only taken when both orthogonal neighbours it passes are walkable. The bool
// result is false when no route exists, an endpoint is not walkable, or the
// node budget ran out.
func Search(g *grid.Grid, start, end grid.Cell, opts Options) (grid.Path, bool) {
	if g == nil || !g.Walkable(start) || !g.Walkable(end) {
		return nil, false
	}
	if start == end {
		return grid.Path{start}, true
	}

	gridW := g.Width()
	size := gridW * g.Height()

	cameFrom := make([]int, size)
	for i := range cameFrom {
		cameFrom[i] = -1
	}
	gScore := make([]float64, size)
	for i := range gScore {
		gScore[i] = math.Inf(1)
	}
	closed := make([]bool, size)

	startIdx := start.Y*gridW + start.X
	goalIdx := end.Y*gridW + end.X
	gScore[startIdx] = 0

	open := &openSet{}
	heap.Init(open)
	h := heuristic(start, end)
	heap.Push(open, &openItem{cell: start, f: h, h: h})

	expanded := 0
	for open.Len() > 0 {
		cur := heap.Pop(open).(*openItem)
		curIdx := cur.cell.Y*gridW + cur.cell.X
		if closed[curIdx] {
			continue
		}
		closed[curIdx] = true

		if curIdx == goalIdx {
			return reconstructPath(cameFrom, gridW, startIdx, goalIdx), true
		}

		expanded++
		if opts.MaxNodes > 0 && expanded > opts.MaxNodes {
			return nil, false
		}

		for _, d := range directions {
			next := grid.Cell{X: cur.cell.X + d.dx, Y: cur.cell.Y + d.dy}
			if !g.Walkable(next) {
				continue
			}
			cost := 1.0
			if d.dx != 0 && d.dy != 0 {
				if !g.Walkable(grid.Cell{X: cur.cell.X + d.dx, Y: cur.cell.Y}) ||
					!g.Walkable(grid.Cell{X: cur.cell.X, Y: cur.cell.Y + d.dy}) {
					continue
				}
				cost = math.Sqrt2
			}
			idx := next.Y*gridW + next.X
			if closed[idx] {
				continue
			}
			tentative := gScore[curIdx] + cost
			if tentative < gScore[idx] {
				cameFrom[idx] = curIdx
				gScore[idx] = tentative
				nh := heuristic(next, end)
				heap.Push(open, &openItem{cell: next, f: tentative + nh, h: nh})
			}
		}
	}

	return nil, false
}

func reconstructPath(cameFrom []int, gridW int, startIdx, goalIdx int) grid.Path {
	path := make(grid.Path, 0, 32)
	cur := goalIdx
	for cur != -1 {
		path = append(path, grid.Cell{X: cur % gridW, Y: cur / gridW})
		if cur == startIdx {
			break
		}
		cur = cameFrom[cur]
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// heuristic is the octile distance, exact on an open 8-way grid.
func heuristic(a, b grid.Cell) float64 {
	dx := math.Abs(float64(a.X - b.X))
	dy := math.Abs(float64(a.Y - b.Y))
	return dx + dy + (math.Sqrt2-2)*math.Min(dx, dy)
}

type openItem struct {
	cell  grid.Cell
	f     float64
	h     float64
	index int
}

type openSet []*openItem

func (o openSet) Len() int { return len(o) }
func (o openSet) Less(i, j int) bool {
	if o[i].f == o[j].f {
		return o[i].h < o[j].h
	}
	return o[i].f < o[j].f
}
func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index = i
	o[j].index = j
}
func (o *openSet) Push(x any) {
	item := x.(*openItem)
	item.index = len(*o)
	*o = append(*o, item)
}
func (o *openSet) Pop() any {
	old := *o
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*o = old[:n-1]
	return item
}
