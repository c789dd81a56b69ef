// Package entity implements a map entity that walks a waypoint path one
// tick at a time.
package entity

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/tilepath/events"
	"github.com/milk9111/tilepath/grid"
	"github.com/milk9111/tilepath/scene"
)

var (
	ErrEmptyPath = errors.New("entity: path cannot be empty")
	ErrDestroyed = errors.New("entity: destroyed")
)

// State is the movement state.
type State int

const (
	Idle State = iota
	Moving
	Arrived
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Moving:
		return "moving"
	case Arrived:
		return "arrived"
	default:
		return "unknown"
	}
}

// TickSource is the frame clock an entity subscribes to while moving.
type TickSource interface {
	Add(fn scene.TickFunc) scene.TickHandle
}

// Options configures a new Entity.
type Options struct {
	TileSize float64
	// Speed is the distance covered per tick unit.
	Speed  float64
	Ticker TickSource
	Bus    *events.Bus
	Logger *log.Logger
}

// Entity is plain position and path state. Rendering is done by a scene
// adapter reading Position.
type Entity struct {
	id       string
	pos      cp.Vector
	speed    float64
	tileSize float64

	path  grid.Path
	index int
	state State

	ticker    TickSource
	tick      scene.TickHandle
	bus       *events.Bus
	logger    *log.Logger
	destroyed bool
}

// New places an idle entity on the centre of start.
func New(start grid.Cell, opts Options) *Entity {
	if opts.TileSize <= 0 {
		opts.TileSize = 32
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	x, y := start.Center(opts.TileSize)
	return &Entity{
		id:       uuid.NewString(),
		pos:      cp.Vector{X: x, Y: y},
		speed:    opts.Speed,
		tileSize: opts.TileSize,
		ticker:   opts.Ticker,
		bus:      opts.Bus,
		logger:   opts.Logger,
	}
}

func (e *Entity) ID() string      { return e.id }
func (e *Entity) State() State    { return e.state }
func (e *Entity) Index() int      { return e.index }
func (e *Entity) Speed() float64  { return e.speed }
func (e *Entity) Destroyed() bool { return e.destroyed }

// SetSpeed changes the per-tick distance; it applies from the next tick.
func (e *Entity) SetSpeed(speed float64) { e.speed = speed }

// Position returns the world-space position.
func (e *Entity) Position() (float64, float64) {
	return e.pos.X, e.pos.Y
}

// Cell returns the grid cell under the entity.
func (e *Entity) Cell() grid.Cell {
	return grid.CellAt(e.pos.X, e.pos.Y, e.tileSize)
}

// Path returns a copy of the current path.
func (e *Entity) Path() grid.Path {
	return e.path.Clone()
}

// Remaining returns the waypoints from the last reached one to the end.
func (e *Entity) Remaining() grid.Path {
	if e.index >= len(e.path) {
		return nil
	}
	return e.path[e.index:].Clone()
}

// SetPath replaces the current path and starts moving along it. Any previous
// tick subscription is removed before the new one is added.
func (e *Entity) SetPath(path grid.Path) error {
	if len(path) == 0 {
		return ErrEmptyPath
	}
	if e.destroyed {
		return ErrDestroyed
	}
	e.tick.Remove()
	e.tick = scene.TickHandle{}

	e.path = path.Clone()
	e.index = 0
	e.state = Moving
	if e.ticker != nil {
		e.tick = e.ticker.Add(e.Advance)
	}
	return nil
}

// Advance moves the entity toward the next waypoint by speed*dt. It snaps
// onto a waypoint rather than overshoot it, and only arrives once it sits on
// the centre of the last one.
func (e *Entity) Advance(dt float64) {
	if e.state != Moving {
		return
	}
	last := len(e.path) - 1
	next := e.index + 1
	if next > last {
		// A one-cell path can start off-centre inside that cell.
		next = last
	}

	tx, ty := e.path[next].Center(e.tileSize)
	target := cp.Vector{X: tx, Y: ty}
	delta := target.Sub(e.pos)
	dist := delta.Length()
	step := e.speed * dt

	if dist == 0 || dist < step {
		e.pos = target
		e.index = next
		if e.index >= last {
			e.arrive()
		}
		return
	}
	e.pos = e.pos.Add(delta.Mult(step / dist))
}

func (e *Entity) arrive() {
	e.state = Arrived
	e.tick.Remove()
	e.tick = scene.TickHandle{}
	e.logger.Debug("entity reached destination", "id", e.id, "cell", e.Cell())
	e.bus.Publish(events.EntityReachedEnd, events.EntityRef{ID: e.id})
}

// Stop detaches from the ticker. The path is kept.
func (e *Entity) Stop() {
	e.tick.Remove()
	e.tick = scene.TickHandle{}
	if e.state == Moving {
		e.state = Idle
	}
}

// Destroy stops the entity for good. Calling it again is a no-op.
func (e *Entity) Destroy() {
	if e.destroyed {
		return
	}
	e.Stop()
	e.destroyed = true
	e.bus.Publish(events.EntityDestroyed, events.EntityRef{ID: e.id})
}
