// Package route keeps an entity on a valid path to a fixed destination while
// the map changes underneath it.
package route

import (
	"errors"

	"github.com/charmbracelet/log"

	"github.com/milk9111/tilepath/events"
	"github.com/milk9111/tilepath/grid"
	"github.com/milk9111/tilepath/pathfind"
	"github.com/milk9111/tilepath/scene"
)

var (
	ErrAlreadyStarted = errors.New("route: already started")
	ErrDestroyed      = errors.New("route: coordinator destroyed")
	ErrNilMover       = errors.New("route: nil mover")
)

// State is the coordinator lifecycle state.
type State int

const (
	Uninitialized State = iota
	Routing
	Following
	Rerouting
	Destroyed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Routing:
		return "routing"
	case Following:
		return "following"
	case Rerouting:
		return "rerouting"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Finder starts an asynchronous search. done runs once, later, on the game
// thread unless an error is returned.
type Finder interface {
	FindPath(start, end grid.Cell, done func(pathfind.Result)) error
}

// Mover is the entity being routed.
type Mover interface {
	SetPath(path grid.Path) error
	Cell() grid.Cell
	Stop()
}

// Layer is the scene node path visuals are attached to.
type Layer interface {
	AddChild(child *scene.Node)
	RemoveChild(child *scene.Node) bool
}

// Options wires a Coordinator. Layer and Visual may be nil for headless use.
type Options struct {
	Bus    *events.Bus
	Layer  Layer
	Visual func(path grid.Path) *scene.Node
	Logger *log.Logger
}

// Coordinator owns the destination, the path visual and the search
// generation for one entity. It is not safe for concurrent use; every method
// and every Finder completion must run on the game thread.
type Coordinator struct {
	finder    Finder
	bus       *events.Bus
	layer     Layer
	newVisual func(grid.Path) *scene.Node
	logger    *log.Logger

	state    State
	degraded bool
	mover    Mover
	start    grid.Cell
	dest     grid.Cell
	gen      uint64
	path     grid.Path
	visual   *scene.Node
	sub      events.Subscription
}

// New creates an uninitialized coordinator.
func New(finder Finder, opts Options) *Coordinator {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Coordinator{
		finder:    finder,
		bus:       opts.Bus,
		layer:     opts.Layer,
		newVisual: opts.Visual,
		logger:    opts.Logger,
	}
}

func (c *Coordinator) State() State           { return c.state }
func (c *Coordinator) Destination() grid.Cell { return c.dest }
func (c *Coordinator) Generation() uint64     { return c.gen }
func (c *Coordinator) Visual() *scene.Node    { return c.visual }
func (c *Coordinator) Path() grid.Path        { return c.path.Clone() }

// Degraded reports whether the last reroute failed and the entity is still
// following an older path.
func (c *Coordinator) Degraded() bool { return c.degraded }

// Start routes m from start to dest. Validation failures are returned and
// leave the coordinator uninitialized. A search that finds no route also
// leaves it uninitialized, later, and publishes PathBlocked with Initial set.
func (c *Coordinator) Start(m Mover, start, dest grid.Cell) error {
	switch c.state {
	case Uninitialized:
	case Destroyed:
		return ErrDestroyed
	default:
		return ErrAlreadyStarted
	}
	if m == nil {
		return ErrNilMover
	}

	c.mover = m
	c.start = start
	c.dest = dest
	c.state = Routing
	c.sub = c.bus.Subscribe(events.CollisionAdded, func(events.Event) {
		c.OnMapChanged()
	})

	if err := c.request(start); err != nil {
		c.reset()
		return err
	}
	c.logger.Debug("routing", "start", start, "dest", dest, "gen", c.gen)
	return nil
}

// OnMapChanged reroutes from the entity's current cell. It is subscribed to
// CollisionAdded by Start and may also be called directly. Once the entity is
// inside the destination cell the current route is kept.
func (c *Coordinator) OnMapChanged() {
	switch c.state {
	case Following, Rerouting:
		from := c.mover.Cell()
		if from == c.dest {
			// The current path already ends in this cell. Drop any reroute
			// still in flight so it cannot pull the entity back out.
			if c.state == Rerouting {
				c.gen++
				c.state = Following
			}
			c.logger.Debug("map changed inside destination cell, keeping route", "cell", from)
			return
		}
		c.releaseVisual()
		c.state = Rerouting
		if err := c.request(from); err != nil {
			c.logger.Warn("reroute rejected", "from", from, "dest", c.dest, "err", err)
			c.degrade(err.Error())
			return
		}
		c.logger.Debug("rerouting", "from", from, "dest", c.dest, "gen", c.gen)
	case Routing:
		// The initial search may have seen the old map; ask again.
		if err := c.request(c.start); err != nil {
			c.failInitial(err.Error())
		}
	}
}

// Destroy releases the visual, stops the entity and drops any in-flight
// result. It is safe in every state.
func (c *Coordinator) Destroy() {
	if c.state == Destroyed {
		return
	}
	c.sub.Unsubscribe()
	c.sub = events.Subscription{}
	c.releaseVisual()
	if c.mover != nil {
		c.mover.Stop()
	}
	c.gen++
	c.state = Destroyed
}

func (c *Coordinator) request(from grid.Cell) error {
	c.gen++
	gen := c.gen
	return c.finder.FindPath(from, c.dest, func(r pathfind.Result) {
		c.onResult(gen, r)
	})
}

func (c *Coordinator) onResult(gen uint64, r pathfind.Result) {
	if gen != c.gen {
		c.logger.Debug("discarding stale route", "gen", gen, "current", c.gen)
		return
	}

	switch c.state {
	case Routing:
		if !r.Found() {
			c.logger.Warn("no route to destination", "start", r.Start, "dest", r.End)
			c.failInitial("no route to destination")
			return
		}
		if err := c.apply(r.Path); err != nil {
			c.failInitial(err.Error())
			return
		}
		c.logger.Info("route found", "waypoints", len(r.Path))
	case Rerouting:
		if !r.Found() {
			c.logger.Warn("path blocked, keeping previous route", "from", r.Start, "dest", r.End)
			c.degrade("no route to destination")
			return
		}
		if err := c.apply(r.Path); err != nil {
			c.degrade(err.Error())
			return
		}
		c.logger.Info("path recalculated", "waypoints", len(r.Path))
		c.bus.Publish(events.PathRecalculated, events.PathUpdate{Path: r.Path.Clone()})
	}
}

func (c *Coordinator) apply(path grid.Path) error {
	if err := c.mover.SetPath(path); err != nil {
		c.logger.Error("assign path", "err", err)
		return err
	}
	c.releaseVisual()
	if c.layer != nil && c.newVisual != nil {
		c.visual = c.newVisual(path)
		if c.visual != nil {
			c.layer.AddChild(c.visual)
		}
	}
	c.path = path.Clone()
	c.state = Following
	c.degraded = false
	return nil
}

func (c *Coordinator) degrade(reason string) {
	c.state = Following
	c.degraded = true
	c.bus.Publish(events.PathBlocked, events.Blocked{Reason: reason})
}

func (c *Coordinator) failInitial(reason string) {
	c.reset()
	c.bus.Publish(events.PathBlocked, events.Blocked{Reason: reason, Initial: true})
}

func (c *Coordinator) reset() {
	c.sub.Unsubscribe()
	c.sub = events.Subscription{}
	c.mover = nil
	c.state = Uninitialized
}

func (c *Coordinator) releaseVisual() {
	if c.visual == nil {
		return
	}
	if c.layer != nil {
		c.layer.RemoveChild(c.visual)
	}
	c.visual.Destroy()
	c.visual = nil
}
