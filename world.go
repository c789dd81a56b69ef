package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/image/colornames"

	"github.com/milk9111/tilepath/config"
	"github.com/milk9111/tilepath/entity"
	"github.com/milk9111/tilepath/events"
	"github.com/milk9111/tilepath/grid"
	"github.com/milk9111/tilepath/levels"
	"github.com/milk9111/tilepath/pathfind"
	"github.com/milk9111/tilepath/route"
	"github.com/milk9111/tilepath/scenario"
	"github.com/milk9111/tilepath/scene"
)

// World wires one level: grid, bus, searcher, entity and coordinator. The
// window and the headless simulator both drive it one frame at a time.
type World struct {
	cfg    config.Settings
	logger *log.Logger

	level     *levels.Level
	levelPath string
	tileSize  float64
	start     grid.Cell
	end       grid.Cell

	grid     *grid.Grid
	bus      *events.Bus
	searcher *pathfind.Searcher
	ticker   *scene.Ticker
	entity   *entity.Entity
	coord    *route.Coordinator

	root      *scene.Node
	pathLayer *scene.Node

	watcher  *levels.Watcher
	scenario *scenario.Runner

	frame   int
	status  string
	reached bool
	recalcs int
	blocks  int
}

func NewWorld(cfg config.Settings, logger *log.Logger) (*World, error) {
	lvl, err := levels.Load(cfg.Level.Name)
	if err != nil {
		return nil, err
	}
	g, err := lvl.Grid()
	if err != nil {
		return nil, fmt.Errorf("build grid: %w", err)
	}
	start, end, err := lvl.StartEnd()
	if err != nil {
		return nil, err
	}

	tileSize := float64(lvl.TileSize)
	if tileSize <= 0 {
		tileSize = cfg.Entity.TileSize
	}

	w := &World{
		cfg:       cfg,
		logger:    logger,
		level:     lvl,
		levelPath: cfg.Level.Name,
		tileSize:  tileSize,
		start:     start,
		end:       end,
		grid:      g,
		bus:       events.NewBus(),
		ticker:    scene.NewTicker(),
		status:    "routing",
	}
	w.bus.WatchGrid(g)
	w.searcher = pathfind.NewSearcher(g, pathfind.Config{
		Options:     pathfind.Options{MaxNodes: cfg.Search.MaxNodes},
		MaxInFlight: cfg.Search.MaxInFlight,
	}, logger.WithPrefix("search"))

	w.entity = entity.New(start, entity.Options{
		TileSize: tileSize,
		Speed:    cfg.Entity.Speed,
		Ticker:   w.ticker,
		Bus:      w.bus,
		Logger:   logger.WithPrefix("entity"),
	})

	w.buildScene()

	style := scene.PathStyle{
		Color:       cfg.PathColor(),
		LineWidth:   cfg.Path.LineWidth,
		PointRadius: cfg.Path.PointRadius,
		FadeSeconds: cfg.Path.FadeSeconds,
	}
	w.coord = route.New(w.searcher, route.Options{
		Bus:   w.bus,
		Layer: w.pathLayer,
		Visual: func(p grid.Path) *scene.Node {
			return scene.NewPathVisual(p, tileSize, style)
		},
		Logger: logger.WithPrefix("route"),
	})

	w.bus.Subscribe(events.PathRecalculated, func(e events.Event) {
		w.recalcs++
		w.status = fmt.Sprintf("recalculated (%d waypoints)", len(e.Data.(events.PathUpdate).Path))
	})
	w.bus.Subscribe(events.PathBlocked, func(e events.Event) {
		w.blocks++
		b := e.Data.(events.Blocked)
		if b.Initial {
			w.status = "no route to destination"
			return
		}
		w.status = "path blocked, following old route"
	})
	w.bus.Subscribe(events.EntityReachedEnd, func(events.Event) {
		w.reached = true
		w.status = "arrived"
	})

	return w, nil
}

func (w *World) buildScene() {
	w.root = scene.NewContainer("root")

	tiles := scene.NewContainer("map")
	base := w.level.Layer(levels.LayerBase)
	tiles.AddChild(scene.NewNode("base", &scene.TileLayer{
		TileSize: w.tileSize,
		Color:    colornames.Darkolivegreen,
		Cells:    base.Cells,
	}))
	tiles.AddChild(scene.NewNode("collision", &scene.TileLayer{
		TileSize: w.tileSize,
		Color:    colornames.Dimgray,
		Cells:    w.grid.Blocked,
	}))
	tiles.AddChild(scene.NewNode("lines", &scene.GridLines{
		Cols:     w.grid.Width(),
		Rows:     w.grid.Height(),
		TileSize: w.tileSize,
		Color:    colornames.Darkslategray,
	}))
	tiles.AddChild(scene.NewNode("goal", &scene.TileLayer{
		TileSize: w.tileSize,
		Color:    colornames.Crimson,
		Cells:    func() []grid.Cell { return []grid.Cell{w.end} },
	}))
	w.root.AddChild(tiles)

	w.pathLayer = scene.NewContainer("paths")
	w.root.AddChild(w.pathLayer)

	w.root.AddChild(scene.NewNode("entity", &scene.Marker{
		Target: w.entity,
		Size:   w.tileSize * 0.6,
		Color:  colornames.White,
	}))
}

// Start issues the initial route.
func (w *World) Start() error {
	if err := w.coord.Start(w.entity, w.start, w.end); err != nil {
		w.status = err.Error()
		return err
	}
	return nil
}

// Watch starts reloading the level file when it changes on disk. Embedded
// levels cannot be watched.
func (w *World) Watch() error {
	if info, err := os.Stat(w.levelPath); err != nil || info.IsDir() {
		return fmt.Errorf("watch: level %q is not a file on disk", w.levelPath)
	}
	watcher, err := levels.NewWatcher(filepath.Dir(w.levelPath))
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	w.watcher = watcher
	w.logger.Info("watching level", "path", w.levelPath)
	return nil
}

// LoadScenario compiles a scenario script run once per frame.
func (w *World) LoadScenario(name string) error {
	src, err := scenario.Load(name)
	if err != nil {
		return err
	}
	r, err := scenario.Compile(name, src, w, w.logger.WithPrefix("scenario"))
	if err != nil {
		return err
	}
	w.scenario = r
	return nil
}

// Step advances one frame: deliver finished searches, run the scenario and
// level reloads, then move the entity.
func (w *World) Step(dt float64) {
	w.frame++
	w.searcher.Poll()
	w.drainWatcher()
	if w.scenario != nil {
		if err := w.scenario.Step(w.frame); err != nil {
			w.logger.Error("scenario failed, disabling", "err", err)
			w.scenario = nil
		}
	}
	w.ticker.Tick(dt)
	w.root.Update(float32(dt / 60))
}

func (w *World) drainWatcher() {
	if w.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-w.watcher.Events:
			if !ok {
				w.watcher = nil
				return
			}
			if filepath.Clean(path) == filepath.Clean(w.levelPath) {
				w.reloadLevel()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				w.watcher = nil
				return
			}
			w.logger.Warn("level watcher", "err", err)
		default:
			return
		}
	}
}

func (w *World) reloadLevel() {
	lvl, err := levels.LoadFile(w.levelPath)
	if err != nil {
		w.logger.Warn("reload level", "path", w.levelPath, "err", err)
		return
	}
	added, err := levels.NewCollisions(w.grid, lvl)
	if err != nil {
		w.logger.Warn("reload level rejected", "err", err)
		return
	}
	applied := w.blockAll(added)
	w.logger.Info("level reloaded", "path", w.levelPath, "new_collisions", applied)
}

// blockAll blocks each cell and returns how many were newly blocked.
func (w *World) blockAll(cells []grid.Cell) int {
	applied := 0
	for _, c := range cells {
		changed, err := w.Block(c)
		if err != nil {
			w.logger.Warn("block tile", "cell", c, "err", err)
			continue
		}
		if changed {
			applied++
		}
	}
	return applied
}

// Block marks c blocked as if the player clicked it.
func (w *World) Block(c grid.Cell) (bool, error) {
	changed, err := w.grid.MarkBlocked(c)
	if err != nil {
		return false, err
	}
	if !changed {
		w.logger.Debug("tile already has collision", "cell", c)
		return false, nil
	}
	w.logger.Info("added collision tile", "cell", c)
	return true, nil
}

func (w *World) Walkable(c grid.Cell) bool { return w.grid.Walkable(c) }
func (w *World) EntityCell() grid.Cell     { return w.entity.Cell() }
func (w *World) RouteState() string        { return w.coord.State().String() }

// Path returns the route the coordinator last applied.
func (w *World) Path() grid.Path { return w.coord.Path() }

func (w *World) Close() {
	w.coord.Destroy()
	w.entity.Destroy()
	w.searcher.Close()
	if w.watcher != nil {
		_ = w.watcher.Close()
	}
	w.bus.Clear()
}
