package main

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/spf13/cobra"
	"golang.design/x/clipboard"

	"github.com/milk9111/tilepath/config"
	"github.com/milk9111/tilepath/grid"
	"github.com/milk9111/tilepath/scene"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the game window (default)",
	RunE:  runGame,
}

func runGame(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	world, err := NewWorld(cfg, logger)
	if err != nil {
		return err
	}
	defer world.Close()

	if cfg.Level.Watch {
		if err := world.Watch(); err != nil {
			logger.Warn("level hot reload disabled", "err", err)
		}
	}
	if err := world.Start(); err != nil {
		logger.Error("initial route rejected", "err", err)
	}

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	return ebiten.RunGame(NewGame(world, cfg, logger))
}

type Game struct {
	world  *World
	logger *log.Logger
	input  *Input
	hud    *HUD

	width, height int
	viewport      scene.Viewport
	background    color.Color

	paused    bool
	debug     bool
	clipboard bool
}

func NewGame(world *World, cfg config.Settings, logger *log.Logger) *Game {
	g := &Game{
		world:      world,
		logger:     logger,
		input:      NewInput(),
		width:      cfg.Window.Width,
		height:     cfg.Window.Height,
		background: cfg.BackgroundColor(),
		debug:      flagDebug,
	}
	g.viewport = scene.CenterViewport(float64(g.width), float64(g.height),
		world.grid.Width(), world.grid.Height(), world.tileSize)

	if err := clipboard.Init(); err != nil {
		logger.Warn("clipboard unavailable", "err", err)
	} else {
		g.clipboard = true
	}

	g.hud = NewHUD(g)
	return g
}

func (g *Game) Update() error {
	g.input.Update()
	if g.input.PausePressed {
		g.paused = !g.paused
	}
	g.hud.Update(g.statusLine(), g.paused)
	if g.paused {
		return nil
	}

	if g.input.ClickPressed {
		g.click(g.input.ClickX, g.input.ClickY)
	}
	if g.input.CopyPressed {
		g.copyPath()
	}

	g.world.Step(1)
	return nil
}

func (g *Game) click(sx, sy float64) {
	if g.hud.Contains(int(sx), int(sy)) {
		return
	}
	c, ok := g.viewport.ScreenToCell(sx, sy)
	if !ok {
		return
	}
	if _, err := g.world.Block(c); err != nil {
		g.logger.Warn("block tile", "cell", c, "err", err)
	}
}

func (g *Game) copyPath() {
	path := g.world.Path()
	if len(path) == 0 {
		return
	}
	text := formatPath(path)
	if !g.clipboard {
		g.logger.Info("path", "cells", text)
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	g.logger.Info("path copied to clipboard", "waypoints", len(path))
}

func formatPath(path grid.Path) string {
	parts := make([]string, len(path))
	for i, c := range path {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func (g *Game) statusLine() string {
	w := g.world
	line := fmt.Sprintf("%s  |  route: %s  gen %d  reroutes %d  blocked %d",
		w.status, w.coord.State(), w.coord.Generation(), w.recalcs, w.blocks)
	if w.coord.Degraded() {
		line += "  (degraded)"
	}
	return line
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.background)
	g.world.root.Draw(screen, g.viewport.OffsetX, g.viewport.OffsetY)
	g.hud.Draw(screen)

	if g.debug {
		cell := g.world.entity.Cell()
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FPS: %.2f  frame %d  entity %s %s  searches %d",
			ebiten.ActualFPS(), g.world.frame, cell, g.world.entity.State(), g.world.searcher.Pending()),
			4, g.height-16)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}
