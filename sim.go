package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/milk9111/tilepath/config"
)

var (
	flagFrames   int
	flagScenario string
	flagSync     bool
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run a level headless and print the outcome",
	Long: `Runs the level without a window, one frame per step, until the entity
arrives or the frame budget runs out. A tengo scenario script can block tiles
while the entity walks.

Examples:
  tilepath sim
  tilepath sim --scenario wall.tengo --frames 900
  tilepath sim --level maps/custom.json --sync`,
	RunE: runSim,
}

func init() {
	simCmd.Flags().IntVar(&flagFrames, "frames", 0, "Frame budget (default from settings)")
	simCmd.Flags().StringVar(&flagScenario, "scenario", "", "Scenario script on disk or embedded name")
	simCmd.Flags().BoolVar(&flagSync, "sync", false, "Wait for every search to finish before the next frame")
}

func runSim(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	if flagFrames > 0 {
		cfg.Sim.Frames = flagFrames
	}
	if flagScenario != "" {
		cfg.Sim.Scenario = flagScenario
	}
	logger := newLogger(cfg)

	world, err := NewWorld(cfg, logger)
	if err != nil {
		return err
	}
	defer world.Close()

	res, err := simulate(cmd.Context(), world, cfg.Sim, flagSync)
	if err != nil {
		return err
	}
	res.print(cmd.OutOrStdout())
	if !res.Arrived {
		return fmt.Errorf("entity did not arrive within %d frames", cfg.Sim.Frames)
	}
	return nil
}

type simResult struct {
	Frames   int
	Arrived  bool
	Reroutes int
	Blocked  int
	Route    string
	Path     string
	Elapsed  time.Duration
}

func (r simResult) print(w io.Writer) {
	fmt.Fprintf(w, "frames:   %d\n", r.Frames)
	fmt.Fprintf(w, "arrived:  %t\n", r.Arrived)
	fmt.Fprintf(w, "reroutes: %d\n", r.Reroutes)
	fmt.Fprintf(w, "blocked:  %d\n", r.Blocked)
	fmt.Fprintf(w, "route:    %s\n", r.Route)
	fmt.Fprintf(w, "path:     %s\n", r.Path)
	fmt.Fprintf(w, "elapsed:  %s\n", r.Elapsed.Round(time.Millisecond))
}

// simulate steps w until the entity arrives or the frame budget is spent.
// With sync set every search is delivered on the frame after it was issued,
// which makes runs repeatable.
func simulate(ctx context.Context, w *World, cfg config.Sim, sync bool) (simResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Scenario != "" {
		if err := w.LoadScenario(cfg.Scenario); err != nil {
			return simResult{}, err
		}
	}

	began := time.Now()
	if err := w.Start(); err != nil {
		return simResult{}, fmt.Errorf("start route: %w", err)
	}

	frames := 0
	for frames < cfg.Frames && !w.reached {
		if sync {
			if err := w.searcher.Flush(ctx); err != nil {
				return simResult{}, err
			}
		}
		w.Step(1)
		frames++
		if err := ctx.Err(); err != nil {
			return simResult{}, err
		}
	}

	return simResult{
		Frames:   frames,
		Arrived:  w.reached,
		Reroutes: w.recalcs,
		Blocked:  w.blocks,
		Route:    w.coord.State().String(),
		Path:     formatPath(w.Path()),
		Elapsed:  time.Since(began),
	}, nil
}
