// tilepath is a tile-map pathfinding demo. An entity walks from the level's
// Start tile to its End tile; clicking a tile blocks it and the entity is
// rerouted from wherever it currently is.
//
// Usage:
//
//	tilepath [run]           - Open the game window
//	tilepath sim             - Run the level headless and print the outcome
//
// Global flags:
//
//	--config <path>     - Settings file (default: ./configs/settings.yaml, then built-in)
//	--level <name>      - Level file on disk or embedded level name
//	--log-level <lvl>   - debug, info, warn or error
//	--debug             - Debug overlay and debug logging
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfig   string
	flagLevel    string
	flagLogLevel string
	flagDebug    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tilepath",
	Short: "Tile-map pathfinding demo with live rerouting",
	Long: `tilepath loads a tile map, routes an entity from the Start tile to the
End tile and reroutes it whenever a tile is blocked.

Controls:
  Left click  - Block the tile under the cursor
  C           - Copy the current path to the clipboard
  Escape, P   - Pause / resume`,
	SilenceUsage: true,
	RunE:         runGame,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to settings YAML")
	rootCmd.PersistentFlags().StringVar(&flagLevel, "level", "", "Level file or embedded level name")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug overlay and logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(simCmd)
}
