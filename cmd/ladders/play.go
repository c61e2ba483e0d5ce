package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-ladders/internal/platform/tui"
	"github.com/vovakirdan/tui-ladders/internal/registry"
)

var flagLogFile string

var playCmd = &cobra.Command{
	Use:   "play [board]",
	Short: "Play a hotseat game",
	Long: `Start a game on the specified board (default: ladders).

Players take turns on the same keyboard. The first token to reach the last
cell wins. Landing on a ladder foot climbs it; landing on a snake head slides
down. An overshooting roll stops on the last cell.

Controls:
  Space/Enter/R  - Roll the die (new game after a win)
  N              - New game (after a win)
  P              - Pause
  Esc/B          - Back (when paused or after a win)
  ?              - Show all keys
  Q/Ctrl+C       - Quit

Speed options:
  slow     - Twice the configured delays
  normal   - Configured delays (300ms per cell, 1s before a jump)
  fast     - A third of the configured delays
  instant  - No animation

Examples:
  ladders play
  ladders play ladders_quick
  ladders play --names "Alice,Bob,Cleo"
  ladders play --speed fast --log ./game.log
  ladders play --config ./my-board.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	addGameFlags(playCmd)
	playCmd.Flags().StringVar(&flagLogFile, "log", "", "Write debug game events to this file")
}

func runPlay(_ *cobra.Command, args []string) {
	variant := variantArg(args)
	requireVariant(variant)

	logger, closeLog, err := fileLogger(flagLogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	// Board config errors surface here, before the UI starts
	game, err := registry.Create(variant, gameOptions(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	store := openStore()

	_, runErr := tui.Run(game, store, runtimeConfig(), tui.WithLogger(logger))

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}
