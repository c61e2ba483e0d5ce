// ladders is a Snakes and Ladders game for the terminal, played hotseat on
// one keyboard or over SSH.
//
// Usage:
//
//	ladders list                - List available boards
//	ladders play [board]        - Play a hotseat game
//	ladders menu                - Start menu to pick boards interactively
//	ladders simulate [board]    - Play a game without a UI and print it
//	ladders board [board]       - Show a board layout or dump its config
//	ladders history             - Show recent matches and win counts
//	ladders serve               - Start SSH server for remote play
//
// Global flags:
//
//	--fps <rate>    - Set tick rate (default: 60)
//	--seed <value>  - Set dice seed for reproducible games
//	--db <path>     - Set database path (default: ~/.ladders/history.db)
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-ladders/internal/config"
	"github.com/vovakirdan/tui-ladders/internal/core"
	"github.com/vovakirdan/tui-ladders/internal/registry"
	"github.com/vovakirdan/tui-ladders/internal/storage"

	// Import games to register them
	_ "github.com/vovakirdan/tui-ladders/internal/games/ladders"
)

var (
	// Global flags
	flagFPS    int
	flagSeed   int64
	flagDBPath string

	// Game flags shared by play, menu, simulate and serve
	flagConfig string
	flagNames  string
	flagSpeed  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ladders",
	Short: "Snakes and Ladders in your terminal",
	Long: `Snakes and Ladders for two to four players sharing one keyboard.

Available commands:
  list      - Show all available boards
  play      - Play a board directly
  menu      - Interactive board picker menu
  simulate  - Play a whole game without a UI
  board     - Show a board layout or its YAML config
  history   - View recent matches and win counts
  serve     - Start SSH server for remote play

Examples:
  ladders play
  ladders play ladders_quick --names "Alice,Bob"
  ladders simulate --seed 42
  ladders serve --ssh :2222 --metrics :9090`,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Dice seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.ladders/history.db", "Path to match history database")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
}

// addGameFlags registers the board configuration flags on a command.
func addGameFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom board config YAML")
	cmd.Flags().StringVar(&flagNames, "names", "", `Comma-separated player names, e.g. "Alice,Bob"`)
	cmd.Flags().StringVar(&flagSpeed, "speed", "", "Animation speed: slow, normal, fast, instant")
}

// variantArg returns the board named on the command line, or the classic one.
func variantArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return config.VariantClassic
}

// requireVariant exits with a hint when the board is not registered or the
// speed flag is invalid.
func requireVariant(id string) {
	if !registry.Exists(id) {
		fmt.Fprintf(os.Stderr, "Error: unknown board %q\n", id)
		fmt.Fprintln(os.Stderr, "Run 'ladders list' to see available boards.")
		os.Exit(1)
	}
	requireSpeed()
}

// requireSpeed exits when --speed names no preset.
func requireSpeed() {
	if !config.IsValidSpeed(flagSpeed) {
		fmt.Fprintf(os.Stderr, "Error: unknown speed %q (use slow, normal, fast or instant)\n", flagSpeed)
		os.Exit(1)
	}
}

// playerNames splits the --names flag.
func playerNames() []string {
	if strings.TrimSpace(flagNames) == "" {
		return nil
	}
	parts := strings.Split(flagNames, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// gameOptions builds the registry options from the game flags.
func gameOptions(logger *log.Logger) registry.Options {
	return registry.Options{
		ConfigPath:  flagConfig,
		PlayerNames: playerNames(),
		Speed:       flagSpeed,
		Logger:      logger,
	}
}

// runtimeConfig sizes the screen from the terminal.
func runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}

// openStore opens the match history. The game still works without it.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open match history: %v\n", err)
		return nil
	}
	return store
}

// fileLogger writes debug logs to path, or discards them when path is empty.
// Stdout belongs to the TUI, so game logs never go there.
func fileLogger(path string) (*log.Logger, func(), error) {
	if path == "" {
		return log.New(io.Discard), func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file: %w", err)
	}

	logger := log.NewWithOptions(f, log.Options{
		Level:           log.DebugLevel,
		ReportTimestamp: true,
		Prefix:          "ladders",
	})
	return logger, func() { f.Close() }, nil
}
