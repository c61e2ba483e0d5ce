package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-ladders/internal/config"
	"github.com/vovakirdan/tui-ladders/internal/games/ladders"
)

var flagDump bool

var boardCmd = &cobra.Command{
	Use:   "board [board]",
	Short: "Show a board layout",
	Long: `Print the board with every token on the start cell, followed by its
ladders and snakes.

With --dump the resolved configuration is printed as YAML instead. Save it
to ~/.ladders/configs/<board>.yaml and edit it to make your own board.

Examples:
  ladders board
  ladders board ladders_quick
  ladders board --dump > ~/.ladders/configs/ladders.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run:  runBoard,
}

func init() {
	boardCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom board config YAML")
	boardCmd.Flags().BoolVar(&flagDump, "dump", false, "Print the board config as YAML")
}

func runBoard(_ *cobra.Command, args []string) {
	variant := variantArg(args)
	requireVariant(variant)

	cfg, err := config.Load(variant, flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if flagDump {
		data, err := config.Marshal(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(data)
		return
	}

	table, err := cfg.Table()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	players, err := cfg.EnginePlayers()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s (%dx%d)\n\n", variant, table.Size(), table.Size())
	fmt.Println(ladders.RenderBoard(table, players))
	fmt.Println()

	fmt.Println("Ladders:")
	for _, tr := range table.Shortcuts() {
		fmt.Printf("  %3d → %d\n", tr.From, tr.To)
	}
	fmt.Println("Snakes:")
	for _, tr := range table.Setbacks() {
		fmt.Printf("  %3d → %d\n", tr.From, tr.To)
	}
}
