package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-ladders/internal/platform/tui"
	"github.com/vovakirdan/tui-ladders/internal/storage"
)

var (
	flagPlain bool
	flagLimit int
	flagClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history [board]",
	Short: "Show recent matches and win counts",
	Long: `Browse the match history in a table, with win counts per player name.

With --plain the history is printed as text instead, optionally filtered to
one board. --clear deletes the history of one board, or all of it.

Examples:
  ladders history
  ladders history --plain
  ladders history ladders_quick --plain --limit 5
  ladders history --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print as text instead of an interactive table")
	historyCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of matches to print with --plain")
	historyCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the recorded matches")
}

func runHistory(_ *cobra.Command, args []string) {
	variant := ""
	if len(args) > 0 {
		variant = args[0]
		requireVariant(variant)
	}

	store := openStore()
	if store == nil {
		os.Exit(1)
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearMatches(variant); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Match history cleared.")
		return
	}

	if !flagPlain {
		cfg := runtimeConfig()
		if _, err := tui.RunHistory(store, cfg.ScreenW, cfg.ScreenH); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	matches, err := store.RecentMatches(variant, flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving matches: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Recent matches")
	fmt.Println()

	if len(matches) == 0 {
		fmt.Println("No matches recorded yet.")
		fmt.Println()
		fmt.Println("Play 'ladders play' to record the first one!")
		return
	}

	fmt.Printf("  %-16s  %-14s  %-12s  %-24s  %5s\n", "Date", "Board", "Winner", "Players", "Turns")
	fmt.Printf("  %-16s  %-14s  %-12s  %-24s  %5s\n", "----", "-----", "------", "-------", "-----")
	for _, m := range matches {
		fmt.Printf("  %-16s  %-14s  %-12s  %-24s  %5d\n",
			m.CreatedAt.Format("2006-01-02 15:04"), m.Variant, m.Winner,
			strings.Join(m.Players, ", "), m.Turns)
	}

	printBoardStats(store, variant)

	records, err := store.WinCounts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving win counts: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("Wins")
	for _, r := range records {
		fmt.Printf("  %-12s  %d/%d\n", r.Name, r.Wins, r.Games)
	}
}

// printBoardStats prints games, average turns, ladders and snakes per board.
func printBoardStats(store *storage.Store, variant string) {
	var stats []*storage.VariantStats
	if variant != "" {
		vs, err := store.VariantStatsFor(variant)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error retrieving board stats: %v\n", err)
			os.Exit(1)
		}
		stats = append(stats, vs)
	} else {
		all, err := store.AllVariantStats()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error retrieving board stats: %v\n", err)
			os.Exit(1)
		}
		for _, vs := range all {
			stats = append(stats, vs)
		}
		slices.SortFunc(stats, func(a, b *storage.VariantStats) int {
			return strings.Compare(a.Variant, b.Variant)
		})
	}

	fmt.Println()
	fmt.Println("Boards")
	fmt.Printf("  %-14s  %5s  %9s  %7s  %6s\n", "Board", "Games", "Avg turns", "Ladders", "Snakes")
	for _, vs := range stats {
		fmt.Printf("  %-14s  %5d  %9.1f  %7d  %6d\n", vs.Variant, vs.Games, vs.AvgTurns, vs.Shortcuts, vs.Setbacks)
	}
}
