package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-ladders/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available boards",
	Long:  `Shows a list of all board variants registered in the game.`,
	Run:   runList,
}

func runList(_ *cobra.Command, _ []string) {
	boards := registry.List()

	if len(boards) == 0 {
		fmt.Println("No boards available.")
		return
	}

	fmt.Println("Available boards:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	maxTitleLen := 5
	for _, b := range boards {
		maxIDLen = max(maxIDLen, len(b.ID))
		maxTitleLen = max(maxTitleLen, len(b.Title))
	}

	fmt.Printf("  %-*s  %-*s  %s\n", maxIDLen, "ID", maxTitleLen, "Title", "Description")
	fmt.Printf("  %-*s  %-*s  %s\n", maxIDLen, "--", maxTitleLen, "-----", "-----------")

	for _, b := range boards {
		fmt.Printf("  %-*s  %-*s  %s\n", maxIDLen, b.ID, maxTitleLen, b.Title, b.Description)
	}

	fmt.Println()
	fmt.Println("Run 'ladders play <id>' to play a board.")
}
