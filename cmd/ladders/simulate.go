package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-ladders/internal/board"
	"github.com/vovakirdan/tui-ladders/internal/config"
	"github.com/vovakirdan/tui-ladders/internal/engine"
	"github.com/vovakirdan/tui-ladders/internal/games/ladders"
	"github.com/vovakirdan/tui-ladders/internal/storage"
)

var (
	flagFrames   bool
	flagVerbose  bool
	flagMaxTurns int
	flagSave     bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [board]",
	Short: "Play a whole game without a UI",
	Long: `Roll for every player until someone wins and print the game.

Each roll, snake, ladder and win is printed as it happens. With --frames the
board is drawn after every token move. The same --seed always replays the same
game.

Examples:
  ladders simulate
  ladders simulate --seed 42 --frames
  ladders simulate ladders_quick --names "Alice,Bob,Cleo" --save
  ladders simulate --verbose 2> events.log`,
	Args: cobra.MaximumNArgs(1),
	Run:  runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom board config YAML")
	simulateCmd.Flags().StringVar(&flagNames, "names", "", `Comma-separated player names, e.g. "Alice,Bob"`)
	simulateCmd.Flags().BoolVar(&flagFrames, "frames", false, "Draw the board after every move")
	simulateCmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Log every engine event to stderr")
	simulateCmd.Flags().IntVar(&flagMaxTurns, "max-turns", 10000, "Give up after this many turns")
	simulateCmd.Flags().BoolVar(&flagSave, "save", false, "Record the result in the match history")
}

func runSimulate(_ *cobra.Command, args []string) {
	variant := variantArg(args)
	requireVariant(variant)

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:  log.InfoLevel,
		Prefix: "simulate",
	})
	if flagVerbose {
		logger.SetLevel(log.DebugLevel)
	}

	cfg, err := config.Load(variant, flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg.SetPlayerNames(playerNames())

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

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("starting", "board", variant, "seed", seed, "players", len(players))

	var shortcuts, setbacks int
	opts := []engine.Option{
		engine.WithDice(engine.NewRandomDice(seed)),
		engine.WithEventSink(func(ev engine.Event) {
			if ev.Kind == engine.EventTransition {
				if ev.Transition.Kind() == board.Shortcut {
					shortcuts++
				} else {
					setbacks++
				}
			}
			printEvent(ev)
			logger.Debug(ev.Kind.String(), "player", ev.Name, "from", ev.From, "to", ev.To)
		}),
	}
	if flagFrames {
		opts = append(opts, engine.WithRenderer(engine.RendererFunc(
			func(ps []engine.Player, _ []board.Transition) {
				fmt.Println(ladders.RenderBoard(table, ps))
				fmt.Println()
			},
		)))
	}

	eng, err := engine.New(table, players, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	for eng.Phase() != engine.GameOver && eng.Turns() < flagMaxTurns {
		eng.PlayTurn()
	}

	winner, ok := eng.Winner()
	if !ok {
		logger.Warn("no winner", "turns", eng.Turns())
		os.Exit(1)
	}

	fmt.Println()
	fmt.Printf("%s after %d turns (%d rolls, %d ladders, %d snakes)\n",
		eng.Message(), eng.Turns(), eng.Rolls(), shortcuts, setbacks)

	if flagSave {
		saveSimulation(storage.Match{
			Variant:    variant,
			Winner:     winner.Name,
			WinnerSeat: winner.ID,
			Turns:      eng.Turns(),
			Rolls:      eng.Rolls(),
			Shortcuts:  shortcuts,
			Setbacks:   setbacks,
			Duration:   int(time.Since(start).Seconds()),
		}, eng.Players(), logger)
	}
}

// printEvent prints the turn transcript. Single steps only show with --frames.
func printEvent(ev engine.Event) {
	switch ev.Kind {
	case engine.EventMoved:
		if !flagFrames {
			return
		}
	case engine.EventReset, engine.EventLanded:
		return
	}
	fmt.Println(ev.String())
}

// saveSimulation records the simulated game in the match history.
func saveSimulation(m storage.Match, players []engine.Player, logger *log.Logger) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Error("cannot open match history", "error", err)
		return
	}
	defer store.Close()

	for _, p := range players {
		m.Players = append(m.Players, p.Name)
	}

	id, err := store.SaveMatch(m)
	if err != nil {
		logger.Error("cannot save match", "error", err)
		return
	}
	logger.Info("saved", "match", id)
}
