package core

// RuntimeConfig contains configuration passed to games at initialization.
// Games use this to adapt to screen size and for deterministic dice.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Simulation ticks per second (default 60)
	Seed     int64 // RNG seed for deterministic dice rolls
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// GameState represents the current state of a game as seen by the platform.
type GameState struct {
	Turns    int  // Completed turns
	Winner   int  // Winning player ID, 0 while the game is running
	GameOver bool // Whether the game has ended
	Paused   bool // Whether the game is paused
	Busy     bool // A move is in flight; roll input is ignored
}

// StepResult is returned by Game.Step() after each simulation tick.
type StepResult struct {
	State GameState
}

// Outcome summarizes a finished game for the match history.
type Outcome struct {
	Variant    string   // Registry ID of the board variant
	Players    []string // Seat names in order
	Winner     string   // Winning player name
	WinnerSeat int      // 1-based seat of the winner
	Turns      int      // Completed turns including the winning one
	Rolls      int      // Dice thrown
	Shortcuts  int      // Ladders climbed
	Setbacks   int      // Snakes slid down
}
