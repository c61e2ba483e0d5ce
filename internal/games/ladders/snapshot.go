package ladders

// Snapshot captures the complete game state for determinism testing and replay.
type Snapshot struct {
	Tick      uint64
	Phase     string
	Current   int   // 1-based seat to move
	Die       int   // Last die value
	Positions []int // Token positions in seat order
	Turns     int
	Rolls     int
	Winner    int // 0 while the game is running
	Shortcuts int
	Setbacks  int
	Redraws   int // Renderer hook calls since Reset
	Paused    bool
	Message   string
}

// Snapshot returns the current game snapshot for determinism verification.
func (g *Game) Snapshot() Snapshot {
	players := g.eng.Players()
	pos := make([]int, len(players))
	for i, p := range players {
		pos[i] = p.Position
	}

	w, _ := g.eng.Winner()
	return Snapshot{
		Tick:      g.tick,
		Phase:     g.eng.Phase().String(),
		Current:   g.eng.Current().ID,
		Die:       g.eng.DieValue(),
		Positions: pos,
		Turns:     g.eng.Turns(),
		Rolls:     g.eng.Rolls(),
		Winner:    w.ID,
		Shortcuts: g.shortcuts,
		Setbacks:  g.setbacks,
		Redraws:   g.redraws,
		Paused:    g.paused,
		Message:   g.eng.Message(),
	}
}
