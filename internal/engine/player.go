package engine

import (
	"fmt"

	"github.com/vovakirdan/tui-ladders/internal/core"
)

// Player limits for one game.
const (
	MinPlayers = 2
	MaxPlayers = 4
)

// Player is a token on the board.
type Player struct {
	ID       int        // 1-based seat number
	Name     string     // Display name, "Player N" by default
	Color    core.Color // Token color
	Position int        // Current cell, always in [1, final cell]
}

// DefaultPlayers returns the standard red and blue seats.
func DefaultPlayers() []Player {
	return []Player{
		{ID: 1, Name: "Player 1", Color: core.ColorRed},
		{ID: 2, Name: "Player 2", Color: core.ColorBlue},
	}
}

// normalizePlayers assigns seat numbers and default names, and puts every
// token on the start cell.
func normalizePlayers(in []Player) ([]Player, error) {
	if len(in) < MinPlayers || len(in) > MaxPlayers {
		return nil, fmt.Errorf("engine: %d players not in [%d, %d]: %w", len(in), MinPlayers, MaxPlayers, ErrPlayerCount)
	}

	out := make([]Player, len(in))
	for i, p := range in {
		p.ID = i + 1
		if p.Name == "" {
			p.Name = fmt.Sprintf("Player %d", p.ID)
		}
		p.Position = 1
		out[i] = p
	}
	return out, nil
}
