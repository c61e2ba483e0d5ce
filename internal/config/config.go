// Package config provides YAML-based board configuration loading and
// animation speed presets for the ladders game.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/tui-ladders/internal/board"
	"github.com/vovakirdan/tui-ladders/internal/core"
	"github.com/vovakirdan/tui-ladders/internal/engine"
)

// ErrUnknownColor is returned for a player color name that has no terminal color.
var ErrUnknownColor = errors.New("unknown color")

// LaddersConfig contains all configuration for one board variant.
type LaddersConfig struct {
	Board   BoardConfig    `yaml:"board"`
	Players []PlayerConfig `yaml:"players"`
	Timing  TimingConfig   `yaml:"timing"`
}

// BoardConfig defines the grid and its snakes and ladders.
type BoardConfig struct {
	Size      int                `yaml:"size"`
	Shortcuts []TransitionConfig `yaml:"shortcuts"`
	Setbacks  []TransitionConfig `yaml:"setbacks"`
}

// TransitionConfig is one (from, to) pair.
type TransitionConfig struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// PlayerConfig defines a seat.
type PlayerConfig struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
}

// TimingConfig defines the animation pace.
type TimingConfig struct {
	StepMillis       int `yaml:"step_ms"`       // Delay between single-cell moves
	TransitionMillis int `yaml:"transition_ms"` // Delay before a snake or ladder is applied
}

// Step returns the per-cell delay.
func (t TimingConfig) Step() time.Duration {
	return time.Duration(t.StepMillis) * time.Millisecond
}

// Transition returns the snake/ladder delay.
func (t TimingConfig) Transition() time.Duration {
	return time.Duration(t.TransitionMillis) * time.Millisecond
}

// Table builds and validates the transition table.
func (c LaddersConfig) Table() (*board.Table, error) {
	return board.NewTable(c.Board.Size, toTransitions(c.Board.Shortcuts), toTransitions(c.Board.Setbacks))
}

// EnginePlayers converts the seats to engine players.
// An empty color keeps the seat default (red, blue, green, yellow).
func (c LaddersConfig) EnginePlayers() ([]engine.Player, error) {
	seatColors := []core.Color{core.ColorRed, core.ColorBlue, core.ColorGreen, core.ColorYellow}

	players := make([]engine.Player, len(c.Players))
	for i, pc := range c.Players {
		color := seatColors[i%len(seatColors)]
		if pc.Color != "" {
			parsed, ok := core.ParseColor(pc.Color)
			if !ok {
				return nil, fmt.Errorf("config: player %d color %q: %w", i+1, pc.Color, ErrUnknownColor)
			}
			color = parsed
		}
		players[i] = engine.Player{Name: pc.Name, Color: color}
	}
	return players, nil
}

// Validate checks everything that would make game construction fail.
func (c LaddersConfig) Validate() error {
	if _, err := c.Table(); err != nil {
		return err
	}
	if n := len(c.Players); n < engine.MinPlayers || n > engine.MaxPlayers {
		return fmt.Errorf("config: %d players not in [%d, %d]: %w", n, engine.MinPlayers, engine.MaxPlayers, engine.ErrPlayerCount)
	}
	if _, err := c.EnginePlayers(); err != nil {
		return err
	}
	if c.Timing.StepMillis < 0 || c.Timing.TransitionMillis < 0 {
		return fmt.Errorf("config: negative timing %+v", c.Timing)
	}
	return nil
}

// SetPlayerNames overrides seat names in order; extra names add seats.
// Empty entries keep the configured name.
func (c *LaddersConfig) SetPlayerNames(names []string) {
	for i, name := range names {
		if i >= len(c.Players) {
			c.Players = append(c.Players, PlayerConfig{})
		}
		if name != "" {
			c.Players[i].Name = name
		}
	}
}

func toTransitions(in []TransitionConfig) []board.Transition {
	out := make([]board.Transition, len(in))
	for i, t := range in {
		out[i] = board.Transition{From: t.From, To: t.To}
	}
	return out
}
