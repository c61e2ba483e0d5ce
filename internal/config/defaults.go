package config

import (
	_ "embed"

	"github.com/vovakirdan/tui-ladders/internal/board"
)

// Variant identifiers, shared with the game registry.
const (
	VariantClassic = "ladders"
	VariantQuick   = "ladders_quick"
)

//go:embed defaults/classic.yaml
var defaultClassicYAML []byte

//go:embed defaults/quick.yaml
var defaultQuickYAML []byte

// DefaultClassicConfig returns the classic 10x10 board configuration.
func DefaultClassicConfig() LaddersConfig {
	return LaddersConfig{
		Board: BoardConfig{
			Size:      board.ClassicSize,
			Shortcuts: fromTransitions(board.ClassicShortcuts()),
			Setbacks:  fromTransitions(board.ClassicSetbacks()),
		},
		Players: defaultPlayers(),
		Timing: TimingConfig{
			StepMillis:       300,
			TransitionMillis: 1000,
		},
	}
}

// DefaultQuickConfig returns the 6x6 quick board configuration.
func DefaultQuickConfig() LaddersConfig {
	return LaddersConfig{
		Board: BoardConfig{
			Size: 6,
			Shortcuts: []TransitionConfig{
				{From: 3, To: 16},
				{From: 8, To: 22},
				{From: 19, To: 30},
			},
			Setbacks: []TransitionConfig{
				{From: 14, To: 4},
				{From: 27, To: 10},
				{From: 33, To: 20},
			},
		},
		Players: defaultPlayers(),
		Timing: TimingConfig{
			StepMillis:       200,
			TransitionMillis: 700,
		},
	}
}

// DefaultConfig returns the hardcoded configuration for a variant.
func DefaultConfig(variant string) (LaddersConfig, bool) {
	switch variant {
	case VariantClassic:
		return DefaultClassicConfig(), true
	case VariantQuick:
		return DefaultQuickConfig(), true
	default:
		return LaddersConfig{}, false
	}
}

// GetDefaultYAML returns the embedded default YAML for a variant.
func GetDefaultYAML(variant string) []byte {
	switch variant {
	case VariantClassic:
		return defaultClassicYAML
	case VariantQuick:
		return defaultQuickYAML
	default:
		return nil
	}
}

func defaultPlayers() []PlayerConfig {
	return []PlayerConfig{
		{Name: "Player 1", Color: "red"},
		{Name: "Player 2", Color: "blue"},
	}
}

func fromTransitions(in []board.Transition) []TransitionConfig {
	out := make([]TransitionConfig, len(in))
	for i, t := range in {
		out[i] = TransitionConfig{From: t.From, To: t.To}
	}
	return out
}
