package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/vovakirdan/tui-ladders/internal/board"
	"github.com/vovakirdan/tui-ladders/internal/core"
	"github.com/vovakirdan/tui-ladders/internal/engine"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	for _, variant := range []string{VariantClassic, VariantQuick} {
		t.Run(variant, func(t *testing.T) {
			parsed, err := Parse(GetDefaultYAML(variant))
			if err != nil {
				t.Fatalf("Parse(embedded %s) failed: %v", variant, err)
			}
			def, ok := DefaultConfig(variant)
			if !ok {
				t.Fatalf("no hardcoded default for %s", variant)
			}
			if !reflect.DeepEqual(parsed, def) {
				t.Errorf("embedded YAML and hardcoded default differ:\n%+v\n%+v", parsed, def)
			}
		})
	}
}

func TestClassicTableFromConfig(t *testing.T) {
	tbl, err := DefaultClassicConfig().Table()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tbl.All(), board.Classic().All()) {
		t.Error("classic config table differs from board.Classic()")
	}
}

func TestLoadFallsBackToEmbedded(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(VariantQuick, "")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Board.Size != 6 {
		t.Errorf("Board.Size = %d, want 6", cfg.Board.Size)
	}
}

func TestLoadUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".ladders", "configs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	custom := `
board:
  size: 5
  shortcuts: [{ from: 2, to: 20 }]
  setbacks: [{ from: 24, to: 3 }]
players:
  - { name: Ann }
  - { name: Ben, color: green }
timing: { step_ms: 10, transition_ms: 20 }
`
	if err := os.WriteFile(filepath.Join(dir, "ladders.yaml"), []byte(custom), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(VariantClassic, "")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Board.Size != 5 || cfg.Players[0].Name != "Ann" {
		t.Errorf("user config not used: %+v", cfg)
	}

	players, err := cfg.EnginePlayers()
	if err != nil {
		t.Fatal(err)
	}
	if players[0].Color != core.ColorRed || players[1].Color != core.ColorGreen {
		t.Errorf("colors = %v, %v", players[0].Color, players[1].Color)
	}
}

func TestLoadBrokenUserConfigFails(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".ladders", "configs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	dup := `
board:
  size: 10
  shortcuts: [{ from: 12, to: 40 }]
  setbacks: [{ from: 12, to: 2 }]
players: [{ name: a }, { name: b }]
`
	if err := os.WriteFile(filepath.Join(dir, "ladders.yaml"), []byte(dup), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(VariantClassic, "")
	if !errors.Is(err, board.ErrDuplicateSource) {
		t.Errorf("Load() error = %v, want ErrDuplicateSource", err)
	}
}

func TestLoadCustomPathMissing(t *testing.T) {
	_, err := Load(VariantClassic, filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want not-exist", err)
	}
}

func TestLoadUnknownVariant(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := Load("chutes", "")
	if !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("Load() error = %v, want ErrUnknownVariant", err)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{
			name: "bad size",
			yaml: "board: { size: 2 }\nplayers: [{}, {}]\n",
			want: board.ErrInvalidSize,
		},
		{
			name: "snake going up",
			yaml: "board: { size: 10, setbacks: [{ from: 5, to: 50 }] }\nplayers: [{}, {}]\n",
			want: board.ErrWrongDirection,
		},
		{
			name: "one player",
			yaml: "board: { size: 10 }\nplayers: [{ name: solo }]\n",
			want: engine.ErrPlayerCount,
		},
		{
			name: "unknown color",
			yaml: "board: { size: 10 }\nplayers: [{ color: octarine }, {}]\n",
			want: ErrUnknownColor,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if !errors.Is(err, tc.want) {
				t.Errorf("Parse() error = %v, want %v", err, tc.want)
			}
		})
	}

	if _, err := Parse([]byte("board: [")); err == nil {
		t.Error("malformed YAML should fail")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Marshal(DefaultQuickConfig())
	if err != nil {
		t.Fatal(err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back, DefaultQuickConfig()) {
		t.Errorf("round trip changed config: %+v", back)
	}
}

func TestSetPlayerNames(t *testing.T) {
	cfg := DefaultClassicConfig()
	cfg.SetPlayerNames([]string{"Alice", "", "Carol"})

	if len(cfg.Players) != 3 {
		t.Fatalf("got %d players, want 3", len(cfg.Players))
	}
	if cfg.Players[0].Name != "Alice" || cfg.Players[1].Name != "Player 2" || cfg.Players[2].Name != "Carol" {
		t.Errorf("players = %+v", cfg.Players)
	}

	players, err := cfg.EnginePlayers()
	if err != nil {
		t.Fatal(err)
	}
	if players[2].Color != core.ColorGreen {
		t.Errorf("third seat color = %v, want green", players[2].Color)
	}
}

func TestApplySpeedPreset(t *testing.T) {
	tests := []struct {
		preset     SpeedPreset
		step, tran int
	}{
		{SpeedSlow, 600, 2000},
		{SpeedNormal, 300, 1000},
		{SpeedFast, 100, 333},
		{SpeedInstant, 0, 0},
	}

	for _, tc := range tests {
		t.Run(string(tc.preset), func(t *testing.T) {
			cfg := DefaultClassicConfig()
			ApplySpeedPreset(&cfg, tc.preset)
			if cfg.Timing.StepMillis != tc.step || cfg.Timing.TransitionMillis != tc.tran {
				t.Errorf("timing = %+v, want %d/%d", cfg.Timing, tc.step, tc.tran)
			}
		})
	}

	if !IsValidSpeed("") || !IsValidSpeed("fast") || IsValidSpeed("ludicrous") {
		t.Error("IsValidSpeed mismatch")
	}
}
