// Package registry provides a global registry of game variants.
// Variants register themselves in init() functions, allowing the platform
// to discover and instantiate boards without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-ladders/internal/core"
	"github.com/vovakirdan/tui-ladders/internal/engine"
)

// Game is the interface the platform drives.
// Implementations contain pure logic; the platform handles input mapping,
// timing and terminal output.
type Game interface {
	// ID returns the variant identifier (e.g., "ladders").
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Reset starts a fresh game sized for the given screen.
	// The RuntimeConfig seed drives the dice.
	Reset(cfg core.RuntimeConfig)

	// Step advances the simulation by one fixed tick.
	Step(in core.InputFrame) core.StepResult

	// Render draws the current state into the screen buffer.
	Render(dst *core.Screen)

	// State returns the current game state.
	State() core.GameState

	// Outcome returns the summary of the finished game.
	// Only meaningful once State().GameOver is true.
	Outcome() core.Outcome
}

// Info contains metadata about a registered variant.
type Info struct {
	ID          string
	Title       string
	Description string
}

// Options are passed to a factory when a game is created.
type Options struct {
	ConfigPath  string      // Custom YAML config, empty for the search path
	PlayerNames []string    // Overrides seat names in order
	Speed       string      // Animation speed preset, empty for the config value
	Logger      *log.Logger // Receives engine events, nil to discard

	// OnEvent observes every engine event after the game has handled it.
	OnEvent func(engine.Event)
}

// Factory creates a new instance of a game. It fails on invalid configuration.
type Factory func(opts Options) (Game, error)

type entry struct {
	info    Info
	factory Factory
}

var (
	entries = make(map[string]entry)
	mu      sync.RWMutex
)

// Register adds a variant to the registry.
// Typically called from a game package's init() function.
// Panics if the ID is empty or already registered.
func Register(info Info, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if info.ID == "" {
		panic("registry: empty game ID")
	}
	if _, exists := entries[info.ID]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", info.ID))
	}

	entries[info.ID] = entry{info: info, factory: f}
}

// List returns information about all registered variants, sorted by ID.
func List() []Info {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Info, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.info)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Lookup returns the metadata of a variant.
func Lookup(id string) (Info, bool) {
	mu.RLock()
	defer mu.RUnlock()

	e, ok := entries[id]
	return e.info, ok
}

// Create instantiates a new game by its ID.
// Returns an error if the ID is not registered or the factory fails.
func Create(id string, opts Options) (Game, error) {
	mu.RLock()
	e, ok := entries[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown game %q", id)
	}

	g, err := e.factory(opts)
	if err != nil {
		return nil, fmt.Errorf("registry: create %q: %w", id, err)
	}
	return g, nil
}

// Exists checks if a variant with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := entries[id]
	return ok
}

// unregister removes a variant. Used by tests only.
func unregister(id string) {
	mu.Lock()
	defer mu.Unlock()
	delete(entries, id)
}
