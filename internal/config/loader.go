package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrUnknownVariant is returned when no embedded default exists for a variant.
var ErrUnknownVariant = errors.New("unknown variant")

// Load loads the configuration for a board variant.
// Search order: customPath -> ~/.ladders/configs/<variant>.yaml ->
// ./configs/<variant>.yaml -> embedded default.
// A file that exists but does not parse or validate is an error.
func Load(variant, customPath string) (LaddersConfig, error) {
	if customPath != "" {
		return loadFile(customPath)
	}

	filename := variant + ".yaml"
	for _, path := range []string{userConfigPath(filename), filepath.Join("configs", filename)} {
		if path == "" {
			continue
		}
		cfg, err := loadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return cfg, err
	}

	data := GetDefaultYAML(variant)
	if data == nil {
		return LaddersConfig{}, fmt.Errorf("config: %q: %w", variant, ErrUnknownVariant)
	}

	cfg, err := Parse(data)
	if err != nil {
		// Fallback to hardcoded if the embedded file is broken
		if def, ok := DefaultConfig(variant); ok {
			return def, nil
		}
		return LaddersConfig{}, err
	}
	return cfg, nil
}

// Parse decodes and validates a YAML configuration.
func Parse(data []byte) (LaddersConfig, error) {
	var cfg LaddersConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Marshal encodes a configuration as YAML, e.g. for `ladders board --dump`.
func Marshal(cfg LaddersConfig) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: marshal: %w", err)
	}
	return data, nil
}

func loadFile(path string) (LaddersConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LaddersConfig{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ladders", "configs", filename)
}
