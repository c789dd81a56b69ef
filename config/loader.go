package config

import (
	_ "embed"
	"fmt"
	"os"
)

//go:embed defaults/settings.yaml
var defaultSettingsYAML []byte

// LocalPath is checked when no custom path is given.
const LocalPath = "configs/settings.yaml"

// Load reads settings.
// Search order: customPath -> ./configs/settings.yaml -> embedded default
func Load(customPath string) (Settings, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return Settings{}, fmt.Errorf("config: read %s: %w", customPath, err)
		}
		s, err := Parse(data)
		if err != nil {
			return Settings{}, fmt.Errorf("config: parse %s: %w", customPath, err)
		}
		return s, nil
	}

	if data, err := os.ReadFile(LocalPath); err == nil {
		if s, err := Parse(data); err == nil {
			return s, nil
		}
	}

	s, err := Parse(defaultSettingsYAML)
	if err != nil {
		return Default(), nil
	}
	return s, nil
}
