// Package config holds the game settings loaded from YAML.
package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	Window Window `yaml:"window"`
	Level  Level  `yaml:"level"`
	Entity Entity `yaml:"entity"`
	Path   Path   `yaml:"path"`
	Search Search `yaml:"search"`
	Log    Log    `yaml:"log"`
	Sim    Sim    `yaml:"sim"`
}

type Window struct {
	Title      string     `yaml:"title"`
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	Background *YAMLColor `yaml:"background"`
}

type Level struct {
	// Name is a file on disk or an embedded level name.
	Name  string `yaml:"name"`
	Watch bool   `yaml:"watch"`
}

type Entity struct {
	Speed    float64 `yaml:"speed"`
	TileSize float64 `yaml:"tile_size"`
}

type Path struct {
	Color       *YAMLColor `yaml:"color"`
	LineWidth   float32    `yaml:"line_width"`
	PointRadius float32    `yaml:"point_radius"`
	FadeSeconds float32    `yaml:"fade_seconds"`
}

type Search struct {
	MaxNodes    int   `yaml:"max_nodes"`
	MaxInFlight int64 `yaml:"max_in_flight"`
}

type Log struct {
	Level string `yaml:"level"`
}

type Sim struct {
	Frames   int    `yaml:"frames"`
	Scenario string `yaml:"scenario"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Window: Window{
			Title:      "tilepath",
			Width:      960,
			Height:     640,
			Background: &YAMLColor{Color: color.NRGBA{R: 0x10, G: 0x99, B: 0xbb, A: 0xff}},
		},
		Level:  Level{Name: "demo.json"},
		Entity: Entity{Speed: 5, TileSize: 32},
		Path: Path{
			Color:       &YAMLColor{Color: colornames.Yellow},
			LineWidth:   2,
			PointRadius: 3,
			FadeSeconds: 0.25,
		},
		Search: Search{MaxInFlight: 4},
		Log:    Log{Level: "info"},
		Sim:    Sim{Frames: 600},
	}
}

// Parse decodes data over the defaults, so a partial file only overrides
// what it names.
func Parse(data []byte) (Settings, error) {
	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) Validate() error {
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		return fmt.Errorf("config: invalid window size %dx%d", s.Window.Width, s.Window.Height)
	}
	if s.Entity.Speed <= 0 {
		return fmt.Errorf("config: entity speed must be positive, got %v", s.Entity.Speed)
	}
	if s.Entity.TileSize <= 0 {
		return fmt.Errorf("config: tile size must be positive, got %v", s.Entity.TileSize)
	}
	if s.Search.MaxNodes < 0 || s.Search.MaxInFlight < 0 {
		return fmt.Errorf("config: search limits cannot be negative")
	}
	return nil
}

// BackgroundColor returns the window background, falling back to the default.
func (s Settings) BackgroundColor() color.Color {
	if s.Window.Background == nil || s.Window.Background.Color == nil {
		return Default().Window.Background.Color
	}
	return s.Window.Background.Color
}

// PathColor returns the path colour, falling back to yellow.
func (s Settings) PathColor() color.Color {
	if s.Path.Color == nil || s.Path.Color.Color == nil {
		return colornames.Yellow
	}
	return s.Path.Color.Color
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	if named, ok := colornames.Map[strings.ToLower(value.Value)]; ok {
		c.Color = named
		return nil
	}

	s := strings.TrimPrefix(value.Value, "#")
	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	var rgba [4]uint8
	rgba[3] = 255
	for i := 0; i < len(s)/2; i++ {
		v, err := parse(i * 2)
		if err != nil {
			return fmt.Errorf("invalid color format: %s", value.Value)
		}
		rgba[i] = v
	}

	c.Color = color.NRGBA{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}
	return nil
}

func (c YAMLColor) MarshalYAML() (any, error) {
	if c.Color == nil {
		return "", nil
	}
	n := color.NRGBAModel.Convert(c.Color).(color.NRGBA)
	if n.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B), nil
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A), nil
}
