// Package config loads viewer settings from TOML files and watches them for changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/engine/building"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the full viewer configuration.
type Config struct {
	LogLevel  string         `toml:"log_level"`
	Profiling bool           `toml:"profiling"`
	Window    WindowConfig   `toml:"window"`
	Camera    camera.Config  `toml:"camera"`
	Maps      MapsConfig     `toml:"maps"`
	Building  BuildingConfig `toml:"building"`
	Overlay   OverlayConfig  `toml:"overlay"`
}

// WindowConfig describes the main window and its swap chain.
type WindowConfig struct {
	Width      int        `toml:"width"`
	Height     int        `toml:"height"`
	Title      string     `toml:"title"`
	VSync      bool       `toml:"vsync"`
	MSAA       uint32     `toml:"msaa"`
	ClearColor mgl32.Vec3 `toml:"clear_color"`
}

// MapsConfig lists the ground textures in cycling order.
type MapsConfig struct {
	Paths   []string `toml:"paths"`
	FlipY   bool     `toml:"flip_y"`
	Workers int      `toml:"workers"`
}

// BuildingConfig seeds the massing model.
type BuildingConfig struct {
	Enabled     bool       `toml:"enabled"`
	Type        string     `toml:"type"`
	Floors      int        `toml:"floors"`
	FloorHeight float32    `toml:"floor_height"`
	Position    mgl32.Vec3 `toml:"position"`
}

// OverlayConfig places the help text. X and Y are measured from the bottom-left corner.
type OverlayConfig struct {
	Visible bool       `toml:"visible"`
	X       float32    `toml:"x"`
	Y       float32    `toml:"y"`
	Scale   float32    `toml:"scale"`
	Color   mgl32.Vec3 `toml:"color"`
}

// Default returns the stock configuration: an 800x600 window over five map textures.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		LogLevel: "info",
		Window: WindowConfig{
			Width:      800,
			Height:     600,
			Title:      "3D Map Demo",
			VSync:      true,
			MSAA:       4,
			ClearColor: mgl32.Vec3{0.1, 0.1, 0.2},
		},
		Camera: camera.DefaultConfig(),
		Maps: MapsConfig{
			Paths: []string{
				"textures/map1.png",
				"textures/map2.png",
				"textures/map_A.png",
				"textures/map_B.png",
				"textures/map_C.png",
			},
			FlipY:   true,
			Workers: 4,
		},
		Building: BuildingConfig{
			Enabled:     false,
			Type:        building.Commercial.String(),
			Floors:      3,
			FloorHeight: 3.5,
		},
		Overlay: OverlayConfig{
			Visible: false,
			X:       10,
			Y:       150,
			Scale:   0.4,
			Color:   mgl32.Vec3{1, 0.3, 0},
		},
	}
}

// Load reads a TOML file over the defaults and validates the result.
// Keys missing from the file keep their default values; unknown keys are rejected.
//
// Parameters:
//   - path: the config file path
//
// Returns:
//   - Config: the loaded configuration
//   - error: error if the file cannot be read, decoded or validated
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes TOML bytes over the defaults and validates the result.
//
// Parameters:
//   - data: TOML document
//
// Returns:
//   - Config: the decoded configuration
//   - error: error if decoding or validation fails
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
//
// Returns:
//   - error: an error wrapping ErrInvalid, or nil
func (c Config) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size must be positive, got %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	switch c.Window.MSAA {
	case 0, 1, 4:
	default:
		return fmt.Errorf("%w: msaa must be 1 or 4, got %d", ErrInvalid, c.Window.MSAA)
	}
	if err := c.Camera.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if len(c.Maps.Paths) == 0 {
		return fmt.Errorf("%w: maps.paths must list at least one texture", ErrInvalid)
	}
	if _, err := building.ParseType(c.Building.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Building.Floors < 0 || c.Building.FloorHeight <= 0 {
		return fmt.Errorf("%w: building needs floors >= 0 and floor_height > 0", ErrInvalid)
	}
	if c.Overlay.Scale <= 0 {
		return fmt.Errorf("%w: overlay.scale must be positive", ErrInvalid)
	}
	return nil
}

// SlogLevel parses LogLevel.
//
// Returns:
//   - slog.Level: the level, info when LogLevel is empty
//   - error: error if LogLevel is not a slog level name
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(c.LogLevel) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

// NewBuilding builds the massing model described by the building section.
// The config must have been validated.
//
// Returns:
//   - building.Building: the building with presets for its type
func (c Config) NewBuilding() building.Building {
	typ, _ := building.ParseType(c.Building.Type)
	b := building.New()
	b.Type = typ
	b.Floors = c.Building.Floors
	b.FloorHeight = c.Building.FloorHeight
	b.Position = c.Building.Position
	b.FAR, b.OSR = typ.Presets()
	return b
}
