package camera

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidConfig is returned by Config.Validate for unusable tunables.
var ErrInvalidConfig = errors.New("invalid camera config")

// Config holds every tunable of an OrbitCamera: initial pose, bounds and input speeds.
// Angles are in degrees.
type Config struct {
	InitialYaw    float32    `toml:"initial_yaw"`
	InitialPitch  float32    `toml:"initial_pitch"`
	InitialRadius float32    `toml:"initial_radius"`
	InitialPivot  mgl32.Vec3 `toml:"initial_pivot"`
	Fov           float32    `toml:"fov"`
	Near          float32    `toml:"near"`
	Far           float32    `toml:"far"`

	MinPitch  float32 `toml:"min_pitch"`
	MaxPitch  float32 `toml:"max_pitch"`
	MinRadius float32 `toml:"min_radius"`
	MaxRadius float32 `toml:"max_radius"`
	MinPivotY float32 `toml:"min_pivot_y"`
	MaxPivotY float32 `toml:"max_pivot_y"`

	// PointerSensitivity scales raw pointer deltas (pixels) into degrees or pan units.
	PointerSensitivity float32 `toml:"pointer_sensitivity"`
	// ScrollSensitivity scales scroll ticks into radius units.
	ScrollSensitivity float32 `toml:"scroll_sensitivity"`
	// KeyPanSpeed is the world-space pivot step per key tick.
	KeyPanSpeed float32 `toml:"key_pan_speed"`
	// KeyRotateSpeed is the yaw/pitch step in degrees per key tick.
	KeyRotateSpeed float32 `toml:"key_rotate_speed"`
	// PanSpeed scales sensitivity-adjusted pointer deltas while panning.
	PanSpeed float32 `toml:"pan_speed"`
}

// DefaultConfig returns the stock viewer camera: 20 degrees above the horizon, three units
// out from the origin, 45 degree field of view.
//
// Returns:
//   - Config: the default tunables
func DefaultConfig() Config {
	return Config{
		InitialYaw:    0,
		InitialPitch:  20,
		InitialRadius: 3,
		InitialPivot:  mgl32.Vec3{0, 0, 0},
		Fov:           45,
		Near:          0.1,
		Far:           100,

		MinPitch:  -0.1,
		MaxPitch:  89,
		MinRadius: 1,
		MaxRadius: 10,
		MinPivotY: -0.5,
		MaxPivotY: 1,

		PointerSensitivity: 0.2,
		ScrollSensitivity:  0.1,
		KeyPanSpeed:        0.1,
		KeyRotateSpeed:     10,
		PanSpeed:           0.01,
	}
}

// Validate checks that every bound pair is ordered, that the initial pose lies inside the
// bounds and that the projection is well formed.
//
// Returns:
//   - error: an error wrapping ErrInvalidConfig describing the first problem found, or nil
func (c Config) Validate() error {
	switch {
	case c.MinPitch > c.MaxPitch:
		return fmt.Errorf("%w: min_pitch %.2f exceeds max_pitch %.2f", ErrInvalidConfig, c.MinPitch, c.MaxPitch)
	case c.MinPitch <= -90 || c.MaxPitch >= 90:
		return fmt.Errorf("%w: pitch bounds must stay inside (-90, 90)", ErrInvalidConfig)
	case c.MinRadius <= 0:
		return fmt.Errorf("%w: min_radius must be positive", ErrInvalidConfig)
	case c.MinRadius > c.MaxRadius:
		return fmt.Errorf("%w: min_radius %.2f exceeds max_radius %.2f", ErrInvalidConfig, c.MinRadius, c.MaxRadius)
	case c.MinPivotY > c.MaxPivotY:
		return fmt.Errorf("%w: min_pivot_y %.2f exceeds max_pivot_y %.2f", ErrInvalidConfig, c.MinPivotY, c.MaxPivotY)
	case c.InitialPitch < c.MinPitch || c.InitialPitch > c.MaxPitch:
		return fmt.Errorf("%w: initial_pitch %.2f outside [%.2f, %.2f]", ErrInvalidConfig, c.InitialPitch, c.MinPitch, c.MaxPitch)
	case c.InitialRadius < c.MinRadius || c.InitialRadius > c.MaxRadius:
		return fmt.Errorf("%w: initial_radius %.2f outside [%.2f, %.2f]", ErrInvalidConfig, c.InitialRadius, c.MinRadius, c.MaxRadius)
	case c.InitialPivot.Y() < c.MinPivotY || c.InitialPivot.Y() > c.MaxPivotY:
		return fmt.Errorf("%w: initial_pivot y %.2f outside [%.2f, %.2f]", ErrInvalidConfig, c.InitialPivot.Y(), c.MinPivotY, c.MaxPivotY)
	case c.Fov <= 0 || c.Fov >= 180:
		return fmt.Errorf("%w: fov must be in (0, 180)", ErrInvalidConfig)
	case c.Near <= 0 || c.Far <= c.Near:
		return fmt.Errorf("%w: near/far planes must satisfy 0 < near < far", ErrInvalidConfig)
	}
	return nil
}
