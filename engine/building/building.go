// Package building models a parametric building mass on a site: stacked floor slabs,
// a zoning boundary sized from the floor area ratio, and the edit panel that drives them.
package building

import (
	"fmt"
	"math"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Type is a building use class. Each class carries FAR/OSR presets.
type Type int

const (
	Commercial Type = iota
	Residential
)

// Types lists every building type in panel order.
var Types = []Type{Commercial, Residential}

func (t Type) String() string {
	switch t {
	case Commercial:
		return "Commercial"
	case Residential:
		return "Residential"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Presets returns the floor area ratio and open space ratio assigned to the type.
//
// Returns:
//   - far: floor area ratio
//   - osr: open space ratio
func (t Type) Presets() (far, osr float32) {
	if t == Residential {
		return 2.5, 0.5
	}
	return 5.0, 0.3
}

// ParseType resolves a case-insensitive type name.
//
// Parameters:
//   - name: "commercial" or "residential"
//
// Returns:
//   - Type: the matching type
//   - error: error if the name is unknown
func ParseType(name string) (Type, error) {
	for _, t := range Types {
		if strings.EqualFold(strings.TrimSpace(name), t.String()) {
			return t, nil
		}
	}
	return Commercial, fmt.Errorf("unknown building type %q", name)
}

// Footprint is the side length of the square floor plate in world units.
const Footprint float32 = 4.0

// Box is a unit cube placed in the world by Model and flat-shaded with Color.
// Wireframe boxes are drawn as edges only.
type Box struct {
	Model     mgl32.Mat4
	Color     common.Color
	Wireframe bool
}

// Building is the massing state of a single building.
type Building struct {
	Type        Type
	Floors      int
	FloorHeight float32
	Position    mgl32.Vec3
	FAR         float32
	OSR         float32
}

// New returns a three storey commercial building at the origin with 3.5 unit floors.
//
// Returns:
//   - Building: the default building
func New() Building {
	far, osr := Commercial.Presets()
	return Building{
		Type:        Commercial,
		Floors:      3,
		FloorHeight: 3.5,
		FAR:         far,
		OSR:         osr,
	}
}

// TotalHeight returns the height of the stacked floors.
func (b Building) TotalHeight() float32 {
	return float32(b.Floors) * b.FloorHeight
}

// GroundSlab returns the wide light grey slab the building stands on.
func (b Building) GroundSlab() Box {
	return Box{
		Model: mgl32.Scale3D(50, 1, 50),
		Color: common.RGB(0.8, 0.8, 0.8),
	}
}

// Slabs returns, per floor, a grey floor box followed by a thin black plate sitting on top of it.
// Negative floor counts produce no slabs.
//
// Returns:
//   - []Box: 2*Floors boxes, floor-major
func (b Building) Slabs() []Box {
	if b.Floors <= 0 {
		return nil
	}
	boxes := make([]Box, 0, b.Floors*2)
	h := b.FloorHeight
	for i := range b.Floors {
		y := float32(i)*h + h/2
		boxes = append(boxes, Box{
			Model: common.TRS(b.Position.Add(mgl32.Vec3{0, y, 0}), 0, mgl32.Vec3{Footprint, h, Footprint}),
			Color: common.RGB(0.7, 0.7, 0.7),
		})
		plateY := y + h/2 + 0.01
		boxes = append(boxes, Box{
			Model: common.TRS(b.Position.Add(mgl32.Vec3{0, plateY, 0}), 0, mgl32.Vec3{Footprint, 0.02, Footprint + 0.05}),
			Color: common.RGB(0, 0, 0),
		})
	}
	return boxes
}

// BoundarySide returns the side length of the square site boundary, 10*sqrt(FAR).
func (b Building) BoundarySide() float32 {
	if b.FAR <= 0 {
		return 0
	}
	return 10 * float32(math.Sqrt(float64(b.FAR)))
}

// Boundary returns the blue wireframe box outlining the buildable site.
func (b Building) Boundary() Box {
	side := b.BoundarySide()
	return Box{
		Model:     mgl32.Scale3D(side, 1, side),
		Color:     common.RGB(0, 0.2, 0.8),
		Wireframe: true,
	}
}

// Boxes returns every box of the massing scene in draw order: ground, floors, boundary.
func (b Building) Boxes() []Box {
	boxes := []Box{b.GroundSlab()}
	boxes = append(boxes, b.Slabs()...)
	return append(boxes, b.Boundary())
}
