package building

import (
	"fmt"
	"strings"
	"sync"
)

type panelImpl struct {
	mu *sync.Mutex

	building Building

	// draft inputs, committed by Apply
	typeIndex   int
	floors      int
	floorHeight float32
	far         float32
	osr         float32

	floorHeightStep float32

	// area receives the committed building on Apply, when set
	area *Area
}

// Panel is the edit form for a Building. Field edits go to draft values; Apply commits them.
type Panel interface {
	// Building returns the committed building.
	//
	// Returns:
	//   - Building: the committed state
	Building() Building

	// SelectType sets the draft type. The committed type follows immediately,
	// the FAR/OSR presets only on Apply.
	//
	// Parameters:
	//   - t: the building type
	SelectType(t Type)

	// CycleType selects the next type in Types order.
	CycleType()

	// SetFloors sets the draft floor count. Negative values are stored as zero.
	//
	// Parameters:
	//   - floors: the floor count
	SetFloors(floors int)

	// AdjustFloors adds delta to the draft floor count.
	//
	// Parameters:
	//   - delta: floors to add (may be negative)
	AdjustFloors(delta int)

	// SetFloorHeight sets the draft floor height. Non-positive values are ignored.
	//
	// Parameters:
	//   - height: floor-to-floor height
	SetFloorHeight(height float32)

	// AdjustFloorHeight moves the draft floor height by steps of the configured increment.
	//
	// Parameters:
	//   - steps: number of increments (may be negative)
	AdjustFloorHeight(steps int)

	// SetFAR sets the draft floor area ratio.
	SetFAR(far float32)

	// SetOSR sets the draft open space ratio.
	SetOSR(osr float32)

	// Apply commits the draft floors, floor height and type, then resets FAR/OSR from the
	// type presets and copies them back into the drafts.
	//
	// Returns:
	//   - Building: the committed state
	Apply() Building

	// Summary returns the total height line computed from the draft values.
	//
	// Returns:
	//   - string: e.g. "Total Height: 10.50 meters"
	Summary() string

	// Lines renders the panel as text rows for the overlay.
	//
	// Returns:
	//   - []string: one row per field
	Lines() []string
}

var _ Panel = &panelImpl{}

// NewPanel creates a panel whose drafts mirror the given building.
//
// Parameters:
//   - b: the initial committed building
//   - options: functional options to configure the panel
//
// Returns:
//   - Panel: the newly created panel
func NewPanel(b Building, options ...PanelOption) Panel {
	p := &panelImpl{
		mu:              &sync.Mutex{},
		building:        b,
		typeIndex:       typeIndex(b.Type),
		floors:          b.Floors,
		floorHeight:     b.FloorHeight,
		far:             b.FAR,
		osr:             b.OSR,
		floorHeightStep: 0.5,
	}

	for _, option := range options {
		option(p)
	}

	return p
}

func typeIndex(t Type) int {
	for i, candidate := range Types {
		if candidate == t {
			return i
		}
	}
	return 0
}

func (p *panelImpl) Building() Building {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.building
}

func (p *panelImpl) SelectType(t Type) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.typeIndex = typeIndex(t)
	p.building.Type = Types[p.typeIndex]
}

func (p *panelImpl) CycleType() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.typeIndex = (p.typeIndex + 1) % len(Types)
	p.building.Type = Types[p.typeIndex]
}

func (p *panelImpl) SetFloors(floors int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.floors = max(floors, 0)
}

func (p *panelImpl) AdjustFloors(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.floors = max(p.floors+delta, 0)
}

func (p *panelImpl) SetFloorHeight(height float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if height > 0 {
		p.floorHeight = height
	}
}

func (p *panelImpl) AdjustFloorHeight(steps int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if h := p.floorHeight + float32(steps)*p.floorHeightStep; h > 0 {
		p.floorHeight = h
	}
}

func (p *panelImpl) SetFAR(far float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.far = far
}

func (p *panelImpl) SetOSR(osr float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.osr = osr
}

func (p *panelImpl) Apply() Building {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.building.Floors = p.floors
	p.building.FloorHeight = p.floorHeight
	p.building.Type = Types[p.typeIndex]
	p.building.FAR, p.building.OSR = p.building.Type.Presets()

	p.far = p.building.FAR
	p.osr = p.building.OSR

	if p.area != nil {
		committed := p.building
		p.area.Place(&committed)
	}
	return p.building
}

func (p *panelImpl) Summary() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.summary()
}

// summary formats the draft height.
// Caller must hold the mutex.
func (p *panelImpl) summary() string {
	return fmt.Sprintf("Total Height: %.2f meters", float32(p.floors)*p.floorHeight)
}

func (p *panelImpl) Lines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return []string{
		"BUILDING INFO",
		"TYPE : " + strings.ToUpper(Types[p.typeIndex].String()),
		fmt.Sprintf("FLOORS : %d", p.floors),
		fmt.Sprintf("FLOOR HEIGHT : %.2f", p.floorHeight),
		fmt.Sprintf("FAR : %.2f | OSR : %.2f", p.far, p.osr),
		strings.ToUpper(p.summary()),
	}
}
