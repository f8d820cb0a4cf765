package building

// PanelOption is a functional option for configuring a Panel.
type PanelOption func(*panelImpl)

// WithFloorHeightStep sets the increment used by AdjustFloorHeight.
//
// Parameters:
//   - step: floor height increment (must be positive)
//
// Returns:
//   - PanelOption: functional option to set the step
func WithFloorHeightStep(step float32) PanelOption {
	return func(p *panelImpl) {
		if step > 0 {
			p.floorHeightStep = step
		}
	}
}

// WithArea binds the panel to a site parcel. Apply places each committed building on it.
//
// Parameters:
//   - area: the parcel the edited building stands on
//
// Returns:
//   - PanelOption: functional option to set the parcel
func WithArea(area *Area) PanelOption {
	return func(p *panelImpl) {
		p.area = area
	}
}
