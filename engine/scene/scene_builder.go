package scene

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-viewer/engine/building"
	"github.com/Carmen-Shannon/oxy-viewer/engine/overlay"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithPanel sets the building panel shown in the massing view.
//
// Parameters:
//   - panel: the building panel
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithPanel(panel building.Panel) SceneBuilderOption {
	return func(s *scene) {
		s.panel = panel
	}
}

// WithOverlay sets the text overlay. Its initial visibility becomes the help visibility.
//
// Parameters:
//   - o: the overlay
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithOverlay(o overlay.TextOverlay) SceneBuilderOption {
	return func(s *scene) {
		s.overlay = o
	}
}

// WithMassing starts the scene in the building massing view.
//
// Parameters:
//   - massing: true to start in the massing view
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMassing(massing bool) SceneBuilderOption {
	return func(s *scene) {
		s.massing = massing
	}
}

// WithLogger sets the logger for view toggles.
func WithLogger(logger *slog.Logger) SceneBuilderOption {
	return func(s *scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}
