package scene

import (
	"image"
	"log/slog"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/building"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/maps"
	"github.com/Carmen-Shannon/oxy-viewer/engine/overlay"
	"github.com/go-gl/mathgl/mgl32"
)

// DrawKind selects the pipeline an item is drawn with.
type DrawKind int

const (
	// DrawMap is the textured ground quad.
	DrawMap DrawKind = iota
	// DrawSolid is a flat-colored unit cube.
	DrawSolid
	// DrawWire is the edge outline of a unit cube.
	DrawWire
)

// DrawItem is one mesh instance in a frame.
type DrawItem struct {
	Kind  DrawKind
	Model mgl32.Mat4
	Color common.Color
}

// Frame is everything the renderer needs to draw one image.
type Frame struct {
	Width, Height int

	View       mgl32.Mat4
	Projection mgl32.Mat4
	Eye        mgl32.Vec3
	ClearColor common.Color

	Items []DrawItem

	// MapIndex is the texture slot to bind for DrawMap items; MapValid is false when no slot decoded.
	MapIndex int
	MapValid bool

	// Overlay is the rasterized text layer; OverlayChanged is true when it differs from the previous frame.
	Overlay        *image.RGBA
	OverlayChanged bool
	OverlayVisible bool
}

// Scene assembles frames from the camera, the map textures, the building panel and the overlay.
type Scene interface {
	// Camera returns the scene camera.
	Camera() camera.OrbitCamera

	// Textures returns the map texture set.
	Textures() maps.TextureSet

	// Panel returns the building panel.
	Panel() building.Panel

	// Overlay returns the text overlay.
	Overlay() overlay.TextOverlay

	// Massing reports whether the building massing view replaces the map view.
	Massing() bool

	// ToggleMassing switches between the map view and the building massing view.
	//
	// Returns:
	//   - bool: true if the massing view is now active
	ToggleMassing() bool

	// ToggleHelp shows or hides the help text.
	//
	// Returns:
	//   - bool: true if the help text is now shown
	ToggleHelp() bool

	// CycleMap advances to the next valid map texture.
	//
	// Returns:
	//   - bool: true if a valid texture is selected
	CycleMap() bool

	// SetClearColor sets the background color.
	SetClearColor(c common.Color)

	// Frame builds the draw list for a viewport. A zero height is drawn with aspect 1.
	//
	// Parameters:
	//   - width: framebuffer width in pixels
	//   - height: framebuffer height in pixels
	//
	// Returns:
	//   - Frame: the assembled frame
	Frame(width, height int) Frame
}

type scene struct {
	mu *sync.Mutex

	camera   camera.OrbitCamera
	textures maps.TextureSet
	panel    building.Panel
	overlay  overlay.TextOverlay
	logger   *slog.Logger

	clearColor  common.Color
	massing     bool
	helpVisible bool
}

var _ Scene = &scene{}

// NewScene creates a scene over a camera and texture set. The panel defaults to the stock
// building and the overlay to the hidden help text.
//
// Parameters:
//   - cam: the orbit camera
//   - textures: the map textures (may be unloaded)
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(cam camera.OrbitCamera, textures maps.TextureSet, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:         &sync.Mutex{},
		camera:     cam,
		textures:   textures,
		logger:     slog.Default(),
		clearColor: common.RGB(0.1, 0.1, 0.2),
	}

	for _, option := range options {
		option(s)
	}

	if s.panel == nil {
		s.panel = building.NewPanel(building.New())
	}
	if s.overlay == nil {
		s.overlay = overlay.NewTextOverlay()
	}
	s.helpVisible = s.overlay.Visible()

	return s
}

func (s *scene) Camera() camera.OrbitCamera {
	return s.camera
}

func (s *scene) Textures() maps.TextureSet {
	return s.textures
}

func (s *scene) Panel() building.Panel {
	return s.panel
}

func (s *scene) Overlay() overlay.TextOverlay {
	return s.overlay
}

func (s *scene) Massing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.massing
}

func (s *scene) ToggleMassing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.massing = !s.massing
	s.logger.Info("massing view toggled", "on", s.massing)
	return s.massing
}

func (s *scene) ToggleHelp() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.helpVisible = !s.helpVisible
	s.logger.Info("help display toggled", "on", s.helpVisible)
	return s.helpVisible
}

func (s *scene) CycleMap() bool {
	return s.textures.Next()
}

func (s *scene) SetClearColor(c common.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearColor = c
}

func (s *scene) Frame(width, height int) Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := Frame{
		Width:      width,
		Height:     height,
		View:       s.camera.ViewMatrix(),
		Projection: s.camera.ProjectionMatrix(common.AspectRatio(width, height)),
		Eye:        s.camera.Position(),
		ClearColor: s.clearColor,
		MapIndex:   s.textures.CurrentIndex(),
	}

	if s.massing {
		for _, box := range s.panel.Building().Boxes() {
			kind := DrawSolid
			if box.Wireframe {
				kind = DrawWire
			}
			f.Items = append(f.Items, DrawItem{Kind: kind, Model: box.Model, Color: box.Color})
		}
	} else {
		_, f.MapValid = s.textures.Current()
		f.Items = append(f.Items, DrawItem{
			Kind:  DrawMap,
			Model: GroundModel(),
			Color: common.RGB(1, 1, 1),
		})
	}

	s.overlay.SetText(s.overlayText())
	s.overlay.SetVisible(s.helpVisible || s.massing)
	f.OverlayVisible = s.overlay.Visible()
	f.Overlay, f.OverlayChanged = s.overlay.Render(width, height)
	return f
}

// panelKeys lists the massing view bindings under the panel rows.
const panelKeys = "ENTER : APPLY | Y : TYPE | P : MAP VIEW\n" +
	"+ / - : FLOORS | [ / ] : FLOOR HEIGHT"

// overlayText joins the help text and, in the massing view, the panel rows.
// Caller must hold the mutex.
func (s *scene) overlayText() string {
	var sections []string
	if s.helpVisible {
		sections = append(sections, strings.TrimRight(overlay.HelpText, "\n"))
	}
	if s.massing {
		sections = append(sections, strings.Join(s.panel.Lines(), "\n"), panelKeys)
	}
	return strings.Join(sections, "\n\n")
}

// GroundModel lays the map quad, authored in the XY plane, flat on the XZ plane.
func GroundModel() mgl32.Mat4 {
	return mgl32.HomogRotate3DX(mgl32.DegToRad(-90))
}
