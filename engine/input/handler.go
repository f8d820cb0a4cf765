// Package input translates window events into camera moves and viewer commands.
package input

import (
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/building"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraControls is the part of camera.OrbitCamera driven by input.
type CameraControls interface {
	Reset(width, height int)
	BeginDrag()
	PointerMove(x, y float32, panHeld bool)
	Scroll(delta float32)
	KeyRotate(yawDelta, pitchDelta float32)
	KeyPan(dir mgl32.Vec3)
	UpdateScreenSize(width, height int)
}

// Actions are the viewer commands and queries the handler needs beyond the camera.
type Actions interface {
	ToggleHelp()
	CycleMap()
	ToggleFullscreen()
	ToggleMassing()
	Close()
	// FramebufferSize returns the current drawable size in pixels.
	FramebufferSize() (width, height int)
	// KeyDown reports whether a key is currently held.
	KeyDown(key int) bool
	// Resized is called after the camera has seen a framebuffer resize.
	Resized(width, height int)
}

// keyRotations maps arrow keys to (yaw, pitch) ticks.
var keyRotations = map[int][2]float32{
	common.KeyUp:    {0, 1},
	common.KeyDown:  {0, -1},
	common.KeyLeft:  {-1, 0},
	common.KeyRight: {1, 0},
}

// keyPans maps WASDQE to world-space pivot directions.
var keyPans = map[int]mgl32.Vec3{
	common.KeyW: {0, 0, -1},
	common.KeyS: {0, 0, 1},
	common.KeyA: {-1, 0, 0},
	common.KeyD: {1, 0, 0},
	common.KeyQ: {0, -1, 0},
	common.KeyE: {0, 1, 0},
}

type handlerImpl struct {
	mu *sync.Mutex

	camera  CameraControls
	actions Actions
	panel   building.Panel
	logger  *slog.Logger

	dragging bool
	shift    map[int]bool
}

// Handler receives window events. It is registered on the window as its event handler.
type Handler interface {
	// KeyEvent handles a key transition.
	//
	// Parameters:
	//   - key: the key code (see common.Key*)
	//   - scancode: platform scancode, unused
	//   - action: common.ActionPress, ActionRepeat or ActionRelease
	//   - mods: modifier bitmask
	KeyEvent(key, scancode, action, mods int)

	// MouseButton handles a mouse button transition.
	//
	// Parameters:
	//   - button: the button (see common.MouseButton*)
	//   - action: common.ActionPress or ActionRelease
	//   - mods: modifier bitmask
	MouseButton(button, action, mods int)

	// CursorMoved handles a pointer position sample in window pixels.
	CursorMoved(x, y float64)

	// Scrolled handles a scroll wheel delta.
	Scrolled(xoff, yoff float64)

	// Resized handles a framebuffer size change.
	Resized(width, height int)

	// Dragging reports whether the left button is held.
	Dragging() bool

	// SetPanel attaches the building panel whose keys become active, or detaches it with nil.
	//
	// Parameters:
	//   - panel: the panel, or nil
	SetPanel(panel building.Panel)
}

var _ Handler = &handlerImpl{}

// NewHandler creates a handler driving cam and act.
//
// Parameters:
//   - cam: the camera to move
//   - act: the viewer commands
//   - options: functional options to configure the handler
//
// Returns:
//   - Handler: the newly created handler
func NewHandler(cam CameraControls, act Actions, options ...HandlerOption) Handler {
	h := &handlerImpl{
		mu:      &sync.Mutex{},
		camera:  cam,
		actions: act,
		logger:  slog.Default(),
		shift:   make(map[int]bool, 2),
	}

	for _, option := range options {
		option(h)
	}

	return h
}

func (h *handlerImpl) KeyEvent(key, scancode, action, mods int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if key == common.KeyLeftShift || key == common.KeyRightShift {
		h.shift[key] = action != common.ActionRelease
		return
	}
	if action == common.ActionRelease {
		return
	}

	if r, ok := keyRotations[key]; ok {
		h.camera.KeyRotate(r[0], r[1])
		return
	}
	if dir, ok := keyPans[key]; ok {
		h.camera.KeyPan(dir)
		return
	}

	if action != common.ActionPress {
		h.panelRepeatable(key)
		return
	}

	switch key {
	case common.KeyF11:
		h.actions.ToggleFullscreen()
	case common.KeyEsc:
		h.actions.Close()
	case common.KeyTab:
		w, hgt := h.actions.FramebufferSize()
		h.camera.Reset(w, hgt)
		h.logger.Info("camera reset", "width", w, "height", hgt)
	case common.KeySpace:
		h.actions.CycleMap()
	case common.KeyH:
		h.actions.ToggleHelp()
	case common.KeyP:
		h.actions.ToggleMassing()
	default:
		h.panelKey(key)
	}
}

// panelKey applies the panel bindings for a fresh key press.
// Caller must hold the mutex.
func (h *handlerImpl) panelKey(key int) {
	if h.panel == nil {
		return
	}
	switch key {
	case common.KeyEnter:
		b := h.panel.Apply()
		h.logger.Info("building applied", "type", b.Type, "floors", b.Floors, "height", b.TotalHeight())
	case common.KeyY:
		h.panel.CycleType()
	default:
		h.panelRepeatable(key)
	}
}

// panelRepeatable applies the panel bindings that also fire on key repeat.
// Caller must hold the mutex.
func (h *handlerImpl) panelRepeatable(key int) {
	if h.panel == nil {
		return
	}
	switch key {
	case common.KeyEqual:
		h.panel.AdjustFloors(1)
	case common.KeyMinus:
		h.panel.AdjustFloors(-1)
	case common.KeyRightBracket:
		h.panel.AdjustFloorHeight(1)
	case common.KeyLeftBracket:
		h.panel.AdjustFloorHeight(-1)
	}
}

func (h *handlerImpl) MouseButton(button, action, mods int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if button != common.MouseButtonLeft {
		return
	}
	switch action {
	case common.ActionPress:
		h.dragging = true
		h.camera.BeginDrag()
	case common.ActionRelease:
		h.dragging = false
	}
}

func (h *handlerImpl) CursorMoved(x, y float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.dragging {
		return
	}
	h.camera.PointerMove(float32(x), float32(y), h.shiftHeld())
}

// shiftHeld reports whether either shift key is down.
// Caller must hold the mutex.
func (h *handlerImpl) shiftHeld() bool {
	if h.shift[common.KeyLeftShift] || h.shift[common.KeyRightShift] {
		return true
	}
	return h.actions.KeyDown(common.KeyLeftShift) || h.actions.KeyDown(common.KeyRightShift)
}

func (h *handlerImpl) Scrolled(xoff, yoff float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.camera.Scroll(float32(yoff))
}

func (h *handlerImpl) Resized(width, height int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.camera.UpdateScreenSize(width, height)
	h.actions.Resized(width, height)
}

func (h *handlerImpl) Dragging() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dragging
}

func (h *handlerImpl) SetPanel(panel building.Panel) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panel = panel
}
