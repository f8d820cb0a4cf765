package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// EventHandler receives raw window input. Codes are GLFW values (see common.Key*).
type EventHandler interface {
	KeyEvent(key, scancode, action, mods int)
	MouseButton(button, action, mods int)
	CursorMoved(x, y float64)
	Scrolled(xoff, yoff float64)
	Resized(width, height int)
}

// Window provides platform windowing and input event handling.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetEventHandler sets the receiver for key, mouse, scroll and framebuffer events.
	//
	// Parameters:
	//   - handler: the event receiver (or nil to drop events)
	SetEventHandler(handler EventHandler)

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// RequestClose asks the message loop to stop after the current iteration.
	RequestClose()

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls the update callback each iteration.
	ProcessMessages()

	// FramebufferSize returns the drawable size in pixels.
	// On high-DPI displays this differs from the window size in screen coordinates.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	FramebufferSize() (int, int)

	// KeyDown reports whether a key is currently held.
	//
	// Parameters:
	//   - key: the GLFW key code
	//
	// Returns:
	//   - bool: true while the key is pressed
	KeyDown(key int) bool

	// ToggleFullscreen switches between windowed mode and fullscreen on the primary monitor.
	// The windowed position and size are restored when leaving fullscreen.
	//
	// Returns:
	//   - bool: true if the window is now fullscreen
	ToggleFullscreen() bool

	// Fullscreen reports whether the window covers the primary monitor.
	Fullscreen() bool

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state and the event handler.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// minWidth and minHeight bound resizing; zero leaves the axis unbounded.
	minWidth, minHeight int

	// maxWidth and maxHeight bound resizing; zero leaves the axis unbounded.
	maxWidth, maxHeight int

	// width and height are the current framebuffer size in pixels.
	width, height int

	// fullscreen is true while the window is attached to a monitor.
	fullscreen bool

	// windowedX, windowedY, windowedWidth and windowedHeight are restored on leaving fullscreen.
	windowedX, windowedY          int
	windowedWidth, windowedHeight int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// onUpdate is called each iteration of the message loop (if set).
	onUpdate func()

	// handler receives input events (if set).
	handler EventHandler
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a new Window with the specified options.
// Applies default values first, then each option in order.
// Must be called from the main goroutine.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the created window
//   - error: error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:  "3D Map Demo",
		width:  800,
		height: 600,
	}
	for _, opt := range options {
		opt(w)
	}
	if w.width <= 0 || w.height <= 0 {
		return nil, fmt.Errorf("invalid window size %dx%d", w.width, w.height)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetEventHandler(handler EventHandler) {
	w.handler = handler
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) FramebufferSize() (int, int) {
	return w.width, w.height
}

func (w *engineWindow) KeyDown(key int) bool {
	return platformKeyDown(w, key)
}

func (w *engineWindow) ToggleFullscreen() bool {
	platformToggleFullscreen(w)
	return w.fullscreen
}

func (w *engineWindow) Fullscreen() bool {
	return w.fullscreen
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
