package engine

import "github.com/Carmen-Shannon/oxy-viewer/engine/input"

// The engine is the input handler's action sink. Actions arrive from inside window callbacks
// with the handler locked, so anything touching the window or the handler is deferred to the
// next tick.
var _ input.Actions = &engine{}

// ToggleHelp shows or hides the help text.
func (e *engine) ToggleHelp() {
	e.scene.ToggleHelp()
}

// CycleMap selects the next valid map texture.
func (e *engine) CycleMap() {
	if !e.scene.CycleMap() {
		e.logger.Warn("no valid map texture to show")
		return
	}
	textures := e.scene.Textures()
	e.logger.Info("map texture selected", "index", textures.CurrentIndex(), "path", textures.Path(textures.CurrentIndex()))
}

// ToggleFullscreen switches fullscreen on the next tick.
func (e *engine) ToggleFullscreen() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pendingFullscreen = !e.pendingFullscreen
}

// ToggleMassing switches between the map and massing views and re-routes the panel keys on the next tick.
func (e *engine) ToggleMassing() {
	e.scene.ToggleMassing()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pendingPanelSync = true
}

// Close stops the frame loop on the next tick.
func (e *engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pendingClose = true
}

// FramebufferSize returns the window's drawable size.
func (e *engine) FramebufferSize() (int, int) {
	return e.window.FramebufferSize()
}

// KeyDown reports whether a key is held.
func (e *engine) KeyDown(key int) bool {
	return e.window.KeyDown(key)
}

// Resized logs framebuffer changes. The renderer picks the new size up from the next frame.
func (e *engine) Resized(width, height int) {
	e.logger.Debug("framebuffer resized", "width", width, "height", height)
}
