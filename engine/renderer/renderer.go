// Package renderer draws scene frames with WebGPU.
package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoSurface is returned by NewRenderer when the window has no surface descriptor.
var ErrNoSurface = errors.New("no surface descriptor")

// ErrReleased is returned by calls made after Release.
var ErrReleased = errors.New("renderer released")

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backend wgpuRendererBackend
	logger  *slog.Logger

	width, height int

	// Pre-creation config collected from builder options
	presentMode          PresentMode
	sampleCount          MSAASampleCount
	mapSampler           common.SamplerStagingData
	forceFallbackAdapter bool
}

// Renderer draws scene frames to the window surface.
//
// It owns every GPU resource: the surface configuration, the mesh, solid, wire and overlay
// pipelines, one texture per map slot and the overlay texture.
type Renderer interface {
	// Resize reconfigures the surface and the MSAA and depth targets for a new framebuffer size.
	// Zero sizes (a minimized window) are ignored.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode changes the present mode and reconfigures the surface.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// HasMapTexture reports whether a map slot has been uploaded.
	//
	// Parameters:
	//   - index: the texture set slot
	//
	// Returns:
	//   - bool: true if the slot can be drawn
	HasMapTexture(index int) bool

	// UploadMapTexture creates the GPU texture for a map slot, replacing any previous one.
	//
	// Parameters:
	//   - index: the texture set slot
	//   - staging: decoded RGBA pixels
	//
	// Returns:
	//   - error: an error if the staging data is invalid or texture creation fails
	UploadMapTexture(index int, staging common.TextureStagingData) error

	// Render draws one frame and presents it. Frames with a zero dimension are skipped.
	//
	// Parameters:
	//   - frame: the assembled frame
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	Render(frame scene.Frame) error

	// Release frees every GPU resource. The renderer must not be used afterwards.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates the WebGPU device on a window surface and builds the pipelines.
//
// Parameters:
//   - surface: the window's surface descriptor
//   - width: initial framebuffer width in pixels
//   - height: initial framebuffer height in pixels
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the ready renderer
//   - error: an error if the adapter, device or pipelines could not be created
func NewRenderer(surface *wgpu.SurfaceDescriptor, width, height int, options ...RendererBuilderOption) (Renderer, error) {
	if surface == nil {
		return nil, ErrNoSurface
	}

	r := newRenderer(nil, options...)
	backend, err := newWGPURendererBackend(surface, r.forceFallbackAdapter, r.sampleCount, r.mapSampler)
	if err != nil {
		return nil, fmt.Errorf("failed to create wgpu backend: %w", err)
	}
	r.backend = backend
	r.backend.SetPresentMode(r.presentMode)

	if err := r.backend.ConfigureSurface(width, height); err != nil {
		r.backend.Release()
		return nil, fmt.Errorf("failed to configure surface: %w", err)
	}
	if err := r.backend.CreatePipelines(); err != nil {
		r.backend.Release()
		return nil, fmt.Errorf("failed to create pipelines: %w", err)
	}
	r.width, r.height = width, height

	r.logger.Info("renderer ready", "width", width, "height", height, "msaa", uint32(r.sampleCount))
	return r, nil
}

// newRenderer applies defaults and options around a backend.
func newRenderer(backend wgpuRendererBackend, options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:          &sync.Mutex{},
		backend:     backend,
		logger:      slog.Default(),
		presentMode: PresentModeVSync,
		sampleCount: MSAA4x,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resize(width, height)
}

// resize reconfigures the surface when the size is non-zero and changed.
// Caller must hold the mutex.
func (r *renderer) resize(width, height int) {
	if r.backend == nil || width <= 0 || height <= 0 || (width == r.width && height == r.height) {
		return
	}
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		r.logger.Error("surface resize failed", "width", width, "height", height, "error", err)
		return
	}
	r.width, r.height = width, height
	r.logger.Debug("surface resized", "width", width, "height", height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if mode == r.presentMode || r.backend == nil {
		return
	}
	r.presentMode = mode
	r.backend.SetPresentMode(mode)
	if r.width > 0 && r.height > 0 {
		if err := r.backend.ConfigureSurface(r.width, r.height); err != nil {
			r.logger.Error("surface reconfigure failed", "error", err)
		}
	}
}

func (r *renderer) HasMapTexture(index int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend != nil && r.backend.HasMapTexture(index)
}

func (r *renderer) UploadMapTexture(index int, staging common.TextureStagingData) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.backend == nil {
		return ErrReleased
	}
	if !staging.Valid() {
		return fmt.Errorf("map texture %d: invalid staging data %dx%d", index, staging.Width, staging.Height)
	}
	if err := r.backend.CreateMapTexture(index, staging); err != nil {
		return fmt.Errorf("map texture %d: %w", index, err)
	}
	return nil
}

func (r *renderer) Render(f scene.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.backend == nil {
		return ErrReleased
	}
	if f.Width <= 0 || f.Height <= 0 {
		return nil
	}
	r.resize(f.Width, f.Height)

	if f.OverlayChanged && f.Overlay != nil {
		if err := r.backend.WriteOverlay(f.Overlay); err != nil {
			return fmt.Errorf("failed to upload overlay: %w", err)
		}
	}

	cam := camera.NewGPUCameraUniform(f.View, f.Projection, f.Eye)
	if err := r.backend.WriteUniforms(cam.Marshal(), packDrawUniforms(f.Items), len(f.Items)); err != nil {
		return fmt.Errorf("failed to write uniforms: %w", err)
	}

	if err := r.backend.BeginFrame(f.ClearColor); err != nil {
		return fmt.Errorf("failed to begin frame: %w", err)
	}

	mapIndex := -1
	if f.MapValid && r.backend.HasMapTexture(f.MapIndex) {
		mapIndex = f.MapIndex
	}
	for i, item := range f.Items {
		r.backend.Draw(item.Kind, i, mapIndex)
	}
	if f.OverlayVisible {
		r.backend.DrawOverlay()
	}

	r.backend.EndFrame()
	r.backend.Present()
	return nil
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.backend != nil {
		r.backend.Release()
		r.backend = nil
	}
}
