// Package engine wires the window, input, scene and renderer into the viewer's frame loop.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine/building"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/input"
	"github.com/Carmen-Shannon/oxy-viewer/engine/maps"
	"github.com/Carmen-Shannon/oxy-viewer/engine/overlay"
	"github.com/Carmen-Shannon/oxy-viewer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
)

// ConfigSource delivers re-loaded configurations to the frame loop. *config.Watcher implements it.
type ConfigSource interface {
	Updates() <-chan config.Config
	Errors() <-chan error
	Close() error
}

// engine implements the Engine interface.
// Everything it owns is touched only from the goroutine running Run, except the pending
// window actions, which are guarded by mu.
type engine struct {
	mu *sync.Mutex

	cfg      config.Config
	logger   *slog.Logger
	logLevel *slog.LevelVar

	window   window.Window
	renderer renderer.Renderer
	scene    scene.Scene
	input    input.Handler
	source   ConfigSource
	site     *building.Ground

	profiler         *profiler.Profiler
	profilingEnabled bool

	renderFrameLimit time.Duration
	lastRender       time.Time

	// pending window actions requested by input, applied at the start of the next tick
	pendingFullscreen bool
	pendingClose      bool
	pendingPanelSync  bool

	quitOnce sync.Once
}

// Engine is the main entry point for the viewer.
// It owns the window, the renderer and the scene and runs the frame loop on the calling goroutine.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Scene returns the scene drawn each frame.
	//
	// Returns:
	//   - scene.Scene: the scene instance
	Scene() scene.Scene

	// Input returns the handler receiving window events.
	//
	// Returns:
	//   - input.Handler: the input handler
	Input() input.Handler

	// Site returns the site model. Its parcel holds the building last applied from the panel.
	//
	// Returns:
	//   - *building.Ground: the site
	Site() *building.Ground

	// Config returns the configuration currently applied.
	//
	// Returns:
	//   - config.Config: the applied configuration
	Config() config.Config

	// ApplyConfig applies the reloadable parts of a configuration: camera tunables, clear
	// color, present mode, profiling and log level. Window size, MSAA, map paths and the
	// overlay placement only take effect at start-up.
	//
	// Parameters:
	//   - cfg: the new configuration, already validated
	ApplyConfig(cfg config.Config)

	// EnableProfiler enables the periodic frame stats log line.
	EnableProfiler()

	// DisableProfiler disables the periodic frame stats log line.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run runs the frame loop on the calling goroutine until the window closes or ctx is
	// cancelled, then releases the renderer, the config source and the window.
	// Must be called from the goroutine that created the window.
	//
	// Parameters:
	//   - ctx: stops the loop when cancelled
	//
	// Returns:
	//   - error: error from tearing the window down
	Run(ctx context.Context) error

	// Quit asks the frame loop to stop after the current iteration.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine builds the viewer: it opens the window, creates the renderer on its surface,
// decodes the map textures and assembles the camera, building panel, overlay and scene.
// Window and renderer may be supplied through options instead. On failure everything built or
// supplied so far, the config source included, is released.
//
// Parameters:
//   - ctx: cancels texture decoding
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the ready engine
//   - error: error if the window, the renderer or the configuration is unusable
func NewEngine(ctx context.Context, options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		mu:     &sync.Mutex{},
		cfg:    config.Default(),
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(e)
	}
	if err := e.cfg.Validate(); err != nil {
		e.release()
		return nil, err
	}
	e.profilingEnabled = e.profilingEnabled || e.cfg.Profiling
	e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))

	if e.window == nil {
		w, err := window.NewWindow(
			window.WithTitle(e.cfg.Window.Title),
			window.WithSize(e.cfg.Window.Width, e.cfg.Window.Height),
		)
		if err != nil {
			e.release()
			return nil, err
		}
		e.window = w
	}
	width, height := e.window.FramebufferSize()

	if e.renderer == nil {
		r, err := renderer.NewRenderer(e.window.SurfaceDescriptor(), width, height,
			renderer.WithPresentMode(presentMode(e.cfg.Window.VSync)),
			renderer.WithMSAA(renderer.ParseMSAA(e.cfg.Window.MSAA)),
			renderer.WithLogger(e.logger),
		)
		if err != nil {
			e.release()
			return nil, err
		}
		e.renderer = r
	}

	textures := maps.NewTextureSet(e.cfg.Maps.Paths,
		maps.WithFlipY(e.cfg.Maps.FlipY),
		maps.WithWorkers(e.cfg.Maps.Workers),
		maps.WithLogger(e.logger),
	)
	if err := textures.Load(ctx); err != nil {
		if !errors.Is(err, maps.ErrNoTextures) {
			e.release()
			return nil, fmt.Errorf("failed to load map textures: %w", err)
		}
		e.logger.Warn("no map textures configured")
	}

	cam := camera.NewOrbitCamera(width, height, camera.WithConfig(e.cfg.Camera))
	site, parcel := building.NewSite(e.cfg.NewBuilding())
	e.site = site
	panel := building.NewPanel(*parcel.Building, building.WithArea(parcel))
	oc := e.cfg.Overlay
	textOverlay := overlay.NewTextOverlay(
		overlay.WithPosition(oc.X, oc.Y),
		overlay.WithScale(oc.Scale),
		overlay.WithColor(common.RGB(oc.Color[0], oc.Color[1], oc.Color[2])),
		overlay.WithVisible(oc.Visible),
	)
	e.scene = scene.NewScene(cam, textures,
		scene.WithPanel(panel),
		scene.WithOverlay(textOverlay),
		scene.WithMassing(e.cfg.Building.Enabled),
		scene.WithLogger(e.logger),
	)
	e.scene.SetClearColor(clearColor(e.cfg))

	e.input = input.NewHandler(cam, e, input.WithLogger(e.logger))
	e.syncPanel()
	e.window.SetEventHandler(e.input)

	e.logger.Debug("site ready", "zone", site.Zones[0].ID, "parcel", parcel.ID, "far", parcel.FAR)
	e.logger.Info("viewer ready",
		"width", width,
		"height", height,
		"maps", textures.Len(),
		"valid_maps", textures.ValidCount(),
	)
	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Input() input.Handler {
	return e.input
}

func (e *engine) Site() *building.Ground {
	return e.site
}

func (e *engine) Config() config.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

func (e *engine) ApplyConfig(cfg config.Config) {
	e.mu.Lock()
	prev := e.cfg
	e.cfg = cfg
	e.mu.Unlock()

	e.scene.Camera().SetConfig(cfg.Camera)
	e.scene.SetClearColor(clearColor(cfg))
	if cfg.Window.VSync != prev.Window.VSync {
		e.renderer.SetPresentMode(presentMode(cfg.Window.VSync))
	}
	if cfg.Profiling != prev.Profiling {
		e.profilingEnabled = cfg.Profiling
	}
	if e.logLevel != nil {
		if level, err := cfg.SlogLevel(); err == nil {
			e.logLevel.Set(level)
		}
	}
	e.logger.Info("config applied")
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Run(ctx context.Context) error {
	e.lastRender = time.Now()
	e.window.SetUpdateCallback(func() {
		if ctx.Err() != nil {
			e.Quit()
		}
		e.tick()
	})
	e.window.ProcessMessages()
	e.window.SetUpdateCallback(nil)

	e.logger.Info("viewer shutting down")
	return e.release()
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		e.window.RequestClose()
	})
}

// tick runs one frame: config reloads, deferred window actions, then draw.
func (e *engine) tick() {
	e.drainConfig()
	e.applyPending()
	if !e.window.IsRunning() {
		return
	}

	width, height := e.window.FramebufferSize()
	frame := e.scene.Frame(width, height)
	e.ensureMapTexture(frame)
	if err := e.renderer.Render(frame); err != nil {
		e.logger.Debug("frame skipped", "error", err)
	}

	if e.profilingEnabled {
		e.profiler.Tick()
	}

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(e.lastRender); remaining > 0 {
			time.Sleep(remaining)
		}
	}
	e.lastRender = time.Now()
}

// drainConfig applies the newest pending config from the source without blocking.
func (e *engine) drainConfig() {
	if e.source == nil {
		return
	}
	select {
	case cfg := <-e.source.Updates():
		e.ApplyConfig(cfg)
	default:
	}
	select {
	case err := <-e.source.Errors():
		e.logger.Warn("config reload failed", "error", err)
	default:
	}
}

// applyPending performs window actions requested from input callbacks. They run here,
// outside any callback, because GLFW re-enters the event handler while changing monitors.
func (e *engine) applyPending() {
	e.mu.Lock()
	fullscreen, closeRequested, panelSync := e.pendingFullscreen, e.pendingClose, e.pendingPanelSync
	e.pendingFullscreen, e.pendingClose, e.pendingPanelSync = false, false, false
	e.mu.Unlock()

	if panelSync {
		e.syncPanel()
	}

	if fullscreen {
		on := e.window.ToggleFullscreen()
		e.logger.Info("fullscreen toggled", "on", on)
	}
	if closeRequested {
		e.Quit()
	}
}

// syncPanel routes the panel keys to the building panel only while the massing view is shown.
func (e *engine) syncPanel() {
	if e.scene.Massing() {
		e.input.SetPanel(e.scene.Panel())
		return
	}
	e.input.SetPanel(nil)
}

// ensureMapTexture uploads the selected map the first time it is drawn.
func (e *engine) ensureMapTexture(f scene.Frame) {
	if !f.MapValid || e.renderer.HasMapTexture(f.MapIndex) {
		return
	}
	textures := e.scene.Textures()
	staging, ok := textures.Current()
	if !ok {
		return
	}
	if err := e.renderer.UploadMapTexture(f.MapIndex, *staging); err != nil {
		e.logger.Warn("map texture upload failed", "path", textures.Path(f.MapIndex), "error", err)
		return
	}
	e.logger.Debug("map texture uploaded", "path", textures.Path(f.MapIndex))
}

// release tears down in reverse order of creation.
func (e *engine) release() error {
	var errs []error
	if e.source != nil {
		if err := e.source.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close config source: %w", err))
		}
	}
	if e.renderer != nil {
		e.renderer.Release()
	}
	if e.window != nil {
		if err := e.window.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close window: %w", err))
		}
	}
	return errors.Join(errs...)
}

func presentMode(vsync bool) renderer.PresentMode {
	if vsync {
		return renderer.PresentModeVSync
	}
	return renderer.PresentModeUncapped
}

func clearColor(cfg config.Config) common.Color {
	c := cfg.Window.ClearColor
	return common.RGB(c[0], c[1], c[2])
}
