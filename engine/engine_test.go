package engine

import (
	"context"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine/building"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindow struct {
	width, height int
	running       bool
	fullscreen    bool
	closed        bool
	iterations    int
	onIteration   func(i int)
	update        func()
	handler       window.EventHandler
}

func (w *fakeWindow) SetUpdateCallback(cb func()) { w.update = cb }
func (w *fakeWindow) SetEventHandler(h window.EventHandler) { w.handler = h }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *fakeWindow) IsRunning() bool { return w.running }
func (w *fakeWindow) RequestClose() { w.running = false }
func (w *fakeWindow) FramebufferSize() (int, int) { return w.width, w.height }
func (w *fakeWindow) KeyDown(int) bool { return false }
func (w *fakeWindow) Fullscreen() bool { return w.fullscreen }
func (w *fakeWindow) Width() int { return w.width }
func (w *fakeWindow) Height() int { return w.height }

func (w *fakeWindow) Close() error {
	w.closed = true
	w.running = false
	return nil
}

func (w *fakeWindow) ToggleFullscreen() bool {
	w.fullscreen = !w.fullscreen
	if w.fullscreen {
		w.width, w.height = 1920, 1080
	} else {
		w.width, w.height = 800, 600
	}
	// GLFW reports the new framebuffer size from inside SetMonitor
	if w.handler != nil {
		w.handler.Resized(w.width, w.height)
	}
	return w.fullscreen
}

func (w *fakeWindow) ProcessMessages() {
	for i := 0; w.running && i < w.iterations; i++ {
		if w.onIteration != nil {
			w.onIteration(i)
		}
		if w.update != nil {
			w.update()
		}
	}
}

type fakeRenderer struct {
	frames   []scene.Frame
	uploads  []int
	modes    []renderer.PresentMode
	released bool
}

func (r *fakeRenderer) Resize(int, int) {}
func (r *fakeRenderer) SetPresentMode(m renderer.PresentMode) { r.modes = append(r.modes, m) }
func (r *fakeRenderer) Release() { r.released = true }

func (r *fakeRenderer) HasMapTexture(index int) bool {
	for _, u := range r.uploads {
		if u == index {
			return true
		}
	}
	return false
}

func (r *fakeRenderer) UploadMapTexture(index int, _ common.TextureStagingData) error {
	r.uploads = append(r.uploads, index)
	return nil
}

func (r *fakeRenderer) Render(f scene.Frame) error {
	r.frames = append(r.frames, f)
	return nil
}

type fakeSource struct {
	updates chan config.Config
	errs    chan error
	closed  bool
}

func (s *fakeSource) Updates() <-chan config.Config { return s.updates }
func (s *fakeSource) Errors() <-chan error { return s.errs }

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	require.NoError(t, f.Close())
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Maps.Paths = []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "missing.png"),
		filepath.Join(dir, "b.png"),
	}
	writePNG(t, cfg.Maps.Paths[0])
	writePNG(t, cfg.Maps.Paths[2])
	return cfg
}

func newTestEngine(t *testing.T, options ...EngineBuilderOption) (*engine, *fakeWindow, *fakeRenderer) {
	t.Helper()
	w := &fakeWindow{width: 800, height: 600, running: true, iterations: 1}
	r := &fakeRenderer{}
	options = append([]EngineBuilderOption{
		WithConfig(testConfig(t)),
		WithLogger(quiet),
		WithWindow(w),
		WithRenderer(r),
	}, options...)
	e, err := NewEngine(context.Background(), options...)
	require.NoError(t, err)
	return e.(*engine), w, r
}

func press(w *fakeWindow, key int) {
	w.handler.KeyEvent(key, 0, common.ActionPress, 0)
}

func TestNewEngineWiresComponents(t *testing.T) {
	e, w, _ := newTestEngine(t)

	assert.Same(t, e.Input(), w.handler)
	textures := e.Scene().Textures()
	assert.Equal(t, 3, textures.Len())
	assert.Equal(t, 2, textures.ValidCount())
	assert.False(t, e.Scene().Massing())
	assert.Equal(t, float32(45), e.Scene().Camera().Fov())
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Window.Width = 0
	_, err := NewEngine(context.Background(), WithConfig(cfg), WithLogger(quiet),
		WithWindow(&fakeWindow{}), WithRenderer(&fakeRenderer{}))
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestNewEngineReleasesOnRendererFailure(t *testing.T) {
	src := &fakeSource{updates: make(chan config.Config), errs: make(chan error)}
	w := &fakeWindow{width: 800, height: 600, running: true}

	// the fake window has no surface, so the renderer cannot be created
	_, err := NewEngine(context.Background(), WithConfig(testConfig(t)), WithLogger(quiet),
		WithWindow(w), WithConfigSource(src))
	assert.ErrorIs(t, err, renderer.ErrNoSurface)
	assert.True(t, src.closed)
	assert.True(t, w.closed)
}

func TestNewEngineReleasesSourceOnInvalidConfig(t *testing.T) {
	src := &fakeSource{updates: make(chan config.Config), errs: make(chan error)}
	cfg := config.Default()
	cfg.Maps.Paths = nil

	_, err := NewEngine(context.Background(), WithConfig(cfg), WithLogger(quiet),
		WithWindow(&fakeWindow{}), WithRenderer(&fakeRenderer{}), WithConfigSource(src))
	assert.ErrorIs(t, err, config.ErrInvalid)
	assert.True(t, src.closed)
}

func TestPanelApplyUpdatesSite(t *testing.T) {
	e, w, _ := newTestEngine(t)
	w.iterations = 3
	w.onIteration = func(i int) {
		switch i {
		case 0:
			press(w, common.KeyP)
		case 1:
			press(w, common.KeyEqual)
			press(w, common.KeyY)
		case 2:
			press(w, common.KeyEnter)
		}
	}

	require.Len(t, e.Site().Buildings(), 1)
	assert.Equal(t, 3, e.Site().Buildings()[0].Floors)

	require.NoError(t, e.Run(context.Background()))
	placed := e.Site().Buildings()
	require.Len(t, placed, 1)
	assert.Equal(t, 4, placed[0].Floors)
	assert.Equal(t, building.Residential, placed[0].Type)
	assert.Equal(t, e.Scene().Panel().Building(), *placed[0])
}

func TestRunDrawsAndReleases(t *testing.T) {
	e, w, r := newTestEngine(t)
	w.iterations = 3

	require.NoError(t, e.Run(context.Background()))
	require.Len(t, r.frames, 3)
	assert.Equal(t, []int{0}, r.uploads)
	assert.True(t, r.frames[0].MapValid)
	assert.Equal(t, common.RGB(0.1, 0.1, 0.2), r.frames[0].ClearColor)
	assert.True(t, r.released)
	assert.True(t, w.closed)
}

func TestCycleMapSkipsInvalidAndUploadsOnce(t *testing.T) {
	e, w, r := newTestEngine(t)
	w.iterations = 3
	w.onIteration = func(i int) {
		if i > 0 {
			press(w, common.KeySpace)
		}
	}

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, 0, r.frames[0].MapIndex)
	assert.Equal(t, 2, r.frames[1].MapIndex)
	assert.Equal(t, 0, r.frames[2].MapIndex)
	assert.Equal(t, []int{0, 2}, r.uploads)
}

func TestFullscreenAppliedOnTick(t *testing.T) {
	e, w, r := newTestEngine(t)
	w.iterations = 2
	w.onIteration = func(i int) {
		if i == 0 {
			press(w, common.KeyF11)
			// deferred until the tick
			assert.False(t, w.fullscreen)
		}
	}

	require.NoError(t, e.Run(context.Background()))
	assert.True(t, w.fullscreen)
	assert.Equal(t, 1920, r.frames[0].Width)
	assert.Equal(t, 1080, r.frames[1].Height)
}

func TestEscapeStopsLoop(t *testing.T) {
	e, w, r := newTestEngine(t)
	w.iterations = 10
	w.onIteration = func(i int) {
		if i == 1 {
			press(w, common.KeyEsc)
		}
	}

	require.NoError(t, e.Run(context.Background()))
	assert.Len(t, r.frames, 1)
	assert.True(t, w.closed)
}

func TestCancelledContextStopsLoop(t *testing.T) {
	e, w, r := newTestEngine(t)
	w.iterations = 10
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, e.Run(ctx))
	assert.Empty(t, r.frames)
}

func TestMassingRoutesPanelKeys(t *testing.T) {
	e, w, r := newTestEngine(t)
	w.iterations = 3
	w.onIteration = func(i int) {
		switch i {
		case 0:
			// panel keys are ignored in the map view
			press(w, common.KeyEqual)
			press(w, common.KeyP)
		case 1:
			press(w, common.KeyEqual)
		}
	}

	require.NoError(t, e.Run(context.Background()))
	assert.True(t, e.Scene().Massing())
	assert.Equal(t, "Total Height: 14.00 meters", e.Scene().Panel().Summary())
	last := r.frames[len(r.frames)-1]
	assert.Equal(t, scene.DrawSolid, last.Items[0].Kind)
	assert.True(t, last.OverlayVisible)
}

func TestConfigReload(t *testing.T) {
	src := &fakeSource{updates: make(chan config.Config, 1), errs: make(chan error, 1)}
	level := &slog.LevelVar{}
	e, w, r := newTestEngine(t, WithConfigSource(src), WithLogLevel(level))
	w.iterations = 2

	next := e.Config()
	next.Window.ClearColor = mgl32.Vec3{1, 0, 0}
	next.Window.VSync = false
	next.Camera.Fov = 60
	next.LogLevel = "debug"
	w.onIteration = func(i int) {
		if i == 1 {
			src.updates <- next
		}
	}

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, common.RGB(0.1, 0.1, 0.2), r.frames[0].ClearColor)
	assert.Equal(t, common.RGB(1, 0, 0), r.frames[1].ClearColor)
	assert.Equal(t, float32(60), e.Scene().Camera().Fov())
	assert.Equal(t, []renderer.PresentMode{renderer.PresentModeUncapped}, r.modes)
	assert.Equal(t, slog.LevelDebug, level.Level())
	assert.True(t, src.closed)
}
