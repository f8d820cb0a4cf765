package renderer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	calls    []string
	maps     map[int]bool
	draws    []byte
	camera   []byte
	beginErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{maps: map[int]bool{}}
}

func (f *fakeBackend) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeBackend) SetPresentMode(m PresentMode) { f.record("PresentMode(%d)", m) }
func (f *fakeBackend) CreatePipelines() error { return nil }
func (f *fakeBackend) HasMapTexture(i int) bool { return f.maps[i] }
func (f *fakeBackend) DrawOverlay() { f.record("DrawOverlay") }
func (f *fakeBackend) EndFrame() { f.record("EndFrame") }
func (f *fakeBackend) Present() { f.record("Present") }
func (f *fakeBackend) Release() { f.record("Release") }

func (f *fakeBackend) ConfigureSurface(w, h int) error {
	f.record("Configure(%d,%d)", w, h)
	return nil
}

func (f *fakeBackend) CreateMapTexture(i int, _ common.TextureStagingData) error {
	f.maps[i] = true
	f.record("CreateMap(%d)", i)
	return nil
}

func (f *fakeBackend) WriteOverlay(img *image.RGBA) error {
	f.record("WriteOverlay(%dx%d)", img.Bounds().Dx(), img.Bounds().Dy())
	return nil
}

func (f *fakeBackend) WriteUniforms(camera, draws []byte, count int) error {
	f.camera, f.draws = camera, draws
	f.record("WriteUniforms(%d)", count)
	return nil
}

func (f *fakeBackend) BeginFrame(c common.Color) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	f.record("BeginFrame(%g,%g,%g)", c[0], c[1], c[2])
	return nil
}

func (f *fakeBackend) Draw(kind scene.DrawKind, slot, mapIndex int) {
	f.record("Draw(%d,%d,%d)", kind, slot, mapIndex)
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestRenderer(b *fakeBackend) *renderer {
	r := newRenderer(b, WithLogger(quiet))
	r.width, r.height = 800, 600
	return r
}

func mapFrame() scene.Frame {
	return scene.Frame{
		Width: 800, Height: 600,
		View:       mgl32.Ident4(),
		Projection: mgl32.Ident4(),
		ClearColor: common.RGB(0.5, 0.25, 1),
		Items:      []scene.DrawItem{{Kind: scene.DrawMap, Model: mgl32.Ident4(), Color: common.RGB(1, 1, 1)}},
		MapIndex:   2,
		MapValid:   true,
	}
}

func TestRenderMapFrame(t *testing.T) {
	b := newFakeBackend()
	r := newTestRenderer(b)
	require.NoError(t, r.UploadMapTexture(2, common.TextureStagingData{Pixels: make([]byte, 4), Width: 1, Height: 1}))
	b.calls = nil

	require.NoError(t, r.Render(mapFrame()))
	assert.Equal(t, []string{
		"WriteUniforms(1)",
		"BeginFrame(0.5,0.25,1)",
		"Draw(0,0,2)",
		"EndFrame",
		"Present",
	}, b.calls)
	assert.Len(t, b.camera, 80)
	assert.Len(t, b.draws, drawUniformStride)
}

func TestRenderFallsBackForMissingTexture(t *testing.T) {
	b := newFakeBackend()
	r := newTestRenderer(b)

	require.NoError(t, r.Render(mapFrame()))
	assert.Contains(t, b.calls, "Draw(0,0,-1)")

	f := mapFrame()
	f.MapValid = false
	b.maps[2] = true
	require.NoError(t, r.Render(f))
	assert.Contains(t, b.calls, "Draw(0,0,-1)")
}

func TestRenderOverlayAndResize(t *testing.T) {
	b := newFakeBackend()
	r := newTestRenderer(b)

	f := mapFrame()
	f.Width, f.Height = 640, 480
	f.Overlay = image.NewRGBA(image.Rect(0, 0, 640, 480))
	f.OverlayChanged = true
	f.OverlayVisible = true
	require.NoError(t, r.Render(f))
	assert.Equal(t, "Configure(640,480)", b.calls[0])
	assert.Equal(t, "WriteOverlay(640x480)", b.calls[1])
	assert.Contains(t, b.calls, "DrawOverlay")

	// an unchanged overlay is not re-uploaded, and an invisible one is not drawn
	b.calls = nil
	f.OverlayChanged = false
	f.OverlayVisible = false
	require.NoError(t, r.Render(f))
	assert.NotContains(t, b.calls, "WriteOverlay(640x480)")
	assert.NotContains(t, b.calls, "DrawOverlay")
}

func TestRenderSkipsEmptyViewport(t *testing.T) {
	b := newFakeBackend()
	r := newTestRenderer(b)
	f := mapFrame()
	f.Height = 0
	require.NoError(t, r.Render(f))
	assert.Empty(t, b.calls)
}

func TestRenderReportsAcquireFailure(t *testing.T) {
	b := newFakeBackend()
	b.beginErr = errors.New("surface lost")
	r := newTestRenderer(b)
	err := r.Render(mapFrame())
	require.Error(t, err)
	assert.ErrorIs(t, err, b.beginErr)
	assert.NotContains(t, b.calls, "Present")
}

func TestUploadRejectsInvalidStaging(t *testing.T) {
	r := newTestRenderer(newFakeBackend())
	assert.Error(t, r.UploadMapTexture(0, common.TextureStagingData{Width: 2, Height: 2}))
	assert.False(t, r.HasMapTexture(0))
}

func TestPresentModeReconfigures(t *testing.T) {
	b := newFakeBackend()
	r := newTestRenderer(b)
	r.SetPresentMode(PresentModeVSync)
	assert.Empty(t, b.calls)
	r.SetPresentMode(PresentModeUncapped)
	assert.Equal(t, []string{"PresentMode(1)", "Configure(800,600)"}, b.calls)
}

func TestRelease(t *testing.T) {
	b := newFakeBackend()
	r := newTestRenderer(b)
	r.Release()
	r.Release()
	assert.Equal(t, []string{"Release"}, b.calls)

	assert.ErrorIs(t, r.Render(scene.Frame{Width: 1, Height: 1}), ErrReleased)
	assert.False(t, r.HasMapTexture(0))
	r.Resize(10, 10)
	r.SetPresentMode(PresentModeUncapped)
}

func TestPackDrawUniforms(t *testing.T) {
	items := []scene.DrawItem{
		{Kind: scene.DrawSolid, Model: mgl32.Translate3D(1, 2, 3), Color: common.Color{0.1, 0.2, 0.3, 0.4}},
		{Kind: scene.DrawWire, Model: mgl32.Ident4(), Color: common.RGB(0, 0, 0)},
	}
	buf := packDrawUniforms(items)
	require.Len(t, buf, 2*drawUniformStride)

	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	// column-major translation lives in elements 12..14
	assert.Equal(t, float32(1), f(12*4))
	assert.Equal(t, float32(3), f(14*4))
	assert.Equal(t, float32(0.4), f(64+12))
	assert.Equal(t, float32(1), f(drawUniformStride))
	assert.Equal(t, float32(1), f(drawUniformStride+64+12))

	var u GPUDrawUniform
	assert.Equal(t, 80, u.Size())
}

func TestParseMSAA(t *testing.T) {
	assert.Equal(t, MSAAOff, ParseMSAA(0))
	assert.Equal(t, MSAAOff, ParseMSAA(1))
	assert.Equal(t, MSAA4x, ParseMSAA(4))
	assert.Equal(t, MSAA4x, ParseMSAA(8))
}
