package input

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/building"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCamera struct {
	calls []string
}

func (f *fakeCamera) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeCamera) Reset(w, h int) { f.record("Reset(%d,%d)", w, h) }
func (f *fakeCamera) BeginDrag() { f.record("BeginDrag") }
func (f *fakeCamera) Scroll(d float32) { f.record("Scroll(%g)", d) }
func (f *fakeCamera) KeyRotate(y, p float32) { f.record("KeyRotate(%g,%g)", y, p) }
func (f *fakeCamera) KeyPan(dir mgl32.Vec3) { f.record("KeyPan(%g,%g,%g)", dir[0], dir[1], dir[2]) }
func (f *fakeCamera) UpdateScreenSize(w, h int) { f.record("UpdateScreenSize(%d,%d)", w, h) }
func (f *fakeCamera) PointerMove(x, y float32, pan bool) {
	f.record("PointerMove(%g,%g,%t)", x, y, pan)
}

type fakeActions struct {
	calls    []string
	keysDown map[int]bool
}

func (f *fakeActions) ToggleHelp() { f.calls = append(f.calls, "ToggleHelp") }
func (f *fakeActions) CycleMap() { f.calls = append(f.calls, "CycleMap") }
func (f *fakeActions) ToggleFullscreen() { f.calls = append(f.calls, "ToggleFullscreen") }
func (f *fakeActions) ToggleMassing() { f.calls = append(f.calls, "ToggleMassing") }
func (f *fakeActions) Close() { f.calls = append(f.calls, "Close") }
func (f *fakeActions) FramebufferSize() (int, int) { return 1280, 720 }
func (f *fakeActions) KeyDown(key int) bool { return f.keysDown[key] }
func (f *fakeActions) Resized(w, h int) { f.calls = append(f.calls, fmt.Sprintf("Resized(%d,%d)", w, h)) }

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestHandler() (Handler, *fakeCamera, *fakeActions) {
	cam := &fakeCamera{}
	act := &fakeActions{keysDown: map[int]bool{}}
	return NewHandler(cam, act, WithLogger(quiet)), cam, act
}

func TestCameraKeyBindings(t *testing.T) {
	cases := []struct {
		key  int
		want string
	}{
		{common.KeyUp, "KeyRotate(0,1)"},
		{common.KeyDown, "KeyRotate(0,-1)"},
		{common.KeyLeft, "KeyRotate(-1,0)"},
		{common.KeyRight, "KeyRotate(1,0)"},
		{common.KeyW, "KeyPan(0,0,-1)"},
		{common.KeyS, "KeyPan(0,0,1)"},
		{common.KeyA, "KeyPan(-1,0,0)"},
		{common.KeyD, "KeyPan(1,0,0)"},
		{common.KeyQ, "KeyPan(0,-1,0)"},
		{common.KeyE, "KeyPan(0,1,0)"},
	}
	for _, tc := range cases {
		h, cam, _ := newTestHandler()
		h.KeyEvent(tc.key, 0, common.ActionPress, 0)
		h.KeyEvent(tc.key, 0, common.ActionRepeat, 0)
		h.KeyEvent(tc.key, 0, common.ActionRelease, 0)
		assert.Equal(t, []string{tc.want, tc.want}, cam.calls, "key %d", tc.key)
	}
}

func TestCommandKeysFireOnPressOnly(t *testing.T) {
	cases := map[int]string{
		common.KeyF11:   "ToggleFullscreen",
		common.KeyEsc:   "Close",
		common.KeySpace: "CycleMap",
		common.KeyH:     "ToggleHelp",
		common.KeyP:     "ToggleMassing",
	}
	for key, want := range cases {
		h, cam, act := newTestHandler()
		h.KeyEvent(key, 0, common.ActionPress, 0)
		h.KeyEvent(key, 0, common.ActionRepeat, 0)
		h.KeyEvent(key, 0, common.ActionRelease, 0)
		assert.Equal(t, []string{want}, act.calls)
		assert.Empty(t, cam.calls)
	}
}

func TestTabResetsToFramebufferSize(t *testing.T) {
	h, cam, _ := newTestHandler()
	h.KeyEvent(common.KeyTab, 0, common.ActionPress, 0)
	h.KeyEvent(common.KeyTab, 0, common.ActionRepeat, 0)
	assert.Equal(t, []string{"Reset(1280,720)"}, cam.calls)
}

func TestPointerOnlyWhileDragging(t *testing.T) {
	h, cam, _ := newTestHandler()
	h.CursorMoved(10, 20)
	assert.Empty(t, cam.calls)

	h.MouseButton(common.MouseButtonRight, common.ActionPress, 0)
	h.CursorMoved(10, 20)
	assert.Empty(t, cam.calls)
	assert.False(t, h.Dragging())

	h.MouseButton(common.MouseButtonLeft, common.ActionPress, 0)
	assert.True(t, h.Dragging())
	h.CursorMoved(10, 20)
	h.MouseButton(common.MouseButtonLeft, common.ActionRelease, 0)
	h.CursorMoved(30, 40)

	assert.Equal(t, []string{"BeginDrag", "PointerMove(10,20,false)"}, cam.calls)
}

func TestShiftSelectsPan(t *testing.T) {
	h, cam, act := newTestHandler()
	h.MouseButton(common.MouseButtonLeft, common.ActionPress, 0)

	h.KeyEvent(common.KeyRightShift, 0, common.ActionPress, common.ModShift)
	h.CursorMoved(1, 1)
	h.KeyEvent(common.KeyRightShift, 0, common.ActionRelease, 0)
	h.CursorMoved(2, 2)

	// shift held before the window gained focus is seen through KeyDown
	act.keysDown[common.KeyLeftShift] = true
	h.CursorMoved(3, 3)

	assert.Equal(t, []string{
		"BeginDrag",
		"PointerMove(1,1,true)",
		"PointerMove(2,2,false)",
		"PointerMove(3,3,true)",
	}, cam.calls)
}

func TestScrollAndResize(t *testing.T) {
	h, cam, act := newTestHandler()
	h.Scrolled(4, -2)
	h.Resized(640, 480)
	assert.Equal(t, []string{"Scroll(-2)", "UpdateScreenSize(640,480)"}, cam.calls)
	assert.Equal(t, []string{"Resized(640,480)"}, act.calls)
}

func TestPanelKeys(t *testing.T) {
	h, _, _ := newTestHandler()
	panel := building.NewPanel(building.New())

	// detached panel ignores its keys
	h.KeyEvent(common.KeyEqual, 0, common.ActionPress, 0)
	assert.Equal(t, "Total Height: 10.50 meters", panel.Summary())

	h.SetPanel(panel)
	h.KeyEvent(common.KeyEqual, 0, common.ActionPress, 0)
	h.KeyEvent(common.KeyEqual, 0, common.ActionRepeat, 0)
	h.KeyEvent(common.KeyMinus, 0, common.ActionPress, 0)
	h.KeyEvent(common.KeyRightBracket, 0, common.ActionPress, 0)
	h.KeyEvent(common.KeyRightBracket, 0, common.ActionRepeat, 0)
	h.KeyEvent(common.KeyLeftBracket, 0, common.ActionPress, 0)
	// 4 floors of 4.0
	assert.Equal(t, "Total Height: 16.00 meters", panel.Summary())

	h.KeyEvent(common.KeyY, 0, common.ActionPress, 0)
	h.KeyEvent(common.KeyY, 0, common.ActionRepeat, 0)
	h.KeyEvent(common.KeyEnter, 0, common.ActionPress, 0)
	b := panel.Building()
	assert.Equal(t, building.Residential, b.Type)
	assert.Equal(t, 4, b.Floors)
	assert.Equal(t, float32(2.5), b.FAR)
}

func TestDrivesRealCamera(t *testing.T) {
	cam := camera.NewOrbitCamera(800, 600)
	act := &fakeActions{keysDown: map[int]bool{}}
	h := NewHandler(cam, act, WithLogger(quiet))

	h.MouseButton(common.MouseButtonLeft, common.ActionPress, 0)
	h.CursorMoved(100, 100)
	h.CursorMoved(150, 100)
	require.InDelta(t, 10, cam.Yaw(), 1e-4)

	h.KeyEvent(common.KeyTab, 0, common.ActionPress, 0)
	assert.Equal(t, float32(0), cam.Yaw())
}
