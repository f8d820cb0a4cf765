package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/go-gl/mathgl/mgl32"
)

// orbitCameraImpl is the implementation of OrbitCamera.
// The eye always sits on a sphere of the current radius around the pivot; yaw and pitch
// select the point on that sphere. View and projection are derived on demand.
type orbitCameraImpl struct {
	mu *sync.Mutex

	cfg Config

	pivot  mgl32.Vec3
	yaw    float32 // degrees, unbounded
	pitch  float32 // degrees, clamped to [cfg.MinPitch, cfg.MaxPitch]
	radius float32
	fov    float32

	lastPointer  mgl32.Vec2
	dragBaseline bool
}

// OrbitCamera is an orbit/pan/zoom camera around a movable pivot point.
// It turns raw input (pointer positions, scroll deltas, key ticks, viewport sizes)
// into bounded camera state and produces view and projection matrices from it.
type OrbitCamera interface {
	// Reset restores pivot, yaw, pitch, radius and fov to their configured initial values
	// and re-seeds the pointer baseline at the viewport centre.
	//
	// Parameters:
	//   - width: viewport width in pixels
	//   - height: viewport height in pixels
	Reset(width, height int)

	// BeginDrag marks the start of a pointer gesture. The next PointerMove sample
	// is used as a baseline only.
	BeginDrag()

	// PointerMove applies a pointer sample. While panHeld is true the pivot slides along
	// the camera's right axis and world Y, otherwise yaw and pitch change.
	//
	// Parameters:
	//   - x: pointer X in window pixels
	//   - y: pointer Y in window pixels (down is positive)
	//   - panHeld: whether the pan modifier is held
	PointerMove(x, y float32, panHeld bool)

	// Scroll moves the eye toward (positive delta) or away from the pivot, clamped to the radius bounds.
	//
	// Parameters:
	//   - delta: scroll ticks
	Scroll(delta float32)

	// KeyRotate applies one keyboard rotation tick, scaled by KeyRotateSpeed.
	//
	// Parameters:
	//   - yawDelta: yaw direction (typically -1, 0 or 1)
	//   - pitchDelta: pitch direction (typically -1, 0 or 1)
	KeyRotate(yawDelta, pitchDelta float32)

	// KeyPan moves the pivot along world axes by dir scaled by KeyPanSpeed.
	// Only the vertical component is clamped.
	//
	// Parameters:
	//   - dir: direction in world space
	KeyPan(dir mgl32.Vec3)

	// UpdateScreenSize re-centres the pointer baseline after a viewport change.
	// No other state is affected.
	//
	// Parameters:
	//   - width: new viewport width in pixels
	//   - height: new viewport height in pixels
	UpdateScreenSize(width, height int)

	// ViewMatrix returns the world-to-view transform looking from the eye at the pivot.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns a perspective projection in OpenGL clip conventions.
	// Callers must substitute 1.0 for the aspect of a zero-height viewport.
	//
	// Parameters:
	//   - aspect: viewport width divided by height
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix(aspect float32) mgl32.Mat4

	// Position returns the world-space eye position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Position() mgl32.Vec3

	// Pivot returns the world-space look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: the pivot
	Pivot() mgl32.Vec3

	// Yaw returns the horizontal orbit angle in degrees.
	Yaw() float32

	// Pitch returns the vertical orbit angle in degrees.
	Pitch() float32

	// Radius returns the eye distance from the pivot.
	Radius() float32

	// Fov returns the vertical field of view in degrees.
	Fov() float32

	// Config returns the active tunables.
	Config() Config

	// SetConfig replaces the tunables and re-clamps the current state into the new bounds.
	// Pose and pointer baseline are otherwise kept.
	//
	// Parameters:
	//   - cfg: the new tunables
	SetConfig(cfg Config)
}

// Compile-time interface compliance check
var _ OrbitCamera = &orbitCameraImpl{}

// NewOrbitCamera creates an orbit camera in its reset state for a viewport of the given size.
//
// Parameters:
//   - width: viewport width in pixels
//   - height: viewport height in pixels
//   - options: functional options to configure the camera
//
// Returns:
//   - OrbitCamera: the newly created camera
func NewOrbitCamera(width, height int, options ...OrbitCameraOption) OrbitCamera {
	oc := &orbitCameraImpl{
		mu:  &sync.Mutex{},
		cfg: DefaultConfig(),
	}

	for _, option := range options {
		option(oc)
	}

	oc.reset(width, height)
	return oc
}

// --- internal helpers ---

// reset restores the configured initial pose.
// Caller must hold the mutex.
func (oc *orbitCameraImpl) reset(width, height int) {
	oc.pivot = oc.cfg.InitialPivot
	oc.yaw = oc.cfg.InitialYaw
	oc.pitch = oc.cfg.InitialPitch
	oc.radius = oc.cfg.InitialRadius
	oc.fov = oc.cfg.Fov
	oc.recenter(width, height)
	oc.clampAll()
}

// recenter moves the pointer baseline to the viewport centre and arms the baseline flag.
// Caller must hold the mutex.
func (oc *orbitCameraImpl) recenter(width, height int) {
	oc.lastPointer = mgl32.Vec2{float32(width) / 2, float32(height) / 2}
	oc.dragBaseline = true
}

// rotate is shared by pointer and keyboard rotation.
// Caller must hold the mutex.
func (oc *orbitCameraImpl) rotate(yawDelta, pitchDelta float32) {
	oc.yaw += yawDelta
	oc.pitch = common.Clamp(oc.pitch+pitchDelta, oc.cfg.MinPitch, oc.cfg.MaxPitch)
}

// clampAll enforces the pitch, radius and pivot height bounds.
// Caller must hold the mutex.
func (oc *orbitCameraImpl) clampAll() {
	oc.pitch = common.Clamp(oc.pitch, oc.cfg.MinPitch, oc.cfg.MaxPitch)
	oc.radius = common.Clamp(oc.radius, oc.cfg.MinRadius, oc.cfg.MaxRadius)
	oc.pivot[1] = common.Clamp(oc.pivot[1], oc.cfg.MinPivotY, oc.cfg.MaxPivotY)
}

// right returns the horizontal screen-right axis used for pointer panning.
// Caller must hold the mutex.
func (oc *orbitCameraImpl) right() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(oc.yaw))
	pitch := float64(mgl32.DegToRad(oc.pitch))
	forward := mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}.Normalize()
	return forward.Cross(common.WorldUp).Normalize()
}

// eye computes the world-space eye position.
// Caller must hold the mutex.
func (oc *orbitCameraImpl) eye() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(oc.yaw))
	pitch := float64(mgl32.DegToRad(oc.pitch))
	offset := mgl32.Vec3{
		float32(math.Cos(pitch) * math.Sin(yaw)),
		float32(math.Sin(pitch)),
		float32(math.Cos(pitch) * math.Cos(yaw)),
	}
	return oc.pivot.Add(offset.Mul(oc.radius))
}

// --- OrbitCamera implementation ---

func (oc *orbitCameraImpl) Reset(width, height int) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.reset(width, height)
}

func (oc *orbitCameraImpl) BeginDrag() {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.dragBaseline = true
}

func (oc *orbitCameraImpl) PointerMove(x, y float32, panHeld bool) {
	oc.mu.Lock()
	defer oc.mu.Unlock()

	if oc.dragBaseline {
		oc.lastPointer = mgl32.Vec2{x, y}
		oc.dragBaseline = false
		return
	}

	// screen Y grows downward, so dy is inverted to make "drag up" positive
	dx := (x - oc.lastPointer.X()) * oc.cfg.PointerSensitivity
	dy := (oc.lastPointer.Y() - y) * oc.cfg.PointerSensitivity
	oc.lastPointer = mgl32.Vec2{x, y}

	if panHeld {
		oc.pivot = oc.pivot.Add(oc.right().Mul(dx * oc.cfg.PanSpeed))
		oc.pivot[1] -= dy * oc.cfg.PanSpeed
	} else {
		oc.rotate(dx, dy)
	}
	oc.clampAll()
}

func (oc *orbitCameraImpl) Scroll(delta float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.radius = common.Clamp(oc.radius-delta*oc.cfg.ScrollSensitivity, oc.cfg.MinRadius, oc.cfg.MaxRadius)
}

func (oc *orbitCameraImpl) KeyRotate(yawDelta, pitchDelta float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.rotate(yawDelta*oc.cfg.KeyRotateSpeed, pitchDelta*oc.cfg.KeyRotateSpeed)
}

func (oc *orbitCameraImpl) KeyPan(dir mgl32.Vec3) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	movement := dir.Mul(oc.cfg.KeyPanSpeed)
	oc.pivot[0] += movement.X()
	oc.pivot[2] += movement.Z()
	oc.pivot[1] = common.Clamp(oc.pivot[1]+movement.Y(), oc.cfg.MinPivotY, oc.cfg.MaxPivotY)
}

func (oc *orbitCameraImpl) UpdateScreenSize(width, height int) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.recenter(width, height)
}

func (oc *orbitCameraImpl) ViewMatrix() mgl32.Mat4 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return mgl32.LookAtV(oc.eye(), oc.pivot, common.WorldUp)
}

func (oc *orbitCameraImpl) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return mgl32.Perspective(mgl32.DegToRad(oc.fov), aspect, oc.cfg.Near, oc.cfg.Far)
}

func (oc *orbitCameraImpl) Position() mgl32.Vec3 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.eye()
}

func (oc *orbitCameraImpl) Pivot() mgl32.Vec3 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.pivot
}

func (oc *orbitCameraImpl) Yaw() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.yaw
}

func (oc *orbitCameraImpl) Pitch() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.pitch
}

func (oc *orbitCameraImpl) Radius() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.radius
}

func (oc *orbitCameraImpl) Fov() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.fov
}

func (oc *orbitCameraImpl) Config() Config {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.cfg
}

func (oc *orbitCameraImpl) SetConfig(cfg Config) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.cfg = cfg
	oc.fov = cfg.Fov
	oc.clampAll()
}
