package camera

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-4

func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range 3 {
		assert.InDelta(t, want[i], got[i], eps, "component %d of %v vs %v", i, want, got)
	}
}

func assertInBounds(t *testing.T, oc OrbitCamera) {
	t.Helper()
	cfg := oc.Config()
	assert.GreaterOrEqual(t, oc.Pitch(), cfg.MinPitch)
	assert.LessOrEqual(t, oc.Pitch(), cfg.MaxPitch)
	assert.GreaterOrEqual(t, oc.Radius(), cfg.MinRadius)
	assert.LessOrEqual(t, oc.Radius(), cfg.MaxRadius)
	assert.GreaterOrEqual(t, oc.Pivot().Y(), cfg.MinPivotY)
	assert.LessOrEqual(t, oc.Pivot().Y(), cfg.MaxPivotY)
}

func TestNewOrbitCameraDefaults(t *testing.T) {
	oc := NewOrbitCamera(800, 600)
	assert.Equal(t, float32(0), oc.Yaw())
	assert.Equal(t, float32(20), oc.Pitch())
	assert.Equal(t, float32(3), oc.Radius())
	assert.Equal(t, float32(45), oc.Fov())
	assertVec3(t, mgl32.Vec3{}, oc.Pivot())
}

func TestBoundsHoldUnderRandomInput(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	oc := NewOrbitCamera(800, 600)
	for range 5000 {
		switch rng.Intn(6) {
		case 0:
			oc.BeginDrag()
		case 1:
			oc.PointerMove(rng.Float32()*4000-2000, rng.Float32()*4000-2000, rng.Intn(2) == 0)
		case 2:
			oc.Scroll(rng.Float32()*200 - 100)
		case 3:
			oc.KeyRotate(float32(rng.Intn(21)-10), float32(rng.Intn(21)-10))
		case 4:
			oc.KeyPan(mgl32.Vec3{float32(rng.Intn(3) - 1), float32(rng.Intn(41) - 20), float32(rng.Intn(3) - 1)})
		case 5:
			oc.UpdateScreenSize(rng.Intn(2000), rng.Intn(2000))
		}
		assertInBounds(t, oc)
	}
}

func TestResetMatchesFreshCamera(t *testing.T) {
	oc := NewOrbitCamera(800, 600)
	oc.KeyRotate(3, 2)
	oc.KeyPan(mgl32.Vec3{4, 1, -2})
	oc.Scroll(-20)
	oc.BeginDrag()
	oc.PointerMove(10, 10, false)
	oc.PointerMove(200, 50, true)

	oc.Reset(1024, 768)
	fresh := NewOrbitCamera(1024, 768)

	assert.Equal(t, fresh.Yaw(), oc.Yaw())
	assert.Equal(t, fresh.Pitch(), oc.Pitch())
	assert.Equal(t, fresh.Radius(), oc.Radius())
	assert.Equal(t, fresh.Fov(), oc.Fov())
	assert.Equal(t, fresh.Pivot(), oc.Pivot())
	assert.Equal(t, fresh.ViewMatrix(), oc.ViewMatrix())

	// both treat the next sample as a baseline
	oc.PointerMove(5, 5, false)
	fresh.PointerMove(5, 5, false)
	assert.Equal(t, fresh.Yaw(), oc.Yaw())
	assert.Equal(t, fresh.Pitch(), oc.Pitch())
}

func TestFirstSampleIsBaselineOnly(t *testing.T) {
	cases := []struct {
		name  string
		setup func(oc OrbitCamera)
	}{
		{"after construction", func(oc OrbitCamera) {}},
		{"after BeginDrag", func(oc OrbitCamera) {
			oc.PointerMove(1, 1, false)
			oc.PointerMove(2, 2, false)
			oc.BeginDrag()
		}},
		{"after Reset", func(oc OrbitCamera) {
			oc.PointerMove(1, 1, false)
			oc.Reset(800, 600)
		}},
		{"after UpdateScreenSize", func(oc OrbitCamera) {
			oc.PointerMove(1, 1, false)
			oc.UpdateScreenSize(640, 480)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			oc := NewOrbitCamera(800, 600)
			tc.setup(oc)
			yaw, pitch, pivot := oc.Yaw(), oc.Pitch(), oc.Pivot()

			oc.PointerMove(1500, -300, false)
			assert.Equal(t, yaw, oc.Yaw())
			assert.Equal(t, pitch, oc.Pitch())
			assert.Equal(t, pivot, oc.Pivot())

			// the baseline sample is recorded: the next sample moves relative to it
			oc.PointerMove(1510, -300, false)
			assert.InDelta(t, yaw+10*0.2, oc.Yaw(), eps)
		})
	}
}

func TestPointerRotate(t *testing.T) {
	oc := NewOrbitCamera(800, 600)
	oc.PointerMove(100, 100, false)
	oc.PointerMove(150, 80, false)

	assert.InDelta(t, 50*0.2, oc.Yaw(), eps)
	assert.InDelta(t, 20+20*0.2, oc.Pitch(), eps)
}

func TestPointerPan(t *testing.T) {
	oc := NewOrbitCamera(800, 600, WithInitialPose(mgl32.Vec3{}, 0, 0, 3))
	oc.PointerMove(100, 100, true)
	oc.PointerMove(110, 90, true)

	// yaw 0 pitch 0: forward (1,0,0), right = forward x up = (0,0,1)
	dx := float32(10 * 0.2 * 0.01)
	dy := float32(10 * 0.2 * 0.01)
	assertVec3(t, mgl32.Vec3{0, -dy, dx}, oc.Pivot())
	assert.Equal(t, float32(0), oc.Yaw())
	assert.Equal(t, float32(0), oc.Pitch())
}

func TestPointerPanClampsPivotHeight(t *testing.T) {
	oc := NewOrbitCamera(800, 600)
	oc.PointerMove(0, 0, true)
	oc.PointerMove(0, -100000, true)
	assert.Equal(t, float32(-0.5), oc.Pivot().Y())
	oc.PointerMove(0, 100000, true)
	assert.Equal(t, float32(1), oc.Pivot().Y())
}

func TestScroll(t *testing.T) {
	oc := NewOrbitCamera(800, 600)
	oc.Scroll(5)
	assert.InDelta(t, 2.5, oc.Radius(), eps)
	oc.Scroll(1000)
	assert.Equal(t, float32(1), oc.Radius())
	oc.Scroll(-1000)
	assert.Equal(t, float32(10), oc.Radius())
}

func TestKeyRotateComposes(t *testing.T) {
	single := NewOrbitCamera(800, 600)
	single.KeyRotate(7, 0)

	stepped := NewOrbitCamera(800, 600)
	for range 7 {
		stepped.KeyRotate(1, 0)
	}

	assert.InDelta(t, single.Yaw(), stepped.Yaw(), eps)
	assert.InDelta(t, 70, stepped.Yaw(), eps)
	assert.Equal(t, single.Pitch(), stepped.Pitch())
}

func TestKeyRotateClampsPitch(t *testing.T) {
	oc := NewOrbitCamera(800, 600)
	oc.KeyRotate(0, 100)
	assert.Equal(t, float32(89), oc.Pitch())
	oc.KeyRotate(0, -100)
	assert.Equal(t, float32(-0.1), oc.Pitch())
}

func TestKeyPanIsWorldAligned(t *testing.T) {
	oc := NewOrbitCamera(800, 600, WithInitialPose(mgl32.Vec3{}, 135, 40, 3))
	oc.KeyPan(mgl32.Vec3{1, 0, -1})
	assertVec3(t, mgl32.Vec3{0.1, 0, -0.1}, oc.Pivot())

	for range 50 {
		oc.KeyPan(mgl32.Vec3{0, 1, 0})
	}
	assert.Equal(t, float32(1), oc.Pivot().Y())

	// horizontal movement is unbounded
	for range 500 {
		oc.KeyPan(mgl32.Vec3{1, 0, 0})
	}
	assert.InDelta(t, 50.1, oc.Pivot().X(), 1e-2)
}

func TestViewMatrixEyePosition(t *testing.T) {
	oc := NewOrbitCamera(800, 600, WithInitialPose(mgl32.Vec3{}, 0, 0, 5))
	assertVec3(t, mgl32.Vec3{0, 0, 5}, oc.Position())

	// the view matrix maps the eye to the origin and the pivot straight ahead
	view := oc.ViewMatrix()
	eye := view.Mul4x1(mgl32.Vec4{0, 0, 5, 1})
	pivot := view.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assertVec3(t, mgl32.Vec3{}, eye.Vec3())
	assertVec3(t, mgl32.Vec3{0, 0, -5}, pivot.Vec3())
}

func TestEyeFollowsYawAndPitch(t *testing.T) {
	oc := NewOrbitCamera(800, 600, WithInitialPose(mgl32.Vec3{1, 0, 0}, 90, 0, 2))
	assertVec3(t, mgl32.Vec3{3, 0, 0}, oc.Position())

	oc = NewOrbitCamera(800, 600, WithInitialPose(mgl32.Vec3{}, 0, 89, 2))
	assert.InDelta(t, 2*math.Sin(89*math.Pi/180), oc.Position().Y(), eps)
}

func TestProjectionFieldOfView(t *testing.T) {
	oc := NewOrbitCamera(800, 600, WithFov(90))
	proj := oc.ProjectionMatrix(1)

	// tan(45 deg) = 1, so both focal terms are 1: a 90 degree cone on each axis
	assert.InDelta(t, 1, proj.At(0, 0), eps)
	assert.InDelta(t, 1, proj.At(1, 1), eps)

	wide := oc.ProjectionMatrix(2)
	assert.InDelta(t, 0.5, wide.At(0, 0), eps)
}

func TestUpdateScreenSizeOnlyTouchesBaseline(t *testing.T) {
	oc := NewOrbitCamera(800, 600)
	oc.KeyRotate(2, 1)
	oc.KeyPan(mgl32.Vec3{1, 1, 1})
	oc.Scroll(3)
	view := oc.ViewMatrix()
	proj := oc.ProjectionMatrix(1.5)

	oc.UpdateScreenSize(1920, 1080)
	assert.Equal(t, view, oc.ViewMatrix())
	assert.Equal(t, proj, oc.ProjectionMatrix(1.5))
}

func TestSetConfigReclamps(t *testing.T) {
	oc := NewOrbitCamera(800, 600)
	oc.Scroll(-1000)
	require.Equal(t, float32(10), oc.Radius())

	cfg := oc.Config()
	cfg.MaxRadius = 6
	cfg.Fov = 60
	oc.SetConfig(cfg)
	assert.Equal(t, float32(6), oc.Radius())
	assert.Equal(t, float32(60), oc.Fov())
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cases := map[string]func(c *Config){
		"inverted pitch":  func(c *Config) { c.MinPitch, c.MaxPitch = 10, 5 },
		"vertical pitch":  func(c *Config) { c.MaxPitch = 90 },
		"zero min radius": func(c *Config) { c.MinRadius = 0 },
		"inverted radius": func(c *Config) { c.MinRadius, c.MaxRadius = 5, 2 },
		"inverted pivot":  func(c *Config) { c.MinPivotY, c.MaxPivotY = 1, -1 },
		"zero fov":        func(c *Config) { c.Fov = 0 },
		"far before near": func(c *Config) { c.Near, c.Far = 10, 1 },
		"pitch past max":  func(c *Config) { c.InitialPitch = 95 },
		"radius too near": func(c *Config) { c.InitialRadius = 0.5 },
		"radius too far":  func(c *Config) { c.InitialRadius = 11 },
		"pivot too low":   func(c *Config) { c.InitialPivot = mgl32.Vec3{0, -1, 0} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	// a validated pose is restored unchanged by Reset
	cfg := DefaultConfig()
	cfg.InitialPitch, cfg.InitialRadius, cfg.InitialPivot = cfg.MaxPitch, cfg.MinRadius, mgl32.Vec3{2, cfg.MinPivotY, -3}
	require.NoError(t, cfg.Validate())
	oc := NewOrbitCamera(800, 600, WithConfig(cfg))
	oc.KeyRotate(0, -3)
	oc.Scroll(-20)
	oc.Reset(800, 600)
	assert.Equal(t, cfg.MaxPitch, oc.Pitch())
	assert.Equal(t, cfg.MinRadius, oc.Radius())
	assert.Equal(t, cfg.InitialPivot, oc.Pivot())
}

func TestGPUCameraUniformDepthRange(t *testing.T) {
	oc := NewOrbitCamera(800, 600, WithInitialPose(mgl32.Vec3{}, 0, 0, 5))
	u := NewGPUCameraUniform(oc.ViewMatrix(), oc.ProjectionMatrix(1), oc.Position())
	vp := mgl32.Mat4(u.ViewProj)

	// the pivot lies 5 units ahead: depth must land inside [0, 1]
	clip := vp.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	depth := clip.Z() / clip.W()
	assert.Greater(t, depth, float32(0))
	assert.Less(t, depth, float32(1))

	assert.Equal(t, 80, u.Size())
	assert.Len(t, u.Marshal(), 80)
}
