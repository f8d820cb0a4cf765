package camera

import "github.com/go-gl/mathgl/mgl32"

// OrbitCameraOption is a functional option for configuring an OrbitCamera.
type OrbitCameraOption func(*orbitCameraImpl)

// WithConfig replaces the full set of tunables.
//
// Parameters:
//   - cfg: the camera tunables
//
// Returns:
//   - OrbitCameraOption: functional option to set the config
func WithConfig(cfg Config) OrbitCameraOption {
	return func(oc *orbitCameraImpl) {
		oc.cfg = cfg
	}
}

// WithInitialPose overrides the pose restored by Reset.
//
// Parameters:
//   - pivot: the look-at point
//   - yaw: horizontal angle in degrees
//   - pitch: vertical angle in degrees
//   - radius: distance from the pivot
//
// Returns:
//   - OrbitCameraOption: functional option to set the initial pose
func WithInitialPose(pivot mgl32.Vec3, yaw, pitch, radius float32) OrbitCameraOption {
	return func(oc *orbitCameraImpl) {
		oc.cfg.InitialPivot = pivot
		oc.cfg.InitialYaw = yaw
		oc.cfg.InitialPitch = pitch
		oc.cfg.InitialRadius = radius
	}
}

// WithFov sets the vertical field of view in degrees.
//
// Parameters:
//   - fov: field of view in degrees
//
// Returns:
//   - OrbitCameraOption: functional option to set the field of view
func WithFov(fov float32) OrbitCameraOption {
	return func(oc *orbitCameraImpl) {
		oc.cfg.Fov = fov
	}
}

// WithRadiusBounds sets the zoom limits.
//
// Parameters:
//   - minRadius: closest allowed distance to the pivot
//   - maxRadius: farthest allowed distance from the pivot
//
// Returns:
//   - OrbitCameraOption: functional option to set the radius bounds
func WithRadiusBounds(minRadius, maxRadius float32) OrbitCameraOption {
	return func(oc *orbitCameraImpl) {
		oc.cfg.MinRadius = minRadius
		oc.cfg.MaxRadius = maxRadius
	}
}

// WithPitchBounds sets the vertical angle limits in degrees.
//
// Parameters:
//   - minPitch: lowest allowed pitch
//   - maxPitch: highest allowed pitch
//
// Returns:
//   - OrbitCameraOption: functional option to set the pitch bounds
func WithPitchBounds(minPitch, maxPitch float32) OrbitCameraOption {
	return func(oc *orbitCameraImpl) {
		oc.cfg.MinPitch = minPitch
		oc.cfg.MaxPitch = maxPitch
	}
}
