package common

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// WorldUp is the world-space up axis used by every view matrix in the viewer.
var WorldUp = mgl32.Vec3{0, 1, 0}

// ClipSpaceCorrection remaps OpenGL clip-space depth [-1, 1] to the WebGPU range [0, 1].
// Pre-multiply a projection built with mgl32.Perspective by this matrix before upload.
var ClipSpaceCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// AspectRatio returns width/height for a viewport, or 1 when the height is zero
// (a minimized window reports a 0x0 framebuffer).
//
// Parameters:
//   - width: viewport width in pixels
//   - height: viewport height in pixels
//
// Returns:
//   - float32: the aspect ratio
func AspectRatio(width, height int) float32 {
	if height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}

// TRS builds a model matrix as Translate * RotateX * Scale.
//
// Parameters:
//   - position: world-space translation
//   - rotX: rotation about the X axis in radians
//   - scale: per-axis scale factors
//
// Returns:
//   - mgl32.Mat4: the composed model matrix
func TRS(position mgl32.Vec3, rotX float32, scale mgl32.Vec3) mgl32.Mat4 {
	t := mgl32.Translate3D(position.X(), position.Y(), position.Z())
	r := mgl32.HomogRotate3DX(rotX)
	s := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())
	return t.Mul4(r).Mul4(s)
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}
