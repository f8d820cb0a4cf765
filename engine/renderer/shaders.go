package renderer

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
)

//go:embed assets/map.wgsl
var mapShaderBody string

//go:embed assets/solid.wgsl
var solidShaderBody string

//go:embed assets/overlay.wgsl
var overlayShaderSource string

// mapShaderSource and solidShaderSource prepend the shared CameraUniform struct.
var (
	mapShaderSource   = camera.GPUCameraUniformSource + "\n" + mapShaderBody
	solidShaderSource = camera.GPUCameraUniformSource + "\n" + solidShaderBody
)
