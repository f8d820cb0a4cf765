package renderer

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
)

// drawUniformStride is the byte distance between draw uniforms in the dynamic-offset buffer.
// It matches the WebGPU default minUniformBufferOffsetAlignment.
const drawUniformStride = 256

// GPUDrawUniform is the per-draw uniform read by every mesh pipeline.
// Matches the WGSL DrawUniform struct (model mat4x4<f32>, color vec4<f32>). Size: 80 bytes.
type GPUDrawUniform struct {
	Model [16]float32 // offset  0
	Color [4]float32  // offset 64
}

// NewGPUDrawUniform packs a draw item.
func NewGPUDrawUniform(item scene.DrawItem) GPUDrawUniform {
	return GPUDrawUniform{Model: item.Model, Color: item.Color}
}

// Size returns the size of the GPUDrawUniform struct in bytes.
func (g *GPUDrawUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalInto writes the uniform little-endian into buf, which must hold Size bytes.
func (g *GPUDrawUniform) MarshalInto(buf []byte) {
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Model[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.Color[i]))
	}
}

// packDrawUniforms lays every item's uniform out at drawUniformStride intervals.
func packDrawUniforms(items []scene.DrawItem) []byte {
	buf := make([]byte, len(items)*drawUniformStride)
	for i, item := range items {
		u := NewGPUDrawUniform(item)
		u.MarshalInto(buf[i*drawUniformStride:])
	}
	return buf
}
