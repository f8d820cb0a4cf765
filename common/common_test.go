package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(1), Clamp(float32(-3), 1, 10))
	assert.Equal(t, float32(10), Clamp(float32(42), 1, 10))
	assert.Equal(t, float32(4.5), Clamp(float32(4.5), 1, 10))
	assert.Equal(t, 3, Clamp(3, 3, 3))
}

func TestAspectRatio(t *testing.T) {
	assert.InDelta(t, 800.0/600.0, AspectRatio(800, 600), 1e-6)
	assert.Equal(t, float32(1), AspectRatio(800, 0))
	assert.Equal(t, float32(1), AspectRatio(0, 0))
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
}

func TestClipSpaceCorrectionMapsDepthRange(t *testing.T) {
	near := ClipSpaceCorrection.Mul4x1(mgl32.Vec4{0, 0, -1, 1})
	far := ClipSpaceCorrection.Mul4x1(mgl32.Vec4{0, 0, 1, 1})
	assert.InDelta(t, 0, near.Z()/near.W(), 1e-6)
	assert.InDelta(t, 1, far.Z()/far.W(), 1e-6)
}

func TestTRSAppliesScaleThenRotationThenTranslation(t *testing.T) {
	m := TRS(mgl32.Vec3{1, 2, 3}, mgl32.DegToRad(-90), mgl32.Vec3{2, 2, 2})
	// (0,1,0) scaled to (0,2,0), rotated -90 about X to (0,0,-2), then translated.
	p := m.Mul4x1(mgl32.Vec4{0, 1, 0, 1})
	assert.InDelta(t, 1, p.X(), 1e-5)
	assert.InDelta(t, 2, p.Y(), 1e-5)
	assert.InDelta(t, 1, p.Z(), 1e-5)
}

func twoRowImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(0, 1, color.RGBA{0, 0, 255, 255})
	return img
}

func TestDecodeImageFlipsRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, twoRowImage()))

	straight, err := DecodeImage(buf.Bytes(), false)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), straight.Width)
	assert.Equal(t, uint32(2), straight.Height)
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 0, 255, 255}, straight.Pixels)
	assert.True(t, straight.Valid())

	flipped, err := DecodeImage(buf.Bytes(), true)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 255, 255, 255, 0, 0, 255}, flipped.Pixels)
}

func TestDecodeImageFileReadsBMP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.bmp")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, bmp.Encode(f, twoRowImage()))
	require.NoError(t, f.Close())

	staging, err := DecodeImageFile(path, false)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), staging.Height)
}

func TestDecodeImageErrors(t *testing.T) {
	_, err := DecodeImage([]byte("not an image"), false)
	assert.Error(t, err)

	_, err = DecodeImageFile(filepath.Join(t.TempDir(), "missing.png"), false)
	assert.Error(t, err)

	var empty *TextureStagingData
	assert.False(t, empty.Valid())
}
