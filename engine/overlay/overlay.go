// Package overlay rasterizes the on-screen help text into an RGBA layer the size of the viewport.
package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// HelpText lists every input binding of the viewer.
const HelpText = "HELP (H: TOGGLE)\n" +
	"---------------------\n" +
	"LMB + DRAG: ROTATE | LMB + SHIFT + DRAG : PAN | SCROLL : ZOOM\n" +
	"\n" +
	"ARROWS : ROTATE | WASD : PAN PIVOT | Q / E : UP / DOWN\n" +
	"\n" +
	"TAB : RESET | SPACE : CYCLE MAP | F11 : FULLSCREEN | ESC : EXIT\n"

// BaseGlyphSize is the nominal glyph height in pixels at scale 1.
const BaseGlyphSize = 48

type textOverlayImpl struct {
	mu *sync.Mutex

	face    font.Face
	text    string
	visible bool

	// x, y place the first baseline, measured from the bottom-left corner
	x, y  float32
	scale float32
	color common.Color

	cache       *image.RGBA
	cacheWidth  int
	cacheHeight int
	dirty       bool
}

// TextOverlay is a toggleable block of text drawn over the 3D view.
type TextOverlay interface {
	// Visible reports whether the text is drawn.
	Visible() bool

	// SetVisible shows or hides the text.
	//
	// Parameters:
	//   - visible: true to show the text
	SetVisible(visible bool)

	// Toggle flips visibility.
	//
	// Returns:
	//   - bool: the new visibility
	Toggle() bool

	// Text returns the current text.
	Text() string

	// SetText replaces the text. Lines are separated by '\n'.
	//
	// Parameters:
	//   - text: the new text
	SetText(text string)

	// Bounds returns the pixel rectangle the text occupies in a viewport of the given size,
	// with the origin at the top-left corner. The first baseline sits at the configured position
	// unless the block would cross the right or bottom edge, in which case it moves up or left.
	//
	// Parameters:
	//   - width: viewport width in pixels
	//   - height: viewport height in pixels
	//
	// Returns:
	//   - image.Rectangle: the text block rectangle; it only extends past the viewport when the
	//     block is larger than the viewport
	Bounds(width, height int) image.Rectangle

	// Render rasterizes the overlay for a viewport. Hidden overlays render fully transparent.
	// The image is cached and re-used until the text, visibility or size changes.
	//
	// Parameters:
	//   - width: viewport width in pixels
	//   - height: viewport height in pixels
	//
	// Returns:
	//   - *image.RGBA: the overlay layer, row 0 at the top
	//   - bool: true when the image differs from the previous call
	Render(width, height int) (*image.RGBA, bool)
}

var _ TextOverlay = &textOverlayImpl{}

// NewTextOverlay creates a hidden overlay showing HelpText in orange at (10, 150), scale 0.4.
//
// Parameters:
//   - options: functional options to configure the overlay
//
// Returns:
//   - TextOverlay: the newly created overlay
func NewTextOverlay(options ...TextOverlayOption) TextOverlay {
	o := &textOverlayImpl{
		mu:    &sync.Mutex{},
		face:  basicfont.Face7x13,
		text:  HelpText,
		x:     10,
		y:     150,
		scale: 0.4,
		color: common.RGB(1, 0.3, 0),
		dirty: true,
	}

	for _, option := range options {
		option(o)
	}

	return o
}

func (o *textOverlayImpl) Visible() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.visible
}

func (o *textOverlayImpl) SetVisible(visible bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.visible != visible {
		o.visible = visible
		o.dirty = true
	}
}

func (o *textOverlayImpl) Toggle() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.visible = !o.visible
	o.dirty = true
	return o.visible
}

func (o *textOverlayImpl) Text() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.text
}

func (o *textOverlayImpl) SetText(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.text != text {
		o.text = text
		o.dirty = true
	}
}

func (o *textOverlayImpl) Bounds(width, height int) image.Rectangle {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, r := o.layout(width, height)
	return r
}

func (o *textOverlayImpl) Render(width, height int) (*image.RGBA, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.dirty && o.cache != nil && o.cacheWidth == width && o.cacheHeight == height {
		return o.cache, false
	}

	dst := image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
	if o.visible && width > 0 && height > 0 {
		mask, r := o.layout(width, height)
		scaled := image.NewAlpha(image.Rect(0, 0, r.Dx(), r.Dy()))
		xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), mask, mask.Bounds(), xdraw.Src, nil)

		c := color.NRGBA{
			R: uint8(common.Clamp(o.color[0], 0, 1) * 255),
			G: uint8(common.Clamp(o.color[1], 0, 1) * 255),
			B: uint8(common.Clamp(o.color[2], 0, 1) * 255),
			A: uint8(common.Clamp(o.color[3], 0, 1) * 255),
		}
		draw.DrawMask(dst, r, image.NewUniform(c), image.Point{}, scaled, image.Point{}, draw.Over)
	}

	o.cache = dst
	o.cacheWidth = width
	o.cacheHeight = height
	o.dirty = false
	return dst, true
}

// pixelScale converts the configured scale into a multiplier for the bitmap face.
// Caller must hold the mutex.
func (o *textOverlayImpl) pixelScale() float64 {
	return float64(BaseGlyphSize) * float64(o.scale) / float64(o.face.Metrics().Height.Ceil())
}

// layout draws the text at native size into an alpha mask and returns it along with
// the scaled destination rectangle.
// Caller must hold the mutex.
func (o *textOverlayImpl) layout(width, height int) (*image.Alpha, image.Rectangle) {
	metrics := o.face.Metrics()
	lineHeight := metrics.Height.Ceil()
	ascent := metrics.Ascent.Ceil()

	lines := strings.Split(strings.TrimRight(o.text, "\n"), "\n")
	blockWidth := 1
	for _, line := range lines {
		blockWidth = max(blockWidth, font.MeasureString(o.face, line).Ceil())
	}
	blockHeight := len(lines) * lineHeight

	mask := image.NewAlpha(image.Rect(0, 0, blockWidth, blockHeight))
	d := font.Drawer{Dst: mask, Src: image.Opaque, Face: o.face}
	for i, line := range lines {
		d.Dot = fixed.P(0, i*lineHeight+ascent)
		d.DrawString(line)
	}

	s := o.pixelScale()
	r := image.Rect(0, 0, int(math.Round(float64(blockWidth)*s)), int(math.Round(float64(blockHeight)*s)))
	left := int(math.Round(float64(o.x)))
	top := height - int(math.Round(float64(o.y))) - int(math.Round(float64(ascent)*s))

	// a block that would run past the right or bottom edge is pushed back inside
	left = max(min(left, width-r.Dx()), 0)
	top = max(min(top, height-r.Dy()), 0)
	return mask, r.Add(image.Pt(left, top))
}
