package overlay

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"golang.org/x/image/font"
)

// TextOverlayOption is a functional option for configuring a TextOverlay.
type TextOverlayOption func(*textOverlayImpl)

// WithPosition places the first baseline, in pixels from the bottom-left corner.
//
// Parameters:
//   - x: distance from the left edge
//   - y: distance from the bottom edge
//
// Returns:
//   - TextOverlayOption: functional option to set the position
func WithPosition(x, y float32) TextOverlayOption {
	return func(o *textOverlayImpl) {
		o.x = x
		o.y = y
	}
}

// WithScale sets the glyph size relative to BaseGlyphSize.
//
// Parameters:
//   - scale: size multiplier (must be positive)
//
// Returns:
//   - TextOverlayOption: functional option to set the scale
func WithScale(scale float32) TextOverlayOption {
	return func(o *textOverlayImpl) {
		if scale > 0 {
			o.scale = scale
		}
	}
}

// WithColor sets the text color.
//
// Parameters:
//   - c: the text color
//
// Returns:
//   - TextOverlayOption: functional option to set the color
func WithColor(c common.Color) TextOverlayOption {
	return func(o *textOverlayImpl) {
		o.color = c
	}
}

// WithText replaces the default help text.
func WithText(text string) TextOverlayOption {
	return func(o *textOverlayImpl) {
		o.text = text
	}
}

// WithVisible sets the initial visibility.
func WithVisible(visible bool) TextOverlayOption {
	return func(o *textOverlayImpl) {
		o.visible = visible
	}
}

// WithFace swaps the bitmap face used for glyphs.
//
// Parameters:
//   - face: any x/image font face
//
// Returns:
//   - TextOverlayOption: functional option to set the face
func WithFace(face font.Face) TextOverlayOption {
	return func(o *textOverlayImpl) {
		if face != nil {
			o.face = face
		}
	}
}
