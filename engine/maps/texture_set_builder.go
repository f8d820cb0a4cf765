package maps

import "log/slog"

// TextureSetOption is a functional option for configuring a TextureSet.
type TextureSetOption func(*textureSetImpl)

// WithFlipY controls whether rows are reversed on decode so row 0 is the image bottom.
//
// Parameters:
//   - flip: true to flip (the default)
//
// Returns:
//   - TextureSetOption: functional option to set the flip behaviour
func WithFlipY(flip bool) TextureSetOption {
	return func(ts *textureSetImpl) {
		ts.flipY = flip
	}
}

// WithWorkers sets how many textures are decoded concurrently.
//
// Parameters:
//   - workers: maximum concurrent decodes (values below 1 are treated as 1)
//
// Returns:
//   - TextureSetOption: functional option to set the worker count
func WithWorkers(workers int) TextureSetOption {
	return func(ts *textureSetImpl) {
		ts.workers = workers
	}
}

// WithLogger sets the logger used for load and switch messages.
func WithLogger(logger *slog.Logger) TextureSetOption {
	return func(ts *textureSetImpl) {
		if logger != nil {
			ts.logger = logger
		}
	}
}
