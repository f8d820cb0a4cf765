package input

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-viewer/engine/building"
)

// HandlerOption is a functional option for configuring a Handler.
type HandlerOption func(*handlerImpl)

// WithPanel attaches a building panel at construction.
func WithPanel(panel building.Panel) HandlerOption {
	return func(h *handlerImpl) {
		h.panel = panel
	}
}

// WithLogger sets the logger used for command messages.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *handlerImpl) {
		if logger != nil {
			h.logger = logger
		}
	}
}
