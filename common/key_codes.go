package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW     = 87 // W key (ASCII)
	KeyA     = 65 // A key (ASCII)
	KeyS     = 83 // S key (ASCII)
	KeyD     = 68 // D key (ASCII)
	KeyQ     = 81 // Q key (ASCII)
	KeyE     = 69 // E key (ASCII)
	KeyH     = 72 // H key (ASCII)
	KeyP     = 80 // P key (ASCII)
	KeyY     = 89 // Y key (ASCII)
	KeySpace = 32 // Spacebar (ASCII)

	KeyMinus        = 45 // - key (ASCII)
	KeyEqual        = 61 // = key (ASCII), shares a cap with +
	KeyLeftBracket  = 91 // [ key (ASCII)
	KeyRightBracket = 93 // ] key (ASCII)
)

// Additional non-printable keys
const (
	KeyEsc        = 256 // Escape key (GLFW)
	KeyEnter      = 257 // Enter key (GLFW)
	KeyTab        = 258 // Tab key (GLFW)
	KeyRight      = 262 // Right arrow (GLFW)
	KeyLeft       = 263 // Left arrow (GLFW)
	KeyDown       = 264 // Down arrow (GLFW)
	KeyUp         = 265 // Up arrow (GLFW)
	KeyF11        = 300 // F11 (GLFW)
	KeyLeftShift  = 340 // Left Shift (GLFW)
	KeyRightShift = 344 // Right Shift (GLFW)
)

// Key actions, matching glfw.Action values.
const (
	ActionRelease = 0
	ActionPress   = 1
	ActionRepeat  = 2
)

// Mouse buttons, matching glfw.MouseButton values.
const (
	MouseButtonLeft   = 0
	MouseButtonRight  = 1
	MouseButtonMiddle = 2
)

// ModShift is the shift bit of glfw.ModifierKey.
const ModShift = 0x0001
