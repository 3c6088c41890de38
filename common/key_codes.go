package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW          = 87  // W key (ASCII)
	KeyA          = 65  // A key (ASCII)
	KeyS          = 83  // S key (ASCII)
	KeyD          = 68  // D key (ASCII)
	KeyQ          = 81  // Q key (ASCII)
	KeyE          = 69  // E key (ASCII)
	KeyF          = 70  // F key (ASCII), toggles the flash light
	KeyN          = 78  // N key (ASCII), toggles normal mapping
	KeyB          = 66  // B key (ASCII)
	KeyO          = 79  // O key (ASCII), toggles ambient occlusion
	KeyR          = 82  // R key (ASCII), reloads shaders
	KeySpace      = 32  // Spacebar (ASCII)
	KeyEsc        = 256 // Escape key (GLFW)
	KeyEnter      = 257 // Enter key (GLFW)
	KeyArrowRight = 262 // Right arrow (GLFW)
	KeyArrowLeft  = 263 // Left arrow (GLFW)
	KeyArrowDown  = 264 // Down arrow (GLFW)
	KeyArrowUp    = 265 // Up arrow (GLFW)

	Key1 = 49 // 1 key (ASCII)
	Key2 = 50 // 2 key (ASCII)
	Key3 = 51 // 3 key (ASCII)
)

// Additional non-printable keys
const (
	KeyLeftShift  = 340 // Left Shift (GLFW)
	KeyRightShift = 344 // Right Shift (GLFW)
)
