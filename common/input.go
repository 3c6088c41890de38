package common

// InputEventType identifies the kind of input event forwarded from the window to consumers.
type InputEventType int

const (
	// InputKeyDown is a key press or key repeat.
	InputKeyDown InputEventType = iota

	// InputKeyUp is a key release.
	InputKeyUp

	// InputMouseDown is a mouse button press at the cursor position.
	InputMouseDown

	// InputMouseUp is a mouse button release at the cursor position.
	InputMouseUp

	// InputMouseMove is a cursor movement.
	InputMouseMove

	// InputScroll is a scroll wheel movement. Positive ScrollY is scrolling up.
	InputScroll
)

// MouseButton identifies a mouse button. Values match GLFW.
type MouseButton int

const (
	MouseButtonLeft   MouseButton = 0
	MouseButtonRight  MouseButton = 1
	MouseButtonMiddle MouseButton = 2
)

// InputEvent is a single window input event. Only the fields relevant to Type are set.
type InputEvent struct {
	Type InputEventType

	// Key is the key code for key events (see key_codes.go).
	Key uint32

	// Button is the mouse button for InputMouseDown and InputMouseUp.
	Button MouseButton

	// X and Y are the cursor position in window coordinates for mouse events.
	X, Y float64

	// ScrollX and ScrollY are the scroll offsets for InputScroll.
	ScrollX, ScrollY float64
}

// KeyDown builds an InputKeyDown event.
func KeyDown(key uint32) InputEvent { return InputEvent{Type: InputKeyDown, Key: key} }

// KeyUp builds an InputKeyUp event.
func KeyUp(key uint32) InputEvent { return InputEvent{Type: InputKeyUp, Key: key} }

// MouseDown builds an InputMouseDown event.
func MouseDown(button MouseButton, x, y float64) InputEvent {
	return InputEvent{Type: InputMouseDown, Button: button, X: x, Y: y}
}

// MouseUp builds an InputMouseUp event.
func MouseUp(button MouseButton, x, y float64) InputEvent {
	return InputEvent{Type: InputMouseUp, Button: button, X: x, Y: y}
}

// MouseMove builds an InputMouseMove event.
func MouseMove(x, y float64) InputEvent { return InputEvent{Type: InputMouseMove, X: x, Y: y} }

// Scroll builds an InputScroll event.
func Scroll(dx, dy float64) InputEvent { return InputEvent{Type: InputScroll, ScrollX: dx, ScrollY: dy} }
