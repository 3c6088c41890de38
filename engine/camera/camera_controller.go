package camera

import "github.com/Carmen-Shannon/oxy-gl/common"

// CameraController turns window input into camera motion. It owns the transient input state
// (held keys, drag flag, last cursor position) so the camera itself only holds its pose.
type CameraController interface {
	// HandleEvent consumes an input event and applies instantaneous changes to cam: drag
	// rotation and scroll zoom. Movement keys are recorded and applied by Update.
	//
	// Parameters:
	//   - cam: the camera to drive
	//   - ev: the window input event
	//
	// Returns:
	//   - bool: true if the event was consumed
	HandleEvent(cam Camera, ev common.InputEvent) bool

	// Update moves cam according to the held movement keys.
	//
	// Parameters:
	//   - cam: the camera to drive
	//   - dt: seconds since the previous update
	Update(cam Camera, dt float32)

	// MoveSpeed returns the movement speed in units per second.
	//
	// Returns:
	//   - float32: the movement speed
	MoveSpeed() float32

	// SetMoveSpeed sets the movement speed in units per second.
	//
	// Parameters:
	//   - speed: the new movement speed
	SetMoveSpeed(speed float32)

	// MouseSensitivity returns the degrees of rotation per pixel of drag.
	//
	// Returns:
	//   - float32: the mouse sensitivity
	MouseSensitivity() float32

	// Dragging reports whether a left-button drag is in progress.
	Dragging() bool
}
