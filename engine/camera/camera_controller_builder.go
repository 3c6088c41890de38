package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithMoveSpeed sets the movement speed in units per second.
//
// Parameters:
//   - speed: units per second while a movement key is held
//
// Returns:
//   - CameraControllerOption: functional option to set the movement speed
func WithMoveSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.moveSpeed = speed
	}
}

// WithMouseSensitivity sets the degrees of yaw/pitch per pixel of drag.
//
// Parameters:
//   - sensitivity: degrees per pixel
//
// Returns:
//   - CameraControllerOption: functional option to set the mouse sensitivity
func WithMouseSensitivity(sensitivity float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.mouseSensitivity = sensitivity
	}
}

// WithZoomSpeed sets the degrees of field of view per scroll step.
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = speed
	}
}

// WithKeyBindings replaces the movement key map. Keys not present do nothing.
//
// Parameters:
//   - bindings: key code to movement direction
//
// Returns:
//   - CameraControllerOption: functional option to set the key bindings
func WithKeyBindings(bindings map[uint32]Movement) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.bindings = bindings
	}
}
