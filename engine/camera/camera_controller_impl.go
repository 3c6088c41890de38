package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Defaults for the fly controller.
const (
	DefaultMoveSpeed        float32 = 2.5
	DefaultMouseSensitivity float32 = 0.1
	DefaultZoomSpeed        float32 = 1
)

// Movement is a direction the fly controller moves in while a key is held.
type Movement int

const (
	MoveForward Movement = iota
	MoveBackward
	MoveLeft
	MoveRight
	MoveUp
	MoveDown
)

// DefaultKeyBindings maps W/S/A/D to planar movement and Space/LeftShift to rise/fall.
var DefaultKeyBindings = map[uint32]Movement{
	common.KeyW:         MoveForward,
	common.KeyS:         MoveBackward,
	common.KeyA:         MoveLeft,
	common.KeyD:         MoveRight,
	common.KeySpace:     MoveUp,
	common.KeyLeftShift: MoveDown,
}

type cameraControllerImpl struct {
	mu *sync.Mutex

	moveSpeed        float32
	mouseSensitivity float32
	zoomSpeed        float32
	bindings         map[uint32]Movement

	held     map[Movement]bool
	dragging bool
	lastX    float64
	lastY    float64
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a fly controller: held keys move the camera, a left-button drag
// rotates it and the scroll wheel zooms.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the new controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:               &sync.Mutex{},
		moveSpeed:        DefaultMoveSpeed,
		mouseSensitivity: DefaultMouseSensitivity,
		zoomSpeed:        DefaultZoomSpeed,
		bindings:         DefaultKeyBindings,
		held:             make(map[Movement]bool),
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) HandleEvent(cam Camera, ev common.InputEvent) bool {
	switch ev.Type {
	case common.InputKeyDown, common.InputKeyUp:
		cc.mu.Lock()
		defer cc.mu.Unlock()
		m, ok := cc.bindings[ev.Key]
		if !ok {
			return false
		}
		cc.held[m] = ev.Type == common.InputKeyDown
		return true

	case common.InputMouseDown, common.InputMouseUp:
		if ev.Button != common.MouseButtonLeft {
			return false
		}
		cc.mu.Lock()
		defer cc.mu.Unlock()
		cc.dragging = ev.Type == common.InputMouseDown
		cc.lastX, cc.lastY = ev.X, ev.Y
		return true

	case common.InputMouseMove:
		cc.mu.Lock()
		if !cc.dragging {
			cc.mu.Unlock()
			return false
		}
		// screen y grows downwards, pitch grows upwards
		dx := float32(ev.X-cc.lastX) * cc.mouseSensitivity
		dy := float32(cc.lastY-ev.Y) * cc.mouseSensitivity
		cc.lastX, cc.lastY = ev.X, ev.Y
		cc.mu.Unlock()
		cam.SetOrientation(cam.Yaw()+dx, cam.Pitch()+dy)
		return true

	case common.InputScroll:
		cc.mu.Lock()
		step := cc.zoomSpeed
		cc.mu.Unlock()
		cam.SetFov(cam.Fov() - float32(ev.ScrollY)*step)
		return true
	}
	return false
}

func (cc *cameraControllerImpl) Update(cam Camera, dt float32) {
	cc.mu.Lock()
	velocity := cc.moveSpeed * dt
	var dir mgl32.Vec3
	front, right, up := cam.Front(), cam.Right(), cam.Up()
	for m, on := range cc.held {
		if !on {
			continue
		}
		switch m {
		case MoveForward:
			dir = dir.Add(front)
		case MoveBackward:
			dir = dir.Sub(front)
		case MoveLeft:
			dir = dir.Sub(right)
		case MoveRight:
			dir = dir.Add(right)
		case MoveUp:
			dir = dir.Add(up)
		case MoveDown:
			dir = dir.Sub(up)
		}
	}
	cc.mu.Unlock()
	if dir.Len() == 0 {
		return
	}
	cam.SetPosition(cam.Position().Add(dir.Mul(velocity)))
}

func (cc *cameraControllerImpl) MoveSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.moveSpeed
}

func (cc *cameraControllerImpl) SetMoveSpeed(speed float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.moveSpeed = speed
}

func (cc *cameraControllerImpl) MouseSensitivity() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.mouseSensitivity
}

func (cc *cameraControllerImpl) Dragging() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.dragging
}
