package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Defaults for a new camera.
const (
	DefaultYaw   float32 = -90
	DefaultPitch float32 = 0
	DefaultFov   float32 = 45
	DefaultNear  float32 = 0.1
	DefaultFar   float32 = 100
	MinFov       float32 = 1
	MaxFov       float32 = 45
	MaxPitch     float32 = 89
)

// DefaultPosition is where a new camera starts, three units back from the origin.
var DefaultPosition = mgl32.Vec3{0, 0, 3}

type cameraImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	front    mgl32.Vec3
	up       mgl32.Vec3
	right    mgl32.Vec3
	worldUp  mgl32.Vec3

	// yaw and pitch are in degrees; yaw -90 looks down -Z.
	yaw   float32
	pitch float32

	// fov is the vertical field of view in degrees.
	fov    float32
	aspect float32
	near   float32
	far    float32

	controller CameraController
}

// Camera defines the interface for the camera system.
// The camera holds a position and yaw/pitch orientation plus perspective settings, and derives
// its view and projection matrices on demand. It is mutated only by its CameraController in
// response to input and by explicit setters.
type Camera interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Front returns the normalised viewing direction.
	//
	// Returns:
	//   - mgl32.Vec3: the viewing direction
	Front() mgl32.Vec3

	// Up returns the normalised camera up vector.
	//
	// Returns:
	//   - mgl32.Vec3: the up vector, perpendicular to Front
	Up() mgl32.Vec3

	// Right returns the normalised camera right vector.
	Right() mgl32.Vec3

	// Yaw returns the heading in degrees.
	Yaw() float32

	// Pitch returns the elevation in degrees, within ±89.
	Pitch() float32

	// Fov returns the vertical field of view in degrees.
	//
	// Returns:
	//   - float32: field of view in degrees
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// ViewMatrix returns LookAt(position, position+front, up).
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the perspective projection.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewProjection returns ProjectionMatrix * ViewMatrix.
	//
	// Returns:
	//   - mgl32.Mat4: the combined matrix
	ViewProjection() mgl32.Mat4

	// Frustum returns the view frustum for culling.
	Frustum() common.Frustum

	// SetPosition moves the camera.
	//
	// Parameters:
	//   - p: the new world-space position
	SetPosition(p mgl32.Vec3)

	// SetOrientation sets yaw and pitch in degrees. Pitch is clamped to ±89.
	//
	// Parameters:
	//   - yaw: heading in degrees
	//   - pitch: elevation in degrees
	SetOrientation(yaw, pitch float32)

	// SetFov sets the vertical field of view in degrees, clamped to [1, 45].
	SetFov(fov float32)

	// SetAspect sets the aspect ratio (width / height).
	SetAspect(aspect float32)

	// SetClip sets the near and far plane distances.
	SetClip(near, far float32)

	// Controller returns the attached CameraController, or nil.
	//
	// Returns:
	//   - CameraController: the attached controller or nil
	Controller() CameraController

	// SetController attaches a CameraController to the camera.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl CameraController)

	// HandleEvent forwards an input event to the controller.
	//
	// Parameters:
	//   - ev: the window input event
	//
	// Returns:
	//   - bool: true if the event was consumed
	HandleEvent(ev common.InputEvent) bool

	// Update lets the controller apply continuous input, such as held movement keys.
	//
	// Parameters:
	//   - dt: seconds since the previous update
	Update(dt float32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera at DefaultPosition looking down -Z, with a fly controller
// attached unless WithController overrides it.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: DefaultPosition,
		worldUp:  mgl32.Vec3{0, 1, 0},
		yaw:      DefaultYaw,
		pitch:    DefaultPitch,
		fov:      DefaultFov,
		aspect:   1,
		near:     DefaultNear,
		far:      DefaultFar,
	}
	for _, option := range options {
		option(c)
	}
	if c.controller == nil {
		c.controller = NewCameraController()
	}
	c.updateVectors()
	return c
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Front() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.front
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Right() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.right
}

func (c *cameraImpl) Yaw() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.yaw
}

func (c *cameraImpl) Pitch() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pitch
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view()
}

func (c *cameraImpl) view() mgl32.Mat4 {
	return mgl32.LookAtV(c.position, c.position.Add(c.front), c.up)
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection()
}

func (c *cameraImpl) projection() mgl32.Mat4 {
	return mgl32.Perspective(common.Radians(c.fov), c.aspect, c.near, c.far)
}

func (c *cameraImpl) ViewProjection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection().Mul4(c.view())
}

func (c *cameraImpl) Frustum() common.Frustum {
	return common.ExtractFrustum(c.ViewProjection())
}

func (c *cameraImpl) SetPosition(p mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = p
}

func (c *cameraImpl) SetOrientation(yaw, pitch float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.yaw = yaw
	c.pitch = common.Clamp(pitch, -MaxPitch, MaxPitch)
	c.updateVectors()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = common.Clamp(fov, MinFov, MaxFov)
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
}

func (c *cameraImpl) SetClip(near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near, c.far = near, far
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}

func (c *cameraImpl) HandleEvent(ev common.InputEvent) bool {
	ctrl := c.Controller()
	if ctrl == nil {
		return false
	}
	return ctrl.HandleEvent(c, ev)
}

func (c *cameraImpl) Update(dt float32) {
	if ctrl := c.Controller(); ctrl != nil {
		ctrl.Update(c, dt)
	}
}

// updateVectors recomputes front, right and up from yaw and pitch. Caller must hold the mutex.
func (c *cameraImpl) updateVectors() {
	yaw, pitch := common.Radians(c.yaw), common.Radians(c.pitch)
	c.front = mgl32.Vec3{
		math32.Cos(yaw) * math32.Cos(pitch),
		math32.Sin(pitch),
		math32.Sin(yaw) * math32.Cos(pitch),
	}.Normalize()
	c.right = c.front.Cross(c.worldUp).Normalize()
	c.up = c.right.Cross(c.front).Normalize()
}
