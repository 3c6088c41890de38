package camera_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range 3 {
		assert.InDelta(t, want[i], got[i], 1e-5, "component %d of %v", i, got)
	}
}

func TestNewCamera_Defaults(t *testing.T) {
	cam := camera.NewCamera()

	assertVec3(t, mgl32.Vec3{0, 0, 3}, cam.Position())
	assertVec3(t, mgl32.Vec3{0, 0, -1}, cam.Front())
	assertVec3(t, mgl32.Vec3{0, 1, 0}, cam.Up())
	assert.Equal(t, float32(45), cam.Fov())
	assert.Equal(t, float32(0.1), cam.Near())
	assert.Equal(t, float32(100), cam.Far())
	require.NotNil(t, cam.Controller())
}

func TestViewMatrix_OriginInViewSpace(t *testing.T) {
	cam := camera.NewCamera()
	assertVec3(t, mgl32.Vec3{0, 0, -3}, common.TransformPoint(cam.ViewMatrix(), mgl32.Vec3{}))
}

func TestViewProjection_ComposesMatrices(t *testing.T) {
	cam := camera.NewCamera(camera.WithAspect(16.0 / 9.0))
	want := cam.ProjectionMatrix().Mul4(cam.ViewMatrix())
	assert.True(t, want.ApproxEqual(cam.ViewProjection()))
	assert.True(t, cam.Frustum().ContainsSphere(mgl32.Vec3{}, 0.5))
	assert.False(t, cam.Frustum().ContainsSphere(mgl32.Vec3{0, 0, 10}, 0.5))
}

func TestHandleEvent_MovementKeys(t *testing.T) {
	cam := camera.NewCamera()

	require.True(t, cam.HandleEvent(common.KeyDown(common.KeyW)))
	cam.Update(1)
	assertVec3(t, mgl32.Vec3{0, 0, 0.5}, cam.Position())

	require.True(t, cam.HandleEvent(common.KeyUp(common.KeyW)))
	require.True(t, cam.HandleEvent(common.KeyDown(common.KeyD)))
	cam.Update(0.4)
	assertVec3(t, mgl32.Vec3{1, 0, 0.5}, cam.Position())

	require.True(t, cam.HandleEvent(common.KeyUp(common.KeyD)))
	require.True(t, cam.HandleEvent(common.KeyDown(common.KeySpace)))
	cam.Update(0.4)
	assertVec3(t, mgl32.Vec3{1, 1, 0.5}, cam.Position())
}

func TestHandleEvent_UnhandledKey(t *testing.T) {
	cam := camera.NewCamera()
	assert.False(t, cam.HandleEvent(common.KeyDown(common.KeyB)))
	assert.False(t, cam.HandleEvent(common.MouseDown(common.MouseButtonRight, 0, 0)))
}

func TestHandleEvent_DragRotates(t *testing.T) {
	cam := camera.NewCamera()

	// moves without a drag are not consumed
	assert.False(t, cam.HandleEvent(common.MouseMove(50, 50)))
	assert.Equal(t, camera.DefaultYaw, cam.Yaw())

	require.True(t, cam.HandleEvent(common.MouseDown(common.MouseButtonLeft, 100, 100)))
	require.True(t, cam.HandleEvent(common.MouseMove(110, 80)))
	assert.InDelta(t, -89, cam.Yaw(), 1e-5)
	assert.InDelta(t, 2, cam.Pitch(), 1e-5)

	require.True(t, cam.HandleEvent(common.MouseMove(110, -5000)))
	assert.Equal(t, camera.MaxPitch, cam.Pitch())
	assert.InDelta(t, 1, cam.Front().Len(), 1e-5)

	require.True(t, cam.HandleEvent(common.MouseUp(common.MouseButtonLeft, 110, -5000)))
	assert.False(t, cam.Controller().Dragging())
}

func TestHandleEvent_ScrollZoomClamped(t *testing.T) {
	cam := camera.NewCamera()

	require.True(t, cam.HandleEvent(common.Scroll(0, 5)))
	assert.Equal(t, float32(40), cam.Fov())

	cam.HandleEvent(common.Scroll(0, 100))
	assert.Equal(t, camera.MinFov, cam.Fov())

	cam.HandleEvent(common.Scroll(0, -100))
	assert.Equal(t, camera.MaxFov, cam.Fov())
}
