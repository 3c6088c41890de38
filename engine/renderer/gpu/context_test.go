package gpu_test

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() (*gputest.Recorder, *gpu.RenderContext) {
	rec := gputest.NewRecorder()
	return rec, gpu.NewRenderContext(rec, 800, 600)
}

func TestRenderContext_ElidesRedundantBinds(t *testing.T) {
	rec, ctx := newContext()
	fb := rec.GenFramebuffer()

	ctx.BindFramebuffer(gpu.FramebufferTarget, fb)
	ctx.BindFramebuffer(gpu.FramebufferTarget, fb)
	ctx.Viewport(0, 0, 32, 32)
	ctx.Viewport(0, 0, 32, 32)
	ctx.SetCapability(gpu.DepthTest, true)
	ctx.SetCapability(gpu.DepthTest, true)

	assert.Equal(t, 1, rec.CountCalls("BindFramebuffer"))
	assert.Equal(t, 1, rec.CountCalls("Viewport"))
	assert.Equal(t, 1, rec.CountCalls("Enable"))
	assert.Equal(t, 3, ctx.Stats().ElidedBinds)
	assert.Equal(t, 3, ctx.Stats().StateChanges)

	state := ctx.State()
	assert.Equal(t, fb, state.DrawFramebuffer)
	assert.Equal(t, fb, state.ReadFramebuffer)
	assert.True(t, state.IsEnabled(gpu.DepthTest))
}

func TestRenderContext_TextureUnitsTrackedPerTarget(t *testing.T) {
	rec, ctx := newContext()
	flat := rec.GenTexture()
	cube := rec.GenTexture()

	ctx.BindTexture(3, gpu.Texture2D, flat)
	ctx.BindTexture(3, gpu.TextureCubeMap, cube)
	ctx.BindTexture(3, gpu.Texture2D, flat)

	state := ctx.State()
	assert.Equal(t, 3, state.ActiveUnit)
	assert.Equal(t, flat, state.Texture(3, gpu.Texture2D))
	assert.Equal(t, cube, state.Texture(3, gpu.TextureCubeMap))
	assert.Equal(t, 2, rec.CountCalls("BindTexture"))
	assert.Panics(t, func() { ctx.ActiveTexture(gpu.MaxTextureUnits) })
}

func TestRenderContext_DrawValidation(t *testing.T) {
	rec, ctx := newContext()

	err := ctx.DrawArrays(gpu.Triangles, 0, 3)
	assert.ErrorIs(t, err, gpu.ErrNoProgram)

	ctx.UseProgram(7)
	err = ctx.DrawArrays(gpu.Triangles, 0, 3)
	assert.ErrorIs(t, err, gpu.ErrNoVertexArray)

	vao, err := gpu.NewVertexArray(ctx)
	require.NoError(t, err)
	vao.Bind()

	fb := rec.GenFramebuffer()
	ctx.RegisterFramebuffer(fb, "gbuffer", false)
	ctx.BindFramebuffer(gpu.FramebufferTarget, fb)
	err = ctx.DrawArrays(gpu.Triangles, 0, 3)
	assert.ErrorIs(t, err, gpu.ErrIncompleteTarget)
	assert.Contains(t, err.Error(), "gbuffer")

	err = ctx.DrawElements(gpu.Triangles, 6, gpu.TypeUnsignedInt, 0)
	assert.ErrorIs(t, err, gpu.ErrIncompleteTarget)
	assert.Zero(t, rec.CountCalls("DrawArrays"))
	assert.Zero(t, ctx.Stats().DrawCalls)
}

func TestRenderContext_IndexedDrawNeedsElementBuffer(t *testing.T) {
	rec, ctx := newContext()
	p := rec.CreateProgram()
	ctx.UseProgram(p)
	vao, err := gpu.NewVertexArray(ctx)
	require.NoError(t, err)
	vao.Bind()

	assert.Error(t, ctx.DrawElements(gpu.Triangles, 3, gpu.TypeUnsignedInt, 0))

	ebo, err := gpu.NewBuffer(ctx, gpu.BufferKindIndex, gpu.UsageStatic)
	require.NoError(t, err)
	ebo.SetData(make([]byte, 12))
	assert.NoError(t, ctx.DrawElements(gpu.Triangles, 3, gpu.TypeUnsignedInt, 0))
	assert.Equal(t, 1, ctx.Stats().DrawCalls)

	// The element buffer binding belongs to the vertex array.
	ctx.BindVertexArray(0)
	assert.Zero(t, ctx.State().ElementBuffer)
	vao.Bind()
	assert.Equal(t, ebo.ID(), ctx.State().ElementBuffer)
}

func TestRenderContext_CheckErrorDrainsAndTags(t *testing.T) {
	rec, ctx := newContext()
	assert.NoError(t, ctx.CheckError("noop"))

	rec.InjectError(gpu.InvalidEnum, gpu.InvalidOperation)
	ctx.BeginPass("bloom")
	err := ctx.CheckError("DrawArrays")
	ctx.EndPass()

	var derr *gpu.DriverError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "bloom", derr.Pass)
	assert.Equal(t, "DrawArrays", derr.Call)
	assert.True(t, derr.Has(gpu.InvalidOperation))
	assert.Len(t, derr.Codes, 2)
	assert.Equal(t, "driver error after bloom/DrawArrays: InvalidEnum, InvalidOperation", err.Error())
	assert.NoError(t, ctx.CheckError("after"))
}

func TestRenderContext_BlitRequiresCompleteTargets(t *testing.T) {
	rec, ctx := newContext()
	src := rec.GenFramebuffer()
	rect := gpu.Viewport{Width: 64, Height: 64}

	err := ctx.Blit(src, 0, rect, rect, gpu.ClearDepth, gpu.FilterNearest)
	assert.ErrorIs(t, err, gpu.ErrIncompleteTarget)

	ctx.RegisterFramebuffer(src, "gbuffer", true)
	require.NoError(t, ctx.Blit(src, 0, rect, rect, gpu.ClearDepth, gpu.FilterNearest))
	blits := rec.CallsNamed("BlitFramebuffer")
	require.Len(t, blits, 1)
	assert.Equal(t, gpu.DepthBufferBit, blits[0].Args[8])
	assert.Equal(t, gpu.Nearest, blits[0].Args[9])
	assert.Equal(t, src, ctx.State().ReadFramebuffer)
	assert.Zero(t, ctx.State().DrawFramebuffer)
}

func TestRenderContext_WatchFramebuffer(t *testing.T) {
	rec, ctx := newContext()
	fb := rec.GenFramebuffer()
	intact := true
	ctx.WatchFramebuffer(fb, func() bool { return intact })
	ctx.RegisterFramebuffer(fb, "scratch", true)
	assert.True(t, ctx.FramebufferComplete(fb))

	intact = false
	assert.False(t, ctx.FramebufferComplete(fb))
	rect := gpu.Viewport{Width: 64, Height: 64}
	assert.ErrorIs(t, ctx.Blit(fb, 0, rect, rect, gpu.ClearDepth, gpu.FilterNearest), gpu.ErrIncompleteTarget)
}

func TestRenderContext_RestoreDefaultTarget(t *testing.T) {
	rec, ctx := newContext()
	fb := rec.GenFramebuffer()
	ctx.BindFramebuffer(gpu.FramebufferTarget, fb)
	ctx.Viewport(0, 0, 512, 512)

	ctx.SetDefaultSize(1024, 768)
	ctx.RestoreDefaultTarget()

	state := ctx.State()
	assert.Zero(t, state.DrawFramebuffer)
	assert.Equal(t, gpu.Viewport{Width: 1024, Height: 768}, state.Viewport)
	assert.Equal(t, [4]int32{0, 0, 1024, 768}, rec.CurrentViewport())
}
