package framebuffer_test

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gputest"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() (*gputest.Recorder, *gpu.RenderContext) {
	rec := gputest.NewRecorder()
	return rec, gpu.NewRenderContext(rec, 800, 600)
}

func colorTarget(t *testing.T, ctx *gpu.RenderContext, w, h int) *texture.Texture {
	t.Helper()
	tex, err := texture.Create2D(ctx, w, h, gpu.FormatRGBA16F, nil)
	require.NoError(t, err)
	return tex
}

func TestCheck_MismatchedSizesIsIncomplete(t *testing.T) {
	_, ctx := newContext()
	fb, err := framebuffer.New(ctx, framebuffer.WithName("gbuffer"))
	require.NoError(t, err)
	rb, err := framebuffer.NewRenderbuffer(ctx, gpu.FormatDepth24, 512, 512)
	require.NoError(t, err)

	require.NoError(t, fb.AttachTexture(framebuffer.ColorAttachment(0), colorTarget(t, ctx, 800, 600), 0))
	require.NoError(t, fb.AttachRenderbuffer(gpu.DepthAttachment, rb))
	err = fb.Check()

	var incomplete *gpu.FramebufferIncompleteError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, "gbuffer", incomplete.Framebuffer)
	assert.Contains(t, incomplete.Reason, "size mismatch")
	assert.Len(t, incomplete.Attachments, 2)
	assert.Equal(t, framebuffer.StateIncomplete, fb.State())
	assert.False(t, ctx.FramebufferComplete(fb.ID()))
}

func TestCheck_MatchingSizesIsComplete(t *testing.T) {
	rec, ctx := newContext()
	fb, err := framebuffer.New(ctx, framebuffer.WithName("gbuffer"))
	require.NoError(t, err)
	rb, err := framebuffer.NewRenderbuffer(ctx, gpu.FormatDepth24, 800, 600)
	require.NoError(t, err)

	for i := range 3 {
		require.NoError(t, fb.AttachTexture(framebuffer.ColorAttachment(i), colorTarget(t, ctx, 800, 600), 0))
	}
	require.NoError(t, fb.AttachRenderbuffer(gpu.DepthAttachment, rb))
	require.NoError(t, fb.Check())

	assert.Equal(t, framebuffer.StateComplete, fb.State())
	assert.True(t, ctx.FramebufferComplete(fb.ID()))
	assert.Equal(t, []gpu.Enum{gpu.ColorAttachment0, gpu.ColorAttachment0 + 1, gpu.ColorAttachment0 + 2}, rec.DrawBuffersOf(fb.ID()))
	w, h := fb.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
	assert.NoError(t, fb.Bind())
}

func TestIncompleteIsTerminal(t *testing.T) {
	_, ctx := newContext()
	fb, err := framebuffer.New(ctx)
	require.NoError(t, err)

	require.Error(t, fb.Check())

	assert.ErrorIs(t, fb.AttachTexture(framebuffer.ColorAttachment(0), colorTarget(t, ctx, 4, 4), 0), framebuffer.ErrFramebufferTerminal)
	assert.ErrorIs(t, fb.Bind(), framebuffer.ErrFramebufferTerminal)
	assert.ErrorIs(t, fb.Check(), framebuffer.ErrFramebufferTerminal)
	assert.ErrorIs(t, fb.Reconfigure(), framebuffer.ErrFramebufferTerminal)
}

func TestCheck_DepthAtColorPoint(t *testing.T) {
	_, ctx := newContext()
	fb, err := framebuffer.New(ctx)
	require.NoError(t, err)
	depth, err := texture.Create2D(ctx, 4, 4, gpu.FormatDepth24, nil)
	require.NoError(t, err)

	require.NoError(t, fb.AttachTexture(framebuffer.ColorAttachment(0), depth, 0))
	err = fb.Check()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "depth format")
}

func TestCheck_DepthOnly(t *testing.T) {
	rec, ctx := newContext()
	fb, err := framebuffer.New(ctx, framebuffer.WithDepthOnly())
	require.NoError(t, err)
	depth, err := texture.Create2D(ctx, 1024, 1024, gpu.FormatDepth24, nil)
	require.NoError(t, err)

	require.NoError(t, fb.AttachTexture(gpu.DepthAttachment, depth, 0))
	require.NoError(t, fb.Check())

	assert.Equal(t, []gpu.Enum{gpu.None}, rec.DrawBuffersOf(fb.ID()))
	assert.Equal(t, gpu.None, rec.ReadBufferOf(fb.ID()))
}

func TestCheck_DriverErrorDuringCheck(t *testing.T) {
	rec, ctx := newContext()
	fb, err := framebuffer.New(ctx, framebuffer.WithName("hdr"))
	require.NoError(t, err)
	require.NoError(t, fb.AttachTexture(framebuffer.ColorAttachment(0), colorTarget(t, ctx, 4, 4), 0))

	rec.InjectError(gpu.OutOfMemory)
	err = fb.Check()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "OutOfMemory")
	assert.Equal(t, framebuffer.StateIncomplete, fb.State())
}

func TestNotCheckedCannotBind(t *testing.T) {
	_, ctx := newContext()
	fb, err := framebuffer.New(ctx)
	require.NoError(t, err)
	require.NoError(t, fb.AttachTexture(framebuffer.ColorAttachment(0), colorTarget(t, ctx, 4, 4), 0))

	assert.ErrorIs(t, fb.Bind(), framebuffer.ErrNotComplete)
}

func TestReconfigureAndRetarget(t *testing.T) {
	rec, ctx := newContext()
	fb, err := framebuffer.New(ctx, framebuffer.WithName("capture"))
	require.NoError(t, err)
	rb, err := framebuffer.NewRenderbuffer(ctx, gpu.FormatDepth24, 32, 32)
	require.NoError(t, err)
	cube, err := texture.CreateCubemap(ctx, 32, gpu.FormatRGB16F)
	require.NoError(t, err)
	small, err := texture.CreateCubemap(ctx, 16, gpu.FormatRGB16F)
	require.NoError(t, err)

	require.NoError(t, fb.AttachRenderbuffer(gpu.DepthAttachment, rb))
	require.NoError(t, fb.AttachCubeFace(framebuffer.ColorAttachment(0), cube, 0, 0))
	require.NoError(t, fb.Check())

	for face := 1; face < texture.CubeFaces; face++ {
		require.NoError(t, fb.RetargetColor(0, cube, face, 0))
	}
	a, ok := fb.Attachment(framebuffer.ColorAttachment(0))
	require.True(t, ok)
	assert.Equal(t, 5, a.Face)
	assert.Equal(t, framebuffer.StateComplete, fb.State())

	assert.Error(t, fb.RetargetColor(0, small, 0, 0))
	assert.Error(t, fb.AttachCubeFace(framebuffer.ColorAttachment(0), small, 0, 0))

	require.NoError(t, fb.Reconfigure())
	assert.Equal(t, framebuffer.StateAttaching, fb.State())
	assert.False(t, ctx.FramebufferComplete(fb.ID()))
	rb.Resize(16, 16)
	require.NoError(t, fb.AttachCubeFace(framebuffer.ColorAttachment(0), small, 0, 0))
	require.NoError(t, fb.Check())
	w, h, _ := rec.RenderbufferSize(rb.ID())
	assert.Equal(t, 16, w)
	assert.Equal(t, 16, h)
}

func TestResizedAttachmentDemotesComplete(t *testing.T) {
	_, ctx := newContext()
	fb, err := framebuffer.New(ctx, framebuffer.WithName("scratch"))
	require.NoError(t, err)
	color := colorTarget(t, ctx, 64, 64)
	rb, err := framebuffer.NewRenderbuffer(ctx, gpu.FormatDepth24, 64, 64)
	require.NoError(t, err)
	require.NoError(t, fb.AttachTexture(framebuffer.ColorAttachment(0), color, 0))
	require.NoError(t, fb.AttachRenderbuffer(gpu.DepthAttachment, rb))
	require.NoError(t, fb.Check())
	require.True(t, ctx.FramebufferComplete(fb.ID()))

	rb.Resize(800, 600)

	assert.False(t, ctx.FramebufferComplete(fb.ID()))
	err = fb.Bind()
	assert.ErrorIs(t, err, framebuffer.ErrNotComplete)
	assert.Contains(t, err.Error(), "depth resized from 64x64 to 800x600")
	assert.Equal(t, framebuffer.StateAttaching, fb.State())

	require.NoError(t, color.Resize(800, 600))
	require.NoError(t, fb.Check())
	assert.True(t, ctx.FramebufferComplete(fb.ID()))
	assert.NoError(t, fb.Bind())
}

func TestResizedTextureBlocksRetarget(t *testing.T) {
	_, ctx := newContext()
	fb, err := framebuffer.New(ctx)
	require.NoError(t, err)
	color := colorTarget(t, ctx, 32, 32)
	require.NoError(t, fb.AttachTexture(framebuffer.ColorAttachment(0), color, 0))
	require.NoError(t, fb.Check())

	require.NoError(t, color.Resize(16, 16))

	assert.ErrorIs(t, fb.RetargetColor(0, colorTarget(t, ctx, 16, 16), 0, 0), framebuffer.ErrNotComplete)
	assert.Equal(t, framebuffer.StateAttaching, fb.State())
}

func TestBlitDepthToDefault(t *testing.T) {
	rec, ctx := newContext()
	fb, err := framebuffer.New(ctx)
	require.NoError(t, err)
	rb, err := framebuffer.NewRenderbuffer(ctx, gpu.FormatDepth24, 800, 600)
	require.NoError(t, err)
	require.NoError(t, fb.AttachTexture(framebuffer.ColorAttachment(0), colorTarget(t, ctx, 800, 600), 0))
	require.NoError(t, fb.AttachRenderbuffer(gpu.DepthAttachment, rb))
	require.NoError(t, fb.Check())

	require.NoError(t, framebuffer.Blit(ctx, fb, nil, gpu.ClearDepth, gpu.FilterNearest))

	blits := rec.CallsNamed("BlitFramebuffer")
	require.Len(t, blits, 1)
	assert.Equal(t, []any{int32(0), int32(0), int32(800), int32(600), int32(0), int32(0), int32(800), int32(600), gpu.DepthBufferBit, gpu.Nearest}, blits[0].Args)
}
