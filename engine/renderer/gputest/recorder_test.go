package gputest_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	vertexSrc   = "#version 410 core\nlayout (location = 0) in vec3 a_pos;\nuniform mat4 mvp;\nvoid main() { gl_Position = mvp * vec4(a_pos, 1.0); }\n"
	fragmentSrc = "#version 410 core\nout vec4 color;\nuniform vec3 tint;\nvoid main() { color = vec4(tint, 1.0); }\n"
)

func linkedProgram(t *testing.T, r *gputest.Recorder) uint32 {
	t.Helper()
	vs := r.CreateShader(gpu.VertexShader)
	r.ShaderSource(vs, vertexSrc)
	r.CompileShader(vs)
	fs := r.CreateShader(gpu.FragmentShader)
	r.ShaderSource(fs, fragmentSrc)
	r.CompileShader(fs)
	p := r.CreateProgram()
	r.AttachShader(p, vs)
	r.AttachShader(p, fs)
	r.LinkProgram(p)
	require.True(t, r.ProgramLinked(p), r.ProgramInfoLog(p))
	return p
}

func TestRecorder_UniformLookupAndRecording(t *testing.T) {
	r := gputest.NewRecorder()
	p := linkedProgram(t, r)

	assert.Equal(t, int32(-1), r.GetUniformLocation(p, "absent"))
	loc := r.GetUniformLocation(p, "tint")
	require.GreaterOrEqual(t, loc, int32(0))

	r.UseProgram(p)
	r.Uniform3f(loc, 1, 2, 3)

	calls := r.UniformCallsNamed("tint")
	require.Len(t, calls, 1)
	assert.Equal(t, "3f", calls[0].Kind)
	assert.Equal(t, []float32{1, 2, 3}, calls[0].Values)
	assert.Equal(t, gpu.NoError, r.GetError())
}

func TestRecorder_LinkFailsWithoutFragmentStage(t *testing.T) {
	r := gputest.NewRecorder()
	vs := r.CreateShader(gpu.VertexShader)
	r.ShaderSource(vs, vertexSrc)
	r.CompileShader(vs)
	p := r.CreateProgram()
	r.AttachShader(p, vs)
	r.LinkProgram(p)

	assert.False(t, r.ProgramLinked(p))
	assert.Contains(t, r.ProgramInfoLog(p), "error")
}

func TestRecorder_FailNextQueuesCause(t *testing.T) {
	r := gputest.NewRecorder()
	r.FailNext(gpu.HandleTexture, gpu.OutOfMemory)

	assert.Zero(t, r.GenTexture())
	assert.Equal(t, gpu.OutOfMemory, r.GetError())
	assert.Equal(t, gpu.NoError, r.GetError())
	assert.NotZero(t, r.GenTexture())
}

func TestRecorder_FramebufferStatus(t *testing.T) {
	r := gputest.NewRecorder()
	fb := r.GenFramebuffer()
	r.BindFramebuffer(gpu.FramebufferTarget, fb)
	assert.Equal(t, gpu.FramebufferIncompleteMissingAttachment, r.CheckFramebufferStatus(gpu.FramebufferTarget))

	tex := r.GenTexture()
	r.BindTexture(gpu.Texture2D, tex)
	r.TexImage2D(gpu.Texture2D, 0, gpu.DepthComponent24, 4, 4, gpu.DepthComponent, gpu.TypeFloat, nil)
	r.FramebufferTexture2D(gpu.FramebufferTarget, gpu.ColorAttachment0, gpu.Texture2D, tex, 0)
	assert.Equal(t, gpu.FramebufferIncompleteAttachment, r.CheckFramebufferStatus(gpu.FramebufferTarget))

	color := r.GenTexture()
	r.BindTexture(gpu.Texture2D, color)
	r.TexImage2D(gpu.Texture2D, 0, gpu.RGBA8, 4, 4, gpu.RGBA, gpu.TypeUnsignedByte, nil)
	r.FramebufferTexture2D(gpu.FramebufferTarget, gpu.ColorAttachment0, gpu.Texture2D, color, 0)
	r.FramebufferTexture2D(gpu.FramebufferTarget, gpu.DepthAttachment, gpu.Texture2D, tex, 0)
	assert.Equal(t, gpu.FramebufferComplete, r.CheckFramebufferStatus(gpu.FramebufferTarget))
}

func TestRecorder_GenerateMipmapFillsChain(t *testing.T) {
	r := gputest.NewRecorder()
	tex := r.GenTexture()
	r.BindTexture(gpu.Texture2D, tex)
	r.TexImage2D(gpu.Texture2D, 0, gpu.RGBA8, 256, 64, gpu.RGBA, gpu.TypeUnsignedByte, nil)
	r.GenerateMipmap(gpu.Texture2D)

	assert.Equal(t, 9, r.TextureLevels(tex))
	w, h, ok := r.TextureLevelSize(tex, 0, 8)
	require.True(t, ok)
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
}

func TestRecorder_DrawWithoutProgramRaises(t *testing.T) {
	r := gputest.NewRecorder()
	r.DrawArrays(gpu.Triangles, 0, 3)
	assert.Equal(t, gpu.InvalidOperation, r.GetError())
}
