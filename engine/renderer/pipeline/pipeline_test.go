package pipeline_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gputest"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testVertex = `#version 410 core
//@oxy:uniform mvp
layout (location = 0) in vec3 a_pos;
uniform mat4 mvp;
void main() {
    gl_Position = mvp * vec4(a_pos, 1.0);
}
`
	testFragment = `#version 410 core
out vec4 frag_color;
uniform sampler2D image;
uniform float strength;
void main() {
    frag_color = texture(image, vec2(0.5)) * strength;
}
`
)

func newContext() (*gputest.Recorder, *gpu.RenderContext) {
	rec := gputest.NewRecorder()
	return rec, gpu.NewRenderContext(rec, 800, 600)
}

func newProgram(t *testing.T, ctx *gpu.RenderContext) *shader.Program {
	t.Helper()
	p, err := shader.NewProgram(ctx, testVertex, testFragment, shader.WithName("test"))
	require.NoError(t, err)
	return p
}

// callIndex returns the position of the first call named name at or after from, or -1.
func callIndex(names []string, name string, from int) int {
	for i := from; i < len(names); i++ {
		if names[i] == name {
			return i
		}
	}
	return -1
}

func TestNewPipeline_Defaults(t *testing.T) {
	_, ctx := newContext()
	p := pipeline.NewPipeline("default", newProgram(t, ctx))

	assert.Equal(t, "default", p.PipelineKey())
	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.Equal(t, gpu.FuncLess, p.DepthFunc())
	_, culled := p.CullMode()
	assert.False(t, culled)
	assert.False(t, p.BlendEnabled())
	assert.Equal(t, gpu.Triangles, p.Topology())
	assert.False(t, p.SeamlessCubemap())
}

func TestApply_SetsFixedFunctionState(t *testing.T) {
	rec, ctx := newContext()
	prog := newProgram(t, ctx)
	p := pipeline.NewPipeline("skybox", prog,
		pipeline.WithDepthFunc(gpu.FuncLequal),
		pipeline.WithCullMode(gpu.Front),
		pipeline.WithBlendEnabled(true),
		pipeline.WithSeamlessCubemap(),
	)

	require.NoError(t, p.Apply(ctx))

	assert.True(t, rec.IsEnabled(gpu.CapDepthTest))
	assert.True(t, rec.IsEnabled(gpu.CapCullFace))
	assert.True(t, rec.IsEnabled(gpu.CapBlend))
	assert.True(t, rec.IsEnabled(gpu.CapTextureCubeMapSeamless))
	assert.Equal(t, prog.ID(), rec.CurrentProgram())

	depthFuncs := rec.CallsNamed("DepthFunc")
	require.NotEmpty(t, depthFuncs)
	assert.Equal(t, gpu.FuncLequal, depthFuncs[len(depthFuncs)-1].Args[0])
	cull := rec.CallsNamed("CullFace")
	require.NotEmpty(t, cull)
	assert.Equal(t, gpu.Front, cull[len(cull)-1].Args[0])
}

func TestApply_DisablesWhatItDoesNotUse(t *testing.T) {
	rec, ctx := newContext()
	prog := newProgram(t, ctx)
	require.NoError(t, pipeline.NewPipeline("on", prog, pipeline.WithCullMode(gpu.Back)).Apply(ctx))
	require.True(t, rec.IsEnabled(gpu.CapCullFace))

	require.NoError(t, pipeline.NewPipeline("off", prog, pipeline.WithDepthTestEnabled(false)).Apply(ctx))
	assert.False(t, rec.IsEnabled(gpu.CapCullFace))
	assert.False(t, rec.IsEnabled(gpu.CapDepthTest))
}

func TestApply_DestroyedProgram(t *testing.T) {
	_, ctx := newContext()
	prog := newProgram(t, ctx)
	p := pipeline.NewPipeline("gone", prog)
	prog.Destroy()

	err := p.Apply(ctx)
	assert.ErrorIs(t, err, shader.ErrProgramNotLinked)
	assert.Contains(t, err.Error(), "gone")
}

func TestExecute_RunsStepsInOrder(t *testing.T) {
	rec, ctx := newContext()
	prog := newProgram(t, ctx)
	quad, err := model.NewQuad(ctx)
	require.NoError(t, err)
	tex, err := texture.Create2D(ctx, 4, 4, gpu.FormatRGBA8, nil, texture.WithFilter(gpu.FilterLinear, gpu.FilterLinear))
	require.NoError(t, err)

	rec.ResetCalls()
	var order []string
	err = pipeline.Execute(ctx, pipeline.Pass{
		Name:       "composite",
		Viewport:   gpu.Viewport{X: 10, Y: 10, Width: 400, Height: 300},
		Clear:      gpu.ClearColor | gpu.ClearDepth,
		ClearColor: [4]float32{0.1, 0.2, 0.3, 1},
		Inputs:     []pipeline.Input{{Uniform: "image", Texture: tex, Unit: 2}},
		Pipeline:   pipeline.NewPipeline("composite", prog, pipeline.WithTopology(gpu.TriangleStrip)),
		Uniforms: func(p *shader.Program) error {
			order = append(order, "uniforms")
			return p.Set1f("strength", 0.5)
		},
		Draw: func(*shader.Program) error {
			order = append(order, "draw")
			return quad.Draw()
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"uniforms", "draw"}, order)

	names := rec.CallNames()
	viewport := callIndex(names, "Viewport", 0)
	require.GreaterOrEqual(t, viewport, 0)
	clear := callIndex(names, "Clear", viewport)
	require.Greater(t, clear, viewport)
	uniform := callIndex(names, "Uniform1f", clear)
	require.Greater(t, uniform, clear)
	assert.Greater(t, callIndex(names, "DrawArrays", uniform), uniform)
	assert.Equal(t, [4]int32{10, 10, 400, 300}, rec.CurrentViewport())
	assert.Equal(t, uint32(0), rec.CurrentDrawFramebuffer())

	sampler := rec.UniformCallsNamed("image")
	require.Len(t, sampler, 1)
	assert.Equal(t, []float32{2}, sampler[0].Values)
	assert.Equal(t, 1, ctx.Stats().DrawCalls)
}

func TestExecute_DepthMaskBeforeDepthClear(t *testing.T) {
	rec, ctx := newContext()
	prog := newProgram(t, ctx)
	noWrite := pipeline.NewPipeline("overlay", prog, pipeline.WithDepthWriteEnabled(false))
	require.NoError(t, pipeline.Execute(ctx, pipeline.Pass{Name: "overlay", Pipeline: noWrite}))

	rec.ResetCalls()
	require.NoError(t, pipeline.Execute(ctx, pipeline.Pass{Name: "next", Clear: gpu.ClearDepth, Pipeline: noWrite}))

	names := rec.CallNames()
	mask := slices.Index(names, "DepthMask")
	clear := slices.Index(names, "Clear")
	require.GreaterOrEqual(t, mask, 0)
	assert.Less(t, mask, clear)
	assert.Equal(t, true, rec.CallsNamed("DepthMask")[0].Args[0])
}

func TestExecute_TargetViewportFollowsTarget(t *testing.T) {
	rec, ctx := newContext()
	prog := newProgram(t, ctx)
	fb, err := framebuffer.New(ctx, framebuffer.WithName("small"))
	require.NoError(t, err)
	tex, err := texture.Create2D(ctx, 64, 32, gpu.FormatRGBA8, nil)
	require.NoError(t, err)
	require.NoError(t, fb.AttachTexture(framebuffer.ColorAttachment(0), tex, 0))
	require.NoError(t, fb.Check())

	require.NoError(t, pipeline.Execute(ctx, pipeline.Pass{Name: "small", Target: fb, Clear: gpu.ClearColor, Pipeline: pipeline.NewPipeline("p", prog)}))
	assert.Equal(t, [4]int32{0, 0, 64, 32}, rec.CurrentViewport())
	assert.Equal(t, fb.ID(), rec.CurrentDrawFramebuffer())
}

func TestExecute_StopsAtFirstFailure(t *testing.T) {
	_, ctx := newContext()
	prog := newProgram(t, ctx)
	boom := errors.New("boom")
	ran := false

	err := pipeline.Execute(ctx,
		pipeline.Pass{Name: "first", Pipeline: pipeline.NewPipeline("p", prog), Draw: func(*shader.Program) error { return boom }},
		pipeline.Pass{Name: "second", Pipeline: pipeline.NewPipeline("p", prog), Draw: func(*shader.Program) error {
			ran = true
			return nil
		}},
	)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `pass "first"`)
	assert.False(t, ran)
	assert.Empty(t, ctx.Pass())
}

func TestExecute_NoPipeline(t *testing.T) {
	_, ctx := newContext()
	err := pipeline.Execute(ctx, pipeline.Pass{Name: "empty"})
	assert.ErrorIs(t, err, pipeline.ErrNoPipeline)
}

func TestExecute_ReportsDriverErrorsWithPassName(t *testing.T) {
	rec, ctx := newContext()
	prog := newProgram(t, ctx)
	err := pipeline.Execute(ctx, pipeline.Pass{
		Name:     "lighting",
		Pipeline: pipeline.NewPipeline("p", prog),
		Draw: func(*shader.Program) error {
			rec.InjectError(gpu.InvalidOperation)
			return nil
		},
	})

	var driverErr *gpu.DriverError
	require.True(t, errors.As(err, &driverErr))
	assert.Equal(t, "lighting", driverErr.Pass)
	assert.True(t, driverErr.Has(gpu.InvalidOperation))
}

func TestProgramCache_BuildsOnce(t *testing.T) {
	rec, ctx := newContext()
	cache := pipeline.NewProgramCache(ctx)

	first, err := cache.Program("blur", "quad.vert", "blur.frag")
	require.NoError(t, err)
	second, err := cache.Program("blur", "quad.vert", "blur.frag")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, rec.CountCalls("LinkProgram"))
	assert.Equal(t, []string{"blur"}, cache.Keys())

	cache.Destroy()
	assert.Equal(t, 0, rec.Live(gpu.HandleProgram))
	assert.Empty(t, cache.Keys())
}

func TestProgramCache_MissingFile(t *testing.T) {
	_, ctx := newContext()
	_, err := pipeline.NewProgramCache(ctx).Program("nope", "quad.vert", "missing.frag")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `program "nope"`)
}

func TestShaderFiles_ListsEmbeddedSources(t *testing.T) {
	files := pipeline.ShaderFiles()
	assert.Contains(t, files, "quad.vert")
	assert.Contains(t, files, "pbr.frag")
	assert.Contains(t, files, "importance_sampling.glsl")
}
