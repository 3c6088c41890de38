package pipeline_test

import (
	"math/rand/v2"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gputest"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pipeline"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tinyIBL = pipeline.IBLSizes{Cubemap: 2, Irradiance: 2, Prefilter: 2, PrefilterMips: 2, BRDFLUT: 2}

// techniques returns one small instance of every registered technique.
func techniques() map[string]func() pipeline.Technique {
	return map[string]func() pipeline.Technique{
		"shadow":   func() pipeline.Technique { return pipeline.NewShadow(pipeline.WithShadowResolution(16)) },
		"deferred": func() pipeline.Technique { return pipeline.NewDeferred() },
		"ssao":     func() pipeline.Technique { return pipeline.NewSSAO() },
		"bloom":    func() pipeline.Technique { return pipeline.NewBloom(pipeline.WithBlurAmount(2)) },
		"ibl":      func() pipeline.Technique { return pipeline.NewIBL(pipeline.WithSizes(tinyIBL)) },
		"pbr": func() pipeline.Technique {
			return pipeline.NewPBR(pipeline.WithPBRSizes(tinyIBL), pipeline.WithGrid(2, 2))
		},
		"phong": func() pipeline.Technique { return pipeline.NewPhong() },
	}
}

func assertReleased(t *testing.T, rec *gputest.Recorder) {
	t.Helper()
	for _, kind := range []gpu.HandleKind{
		gpu.HandleBuffer, gpu.HandleVertexArray, gpu.HandleTexture,
		gpu.HandleProgram, gpu.HandleFramebuffer, gpu.HandleRenderbuffer,
	} {
		assert.Zero(t, rec.Live(kind), "live %s objects", kind)
	}
}

func keyDown(key uint32) common.InputEvent {
	return common.InputEvent{Type: common.InputKeyDown, Key: key}
}

func TestNames_Sorted(t *testing.T) {
	assert.Equal(t, []string{"bloom", "deferred", "ibl", "pbr", "phong", "shadow", "ssao"}, pipeline.Names())
}

func TestNew_UnknownTechnique(t *testing.T) {
	_, err := pipeline.New("raytracing", pipeline.Assets{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "raytracing")
}

func TestNew_KnownTechniques(t *testing.T) {
	for _, name := range pipeline.Names() {
		tech, err := pipeline.New(name, pipeline.Assets{}, nil)
		require.NoError(t, err)
		assert.Equal(t, name, tech.Name())
	}
}

func TestTechniques_InitRenderDestroy(t *testing.T) {
	for name, create := range techniques() {
		t.Run(name, func(t *testing.T) {
			rec, ctx := newContext()
			tech := create()
			require.NoError(t, tech.Init(ctx))

			frame := pipeline.Frame{Camera: camera.NewCamera(), Time: 1, Delta: 0.016}
			require.NoError(t, tech.Render(frame))
			assert.Positive(t, ctx.Stats().DrawCalls)
			require.NoError(t, tech.Render(frame))

			tech.Destroy()
			assertReleased(t, rec)
			tech.Destroy()
		})
	}
}

func TestTechniques_FailedLinkReleasesEverything(t *testing.T) {
	for name, create := range techniques() {
		t.Run(name, func(t *testing.T) {
			rec, ctx := newContext()
			rec.FailNextLink("error: forced")
			err := create().Init(ctx)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "init "+name)
			assertReleased(t, rec)
		})
	}
}

func TestTechniques_FailedFramebufferReleasesEverything(t *testing.T) {
	for name, create := range techniques() {
		t.Run(name, func(t *testing.T) {
			rec, ctx := newContext()
			rec.FailNext(gpu.HandleFramebuffer, gpu.OutOfMemory)
			tech := create()
			if err := tech.Init(ctx); err == nil {
				// Techniques drawing only to the default framebuffer never allocate one.
				tech.Destroy()
			}
			assertReleased(t, rec)
		})
	}
}

func TestTechniques_RenderBeforeInit(t *testing.T) {
	for name, create := range techniques() {
		t.Run(name, func(t *testing.T) {
			err := create().Render(pipeline.Frame{Camera: camera.NewCamera()})
			assert.ErrorIs(t, err, pipeline.ErrNotInitialized)
		})
	}
}

func TestTechniques_RenderWithoutCamera(t *testing.T) {
	_, ctx := newContext()
	tech := pipeline.NewBloom()
	require.NoError(t, tech.Init(ctx))
	defer tech.Destroy()

	assert.ErrorIs(t, tech.Render(pipeline.Frame{}), pipeline.ErrNoCamera)
}

func TestTechniques_ResizeRejectsInvalidSize(t *testing.T) {
	_, ctx := newContext()
	tech := pipeline.NewSSAO()
	assert.ErrorIs(t, tech.Resize(100, 100), pipeline.ErrNotInitialized)

	require.NoError(t, tech.Init(ctx))
	defer tech.Destroy()
	assert.Error(t, tech.Resize(0, 600))
	assert.Error(t, tech.Resize(800, -1))
	assert.NoError(t, tech.Resize(1024, 768))
}

func TestTechniques_ShareProgramCache(t *testing.T) {
	rec, ctx := newContext()
	cache := pipeline.NewProgramCache(ctx)
	defer cache.Destroy()

	first := pipeline.NewSSAO(pipeline.WithSSAOPrograms(cache))
	require.NoError(t, first.Init(ctx))
	links := rec.CountCalls("LinkProgram")
	second := pipeline.NewSSAO(pipeline.WithSSAOPrograms(cache))
	require.NoError(t, second.Init(ctx))
	assert.Equal(t, links, rec.CountCalls("LinkProgram"))

	first.Destroy()
	second.Destroy()
	assert.NotZero(t, rec.Live(gpu.HandleProgram))
}

func TestIBL_RestoresDefaultTarget(t *testing.T) {
	rec, ctx := newContext()
	ibl := pipeline.NewIBL(pipeline.WithSizes(tinyIBL))
	require.NoError(t, ibl.Init(ctx))
	defer ibl.Destroy()

	storage := rec.CallsNamed("RenderbufferStorage")
	require.NotEmpty(t, storage)
	last := storage[len(storage)-1]
	assert.Equal(t, []any{gpu.DepthComponent24, int32(800), int32(600)}, last.Args)
	assert.Equal(t, uint32(0), rec.CurrentDrawFramebuffer())
	assert.Equal(t, [4]int32{0, 0, 800, 600}, rec.CurrentViewport())

	maps := ibl.Maps()
	require.NotNil(t, maps.Environment)
	require.NotNil(t, maps.Irradiance)
	require.NotNil(t, maps.Prefilter)
	require.NotNil(t, maps.BRDFLUT)
	w, h, ok := rec.TextureLevelSize(maps.Prefilter.ID(), 0, 1)
	require.True(t, ok)
	assert.Equal(t, []int{1, 1}, []int{w, h})
}

func TestIBL_TwoByTwoEnvironmentSizesEverySubPass(t *testing.T) {
	rec, ctx := newContext()
	env := &common.ImageData{
		Name: "stand-in.hdr", Width: 2, Height: 2, Channels: 3, HDR: true,
		Floats: []float32{1, 0, 0, 0, 1, 0, 0, 0, 1, 1, 1, 1},
	}
	ibl := pipeline.NewIBL(pipeline.WithEnvironment(env))
	require.NoError(t, ibl.Init(ctx))
	defer ibl.Destroy()

	var storage, viewport [2]int32
	draws := 0
	for _, c := range rec.Calls() {
		switch c.Name {
		case "RenderbufferStorage":
			storage = [2]int32{c.Args[1].(int32), c.Args[2].(int32)}
		case "Viewport":
			viewport = [2]int32{c.Args[2].(int32), c.Args[3].(int32)}
		case "DrawArrays", "DrawElements":
			draws++
			assert.Equal(t, viewport, storage, "draw %d", draws)
		}
	}
	faces := 6 * (2 + pipeline.PrefilterMipLevels)
	assert.Equal(t, faces+1, draws)
	assert.Equal(t, [2]int32{800, 600}, storage)
	assert.Equal(t, [4]int32{0, 0, 800, 600}, rec.CurrentViewport())
	assert.Equal(t, uint32(0), rec.CurrentDrawFramebuffer())
	assert.Equal(t, gpu.NoError, rec.GetError())
}

func TestIBL_CaptureFramebufferNotLeftComplete(t *testing.T) {
	_, ctx := newContext()
	ibl := pipeline.NewIBL(pipeline.WithSizes(tinyIBL))
	require.NoError(t, ibl.Init(ctx))
	defer ibl.Destroy()

	assert.Equal(t, framebuffer.StateAttaching, ibl.CaptureState())
}

func TestIBL_ResizeKeepsScratchAtWindowSize(t *testing.T) {
	_, ctx := newContext()
	ibl := pipeline.NewIBL(pipeline.WithSizes(tinyIBL))
	require.NoError(t, ibl.Init(ctx))
	defer ibl.Destroy()

	w, h := ibl.ScratchSize()
	assert.Equal(t, []int{800, 600}, []int{w, h})
	require.NoError(t, ibl.Resize(1024, 768))
	w, h = ibl.ScratchSize()
	assert.Equal(t, []int{1024, 768}, []int{w, h})
}

func TestIBL_RejectsTooManyPrefilterMips(t *testing.T) {
	rec, ctx := newContext()
	sizes := tinyIBL
	sizes.PrefilterMips = 5
	err := pipeline.NewIBL(pipeline.WithSizes(sizes)).Init(ctx)
	assert.Error(t, err)
	assertReleased(t, rec)
}

func TestIBL_ViewKeys(t *testing.T) {
	ibl := pipeline.NewIBL()
	assert.Equal(t, pipeline.ViewEnvironment, ibl.View())
	assert.True(t, ibl.HandleEvent(keyDown(common.Key2)))
	assert.Equal(t, pipeline.ViewIrradiance, ibl.View())
	assert.True(t, ibl.HandleEvent(keyDown(common.Key3)))
	assert.Equal(t, pipeline.ViewPrefilter, ibl.View())
	assert.False(t, ibl.HandleEvent(keyDown(common.KeyB)))
}

func TestCaptureViews_SixDistinctFaces(t *testing.T) {
	views := pipeline.CaptureViews()
	for i := range views {
		for j := i + 1; j < len(views); j++ {
			assert.NotEqual(t, views[i], views[j])
		}
	}
}

func TestBloom_ExposureNeverNegative(t *testing.T) {
	b := pipeline.NewBloom()
	for range 10 {
		assert.True(t, b.HandleEvent(keyDown(common.KeyQ)))
	}
	assert.Equal(t, float32(0), b.Exposure())

	b.HandleEvent(keyDown(common.KeyE))
	assert.Equal(t, float32(0.5), b.Exposure())

	assert.True(t, b.BloomEnabled())
	b.HandleEvent(keyDown(common.KeyB))
	assert.False(t, b.BloomEnabled())
	assert.False(t, b.HandleEvent(common.InputEvent{Type: common.InputKeyUp, Key: common.KeyB}))
}

func TestBloom_BlurPassesAlternate(t *testing.T) {
	rec, ctx := newContext()
	b := pipeline.NewBloom(pipeline.WithBlurAmount(3))
	require.NoError(t, b.Init(ctx))
	defer b.Destroy()
	assert.Equal(t, 6, b.BlurPasses())

	rec.ResetCalls()
	require.NoError(t, b.Render(pipeline.Frame{Camera: camera.NewCamera()}))
	var dirs []float32
	for _, u := range rec.UniformCallsNamed("horizontal_blur") {
		dirs = append(dirs, u.Values[0])
	}
	assert.Equal(t, []float32{1, 0, 1, 0, 1, 0}, dirs)
}

func TestSSAOKernel_InHemisphere(t *testing.T) {
	kernel := pipeline.SSAOKernel(pipeline.SSAOKernelSize, rand.New(rand.NewPCG(1, 2)))
	require.Len(t, kernel, 64)
	for _, s := range kernel {
		assert.GreaterOrEqual(t, s.Z(), float32(0))
		assert.LessOrEqual(t, s.Len(), float32(1.0001))
	}
	assert.Len(t, pipeline.NewSSAO().Kernel(), pipeline.SSAOKernelSize)
}

func TestSSAO_Toggle(t *testing.T) {
	s := pipeline.NewSSAO()
	assert.True(t, s.Enabled())
	assert.True(t, s.HandleEvent(keyDown(common.KeyO)))
	assert.False(t, s.Enabled())
	assert.Nil(t, s.Occlusion())
}

func TestDeferredLights_Deterministic(t *testing.T) {
	a := pipeline.DeferredLights(pipeline.DeferredLightCount, rand.New(rand.NewPCG(3, 3)))
	b := pipeline.DeferredLights(pipeline.DeferredLightCount, rand.New(rand.NewPCG(3, 3)))
	assert.Equal(t, a, b)
	for _, l := range a {
		assert.GreaterOrEqual(t, l.Color.X(), float32(0.5))
		assert.LessOrEqual(t, l.Color.X(), float32(1))
	}
}

func TestDeferred_CullsLights(t *testing.T) {
	_, ctx := newContext()
	d := pipeline.NewDeferred()
	require.NoError(t, d.Init(ctx))
	defer d.Destroy()

	require.NoError(t, d.Render(pipeline.Frame{Camera: camera.NewCamera()}))
	assert.LessOrEqual(t, d.VisibleLights(), pipeline.DeferredLightCount)
	assert.Len(t, d.Lights(), pipeline.DeferredLightCount)
	assert.Len(t, d.GBuffer(), 3)
}

func TestDeferred_GeometryPassWritesNormalMapFlag(t *testing.T) {
	rec, ctx := newContext()
	d := pipeline.NewDeferred()
	require.NoError(t, d.Init(ctx))
	defer d.Destroy()

	require.NoError(t, d.Render(pipeline.Frame{Camera: camera.NewCamera()}))
	calls := rec.UniformCallsNamed("material.has_normal_map")
	require.NotEmpty(t, calls)
	assert.Equal(t, []float32{0}, calls[len(calls)-1].Values)
}

// lastUniform returns the values of the most recent write to name.
func lastUniform(t *testing.T, rec *gputest.Recorder, name string) []float32 {
	t.Helper()
	calls := rec.UniformCallsNamed(name)
	require.NotEmpty(t, calls, "no writes to %s", name)
	return calls[len(calls)-1].Values
}

func TestPhong_PushesEveryLight(t *testing.T) {
	rec, ctx := newContext()
	p := pipeline.NewPhong()
	require.NoError(t, p.Init(ctx))
	defer p.Destroy()

	cam := camera.NewCamera()
	require.NoError(t, p.Render(pipeline.Frame{Camera: cam}))

	assert.Equal(t, []float32{-0.2, -1, -0.3}, lastUniform(t, rec, "dir_light.direction"))
	assert.Equal(t, []float32{0.4, 0.4, 0.4}, lastUniform(t, rec, "dir_light.color"))
	assert.Equal(t, []float32{pipeline.PhongPointLightCount}, lastUniform(t, rec, "point_light_count"))
	last := p.PointLights()[pipeline.PhongPointLightCount-1].Position
	assert.Equal(t, []float32{last.X(), last.Y(), last.Z()}, lastUniform(t, rec, "point_lights[3].position"))

	pos := cam.Position()
	assert.Equal(t, []float32{pos.X(), pos.Y(), pos.Z()}, lastUniform(t, rec, "flash_light.position"))
	cutOff := lastUniform(t, rec, "flash_light.cut_off")[0]
	outer := lastUniform(t, rec, "flash_light.outer_cut_off")[0]
	assert.Greater(t, cutOff, outer)
	assert.Equal(t, []float32{1}, lastUniform(t, rec, "flash_light_on"))
	assert.Equal(t, []float32{1}, lastUniform(t, rec, "material.has_normal_map"))
	assert.Equal(t, gpu.NoError, rec.GetError())
}

func TestPhong_TogglesFlashLightAndNormalMaps(t *testing.T) {
	rec, ctx := newContext()
	p := pipeline.NewPhong()
	require.NoError(t, p.Init(ctx))
	defer p.Destroy()

	assert.True(t, p.HandleEvent(keyDown(common.KeyF)))
	assert.True(t, p.HandleEvent(keyDown(common.KeyN)))
	assert.False(t, p.HandleEvent(keyDown(common.KeyQ)))
	assert.False(t, p.FlashLightOn())
	assert.False(t, p.NormalMapsOn())

	require.NoError(t, p.Render(pipeline.Frame{Camera: camera.NewCamera()}))
	assert.Equal(t, []float32{0}, lastUniform(t, rec, "flash_light_on"))
	assert.Equal(t, []float32{0}, lastUniform(t, rec, "material.has_normal_map"))

	assert.True(t, p.HandleEvent(keyDown(common.KeyN)))
	require.NoError(t, p.Render(pipeline.Frame{Camera: camera.NewCamera()}))
	assert.Equal(t, []float32{1}, lastUniform(t, rec, "material.has_normal_map"))
}

func TestPhong_StartOptions(t *testing.T) {
	p := pipeline.NewPhong(pipeline.WithFlashLight(false), pipeline.WithNormalMaps(false))
	assert.False(t, p.FlashLightOn())
	assert.False(t, p.NormalMapsOn())
	assert.Len(t, p.PointLights(), pipeline.PhongPointLightCount)
	assert.Equal(t, mgl32.Vec3{-0.2, -1, -0.3}, p.Sun().Direction)
}

func TestGridMaterial_ClampsRoughness(t *testing.T) {
	m := pipeline.GridMaterial(0, 0, 7, 7)
	assert.Equal(t, float32(0.05), m.RoughnessValue)
	assert.Equal(t, float32(0), m.MetallicValue)

	m = pipeline.GridMaterial(6, 6, 7, 7)
	assert.InDelta(t, 6.0/7.0, m.RoughnessValue, 1e-6)
	assert.InDelta(t, 6.0/7.0, m.MetallicValue, 1e-6)
}

func TestPBR_SharesCacheWithIBL(t *testing.T) {
	_, ctx := newContext()
	cache := pipeline.NewProgramCache(ctx)
	defer cache.Destroy()
	p := pipeline.NewPBR(pipeline.WithPBRSizes(tinyIBL), pipeline.WithPBRPrograms(cache))
	require.NoError(t, p.Init(ctx))
	defer p.Destroy()

	assert.Contains(t, cache.Keys(), "pbr")
	assert.Contains(t, cache.Keys(), "ibl_prefilter")
	assert.Equal(t, 1, p.IBL().Sizes().PrefilterMips-1)
}
