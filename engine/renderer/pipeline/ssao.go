package pipeline

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// SSAO sampling parameters.
const (
	SSAOKernelSize         = 64
	SSAONoiseSize          = 4
	SSAORadius     float32 = 0.5
	SSAOBias       float32 = 0.025
)

// SSAOKernel builds n sample offsets in the unit hemisphere around +Z. Samples are pushed
// towards the origin so occlusion close to the fragment weighs more.
//
// Parameters:
//   - n: the number of samples
//   - rng: the random source
//
// Returns:
//   - []mgl32.Vec3: the kernel, every sample has z >= 0 and length <= 1
func SSAOKernel(n int, rng *rand.Rand) []mgl32.Vec3 {
	kernel := make([]mgl32.Vec3, n)
	for i := range kernel {
		s := mgl32.Vec3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()}
		if s.Len() == 0 {
			s = mgl32.Vec3{0, 0, 1}
		}
		s = s.Normalize().Mul(rng.Float32())
		t := float32(i) / float32(n)
		kernel[i] = s.Mul(common.Lerp(0.1, 1, t*t))
	}
	return kernel
}

// ssaoNoise builds the tiled rotation vectors around the Z axis, RGBA float texels.
func ssaoNoise(rng *rand.Rand) []float32 {
	noise := make([]float32, 0, SSAONoiseSize*SSAONoiseSize*4)
	for range SSAONoiseSize * SSAONoiseSize {
		noise = append(noise, rng.Float32()*2-1, rng.Float32()*2-1, 0, 0)
	}
	return noise
}

// SSAO renders a view-space geometry buffer, estimates ambient occlusion from a hemisphere
// kernel rotated by a tiled noise texture, blurs the result and applies it to the ambient term
// of a single point light.
type SSAO struct {
	base
	imported *common.ImportedModel
	seed     uint64

	kernel  []mgl32.Vec3
	noise   []float32
	light   light.PointLight
	enabled bool

	gbuffer   *screenTarget
	occlusion *screenTarget
	blurred   *screenTarget
	noiseTex  *texture.Texture
	quad      *model.Mesh
	room      *model.Mesh
	scene     model.Model

	geometry Pipeline
	ssao     Pipeline
	blur     Pipeline
	lighting Pipeline
}

var (
	_ Technique    = &SSAO{}
	_ InputHandler = &SSAO{}
)

// NewSSAO creates an uninitialized screen-space ambient occlusion technique.
//
// Parameters:
//   - opts: SSAO builder options
//
// Returns:
//   - *SSAO: the technique
func NewSSAO(opts ...SSAOBuilderOption) *SSAO {
	s := &SSAO{
		base:    base{name: "ssao"},
		seed:    7,
		enabled: true,
		light: light.NewPointLight(mgl32.Vec3{2, 4, -2}, mgl32.Vec3{0.2, 0.2, 0.7},
			light.WithAttenuation(light.DefaultLinear, light.DefaultQuadratic)),
	}
	for _, opt := range opts {
		opt(s)
	}
	rng := rand.New(rand.NewPCG(s.seed, s.seed^0x9e3779b97f4a7c15))
	s.kernel = SSAOKernel(SSAOKernelSize, rng)
	s.noise = ssaoNoise(rng)
	return s
}

// Kernel returns the sample kernel.
func (s *SSAO) Kernel() []mgl32.Vec3 { return s.kernel }

// Enabled reports whether occlusion is applied to the lighting.
func (s *SSAO) Enabled() bool { return s.enabled }

// Occlusion returns the blurred occlusion texture, nil before Init.
func (s *SSAO) Occlusion() *texture.Texture {
	if s.blurred == nil {
		return nil
	}
	return s.blurred.colors[0]
}

// HandleEvent toggles occlusion on O.
func (s *SSAO) HandleEvent(ev common.InputEvent) bool {
	if ev.Type != common.InputKeyDown || ev.Key != common.KeyO {
		return false
	}
	s.enabled = !s.enabled
	if s.ctx != nil {
		s.ctx.Logger().Info("ambient occlusion toggled", "enabled", s.enabled)
	}
	return true
}

func (s *SSAO) Init(ctx *gpu.RenderContext) error {
	s.begin(ctx)
	if err := s.setup(); err != nil {
		return s.fail(err)
	}
	return s.done()
}

func (s *SSAO) setup() error {
	ctx := s.ctx
	var err error
	s.gbuffer, err = newScreenTarget(&s.base, "ssao_gbuffer", true,
		colorSpec{"position", gpu.FormatRGBA16F, gpu.FilterNearest},
		colorSpec{"normal", gpu.FormatRGBA16F, gpu.FilterNearest},
		colorSpec{"albedo", gpu.FormatRGBA8, gpu.FilterNearest},
	)
	if err != nil {
		return err
	}
	if s.occlusion, err = newScreenTarget(&s.base, "ssao", false, colorSpec{"occlusion", gpu.FormatR8, gpu.FilterNearest}); err != nil {
		return err
	}
	if s.blurred, err = newScreenTarget(&s.base, "ssao_blur", false, colorSpec{"occlusion", gpu.FormatR8, gpu.FilterNearest}); err != nil {
		return err
	}

	s.noiseTex, err = texture.Create2D(ctx, SSAONoiseSize, SSAONoiseSize, gpu.FormatRGBA16F, common.SliceToBytes(s.noise),
		texture.WithName("ssao_noise"),
		texture.WithFilter(gpu.FilterNearest, gpu.FilterNearest),
		texture.WithWrap(gpu.WrapRepeat),
	)
	if err != nil {
		return err
	}
	s.own(s.noiseTex)

	if s.quad, err = model.NewQuad(ctx); err != nil {
		return err
	}
	s.own(s.quad)
	if s.room, err = model.NewCube(ctx); err != nil {
		return err
	}
	s.own(s.room)
	if s.scene, err = sceneModel(&s.base, s.imported); err != nil {
		return err
	}

	geometry, err := s.programs.Program("ssao_gbuffer", "ssao_gbuffer.vert", "ssao_gbuffer.frag")
	if err != nil {
		return err
	}
	occlusion, err := s.programs.Program("ssao", "quad.vert", "ssao.frag",
		shader.WithDefines(map[string]string{"KERNEL_SIZE": strconv.Itoa(SSAOKernelSize)}))
	if err != nil {
		return err
	}
	blur, err := s.programs.Program("ssao_blur", "quad.vert", "ssao_blur.frag")
	if err != nil {
		return err
	}
	lighting, err := s.programs.Program("ssao_lighting", "quad.vert", "ssao_lighting.frag")
	if err != nil {
		return err
	}
	screen := []PipelineBuilderOption{WithDepthTestEnabled(false), WithDepthWriteEnabled(false), WithTopology(gpu.TriangleStrip)}
	s.geometry = NewPipeline("ssao_gbuffer", geometry)
	s.ssao = NewPipeline("ssao", occlusion, screen...)
	s.blur = NewPipeline("ssao_blur", blur, screen...)
	s.lighting = NewPipeline("ssao_lighting", lighting, screen...)
	return nil
}

func (s *SSAO) Resize(width, height int) error {
	return resizeTargets(&s.base, width, height, s.gbuffer, s.occlusion, s.blurred)
}

func (s *SSAO) drawGeometry(p *shader.Program) error {
	room := common.ModelMatrix(mgl32.Vec3{0, 7, 0}, mgl32.Vec3{}, mgl32.Vec3{7.5, 7.5, 7.5})
	if err := errors.Join(p.SetMat4("model", room), p.SetBool("normal_inverted", true)); err != nil {
		return err
	}
	if err := s.room.Draw(); err != nil {
		return err
	}
	object := mgl32.Translate3D(0, 0.5, 0).Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(-90)))
	if err := errors.Join(p.SetMat4("model", object), p.SetBool("normal_inverted", false)); err != nil {
		return err
	}
	return s.scene.Draw(nil)
}

func (s *SSAO) Render(frame Frame) error {
	if err := s.beginFrame(frame); err != nil {
		return err
	}
	cam := frame.Camera
	projection, view := cam.ProjectionMatrix(), cam.ViewMatrix()
	gb := s.gbuffer.colors
	drawQuad := func(*shader.Program) error { return s.quad.Draw() }

	return Execute(s.ctx,
		Pass{
			Name:       "ssao geometry",
			Target:     s.gbuffer.fb,
			Clear:      gpu.ClearColor | gpu.ClearDepth,
			ClearColor: [4]float32{0, 0, 0, 1},
			Pipeline:   s.geometry,
			Uniforms: func(p *shader.Program) error {
				return errors.Join(p.SetMat4("projection", projection), p.SetMat4("view", view))
			},
			Draw: s.drawGeometry,
		},
		Pass{
			Name:   "ssao occlusion",
			Target: s.occlusion.fb,
			Clear:  gpu.ClearColor,
			Inputs: []Input{
				{Uniform: "g_position", Texture: gb[0], Unit: 0},
				{Uniform: "g_normal", Texture: gb[1], Unit: 1},
				{Uniform: "noise_texture", Texture: s.noiseTex, Unit: 2},
			},
			Pipeline: s.ssao,
			Uniforms: func(p *shader.Program) error {
				errs := []error{
					p.SetMat4("projection", projection),
					p.Set2f("noise_scale", float32(s.width)/SSAONoiseSize, float32(s.height)/SSAONoiseSize),
					p.Set1f("radius", SSAORadius),
					p.Set1f("bias", SSAOBias),
				}
				for i, k := range s.kernel {
					errs = append(errs, p.SetVec3(fmt.Sprintf("samples[%d]", i), k))
				}
				return errors.Join(errs...)
			},
			Draw: drawQuad,
		},
		Pass{
			Name:     "ssao blur",
			Target:   s.blurred.fb,
			Clear:    gpu.ClearColor,
			Inputs:   []Input{{Uniform: "ssao_input", Texture: s.occlusion.colors[0], Unit: 0}},
			Pipeline: s.blur,
			Draw:     drawQuad,
		},
		Pass{
			Name:  "ssao lighting",
			Clear: gpu.ClearColor | gpu.ClearDepth,
			Inputs: []Input{
				{Uniform: "g_position", Texture: gb[0], Unit: 0},
				{Uniform: "g_normal", Texture: gb[1], Unit: 1},
				{Uniform: "g_albedo", Texture: gb[2], Unit: 2},
				{Uniform: "ssao", Texture: s.blurred.colors[0], Unit: 3},
			},
			Pipeline: s.lighting,
			Uniforms: func(p *shader.Program) error {
				return errors.Join(
					p.SetPointLight("light", s.light.ViewSpace(view)),
					p.SetBool("enable_ssao", s.enabled),
				)
			},
			Draw: drawQuad,
		},
	)
}
