package pipeline

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// Bloom defaults.
const (
	DefaultExposure    float32 = 1
	ExposureStep       float32 = 0.5
	DefaultBlurAmount          = 5
	bloomLightCount            = 4
)

// BloomLights returns the four HDR lights of the bloom scene. Colours exceed 1 so they pass the
// brightness threshold.
func BloomLights() []light.PointLight {
	attenuation := light.WithAttenuation(0, 1)
	return []light.PointLight{
		light.NewPointLight(mgl32.Vec3{0, 0.5, 1.5}, mgl32.Vec3{5, 5, 5}, attenuation),
		light.NewPointLight(mgl32.Vec3{-4, 0.5, -3}, mgl32.Vec3{10, 0, 0}, attenuation),
		light.NewPointLight(mgl32.Vec3{3, 0.5, 1}, mgl32.Vec3{0, 0, 15}, attenuation),
		light.NewPointLight(mgl32.Vec3{-0.8, 2.4, -1}, mgl32.Vec3{0, 5, 0}, attenuation),
	}
}

// bloomContainers are the model matrices of the boxes standing on the floor.
func bloomContainers() []mgl32.Mat4 {
	rotated := func(pos mgl32.Vec3, deg, scale float32) mgl32.Mat4 {
		return mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()).
			Mul4(mgl32.HomogRotate3D(mgl32.DegToRad(deg), mgl32.Vec3{1, 0, 1}.Normalize())).
			Mul4(mgl32.Scale3D(scale, scale, scale))
	}
	return []mgl32.Mat4{
		common.ModelMatrix(mgl32.Vec3{0, 1.5, 0}, mgl32.Vec3{}, mgl32.Vec3{0.5, 0.5, 0.5}),
		common.ModelMatrix(mgl32.Vec3{2, 0, 1}, mgl32.Vec3{}, mgl32.Vec3{0.5, 0.5, 0.5}),
		rotated(mgl32.Vec3{-1, -1, 2}, 60, 1),
		rotated(mgl32.Vec3{0, 2.7, 4}, 23, 1.25),
		rotated(mgl32.Vec3{-2, 1, -3}, 124, 1),
		common.ModelMatrix(mgl32.Vec3{-3, 0, 0}, mgl32.Vec3{}, mgl32.Vec3{0.5, 0.5, 0.5}),
	}
}

// Bloom renders an HDR scene into a colour and a bright-pass attachment, blurs the bright part
// with a separable Gaussian in two ping-pong targets and composites both with exposure tone
// mapping. Q and E change the exposure, B toggles the bloom term.
type Bloom struct {
	base
	floorImage     *common.ImageData
	containerImage *common.ImageData
	exposure       float32
	blurAmount     int
	enabled        bool
	lights         []light.PointLight

	hdr       *screenTarget
	pingpong  [2]*screenTarget
	floor     *texture.Texture
	container *texture.Texture
	cube      *model.Mesh
	quad      *model.Mesh

	scene     Pipeline
	markers   Pipeline
	blur      Pipeline
	composite Pipeline
}

var (
	_ Technique    = &Bloom{}
	_ InputHandler = &Bloom{}
)

// NewBloom creates an uninitialized bloom technique.
//
// Parameters:
//   - opts: bloom builder options
//
// Returns:
//   - *Bloom: the technique
func NewBloom(opts ...BloomBuilderOption) *Bloom {
	b := &Bloom{
		base:       base{name: "bloom"},
		exposure:   DefaultExposure,
		blurAmount: DefaultBlurAmount,
		enabled:    true,
		lights:     BloomLights(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Exposure returns the tone mapping exposure.
func (b *Bloom) Exposure() float32 { return b.exposure }

// BloomEnabled reports whether the blurred bright pass is added in the composite.
func (b *Bloom) BloomEnabled() bool { return b.enabled }

// BlurPasses returns the number of single-direction blur passes per frame.
func (b *Bloom) BlurPasses() int { return b.blurAmount * 2 }

// HandleEvent adjusts exposure on Q and E and toggles bloom on B.
func (b *Bloom) HandleEvent(ev common.InputEvent) bool {
	if ev.Type != common.InputKeyDown {
		return false
	}
	switch ev.Key {
	case common.KeyQ:
		b.exposure = max(b.exposure-ExposureStep, 0)
	case common.KeyE:
		b.exposure += ExposureStep
	case common.KeyB:
		b.enabled = !b.enabled
	default:
		return false
	}
	if b.ctx != nil {
		b.ctx.Logger().Debug("bloom controls", "exposure", b.exposure, "bloom", b.enabled)
	}
	return true
}

func (b *Bloom) Init(ctx *gpu.RenderContext) error {
	b.begin(ctx)
	if err := b.setup(); err != nil {
		return b.fail(err)
	}
	return b.done()
}

func (b *Bloom) setup() error {
	ctx := b.ctx
	var err error
	b.hdr, err = newScreenTarget(&b.base, "hdr", true,
		colorSpec{"scene", gpu.FormatRGB16F, gpu.FilterLinear},
		colorSpec{"bright", gpu.FormatRGB16F, gpu.FilterLinear},
	)
	if err != nil {
		return err
	}
	for i := range b.pingpong {
		if b.pingpong[i], err = newScreenTarget(&b.base, "pingpong"+strconv.Itoa(i), false,
			colorSpec{"color", gpu.FormatRGB16F, gpu.FilterLinear}); err != nil {
			return err
		}
	}

	if b.floor, err = imageTexture(ctx, b.floorImage, checkerImage("wood", 64, 8, [3]byte{150, 111, 51}, [3]byte{120, 85, 40}), texture.TagDiffuse,
		texture.WithMipmaps(), texture.WithFilter(gpu.FilterLinearMipmapLinear, gpu.FilterLinear)); err != nil {
		return err
	}
	b.own(b.floor)
	if b.container, err = imageTexture(ctx, b.containerImage, checkerImage("container", 64, 2, [3]byte{160, 110, 60}, [3]byte{110, 110, 110}), texture.TagDiffuse,
		texture.WithMipmaps(), texture.WithFilter(gpu.FilterLinearMipmapLinear, gpu.FilterLinear)); err != nil {
		return err
	}
	b.own(b.container)

	if b.cube, err = model.NewCube(ctx); err != nil {
		return err
	}
	b.own(b.cube)
	if b.quad, err = model.NewQuad(ctx); err != nil {
		return err
	}
	b.own(b.quad)

	scene, err := b.programs.Program("bloom_scene", "lit.vert", "bloom_scene.frag",
		shader.WithDefines(map[string]string{"LIGHT_COUNT": strconv.Itoa(bloomLightCount)}))
	if err != nil {
		return err
	}
	markers, err := b.programs.Program("bloom_light", "light_box.vert", "bloom_light.frag")
	if err != nil {
		return err
	}
	blur, err := b.programs.Program("bloom_blur", "quad.vert", "blur.frag")
	if err != nil {
		return err
	}
	composite, err := b.programs.Program("bloom_final", "quad.vert", "bloom_final.frag")
	if err != nil {
		return err
	}
	screen := []PipelineBuilderOption{WithDepthTestEnabled(false), WithDepthWriteEnabled(false), WithTopology(gpu.TriangleStrip)}
	b.scene = NewPipeline("bloom_scene", scene)
	b.markers = NewPipeline("bloom_light", markers)
	b.blur = NewPipeline("bloom_blur", blur, screen...)
	b.composite = NewPipeline("bloom_final", composite, screen...)
	return nil
}

func (b *Bloom) Resize(width, height int) error {
	return resizeTargets(&b.base, width, height, b.hdr, b.pingpong[0], b.pingpong[1])
}

// blurPasses builds the alternating blur passes. The first reads the bright attachment, every
// later pass reads the target the previous one wrote. It returns the passes and the texture
// holding the final blur.
func (b *Bloom) blurPasses() ([]Pass, *texture.Texture) {
	passes := make([]Pass, 0, b.BlurPasses())
	source := b.hdr.colors[1]
	for i := range b.BlurPasses() {
		horizontal := i%2 == 0
		target := b.pingpong[0]
		if horizontal {
			target = b.pingpong[1]
		}
		passes = append(passes, Pass{
			Name:     fmt.Sprintf("bloom blur %d", i),
			Target:   target.fb,
			Inputs:   []Input{{Uniform: "image", Texture: source, Unit: 0}},
			Pipeline: b.blur,
			Uniforms: func(p *shader.Program) error {
				return p.SetBool("horizontal_blur", horizontal)
			},
			Draw: func(*shader.Program) error { return b.quad.Draw() },
		})
		source = target.colors[0]
	}
	return passes, source
}

func (b *Bloom) Render(frame Frame) error {
	if err := b.beginFrame(frame); err != nil {
		return err
	}
	cam := frame.Camera
	projection, view := cam.ProjectionMatrix(), cam.ViewMatrix()
	camera := func(p *shader.Program) error {
		return errors.Join(p.SetMat4("projection", projection), p.SetMat4("view", view))
	}

	passes := []Pass{
		{
			Name:       "bloom scene",
			Target:     b.hdr.fb,
			Clear:      gpu.ClearColor | gpu.ClearDepth,
			ClearColor: [4]float32{0, 0, 0, 1},
			Pipeline:   b.scene,
			Uniforms: func(p *shader.Program) error {
				errs := []error{camera(p)}
				for i, l := range b.lights {
					errs = append(errs, p.SetPointLight(fmt.Sprintf("lights[%d]", i), l))
				}
				return errors.Join(errs...)
			},
			Draw: func(p *shader.Program) error {
				floor := common.ModelMatrix(mgl32.Vec3{0, -1, 0}, mgl32.Vec3{}, mgl32.Vec3{12.5, 0.5, 12.5})
				if err := errors.Join(p.SetTextureUnit("diffuse_texture", b.floor, 0), p.SetMat4("model", floor)); err != nil {
					return err
				}
				if err := b.cube.Draw(); err != nil {
					return err
				}
				if err := p.SetTextureUnit("diffuse_texture", b.container, 0); err != nil {
					return err
				}
				for _, m := range bloomContainers() {
					if err := p.SetMat4("model", m); err != nil {
						return err
					}
					if err := b.cube.Draw(); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Name:     "bloom light markers",
			Target:   b.hdr.fb,
			Pipeline: b.markers,
			Uniforms: camera,
			Draw: func(p *shader.Program) error {
				for _, l := range b.lights {
					m := common.ModelMatrix(l.Position, mgl32.Vec3{}, mgl32.Vec3{0.25, 0.25, 0.25})
					if err := errors.Join(p.SetMat4("model", m), p.SetVec3("light_color", l.Color)); err != nil {
						return err
					}
					if err := b.cube.Draw(); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
	blur, blurred := b.blurPasses()
	passes = append(passes, blur...)
	passes = append(passes, Pass{
		Name:  "bloom composite",
		Clear: gpu.ClearColor | gpu.ClearDepth,
		Inputs: []Input{
			{Uniform: "scene", Texture: b.hdr.colors[0], Unit: 0},
			{Uniform: "bloom_blur_buffer", Texture: blurred, Unit: 1},
		},
		Pipeline: b.composite,
		Uniforms: func(p *shader.Program) error {
			return errors.Join(p.SetBool("enable_bloom", b.enabled), p.Set1f("exposure", b.exposure))
		},
		Draw: func(*shader.Program) error { return b.quad.Draw() },
	})
	return Execute(b.ctx, passes...)
}
