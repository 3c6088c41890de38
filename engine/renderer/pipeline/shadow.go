package pipeline

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// Shadow renders a directional shadow map from an orthographic light and samples it with
// percentage-closer filtering in a Blinn-Phong lit pass.
type Shadow struct {
	base
	diffuseImage *common.ImageData
	resolution   int
	caster       light.ShadowCaster

	depthMap *texture.Texture
	depthFB  *framebuffer.Framebuffer
	diffuse  *texture.Texture
	floor    *model.Mesh
	cube     *model.Mesh
	cubes    []mgl32.Mat4

	depthPipeline Pipeline
	litPipeline   Pipeline
}

var _ Technique = &Shadow{}

// NewShadow creates an uninitialized shadow mapping technique.
//
// Parameters:
//   - opts: shadow builder options
//
// Returns:
//   - *Shadow: the technique
func NewShadow(opts ...ShadowBuilderOption) *Shadow {
	s := &Shadow{
		base:       base{name: "shadow"},
		resolution: light.ShadowMapResolution,
		caster:     light.DefaultShadowCaster(),
		cubes: []mgl32.Mat4{
			common.ModelMatrix(mgl32.Vec3{0, 1.5, 0}, mgl32.Vec3{}, mgl32.Vec3{0.5, 0.5, 0.5}),
			common.ModelMatrix(mgl32.Vec3{2, 0, 1}, mgl32.Vec3{}, mgl32.Vec3{0.5, 0.5, 0.5}),
			mgl32.Translate3D(-1, 0, 2).
				Mul4(mgl32.HomogRotate3D(mgl32.DegToRad(60), mgl32.Vec3{1, 0, 1}.Normalize())).
				Mul4(mgl32.Scale3D(0.25, 0.25, 0.25)),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DepthMap returns the shadow map, nil before Init.
func (s *Shadow) DepthMap() *texture.Texture { return s.depthMap }

// Caster returns the light frustum the map is rendered from.
func (s *Shadow) Caster() light.ShadowCaster { return s.caster }

func (s *Shadow) Init(ctx *gpu.RenderContext) error {
	s.begin(ctx)
	if err := s.setup(); err != nil {
		return s.fail(err)
	}
	return s.done()
}

func (s *Shadow) setup() error {
	ctx := s.ctx
	depth, err := texture.Create2D(ctx, s.resolution, s.resolution, gpu.FormatDepth24, nil,
		texture.WithName("shadow_map"),
		texture.WithTag(texture.TagShadow),
		texture.WithFilter(gpu.FilterNearest, gpu.FilterNearest),
		texture.WithWrap(gpu.WrapClampToBorder),
		texture.WithBorderColor([4]float32{1, 1, 1, 1}),
	)
	if err != nil {
		return err
	}
	s.own(depth)
	s.depthMap = depth

	fb, err := framebuffer.New(ctx, framebuffer.WithName("shadow"), framebuffer.WithDepthOnly())
	if err != nil {
		return err
	}
	s.own(fb)
	if err := fb.AttachTexture(gpu.DepthAttachment, depth, 0); err != nil {
		return err
	}
	if err := fb.Check(); err != nil {
		return err
	}
	s.depthFB = fb

	diffuse, err := imageTexture(ctx, s.diffuseImage, checkerImage("wood", 64, 8, [3]byte{150, 111, 51}, [3]byte{120, 85, 40}), texture.TagDiffuse)
	if err != nil {
		return err
	}
	s.own(diffuse)
	s.diffuse = diffuse

	if s.floor, err = model.NewPlane(ctx, 25, 25); err != nil {
		return err
	}
	s.own(s.floor)
	if s.cube, err = model.NewCube(ctx); err != nil {
		return err
	}
	s.own(s.cube)

	depthProgram, err := s.programs.Program("shadow_depth", "shadow_depth.vert", "shadow_depth.frag")
	if err != nil {
		return err
	}
	litProgram, err := s.programs.Program("shadow_lit", "shadow_lit.vert", "shadow_lit.frag")
	if err != nil {
		return err
	}
	// front faces are culled while rendering depth to keep acne off lit surfaces
	s.depthPipeline = NewPipeline("shadow_depth", depthProgram, WithCullMode(gpu.Front))
	s.litPipeline = NewPipeline("shadow_lit", litProgram)
	return nil
}

func (s *Shadow) Resize(width, height int) error {
	return resizeTargets(&s.base, width, height)
}

func (s *Shadow) drawScene(p *shader.Program) error {
	if err := p.SetMat4("model", mgl32.Ident4()); err != nil {
		return err
	}
	if err := s.floor.Draw(); err != nil {
		return err
	}
	for _, m := range s.cubes {
		if err := p.SetMat4("model", m); err != nil {
			return err
		}
		if err := s.cube.Draw(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Shadow) Render(frame Frame) error {
	if err := s.beginFrame(frame); err != nil {
		return err
	}
	lightSpace := s.caster.LightSpaceMatrix()
	cam := frame.Camera

	return Execute(s.ctx,
		Pass{
			Name:     "shadow depth",
			Target:   s.depthFB,
			Clear:    gpu.ClearDepth,
			Pipeline: s.depthPipeline,
			Uniforms: func(p *shader.Program) error {
				return p.SetMat4("light_space_matrix", lightSpace)
			},
			Draw: s.drawScene,
		},
		Pass{
			Name:       "shadow lit",
			Clear:      gpu.ClearColor | gpu.ClearDepth,
			ClearColor: [4]float32{0.1, 0.1, 0.1, 1},
			Inputs: []Input{
				{Uniform: "diffuse_texture", Texture: s.diffuse, Unit: 0},
				{Uniform: "shadow_map", Texture: s.depthMap, Unit: 1},
			},
			Pipeline: s.litPipeline,
			Uniforms: func(p *shader.Program) error {
				return errors.Join(
					p.SetMat4("projection", cam.ProjectionMatrix()),
					p.SetMat4("view", cam.ViewMatrix()),
					p.SetMat4("light_space_matrix", lightSpace),
					p.SetVec3("light_pos", s.caster.Position),
					p.SetVec3("view_pos", cam.Position()),
				)
			},
			Draw: s.drawScene,
		},
	)
}
