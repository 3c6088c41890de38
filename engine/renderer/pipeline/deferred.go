package pipeline

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// DeferredLightCount is the number of point lights in the deferred scene.
const DeferredLightCount = 32

// Attenuation of the deferred lights. The short range keeps each light local.
const (
	DeferredLinear    float32 = 0.7
	DeferredQuadratic float32 = 1.8
)

// deferredObjects are the positions of the nine objects on the grid.
var deferredObjects = []mgl32.Vec3{
	{-3, -0.5, -3}, {0, -0.5, -3}, {3, -0.5, -3},
	{-3, -0.5, 0}, {0, -0.5, 0}, {3, -0.5, 0},
	{-3, -0.5, 3}, {0, -0.5, 3}, {3, -0.5, 3},
}

// Deferred renders a geometry buffer of world positions, normals and albedo with specular
// intensity, lights it in one screen-space pass and forward-renders a small cube at each light
// over the copied depth.
type Deferred struct {
	base
	imported *common.ImportedModel
	seed     uint64
	culling  bool

	lights   []light.PointLight
	gbuffer  *screenTarget
	quad     *model.Mesh
	box      *model.Mesh
	scene    model.Model
	fallback material.Phong

	geometry Pipeline
	lighting Pipeline
	boxes    Pipeline

	visible int
}

var _ Technique = &Deferred{}

// NewDeferred creates an uninitialized deferred shading technique.
//
// Parameters:
//   - opts: deferred builder options
//
// Returns:
//   - *Deferred: the technique
func NewDeferred(opts ...DeferredBuilderOption) *Deferred {
	d := &Deferred{
		base:    base{name: "deferred"},
		seed:    13,
		culling: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.lights = DeferredLights(DeferredLightCount, rand.New(rand.NewPCG(d.seed, d.seed)))
	return d
}

// DeferredLights scatters n lights through the scene volume with colours between 0.5 and 1.
//
// Parameters:
//   - n: the number of lights
//   - rng: the random source
//
// Returns:
//   - []light.PointLight: the lights
func DeferredLights(n int, rng *rand.Rand) []light.PointLight {
	lights := make([]light.PointLight, n)
	for i := range lights {
		pos := mgl32.Vec3{
			rng.Float32()*6 - 3,
			rng.Float32()*6 - 4,
			rng.Float32()*6 - 3,
		}
		color := mgl32.Vec3{
			rng.Float32()*0.5 + 0.5,
			rng.Float32()*0.5 + 0.5,
			rng.Float32()*0.5 + 0.5,
		}
		lights[i] = light.NewPointLight(pos, color, light.WithAttenuation(DeferredLinear, DeferredQuadratic))
	}
	return lights
}

// Lights returns the scene lights.
func (d *Deferred) Lights() []light.PointLight { return d.lights }

// VisibleLights returns how many lights survived culling in the last frame.
func (d *Deferred) VisibleLights() int { return d.visible }

// GBuffer returns the geometry buffer textures: position, normal and albedo with specular.
func (d *Deferred) GBuffer() []*texture.Texture {
	if d.gbuffer == nil {
		return nil
	}
	return d.gbuffer.colors
}

func (d *Deferred) Init(ctx *gpu.RenderContext) error {
	d.begin(ctx)
	if err := d.setup(); err != nil {
		return d.fail(err)
	}
	return d.done()
}

func (d *Deferred) setup() error {
	ctx := d.ctx
	var err error
	d.gbuffer, err = newScreenTarget(&d.base, "gbuffer", true,
		colorSpec{"position", gpu.FormatRGBA16F, gpu.FilterNearest},
		colorSpec{"normal", gpu.FormatRGBA16F, gpu.FilterNearest},
		colorSpec{"albedo_spec", gpu.FormatRGBA8, gpu.FilterNearest},
	)
	if err != nil {
		return err
	}

	if d.quad, err = model.NewQuad(ctx); err != nil {
		return err
	}
	d.own(d.quad)
	if d.box, err = model.NewCube(ctx); err != nil {
		return err
	}
	d.own(d.box)
	if d.scene, err = sceneModel(&d.base, d.imported); err != nil {
		return err
	}

	diffuse, err := imageTexture(ctx, nil, checkerImage("backpack-diffuse", 64, 4, [3]byte{200, 180, 140}, [3]byte{90, 70, 50}), texture.TagDiffuse)
	if err != nil {
		return err
	}
	d.own(diffuse)
	specular, err := imageTexture(ctx, nil, checkerImage("backpack-specular", 64, 4, [3]byte{255, 255, 255}, [3]byte{40, 40, 40}), texture.TagSpecular)
	if err != nil {
		return err
	}
	d.own(specular)
	d.fallback = material.NewPhong(diffuse, material.WithName("deferred"), material.WithSpecularMap(specular))

	defines := shader.WithDefines(map[string]string{"LIGHT_COUNT": strconv.Itoa(DeferredLightCount)})
	geometry, err := d.programs.Program("deferred_gbuffer", "lit.vert", "gbuffer.frag")
	if err != nil {
		return err
	}
	lighting, err := d.programs.Program("deferred_lighting", "quad.vert", "deferred_lighting.frag", defines)
	if err != nil {
		return err
	}
	boxes, err := d.programs.Program("deferred_light_box", "light_box.vert", "light_box.frag")
	if err != nil {
		return err
	}
	d.geometry = NewPipeline("deferred_gbuffer", geometry)
	d.lighting = NewPipeline("deferred_lighting", lighting,
		WithDepthTestEnabled(false), WithDepthWriteEnabled(false), WithTopology(gpu.TriangleStrip))
	d.boxes = NewPipeline("deferred_light_box", boxes)
	return nil
}

func (d *Deferred) Resize(width, height int) error {
	return resizeTargets(&d.base, width, height, d.gbuffer)
}

// visibleLights returns the lights uploaded this frame.
func (d *Deferred) visibleLights(frustum common.Frustum) []light.PointLight {
	if !d.culling {
		return d.lights
	}
	idx := light.CullPointLights(d.lights, frustum)
	out := make([]light.PointLight, len(idx))
	for i, j := range idx {
		out[i] = d.lights[j]
	}
	return out
}

func (d *Deferred) bindMaterial(p *shader.Program) func(*material.Phong) error {
	return func(m *material.Phong) error {
		mat := d.fallback
		if m != nil && m.Diffuse != nil {
			mat = *m
		}
		_, err := p.SetPhongMaterial("material", mat, 0)
		return err
	}
}

func (d *Deferred) Render(frame Frame) error {
	if err := d.beginFrame(frame); err != nil {
		return err
	}
	cam := frame.Camera
	projection, view := cam.ProjectionMatrix(), cam.ViewMatrix()
	lights := d.visibleLights(cam.Frustum())
	d.visible = len(lights)
	gb := d.gbuffer.colors

	err := Execute(d.ctx,
		Pass{
			Name:       "deferred geometry",
			Target:     d.gbuffer.fb,
			Clear:      gpu.ClearColor | gpu.ClearDepth,
			ClearColor: [4]float32{0, 0, 0, 1},
			Pipeline:   d.geometry,
			Uniforms: func(p *shader.Program) error {
				return errors.Join(p.SetMat4("projection", projection), p.SetMat4("view", view))
			},
			Draw: func(p *shader.Program) error {
				for _, pos := range deferredObjects {
					m := common.ModelMatrix(pos, mgl32.Vec3{}, mgl32.Vec3{0.5, 0.5, 0.5})
					if err := p.SetMat4("model", m); err != nil {
						return err
					}
					if err := d.scene.Draw(d.bindMaterial(p)); err != nil {
						return err
					}
				}
				return nil
			},
		},
		Pass{
			Name:       "deferred lighting",
			Clear:      gpu.ClearColor | gpu.ClearDepth,
			ClearColor: [4]float32{0, 0, 0, 1},
			Inputs: []Input{
				{Uniform: "g_position", Texture: gb[0], Unit: 0},
				{Uniform: "g_normal", Texture: gb[1], Unit: 1},
				{Uniform: "g_albedo_spec", Texture: gb[2], Unit: 2},
			},
			Pipeline: d.lighting,
			Uniforms: func(p *shader.Program) error {
				errs := []error{
					p.Set1i("light_count", int32(len(lights))),
					p.SetVec3("camera_pos", cam.Position()),
				}
				for i, l := range lights {
					errs = append(errs, p.SetPointLight(fmt.Sprintf("lights[%d]", i), l))
				}
				return errors.Join(errs...)
			},
			Draw: func(*shader.Program) error { return d.quad.Draw() },
		},
	)
	if err != nil {
		return err
	}

	// the light boxes depth test against the scene, so the gbuffer depth is copied first
	if err := framebuffer.Blit(d.ctx, d.gbuffer.fb, nil, gpu.ClearDepth, gpu.FilterNearest); err != nil {
		return fmt.Errorf("deferred depth copy: %w", err)
	}

	return Execute(d.ctx, Pass{
		Name:     "deferred light boxes",
		Pipeline: d.boxes,
		Uniforms: func(p *shader.Program) error {
			return errors.Join(p.SetMat4("projection", projection), p.SetMat4("view", view))
		},
		Draw: func(p *shader.Program) error {
			for _, l := range d.lights {
				m := common.ModelMatrix(l.Position, mgl32.Vec3{}, mgl32.Vec3{0.125, 0.125, 0.125})
				if err := errors.Join(p.SetMat4("model", m), p.SetVec3("light_color", l.Color)); err != nil {
					return err
				}
				if err := d.box.Draw(); err != nil {
					return err
				}
			}
			return nil
		},
	})
}
