package pipeline

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// Sphere grid layout of the PBR scene.
const (
	DefaultGridSize         = 7
	GridSpacing     float32 = 2.5
	pbrLightCount           = 4
)

// PBRLights returns the four lights in front of the sphere grid.
func PBRLights() []light.PointLight {
	color := mgl32.Vec3{300, 300, 300}
	attenuation := light.WithAttenuation(0, 1)
	return []light.PointLight{
		light.NewPointLight(mgl32.Vec3{-10, 10, 10}, color, attenuation),
		light.NewPointLight(mgl32.Vec3{10, 10, 10}, color, attenuation),
		light.NewPointLight(mgl32.Vec3{-10, -10, 10}, color, attenuation),
		light.NewPointLight(mgl32.Vec3{10, -10, 10}, color, attenuation),
	}
}

// GridMaterial returns the material of the sphere at row and column. Metallic rises with the
// row and roughness with the column; roughness is kept above 0.05 where the GGX lobe degenerates.
//
// Parameters:
//   - row, col: the grid cell
//   - rows, cols: the grid size
//
// Returns:
//   - material.PBR: the scalar material
func GridMaterial(row, col, rows, cols int) material.PBR {
	metallic := float32(row) / float32(rows)
	roughness := common.Clamp(float32(col)/float32(cols), 0.05, 1)
	return material.NewPBR(
		material.WithPBRName(fmt.Sprintf("sphere_%d_%d", row, col)),
		material.WithScalars(mgl32.Vec3{0.5, 0, 0}, metallic, roughness, 1),
	)
}

// PBR shades a grid of spheres with the Cook-Torrance BRDF for four point lights plus an ambient
// term from the IBL maps, then draws the environment as a skybox. Q and E change the exposure.
type PBR struct {
	base
	iblOptions []IBLBuilderOption
	rows       int
	columns    int
	exposure   float32
	lights     []light.PointLight

	ibl    *IBL
	sphere *model.Mesh
	shade  Pipeline
}

var (
	_ Technique    = &PBR{}
	_ InputHandler = &PBR{}
)

// NewPBR creates an uninitialized PBR technique.
//
// Parameters:
//   - opts: PBR builder options
//
// Returns:
//   - *PBR: the technique
func NewPBR(opts ...PBRBuilderOption) *PBR {
	p := &PBR{
		base:     base{name: "pbr"},
		rows:     DefaultGridSize,
		columns:  DefaultGridSize,
		exposure: DefaultExposure,
		lights:   PBRLights(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Exposure returns the tone mapping exposure.
func (p *PBR) Exposure() float32 { return p.exposure }

// IBL returns the embedded precomputation, nil before Init.
func (p *PBR) IBL() *IBL { return p.ibl }

// Grid returns the number of sphere rows and columns.
func (p *PBR) Grid() (rows, columns int) { return p.rows, p.columns }

// HandleEvent adjusts exposure on Q and E.
func (p *PBR) HandleEvent(ev common.InputEvent) bool {
	if ev.Type != common.InputKeyDown {
		return false
	}
	switch ev.Key {
	case common.KeyQ:
		p.exposure = max(p.exposure-ExposureStep, 0)
	case common.KeyE:
		p.exposure += ExposureStep
	default:
		return false
	}
	return true
}

func (p *PBR) Init(ctx *gpu.RenderContext) error {
	p.begin(ctx)
	if err := p.setup(); err != nil {
		return p.fail(err)
	}
	return p.done()
}

func (p *PBR) setup() error {
	ctx := p.ctx
	p.ibl = NewIBL(append(p.iblOptions, WithIBLPrograms(p.programs))...)
	if err := p.ibl.Init(ctx); err != nil {
		return err
	}
	p.own(p.ibl)

	var err error
	if p.sphere, err = model.NewSphere(ctx, model.DefaultSphereSegments, model.DefaultSphereSegments); err != nil {
		return err
	}
	p.own(p.sphere)

	program, err := p.programs.Program("pbr", "lit.vert", "pbr.frag",
		shader.WithDefines(map[string]string{"LIGHT_COUNT": strconv.Itoa(pbrLightCount)}))
	if err != nil {
		return err
	}
	p.shade = NewPipeline("pbr", program, WithSeamlessCubemap())
	return nil
}

func (p *PBR) Resize(width, height int) error {
	if err := resizeTargets(&p.base, width, height); err != nil {
		return err
	}
	return p.ibl.Resize(width, height)
}

func (p *PBR) Render(frame Frame) error {
	if err := p.beginFrame(frame); err != nil {
		return err
	}
	cam := frame.Camera
	maps := p.ibl.Maps()
	maxLod := float32(p.ibl.Sizes().PrefilterMips - 1)

	return Execute(p.ctx,
		Pass{
			Name:       "pbr spheres",
			Clear:      gpu.ClearColor | gpu.ClearDepth,
			ClearColor: [4]float32{0.2, 0.3, 0.3, 1},
			Inputs: []Input{
				{Uniform: "irradiance_map", Texture: maps.Irradiance, Unit: 1},
				{Uniform: "prefilter_map", Texture: maps.Prefilter, Unit: 2},
				{Uniform: "brdf_lut", Texture: maps.BRDFLUT, Unit: 3},
			},
			Pipeline: p.shade,
			Uniforms: func(prog *shader.Program) error {
				errs := []error{
					prog.SetMat4("projection", cam.ProjectionMatrix()),
					prog.SetMat4("view", cam.ViewMatrix()),
					prog.SetVec3("camera_pos", cam.Position()),
					prog.Set1f("exposure", p.exposure),
					prog.Set1f("max_reflection_lod", maxLod),
				}
				for i, l := range p.lights {
					errs = append(errs, prog.SetPointLight(fmt.Sprintf("lights[%d]", i), l))
				}
				return errors.Join(errs...)
			},
			Draw: p.drawGrid,
		},
		p.ibl.skyboxPass(frame, maps.Environment, p.exposure, 0),
	)
}

// drawGrid draws one sphere per grid cell, centred on the origin.
func (p *PBR) drawGrid(prog *shader.Program) error {
	for row := range p.rows {
		for col := range p.columns {
			pos := mgl32.Vec3{
				(float32(col) - float32(p.columns)/2) * GridSpacing,
				(float32(row) - float32(p.rows)/2) * GridSpacing,
				0,
			}
			if err := prog.SetMat4("model", mgl32.Translate3D(pos.X(), pos.Y(), pos.Z())); err != nil {
				return err
			}
			if _, err := prog.SetPBRMaterial("material", GridMaterial(row, col, p.rows, p.columns), 4); err != nil {
				return err
			}
			if err := p.sphere.Draw(); err != nil {
				return err
			}
		}
	}
	return nil
}
