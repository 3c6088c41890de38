package pipeline

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// PhongPointLightCount is the number of point lights in the multi-light scene.
const PhongPointLightCount = 4

// Flash light cone half-angles in degrees.
const (
	FlashInnerDeg float32 = 12.5
	FlashOuterDeg float32 = 15
)

var phongContainers = []mgl32.Vec3{
	{0, 0, 0}, {2, 5, -15}, {-1.5, -2.2, -2.5}, {-3.8, -2, -12.3}, {2.4, -0.4, -3.5},
	{-1.7, 3, -7.5}, {1.3, -2, -2.5}, {1.5, 2, -2.5}, {1.5, 0.2, -1.5}, {-1.3, 1, -1.5},
}

// PhongLights returns the point lights of the multi-light scene.
func PhongLights() []light.PointLight {
	white := mgl32.Vec3{0.8, 0.8, 0.8}
	return []light.PointLight{
		light.NewPointLight(mgl32.Vec3{0.7, 0.2, 2}, white),
		light.NewPointLight(mgl32.Vec3{2.3, -3.3, -4}, white),
		light.NewPointLight(mgl32.Vec3{-4, 2, -12}, white),
		light.NewPointLight(mgl32.Vec3{0, 0, -3}, white),
	}
}

// Phong lights rotated containers with a directional light, four point lights and a flash light
// held at the camera. The containers carry specular and tangent-space normal maps.
type Phong struct {
	base
	diffuseImage *common.ImageData
	flashOn      bool
	normalsOn    bool

	sun        light.DirectionalLight
	lights     []light.PointLight
	box        *model.Mesh
	containers []mgl32.Mat4
	mapped     material.Phong
	flat       material.Phong

	lit   Pipeline
	boxes Pipeline
}

var (
	_ Technique    = &Phong{}
	_ InputHandler = &Phong{}
)

// NewPhong creates an uninitialized multi-light technique.
//
// Parameters:
//   - opts: phong builder options
//
// Returns:
//   - *Phong: the technique
func NewPhong(opts ...PhongBuilderOption) *Phong {
	p := &Phong{
		base:      base{name: "phong"},
		flashOn:   true,
		normalsOn: true,
		sun: light.DirectionalLight{
			Direction: mgl32.Vec3{-0.2, -1, -0.3},
			Color:     mgl32.Vec3{0.4, 0.4, 0.4},
		},
		lights: PhongLights(),
	}
	axis := mgl32.Vec3{1, 0.3, 0.5}.Normalize()
	for i, pos := range phongContainers {
		p.containers = append(p.containers,
			mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()).Mul4(mgl32.HomogRotate3D(mgl32.DegToRad(20*float32(i)), axis)))
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FlashLightOn reports whether the camera flash light contributes.
func (p *Phong) FlashLightOn() bool { return p.flashOn }

// NormalMapsOn reports whether the containers are drawn with their normal map.
func (p *Phong) NormalMapsOn() bool { return p.normalsOn }

// PointLights returns the scene point lights.
func (p *Phong) PointLights() []light.PointLight { return p.lights }

// Sun returns the directional light.
func (p *Phong) Sun() light.DirectionalLight { return p.sun }

// HandleEvent toggles the flash light on F and normal mapping on N.
func (p *Phong) HandleEvent(ev common.InputEvent) bool {
	if ev.Type != common.InputKeyDown {
		return false
	}
	switch ev.Key {
	case common.KeyF:
		p.flashOn = !p.flashOn
	case common.KeyN:
		p.normalsOn = !p.normalsOn
	default:
		return false
	}
	if p.ctx != nil {
		p.ctx.Logger().Debug("phong controls", "flash_light", p.flashOn, "normal_maps", p.normalsOn)
	}
	return true
}

func (p *Phong) Init(ctx *gpu.RenderContext) error {
	p.begin(ctx)
	if err := p.setup(); err != nil {
		return p.fail(err)
	}
	return p.done()
}

func (p *Phong) setup() error {
	ctx := p.ctx
	var err error
	if p.box, err = model.NewCube(ctx); err != nil {
		return err
	}
	p.own(p.box)

	diffuse, err := imageTexture(ctx, p.diffuseImage, checkerImage("container", 64, 4, [3]byte{170, 120, 60}, [3]byte{110, 75, 35}), texture.TagDiffuse)
	if err != nil {
		return err
	}
	p.own(diffuse)
	specular, err := imageTexture(ctx, nil, checkerImage("container-specular", 64, 4, [3]byte{230, 230, 230}, [3]byte{30, 30, 30}), texture.TagSpecular)
	if err != nil {
		return err
	}
	p.own(specular)
	normal, err := imageTexture(ctx, nil, bevelImage("container-normal", 64, 4, 2), texture.TagNormal)
	if err != nil {
		return err
	}
	p.own(normal)
	p.flat = material.NewPhong(diffuse,
		material.WithName("container"),
		material.WithSpecularMap(specular),
		material.WithShininess(32),
	)
	p.mapped = p.flat
	p.mapped.Normal = normal

	defines := shader.WithDefines(map[string]string{"POINT_LIGHT_COUNT": strconv.Itoa(PhongPointLightCount)})
	lit, err := p.programs.Program("phong_lit", "lit.vert", "phong.frag", defines)
	if err != nil {
		return err
	}
	boxes, err := p.programs.Program("phong_light_box", "light_box.vert", "light_box.frag")
	if err != nil {
		return err
	}
	p.lit = NewPipeline("phong_lit", lit)
	p.boxes = NewPipeline("phong_light_box", boxes)
	return nil
}

func (p *Phong) Resize(width, height int) error {
	return resizeTargets(&p.base, width, height)
}

// flashLight follows the camera.
func (p *Phong) flashLight(cam camera.Camera) light.FlashLight {
	return light.NewFlashLight(cam.Position(), cam.Front(), mgl32.Vec3{1, 1, 1}, FlashInnerDeg, FlashOuterDeg)
}

func (p *Phong) Render(frame Frame) error {
	if err := p.beginFrame(frame); err != nil {
		return err
	}
	cam := frame.Camera
	projection, view := cam.ProjectionMatrix(), cam.ViewMatrix()
	mat := p.flat
	if p.normalsOn {
		mat = p.mapped
	}

	return Execute(p.ctx,
		Pass{
			Name:       "phong lit",
			Clear:      gpu.ClearColor | gpu.ClearDepth,
			ClearColor: [4]float32{0.1, 0.1, 0.1, 1},
			Pipeline:   p.lit,
			Uniforms: func(prog *shader.Program) error {
				errs := []error{
					prog.SetMat4("projection", projection),
					prog.SetMat4("view", view),
					prog.SetVec3("camera_pos", cam.Position()),
					prog.SetDirectionalLight("dir_light", p.sun),
					prog.Set1i("point_light_count", int32(len(p.lights))),
					prog.SetFlashLight("flash_light", p.flashLight(cam)),
					prog.SetBool("flash_light_on", p.flashOn),
				}
				for i, l := range p.lights {
					errs = append(errs, prog.SetPointLight(fmt.Sprintf("point_lights[%d]", i), l))
				}
				_, err := prog.SetPhongMaterial("material", mat, 0)
				return errors.Join(append(errs, err)...)
			},
			Draw: func(prog *shader.Program) error {
				for _, m := range p.containers {
					if err := prog.SetMat4("model", m); err != nil {
						return err
					}
					if err := p.box.Draw(); err != nil {
						return err
					}
				}
				return nil
			},
		},
		Pass{
			Name:     "phong light boxes",
			Pipeline: p.boxes,
			Uniforms: func(prog *shader.Program) error {
				return errors.Join(prog.SetMat4("projection", projection), prog.SetMat4("view", view))
			},
			Draw: func(prog *shader.Program) error {
				for _, l := range p.lights {
					m := common.ModelMatrix(l.Position, mgl32.Vec3{}, mgl32.Vec3{0.2, 0.2, 0.2})
					if err := errors.Join(prog.SetMat4("model", m), prog.SetVec3("light_color", l.Color)); err != nil {
						return err
					}
					if err := p.box.Draw(); err != nil {
						return err
					}
				}
				return nil
			},
		},
	)
}
