package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// Resolutions of the precomputed image-based lighting maps.
const (
	CubemapSize        = 512
	IrradianceSize     = 32
	PrefilterSize      = 128
	PrefilterMipLevels = 5
	BRDFLUTSize        = 512
)

// Capture projection parameters. A 90 degree square frustum covers exactly one cube face.
const (
	captureFov  float32 = 90
	captureNear float32 = 0.1
	captureFar  float32 = 10
)

// IBLSizes are the map resolutions of an IBL precomputation.
type IBLSizes struct {
	Cubemap       int
	Irradiance    int
	Prefilter     int
	PrefilterMips int
	BRDFLUT       int
}

// DefaultIBLSizes returns the standard resolutions.
func DefaultIBLSizes() IBLSizes {
	return IBLSizes{
		Cubemap:       CubemapSize,
		Irradiance:    IrradianceSize,
		Prefilter:     PrefilterSize,
		PrefilterMips: PrefilterMipLevels,
		BRDFLUT:       BRDFLUTSize,
	}
}

func (s IBLSizes) validate() error {
	if s.Cubemap <= 0 || s.Irradiance <= 0 || s.Prefilter <= 0 || s.BRDFLUT <= 0 {
		return fmt.Errorf("invalid ibl sizes %+v", s)
	}
	if s.PrefilterMips < 1 || s.PrefilterMips > common.MipLevelCount(s.Prefilter, s.Prefilter) {
		return fmt.Errorf("invalid prefilter mip count %d for size %d", s.PrefilterMips, s.Prefilter)
	}
	return nil
}

// CaptureProjection returns the projection used to render each cube face.
func CaptureProjection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(captureFov), 1, captureNear, captureFar)
}

// CaptureViews returns the view matrices of the six cube faces in +X, -X, +Y, -Y, +Z, -Z order.
// The up vectors follow the cubemap face orientation convention.
func CaptureViews() [texture.CubeFaces]mgl32.Mat4 {
	origin := mgl32.Vec3{}
	return [texture.CubeFaces]mgl32.Mat4{
		mgl32.LookAtV(origin, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, -1, 0}),
		mgl32.LookAtV(origin, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, -1, 0}),
		mgl32.LookAtV(origin, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}),
		mgl32.LookAtV(origin, mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, -1}),
		mgl32.LookAtV(origin, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, -1, 0}),
		mgl32.LookAtV(origin, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, -1, 0}),
	}
}

// IBLMaps are the outputs of the precomputation.
type IBLMaps struct {
	Environment *texture.Texture
	Irradiance  *texture.Texture
	Prefilter   *texture.Texture
	BRDFLUT     *texture.Texture
}

// IBLView selects the cubemap drawn as the background.
type IBLView int

const (
	ViewEnvironment IBLView = iota
	ViewIrradiance
	ViewPrefilter
)

func (v IBLView) String() string {
	switch v {
	case ViewIrradiance:
		return "irradiance"
	case ViewPrefilter:
		return "prefilter"
	default:
		return "environment"
	}
}

// IBL converts an equirectangular HDR image into an environment cubemap and precomputes the
// diffuse irradiance map, the specular prefiltered map and the BRDF integration table. The
// precomputation runs once in Init through one scratch framebuffer and depth renderbuffer. Render
// draws the selected cubemap as a skybox; 1, 2 and 3 switch between them.
type IBL struct {
	base
	environment *common.ImageData
	sizes       IBLSizes
	view        IBLView

	maps    IBLMaps
	capture *framebuffer.Framebuffer
	depth   *framebuffer.Renderbuffer
	cube    *model.Mesh
	quad    *model.Mesh

	background Pipeline
}

var (
	_ Technique    = &IBL{}
	_ InputHandler = &IBL{}
)

// NewIBL creates an uninitialized IBL technique.
//
// Parameters:
//   - opts: IBL builder options
//
// Returns:
//   - *IBL: the technique
func NewIBL(opts ...IBLBuilderOption) *IBL {
	i := &IBL{
		base:  base{name: "ibl"},
		sizes: DefaultIBLSizes(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Maps returns the precomputed maps. The fields are nil before Init.
func (i *IBL) Maps() IBLMaps { return i.maps }

// Sizes returns the map resolutions.
func (i *IBL) Sizes() IBLSizes { return i.sizes }

// View returns the cubemap drawn as the background.
func (i *IBL) View() IBLView { return i.view }

// HandleEvent selects the background cubemap on 1, 2 and 3.
func (i *IBL) HandleEvent(ev common.InputEvent) bool {
	if ev.Type != common.InputKeyDown {
		return false
	}
	switch ev.Key {
	case common.Key1:
		i.view = ViewEnvironment
	case common.Key2:
		i.view = ViewIrradiance
	case common.Key3:
		i.view = ViewPrefilter
	default:
		return false
	}
	return true
}

func (i *IBL) Init(ctx *gpu.RenderContext) error {
	i.begin(ctx)
	if err := i.setup(); err != nil {
		return i.fail(err)
	}
	return i.done()
}

func (i *IBL) setup() error {
	if err := i.sizes.validate(); err != nil {
		return err
	}
	ctx := i.ctx
	var err error
	if i.cube, err = model.NewCube(ctx); err != nil {
		return err
	}
	i.own(i.cube)
	if i.quad, err = model.NewQuad(ctx); err != nil {
		return err
	}
	i.own(i.quad)

	if i.capture, err = framebuffer.New(ctx, framebuffer.WithName("ibl_capture")); err != nil {
		return err
	}
	i.own(i.capture)
	if i.depth, err = framebuffer.NewRenderbuffer(ctx, gpu.FormatDepth24, i.sizes.Cubemap, i.sizes.Cubemap); err != nil {
		return err
	}
	i.own(i.depth)

	if err := i.precompute(); err != nil {
		return err
	}

	background, err := i.programs.Program("ibl_background", "background.vert", "background.frag")
	if err != nil {
		return err
	}
	i.background = NewPipeline("ibl_background", background, WithDepthFunc(gpu.FuncLequal), WithSeamlessCubemap())
	return nil
}

// precompute runs the capture chain and always leaves the default framebuffer bound with the
// scratch renderbuffer back at the window size. The capture framebuffer is left Attaching, since
// its colour attachment no longer matches the restored renderbuffer.
func (i *IBL) precompute() (err error) {
	ctx := i.ctx
	defer func() {
		ctx.RestoreDefaultTarget()
		reconfigured := i.capture.Reconfigure()
		i.depth.Resize(i.width, i.height)
		if err == nil {
			err = errors.Join(reconfigured, ctx.CheckError("ibl restore"))
		}
	}()

	pp, err := i.includePreProcessor()
	if err != nil {
		return err
	}
	equirectProgram, err := i.programs.Program("ibl_equirect", "cubemap.vert", "equirect_to_cube.frag")
	if err != nil {
		return err
	}
	irradianceProgram, err := i.programs.Program("ibl_irradiance", "cubemap.vert", "irradiance.frag")
	if err != nil {
		return err
	}
	prefilterProgram, err := i.programs.Program("ibl_prefilter", "cubemap.vert", "prefilter.frag", shader.WithPreProcessor(pp))
	if err != nil {
		return err
	}
	brdfProgram, err := i.programs.Program("ibl_brdf", "quad.vert", "brdf.frag", shader.WithPreProcessor(pp))
	if err != nil {
		return err
	}

	equirect, err := imageTexture(ctx, i.environment, skyImage(256, 128), texture.TagEnvironment,
		texture.WithFilter(gpu.FilterLinear, gpu.FilterLinear), texture.WithWrap(gpu.WrapClampToEdge))
	if err != nil {
		return err
	}
	defer equirect.Destroy()

	cube := func(name string, size int, tag texture.Tag, minFilter gpu.Filter, opts ...texture.TextureBuilderOption) (*texture.Texture, error) {
		opts = append([]texture.TextureBuilderOption{
			texture.WithName(name),
			texture.WithTag(tag),
			texture.WithFilter(minFilter, gpu.FilterLinear),
			texture.WithWrap(gpu.WrapClampToEdge),
		}, opts...)
		t, err := texture.CreateCubemap(ctx, size, gpu.FormatRGB16F, opts...)
		if err != nil {
			return nil, err
		}
		i.own(t)
		return t, nil
	}

	// environment cubemap, mipmapped afterwards so the prefilter pass can sample lower levels
	if i.maps.Environment, err = cube("environment", i.sizes.Cubemap, texture.TagEnvironment, gpu.FilterLinearMipmapLinear); err != nil {
		return err
	}
	equirectPipeline := NewPipeline("ibl_equirect", equirectProgram)
	if err := i.captureCube(i.maps.Environment, 0, equirectPipeline,
		[]Input{{Uniform: "equirectangular_map", Texture: equirect, Unit: 0}}, nil); err != nil {
		return fmt.Errorf("environment capture: %w", err)
	}
	i.maps.Environment.GenerateMipmaps()

	if i.maps.Irradiance, err = cube("irradiance", i.sizes.Irradiance, texture.TagIrradiance, gpu.FilterLinear); err != nil {
		return err
	}
	irradiancePipeline := NewPipeline("ibl_irradiance", irradianceProgram, WithSeamlessCubemap())
	if err := i.captureCube(i.maps.Irradiance, 0, irradiancePipeline,
		[]Input{{Uniform: "environment_map", Texture: i.maps.Environment, Unit: 0}}, nil); err != nil {
		return fmt.Errorf("irradiance capture: %w", err)
	}

	if i.maps.Prefilter, err = cube("prefilter", i.sizes.Prefilter, texture.TagPrefilteredEnv, gpu.FilterLinearMipmapLinear, texture.WithMipmaps()); err != nil {
		return err
	}
	prefilterPipeline := NewPipeline("ibl_prefilter", prefilterProgram, WithSeamlessCubemap())
	for mip := range i.sizes.PrefilterMips {
		roughness := float32(0)
		if i.sizes.PrefilterMips > 1 {
			roughness = float32(mip) / float32(i.sizes.PrefilterMips-1)
		}
		err := i.captureCube(i.maps.Prefilter, mip, prefilterPipeline,
			[]Input{{Uniform: "environment_map", Texture: i.maps.Environment, Unit: 0}},
			func(p *shader.Program) error {
				return errors.Join(
					p.Set1f("roughness", roughness),
					p.Set1f("resolution", float32(i.sizes.Cubemap)),
				)
			})
		if err != nil {
			return fmt.Errorf("prefilter capture mip %d: %w", mip, err)
		}
	}

	lut, err := texture.Create2D(ctx, i.sizes.BRDFLUT, i.sizes.BRDFLUT, gpu.FormatRG16F, nil,
		texture.WithName("brdf_lut"),
		texture.WithTag(texture.TagBRDFLUT),
		texture.WithFilter(gpu.FilterLinear, gpu.FilterLinear),
		texture.WithWrap(gpu.WrapClampToEdge),
	)
	if err != nil {
		return err
	}
	i.own(lut)
	i.maps.BRDFLUT = lut
	if err := i.captureLUT(lut, NewPipeline("ibl_brdf", brdfProgram,
		WithDepthTestEnabled(false), WithTopology(gpu.TriangleStrip))); err != nil {
		return fmt.Errorf("brdf lut: %w", err)
	}
	return nil
}

// includePreProcessor registers the shared importance sampling functions.
func (i *IBL) includePreProcessor() (shader.PreProcessor, error) {
	src, err := i.programs.Source("importance_sampling.glsl")
	if err != nil {
		return nil, err
	}
	return shader.NewPreProcessor(shader.WithInclude("importance_sampling", src)), nil
}

// captureCube renders one mip level of every face of tex. The scratch renderbuffer is resized to
// the level first and the framebuffer is checked once, then each face is swapped in.
//
// Parameters:
//   - tex: the destination cubemap
//   - level: the mip level
//   - p: the pipeline drawing the unit cube
//   - inputs: the sampled textures
//   - uniforms: extra per-level uniforms, may be nil
//
// Returns:
//   - error: a framebuffer or pass error
func (i *IBL) captureCube(tex *texture.Texture, level int, p Pipeline, inputs []Input, uniforms func(*shader.Program) error) error {
	size, _ := tex.LevelSize(level)
	if err := i.capture.Reconfigure(); err != nil {
		return err
	}
	i.depth.Resize(size, size)
	if err := i.capture.AttachCubeFace(framebuffer.ColorAttachment(0), tex, 0, level); err != nil {
		return err
	}
	if err := i.capture.AttachRenderbuffer(gpu.DepthAttachment, i.depth); err != nil {
		return err
	}
	if err := i.capture.Check(); err != nil {
		return err
	}

	projection := CaptureProjection()
	views := CaptureViews()
	for face := range texture.CubeFaces {
		if face > 0 {
			if err := i.capture.RetargetColor(0, tex, face, level); err != nil {
				return err
			}
		}
		err := Execute(i.ctx, Pass{
			Name:     fmt.Sprintf("%s face %d level %d", tex.Name(), face, level),
			Target:   i.capture,
			Viewport: gpu.Viewport{Width: int32(size), Height: int32(size)},
			Clear:    gpu.ClearColor | gpu.ClearDepth,
			Inputs:   inputs,
			Pipeline: p,
			Uniforms: func(prog *shader.Program) error {
				err := errors.Join(prog.SetMat4("projection", projection), prog.SetMat4("view", views[face]))
				if err == nil && uniforms != nil {
					err = uniforms(prog)
				}
				return err
			},
			Draw: func(*shader.Program) error { return i.cube.Draw() },
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// captureLUT renders the BRDF integration table with a full-screen quad.
func (i *IBL) captureLUT(lut *texture.Texture, p Pipeline) error {
	size := lut.Width()
	if err := i.capture.Reconfigure(); err != nil {
		return err
	}
	i.depth.Resize(size, size)
	if err := i.capture.AttachTexture(framebuffer.ColorAttachment(0), lut, 0); err != nil {
		return err
	}
	if err := i.capture.Check(); err != nil {
		return err
	}
	return Execute(i.ctx, Pass{
		Name:     "brdf lut",
		Target:   i.capture,
		Viewport: gpu.Viewport{Width: int32(size), Height: int32(size)},
		Clear:    gpu.ClearColor | gpu.ClearDepth,
		Pipeline: p,
		Draw:     func(*shader.Program) error { return i.quad.Draw() },
	})
}

// Resize keeps the scratch renderbuffer at the window size.
func (i *IBL) Resize(width, height int) error {
	if err := resizeTargets(&i.base, width, height); err != nil {
		return err
	}
	if w, h := i.depth.Size(); w != i.width || h != i.height {
		i.depth.Resize(i.width, i.height)
	}
	return nil
}

// ScratchSize returns the size of the scratch depth renderbuffer.
func (i *IBL) ScratchSize() (width, height int) {
	if i.depth == nil {
		return 0, 0
	}
	return i.depth.Size()
}

// CaptureState returns the state of the scratch capture framebuffer.
func (i *IBL) CaptureState() framebuffer.State {
	if i.capture == nil {
		return framebuffer.StateUnconfigured
	}
	return i.capture.State()
}

// viewTexture returns the cubemap the background shows.
func (i *IBL) viewTexture() *texture.Texture {
	switch i.view {
	case ViewIrradiance:
		return i.maps.Irradiance
	case ViewPrefilter:
		return i.maps.Prefilter
	default:
		return i.maps.Environment
	}
}

// skyboxPass draws env behind everything already in the depth buffer.
func (i *IBL) skyboxPass(frame Frame, env *texture.Texture, exposure float32, clear gpu.ClearFlags) Pass {
	cam := frame.Camera
	return Pass{
		Name:     "skybox",
		Clear:    clear,
		Inputs:   []Input{{Uniform: "environment_map", Texture: env, Unit: 0}},
		Pipeline: i.background,
		Uniforms: func(p *shader.Program) error {
			return errors.Join(
				p.SetMat4("projection", cam.ProjectionMatrix()),
				p.SetMat4("view", cam.ViewMatrix()),
				p.Set1f("exposure", exposure),
				p.Set1f("lod", 0),
			)
		},
		Draw: func(*shader.Program) error { return i.cube.Draw() },
	}
}

func (i *IBL) Render(frame Frame) error {
	if err := i.beginFrame(frame); err != nil {
		return err
	}
	return Execute(i.ctx, i.skyboxPass(frame, i.viewTexture(), 1, gpu.ClearColor|gpu.ClearDepth))
}
