package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
)

// pipeline is the implementation of the Pipeline interface.
// It pairs a linked program with the fixed-function state every draw through it expects.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for caching and logs
	pipelineKey string

	// program is the linked program bound by Apply, it is required
	program *shader.Program

	// The following properties configure the fixed-function state and are set with the builder options.

	depthTestEnabled  bool
	depthWriteEnabled bool
	depthFunc         gpu.Enum
	cullEnabled       bool
	cullMode          gpu.Enum
	blendEnabled      bool
	blendSrc          gpu.Enum
	blendDst          gpu.Enum
	topology          gpu.Enum
	seamlessCubemap   bool
}

// Pipeline defines a program plus the fixed-function state it is drawn with: depth test, write
// and compare function, face culling, blending, primitive topology and seamless cubemap
// filtering. Apply pushes the whole state through the RenderContext, which skips redundant
// driver calls.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and logs.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Program returns the program bound by Apply.
	//
	// Returns:
	//   - *shader.Program: the linked program
	Program() *shader.Program

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth testing is enabled, false otherwise
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth writing is enabled, false otherwise
	DepthWriteEnabled() bool

	// DepthFunc returns the depth comparison function.
	//
	// Returns:
	//   - gpu.Enum: gpu.FuncLess unless configured otherwise
	DepthFunc() gpu.Enum

	// CullMode returns the culled face and whether culling is enabled at all.
	//
	// Returns:
	//   - gpu.Enum: gpu.Back or gpu.Front
	//   - bool: true if face culling is enabled
	CullMode() (gpu.Enum, bool)

	// BlendEnabled returns whether blending is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if blending is enabled, false otherwise
	BlendEnabled() bool

	// BlendFunc returns the source and destination blend factors.
	BlendFunc() (src, dst gpu.Enum)

	// Topology returns the primitive topology meshes drawn through this pipeline are expected to use.
	//
	// Returns:
	//   - gpu.Enum: gpu.Triangles unless configured otherwise
	Topology() gpu.Enum

	// SeamlessCubemap returns whether cubemap sampling filters across face edges.
	SeamlessCubemap() bool

	// Apply binds the program and sets the fixed-function state.
	//
	// Parameters:
	//   - ctx: the render context to apply the state through
	//
	// Returns:
	//   - error: shader.ErrProgramNotLinked when the program was destroyed
	Apply(ctx *gpu.RenderContext) error
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a new Pipeline for program with the given key and options.
// Unconfigured state defaults to depth test and write on with LESS, no culling, no blending,
// triangle lists and no seamless cubemap filtering.
//
// Parameters:
//   - pipelineKey: the unique key to associate with this pipeline
//   - program: the linked program the pipeline binds
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: the newly created pipeline
func NewPipeline(pipelineKey string, program *shader.Program, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		program:           program,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		depthFunc:         gpu.FuncLess,
		cullMode:          gpu.Back,
		blendSrc:          gpu.SrcAlpha,
		blendDst:          gpu.OneMinusSrcAlpha,
		topology:          gpu.Triangles,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Program() *shader.Program {
	return p.program
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthFunc() gpu.Enum {
	return p.depthFunc
}

func (p *pipeline) CullMode() (gpu.Enum, bool) {
	return p.cullMode, p.cullEnabled
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) BlendFunc() (gpu.Enum, gpu.Enum) {
	return p.blendSrc, p.blendDst
}

func (p *pipeline) Topology() gpu.Enum {
	return p.topology
}

func (p *pipeline) SeamlessCubemap() bool {
	return p.seamlessCubemap
}

func (p *pipeline) Apply(ctx *gpu.RenderContext) error {
	if p.program == nil || !p.program.Alive() {
		return fmt.Errorf("apply pipeline %q: %w", p.pipelineKey, shader.ErrProgramNotLinked)
	}

	ctx.SetCapability(gpu.DepthTest, p.depthTestEnabled)
	if p.depthTestEnabled {
		ctx.DepthFunc(p.depthFunc)
	}
	ctx.DepthMask(p.depthWriteEnabled)

	ctx.SetCapability(gpu.CullFace, p.cullEnabled)
	if p.cullEnabled {
		ctx.CullFace(p.cullMode)
	}

	ctx.SetCapability(gpu.Blend, p.blendEnabled)
	if p.blendEnabled {
		ctx.BlendFunc(p.blendSrc, p.blendDst)
	}

	ctx.SetCapability(gpu.SeamlessCubemap, p.seamlessCubemap)
	p.program.Bind()
	return nil
}
