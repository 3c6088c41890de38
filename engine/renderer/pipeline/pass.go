package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
)

// ErrNoPipeline is returned by Execute for a pass that has no pipeline.
var ErrNoPipeline = errors.New("pass has no pipeline")

// Input is a texture produced by an earlier pass and sampled by this one.
type Input struct {
	// Uniform is the sampler uniform name.
	Uniform string

	// Texture is the texture to sample.
	Texture *texture.Texture

	// Unit is the texture unit the texture is bound to.
	Unit texture.Unit
}

// Pass is one step of a technique's frame: a target, the state to draw it with and the draw.
type Pass struct {
	// Name identifies the pass in driver error reports and logs.
	Name string

	// Target is the framebuffer drawn into. Nil is the default framebuffer.
	Target *framebuffer.Framebuffer

	// Viewport is the rectangle drawn into. The zero value covers the whole target.
	Viewport gpu.Viewport

	// Clear selects the buffers reset before drawing. Zero clears nothing.
	Clear gpu.ClearFlags

	// ClearColor is the colour used when Clear includes gpu.ClearColor.
	ClearColor [4]float32

	// Inputs are bound before the program and pointed at by their sampler uniforms after it.
	Inputs []Input

	// Pipeline holds the program and fixed-function state.
	Pipeline Pipeline

	// Uniforms pushes per-pass uniforms once the program is bound. Optional.
	Uniforms func(p *shader.Program) error

	// Draw binds geometry and issues the draws. Optional for clear-only passes.
	Draw func(p *shader.Program) error
}

// viewport resolves the zero viewport to the full target.
func (p *Pass) viewport(ctx *gpu.RenderContext) gpu.Viewport {
	if p.Viewport.Width > 0 && p.Viewport.Height > 0 {
		return p.Viewport
	}
	var w, h int
	if p.Target != nil {
		w, h = p.Target.Size()
	} else {
		w, h = ctx.DefaultSize()
	}
	return gpu.Viewport{Width: int32(w), Height: int32(h)}
}

// Execute runs passes in order. Each pass binds its target, sets the viewport, clears, binds its
// inputs, applies its pipeline, pushes uniforms and draws, then polls the driver for errors.
// The first failing pass stops the sequence.
//
// Parameters:
//   - ctx: the render context
//   - passes: the passes to run
//
// Returns:
//   - error: the first failure wrapped with the pass name, a *gpu.DriverError for driver errors
func Execute(ctx *gpu.RenderContext, passes ...Pass) error {
	for i := range passes {
		if err := execute(ctx, &passes[i]); err != nil {
			return err
		}
	}
	return nil
}

func execute(ctx *gpu.RenderContext, pass *Pass) error {
	ctx.BeginPass(pass.Name)
	defer ctx.EndPass()

	if pass.Pipeline == nil {
		return fmt.Errorf("pass %q: %w", pass.Name, ErrNoPipeline)
	}

	if pass.Target != nil {
		if err := pass.Target.Bind(); err != nil {
			return fmt.Errorf("pass %q: %w", pass.Name, err)
		}
	} else {
		ctx.BindFramebuffer(gpu.FramebufferTarget, 0)
	}

	vp := pass.viewport(ctx)
	ctx.Viewport(int(vp.X), int(vp.Y), int(vp.Width), int(vp.Height))

	if pass.Clear != 0 {
		if pass.Clear&gpu.ClearColor != 0 {
			c := pass.ClearColor
			ctx.ClearColor(c[0], c[1], c[2], c[3])
		}
		if pass.Clear&gpu.ClearDepth != 0 {
			// a depth mask left off by the previous pass would make the clear a no-op
			ctx.DepthMask(true)
		}
		ctx.Clear(pass.Clear)
	}

	for _, in := range pass.Inputs {
		in.Texture.Bind(in.Unit)
	}

	if err := pass.Pipeline.Apply(ctx); err != nil {
		return fmt.Errorf("pass %q: %w", pass.Name, err)
	}
	program := pass.Pipeline.Program()

	for _, in := range pass.Inputs {
		if err := program.SetTextureUnit(in.Uniform, in.Texture, in.Unit); err != nil {
			return fmt.Errorf("pass %q: input %s: %w", pass.Name, in.Uniform, err)
		}
	}

	if pass.Uniforms != nil {
		if err := pass.Uniforms(program); err != nil {
			return fmt.Errorf("pass %q: uniforms: %w", pass.Name, err)
		}
	}

	if pass.Draw != nil {
		if err := pass.Draw(program); err != nil {
			return fmt.Errorf("pass %q: draw: %w", pass.Name, err)
		}
	}

	return ctx.CheckError("draw")
}
