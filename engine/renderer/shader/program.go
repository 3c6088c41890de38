package shader

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
)

// stageOrder is the compile order of the stages a program may carry.
var stageOrder = []gpu.ShaderStage{gpu.StageVertex, gpu.StageFragment, gpu.StageGeometry}

// Program owns a linked GPU program and a cache of its uniform locations.
type Program struct {
	gpu.Object

	ctx  *gpu.RenderContext
	name string

	// sources holds the raw stage sources as given or as last read from paths.
	sources map[gpu.ShaderStage]string

	// paths maps stages to source files for programs created with NewProgramFromFiles.
	paths map[gpu.ShaderStage]string

	pp      PreProcessor
	defines []PreProcessorBuilderOption

	locations map[string]int32
	required  []string
	samplers  map[string]int

	// warned holds texture ids already reported for sampling without a mip chain.
	warned map[uint32]bool
}

// NewProgram pre-processes, compiles and links a program from in-memory sources.
//
// Parameters:
//   - ctx: the render context that owns the driver
//   - vertexSrc: the vertex stage source
//   - fragmentSrc: the fragment stage source
//   - opts: program builder options
//
// Returns:
//   - *Program: the linked program
//   - error: *gpu.CompileError, *gpu.LinkError, *MissingUniformsError, a pre-processor error,
//     or *gpu.CreationError
func NewProgram(ctx *gpu.RenderContext, vertexSrc, fragmentSrc string, opts ...ProgramBuilderOption) (*Program, error) {
	p := newProgram(ctx, opts)
	p.sources[gpu.StageVertex] = vertexSrc
	p.sources[gpu.StageFragment] = fragmentSrc
	if err := p.link(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewProgramFromFiles reads the stage sources from disk and links them. The paths are kept so
// Reload and Watcher can pick up edits.
func NewProgramFromFiles(ctx *gpu.RenderContext, vertexPath, fragmentPath string, opts ...ProgramBuilderOption) (*Program, error) {
	p := newProgram(ctx, opts)
	if p.name == "" {
		p.name = vertexPath
	}
	p.paths[gpu.StageVertex] = vertexPath
	p.paths[gpu.StageFragment] = fragmentPath
	if err := p.readSources(); err != nil {
		return nil, err
	}
	if err := p.link(); err != nil {
		return nil, err
	}
	return p, nil
}

func newProgram(ctx *gpu.RenderContext, opts []ProgramBuilderOption) *Program {
	p := &Program{
		ctx:       ctx,
		sources:   make(map[gpu.ShaderStage]string),
		paths:     make(map[gpu.ShaderStage]string),
		locations: make(map[string]int32),
		samplers:  make(map[string]int),
		warned:    make(map[uint32]bool),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.pp == nil {
		p.pp = NewPreProcessor(p.defines...)
	}
	return p
}

// Name returns the program name.
func (p *Program) Name() string { return p.name }

// Paths returns the source files backing the program, in stage order.
func (p *Program) Paths() []string {
	var paths []string
	for _, stage := range stageOrder {
		if path, ok := p.paths[stage]; ok {
			paths = append(paths, path)
		}
	}
	return paths
}

// Bind makes the program current.
func (p *Program) Bind() {
	p.ctx.UseProgram(p.ID())
}

// Reload re-reads file-backed sources, then recompiles and relinks. On failure the previous
// program stays linked and usable.
//
// Returns:
//   - error: the read, compile, link or validation failure, nil on success
func (p *Program) Reload() error {
	previous := maps.Clone(p.sources)
	if err := p.readSources(); err != nil {
		p.sources = previous
		return err
	}

	old := p.Object
	oldLocations, oldSamplers := p.locations, p.samplers
	p.locations = make(map[string]int32)
	p.samplers = make(map[string]int)
	if err := p.link(); err != nil {
		p.Object, p.locations, p.samplers = old, oldLocations, oldSamplers
		p.sources = previous
		p.ctx.Logger().Warn("shader reload failed, keeping previous program", "program", p.name, "error", err)
		return err
	}
	old.Destroy()
	p.ctx.Logger().Info("shader reloaded", "program", p.name)
	return nil
}

// link builds every stage, links them into a new program object and installs it. On failure
// nothing is installed and every object created along the way is released.
func (p *Program) link() error {
	obj, decls, err := p.build()
	if err != nil {
		return err
	}
	p.Object = obj

	for _, d := range decls {
		switch d.Type {
		case AnnotationTypeUniform:
			for _, name := range d.Args {
				if !slices.Contains(p.required, name) {
					p.required = append(p.required, name)
				}
			}
		case AnnotationTypeSampler:
			p.samplers[d.Args[0]] = *d.Unit
		}
	}

	if err := p.RequireUniforms(p.required...); err != nil {
		p.Object.Destroy()
		return err
	}
	for name, unit := range p.samplers {
		if err := p.Set1i(name, int32(unit)); err != nil {
			p.Object.Destroy()
			return err
		}
	}
	return nil
}

func (p *Program) build() (gpu.Object, []Annotation, error) {
	driver := p.ctx.Driver()
	var stages []gpu.Object
	release := func() {
		for i := range stages {
			stages[i].Destroy()
		}
	}

	var decls []Annotation
	for _, stage := range stageOrder {
		raw, ok := p.sources[stage]
		if !ok {
			continue
		}
		src, err := p.pp.Process(raw)
		if err != nil {
			release()
			return gpu.Object{}, nil, fmt.Errorf("pre-process %s stage of %q: %w", stage, p.name, err)
		}
		decls = append(decls, p.pp.Declarations()...)

		obj, err := gpu.NewShaderObject(p.ctx, stage)
		if err != nil {
			release()
			return gpu.Object{}, nil, err
		}
		stages = append(stages, obj)
		driver.ShaderSource(obj.ID(), src)
		driver.CompileShader(obj.ID())
		if !driver.ShaderCompiled(obj.ID()) {
			err := &gpu.CompileError{Stage: stage, Log: driver.ShaderInfoLog(obj.ID())}
			p.ctx.Logger().Error("shader compile failed", "program", p.name, "stage", stage.String(), "error", err)
			release()
			return gpu.Object{}, nil, err
		}
	}

	prog, err := gpu.NewObject(p.ctx, gpu.HandleProgram)
	if err != nil {
		release()
		return gpu.Object{}, nil, err
	}
	for i := range stages {
		driver.AttachShader(prog.ID(), stages[i].ID())
	}
	driver.LinkProgram(prog.ID())
	linked := driver.ProgramLinked(prog.ID())
	for i := range stages {
		driver.DetachShader(prog.ID(), stages[i].ID())
	}
	release()

	if !linked {
		err := &gpu.LinkError{Program: p.name, Log: driver.ProgramInfoLog(prog.ID())}
		p.ctx.Logger().Error("program link failed", "program", p.name, "error", err)
		prog.Destroy()
		return gpu.Object{}, nil, err
	}
	return prog, decls, nil
}

func (p *Program) readSources() error {
	for stage, path := range p.paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s stage of %q: %w", stage, p.name, err)
		}
		p.sources[stage] = string(data)
	}
	return nil
}

// UniformLocation resolves a uniform name, caching the answer until the program is relinked.
//
// Parameters:
//   - name: the full uniform name, e.g. "point_lights[2].color"
//
// Returns:
//   - int32: the location, or NotFound when the program does not expose the name
//   - error: ErrProgramNotLinked when the program was destroyed
func (p *Program) UniformLocation(name string) (int32, error) {
	if !p.Alive() {
		return NotFound, fmt.Errorf("uniform %q of %q: %w", name, p.name, ErrProgramNotLinked)
	}
	if loc, ok := p.locations[name]; ok {
		return loc, nil
	}
	loc := p.ctx.Driver().GetUniformLocation(p.ID(), name)
	p.locations[name] = loc
	return loc, nil
}

// RequireUniforms fails with *MissingUniformsError naming every given uniform the program does
// not expose. The names are re-checked after each Reload.
func (p *Program) RequireUniforms(names ...string) error {
	var missing []string
	for _, name := range names {
		loc, err := p.UniformLocation(name)
		if err != nil {
			return err
		}
		if loc == NotFound {
			missing = append(missing, name)
		}
		if !slices.Contains(p.required, name) {
			p.required = append(p.required, name)
		}
	}
	if len(missing) > 0 {
		return &MissingUniformsError{Program: p.name, Names: missing}
	}
	return nil
}

// Destroy releases the program. Later lookups fail with ErrProgramNotLinked.
func (p *Program) Destroy() {
	p.Object.Destroy()
	clear(p.locations)
}

// logger returns the context logger scoped to the program.
func (p *Program) logger() *slog.Logger {
	return p.ctx.Logger().With("program", p.name)
}

