package shader

import "github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"

// ProgramBuilderOption is a function that configures a Program during construction.
type ProgramBuilderOption func(*Program)

// WithName sets the program name used in logs and errors.
//
// Parameters:
//   - name: the program name
//
// Returns:
//   - ProgramBuilderOption: a function that applies the name to a Program
func WithName(name string) ProgramBuilderOption {
	return func(p *Program) {
		p.name = name
	}
}

// WithGeometrySource adds a geometry stage compiled between the vertex and fragment stages.
func WithGeometrySource(source string) ProgramBuilderOption {
	return func(p *Program) {
		p.sources[gpu.StageGeometry] = source
	}
}

// WithDefines injects #define lines into every stage. Ignored when WithPreProcessor is given.
func WithDefines(defines map[string]string) ProgramBuilderOption {
	return func(p *Program) {
		for name, value := range defines {
			p.defines = append(p.defines, WithDefine(name, value))
		}
	}
}

// WithPreProcessor replaces the default pre-processor.
func WithPreProcessor(pp PreProcessor) ProgramBuilderOption {
	return func(p *Program) {
		p.pp = pp
	}
}

// WithRequiredUniforms declares uniforms the program must expose after every link.
func WithRequiredUniforms(names ...string) ProgramBuilderOption {
	return func(p *Program) {
		p.required = append(p.required, names...)
	}
}
