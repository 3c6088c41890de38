// pre_processor.go implements the GLSL pre-processor. It makes sure every stage starts with
// the expected #version line, injects #define lines for constants shared with Go code, and
// expands @oxy: directives. Struct includes come from a registry of GLSL sources embedded next
// to the Go types they mirror, so uniform names and struct fields have a single definition.
package shader

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
)

// DefaultVersion is the #version line injected into sources that do not declare one.
const DefaultVersion = "410 core"

// Registered struct names for //@oxy:include.
const (
	IncludeDirectionalLight = "directional_light"
	IncludePointLight       = "point_light"
	IncludeFlashLight       = "flash_light"
	IncludePhongMaterial    = "phong_material"
	IncludePBRMaterial      = "pbr_material"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// version is the #version argument injected when a source has none.
	version string

	// defines are emitted as #define lines directly after #version, in name order.
	defines map[string]string

	// structRegistry maps include names to GLSL struct sources.
	structRegistry map[string]string

	// declarations accumulates uniform and sampler directives during a Process call.
	declarations []Annotation
}

// PreProcessor turns engine GLSL sources into driver-ready sources.
type PreProcessor interface {
	// Process expands one stage source. The declarations list is reset at the start of each
	// call.
	//
	// Parameters:
	//   - source: the raw GLSL source
	//
	// Returns:
	//   - string: the processed source
	//   - error: an error naming the line of a malformed or unknown directive
	Process(source string) (string, error)

	// Declarations returns the uniform and sampler directives collected by the last Process
	// call, in source order.
	//
	// Returns:
	//   - []Annotation: the collected directives
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// PreProcessorBuilderOption is a function that configures a pre-processor during construction.
type PreProcessorBuilderOption func(*preProcessor)

// WithDefine adds a #define injected after the #version line.
//
// Parameters:
//   - name: the macro name
//   - value: the replacement text
//
// Returns:
//   - PreProcessorBuilderOption: a function that applies the define to a pre-processor
func WithDefine(name, value string) PreProcessorBuilderOption {
	return func(p *preProcessor) {
		p.defines[name] = value
	}
}

// WithVersion overrides the injected #version argument.
func WithVersion(version string) PreProcessorBuilderOption {
	return func(p *preProcessor) {
		p.version = version
	}
}

// WithInclude registers an additional struct source for //@oxy:include.
func WithInclude(name, source string) PreProcessorBuilderOption {
	return func(p *preProcessor) {
		p.structRegistry[name] = source
	}
}

// NewPreProcessor creates a pre-processor with the engine's light and material structs
// registered.
//
// Parameters:
//   - opts: pre-processor builder options
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor
func NewPreProcessor(opts ...PreProcessorBuilderOption) PreProcessor {
	p := &preProcessor{
		version: DefaultVersion,
		defines: make(map[string]string),
		structRegistry: map[string]string{
			IncludeDirectionalLight: light.DirectionalLightSource,
			IncludePointLight:       light.PointLightSource,
			IncludeFlashLight:       light.FlashLightSource,
			IncludePhongMaterial:    material.PhongMaterialSource,
			IncludePBRMaterial:      material.PBRMaterialSource,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines)+len(p.defines)+1)

	// The #version line must come first, so defines go right after it.
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	if start < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[start]), "#version") {
		out = append(out, strings.TrimSpace(lines[start]))
		start++
	} else {
		out = append(out, "#version "+p.version)
	}
	for _, name := range slices.Sorted(maps.Keys(p.defines)) {
		out = append(out, fmt.Sprintf("#define %s %s", name, p.defines[name]))
	}

	included := make(map[string]bool)
	for i := start; i < len(lines); i++ {
		line := lines[i]
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case AnnotationTypeInclude:
			src, ok := p.structRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @oxy:include argument %q", a.Line, a.Args[0])
			}
			if included[a.Args[0]] {
				continue
			}
			included[a.Args[0]] = true
			out = append(out, strings.TrimRight(src, "\n"))
		case AnnotationTypeUniform, AnnotationTypeSampler:
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
