// annotations.go defines the @oxy: directives understood by the GLSL pre-processor. A directive
// is a single-line comment, so sources stay valid GLSL for tools that do not run the
// pre-processor:
//
//	//@oxy:include <struct>           injects a registered GLSL struct definition
//	//@oxy:uniform <name> [<name>...]  declares uniforms the program must expose after linking
//	//@oxy:sampler <name> <unit>       assigns a sampler uniform to a texture unit after linking
package shader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
)

const annotationPrefix = "@oxy:"

// AnnotationType identifies the directive of an annotation line.
type AnnotationType string

const (
	// AnnotationTypeInclude replaces the line with a registered struct source.
	//
	// Syntax: //@oxy:include <struct>
	//
	// Example: //@oxy:include point_light
	AnnotationTypeInclude AnnotationType = "include"

	// AnnotationTypeUniform declares uniforms that must resolve to a location once the program
	// links. A missing one fails program creation with *MissingUniformsError instead of
	// silently writing to location -1.
	//
	// Syntax: //@oxy:uniform <name> [<name>...]
	//
	// Example: //@oxy:uniform model view projection
	AnnotationTypeUniform AnnotationType = "uniform"

	// AnnotationTypeSampler binds a sampler uniform to a fixed texture unit right after linking.
	//
	// Syntax: //@oxy:sampler <name> <unit>
	//
	// Example: //@oxy:sampler g_normal 1
	AnnotationTypeSampler AnnotationType = "sampler"
)

// Annotation is one parsed @oxy: directive.
type Annotation struct {
	// Type identifies the directive.
	Type AnnotationType

	// Args holds the directive arguments: the struct name for include, uniform names for
	// uniform, and the sampler name for sampler.
	Args []string

	// Line is the 1-based source line of the directive.
	Line int

	// Unit is the texture unit of a sampler directive. Nil for other directives.
	Unit *int
}

// parseAnnotation parses one source line. Lines without the prefix return nil and no error.
//
// Parameters:
//   - line: the raw source line
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed directive, or nil if the line is not one
//   - error: a descriptive error if the directive is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	after, ok := strings.CutPrefix(strings.TrimSpace(strings.TrimPrefix(trimmed, "//")), annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case AnnotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument", lineNum)
		}
		return &Annotation{Type: AnnotationTypeInclude, Args: args[1:], Line: lineNum}, nil
	case AnnotationTypeUniform:
		if len(args) < 2 {
			return nil, fmt.Errorf("line %d: @oxy uniform annotation requires at least one name", lineNum)
		}
		return &Annotation{Type: AnnotationTypeUniform, Args: args[1:], Line: lineNum}, nil
	case AnnotationTypeSampler:
		if len(args) != 3 {
			return nil, fmt.Errorf("line %d: @oxy sampler annotation requires a name and a unit", lineNum)
		}
		unit, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid unit %q in @oxy sampler annotation: %v", lineNum, args[2], err)
		}
		if unit < 0 || unit >= gpu.MaxTextureUnits {
			return nil, fmt.Errorf("line %d: unit %d out of range [0, %d) in @oxy sampler annotation", lineNum, unit, gpu.MaxTextureUnits)
		}
		return &Annotation{Type: AnnotationTypeSampler, Args: args[1:2], Line: lineNum, Unit: &unit}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}
