package gputest

import (
	"fmt"
	"strings"
	"unicode"
)

// The recorder does not compile GLSL. It runs a lexical check that catches the failure most
// tests care about, an identifier that is used but never declared, and reports it in the format
// Mesa uses ("0:LINE(COL): error: `name' undeclared").

var glslTypes = setOf(
	"void", "bool", "int", "uint", "float", "double",
	"vec2", "vec3", "vec4", "ivec2", "ivec3", "ivec4", "uvec2", "uvec3", "uvec4", "bvec2", "bvec3", "bvec4",
	"mat2", "mat3", "mat4", "mat2x2", "mat2x3", "mat2x4", "mat3x2", "mat3x3", "mat3x4", "mat4x2", "mat4x3", "mat4x4",
	"sampler2D", "samplerCube", "sampler2DShadow", "sampler2DArray", "sampler3D", "isampler2D", "usampler2D",
)

var glslKeywords = setOf(
	"attribute", "const", "uniform", "varying", "layout", "centroid", "flat", "smooth", "noperspective",
	"break", "continue", "do", "for", "while", "switch", "case", "default", "if", "else",
	"in", "out", "inout", "true", "false", "invariant", "discard", "return", "struct",
	"precision", "highp", "mediump", "lowp", "location", "binding", "std140", "std430",
	"triangles", "triangle_strip", "max_vertices", "points", "lines",
)

var glslBuiltins = setOf(
	"radians", "degrees", "sin", "cos", "tan", "asin", "acos", "atan", "sinh", "cosh", "tanh",
	"pow", "exp", "log", "exp2", "log2", "sqrt", "inversesqrt", "abs", "sign", "floor", "trunc",
	"round", "ceil", "fract", "mod", "modf", "min", "max", "clamp", "mix", "step", "smoothstep",
	"isnan", "isinf", "length", "distance", "dot", "cross", "normalize", "faceforward", "reflect",
	"refract", "matrixCompMult", "outerProduct", "transpose", "determinant", "inverse",
	"lessThan", "greaterThan", "equal", "notEqual", "any", "all", "not",
	"texture", "textureLod", "textureSize", "texelFetch", "textureOffset", "textureGrad",
	"dFdx", "dFdy", "fwidth", "bitfieldReverse", "floatBitsToUint", "uintBitsToFloat",
	"floatBitsToInt", "intBitsToFloat", "EmitVertex", "EndPrimitive",
)

func setOf(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokPunct
)

type token struct {
	kind      tokenKind
	text      string
	line, col int
}

// tokenize splits GLSL source into tokens, skipping comments and preprocessor lines. Names
// introduced by #define are returned separately.
func tokenize(src string) ([]token, []string) {
	var tokens []token
	var defines []string
	lines := strings.Split(src, "\n")
	inBlock := false
	for li, line := range lines {
		lineNo := li + 1
		if !inBlock {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "#") {
				fields := strings.Fields(strings.TrimPrefix(trimmed, "#"))
				if len(fields) >= 2 && fields[0] == "define" {
					name := fields[1]
					if i := strings.IndexByte(name, '('); i >= 0 {
						name = name[:i]
					}
					defines = append(defines, name)
				}
				continue
			}
		}
		runes := []rune(line)
		for i := 0; i < len(runes); {
			r := runes[i]
			if inBlock {
				if r == '*' && i+1 < len(runes) && runes[i+1] == '/' {
					inBlock = false
					i += 2
					continue
				}
				i++
				continue
			}
			switch {
			case r == '/' && i+1 < len(runes) && runes[i+1] == '/':
				i = len(runes)
			case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
				inBlock = true
				i += 2
			case unicode.IsSpace(r):
				i++
			case r == '_' || unicode.IsLetter(r):
				start := i
				for i < len(runes) && (runes[i] == '_' || unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i])) {
					i++
				}
				tokens = append(tokens, token{kind: tokIdent, text: string(runes[start:i]), line: lineNo, col: start})
			case unicode.IsDigit(r) || (r == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
				start := i
				for i < len(runes) {
					c := runes[i]
					if unicode.IsDigit(c) || unicode.IsLetter(c) || c == '.' {
						i++
						continue
					}
					if (c == '-' || c == '+') && (runes[i-1] == 'e' || runes[i-1] == 'E') {
						i++
						continue
					}
					break
				}
				tokens = append(tokens, token{kind: tokNumber, text: string(runes[start:i]), line: lineNo, col: start})
			default:
				tokens = append(tokens, token{kind: tokPunct, text: string(r), line: lineNo, col: i})
				i++
			}
		}
	}
	return tokens, defines
}

// checkGLSL returns one log line per undeclared identifier, or nil when the source passes.
func checkGLSL(src string) []string {
	tokens, defines := tokenize(src)
	types := make(map[string]bool, len(glslTypes))
	for t := range glslTypes {
		types[t] = true
	}
	declared := make(map[string]bool)
	for _, d := range defines {
		declared[d] = true
	}

	var problems []string
	parenDepth := 0
	declaring := false
	for i, t := range tokens {
		if t.kind == tokPunct {
			switch t.text {
			case "(", "[":
				parenDepth++
			case ")", "]":
				parenDepth--
			case ";", "{", "}":
				declaring = false
			}
			continue
		}
		if t.kind != tokIdent {
			continue
		}
		if i > 0 && tokens[i-1].text == "." {
			continue
		}
		var next *token
		if i+1 < len(tokens) {
			next = &tokens[i+1]
		}
		switch {
		case t.text == "struct":
			if next != nil && next.kind == tokIdent {
				types[next.text] = true
				declared[next.text] = true
			}
			continue
		case glslKeywords[t.text]:
			continue
		case types[t.text]:
			if next != nil && next.kind == tokIdent && !glslKeywords[next.text] {
				declared[next.text] = true
				if parenDepth == 0 {
					declaring = true
				}
			}
			continue
		case declared[t.text], glslBuiltins[t.text], strings.HasPrefix(t.text, "gl_"):
			continue
		}
		if declaring && parenDepth == 0 && i > 0 && tokens[i-1].text == "," {
			declared[t.text] = true
			continue
		}
		problems = append(problems, fmt.Sprintf("0:%d(%d): error: `%s' undeclared", t.line, t.col+1, t.text))
	}
	return problems
}

// uniformNames returns the names declared with the uniform qualifier.
func uniformNames(src string) []string {
	tokens, _ := tokenize(src)
	var names []string
	for i := 0; i < len(tokens); i++ {
		if tokens[i].text != "uniform" {
			continue
		}
		j := i + 1
		for j < len(tokens) && (tokens[j].text == "highp" || tokens[j].text == "mediump" || tokens[j].text == "lowp") {
			j++
		}
		j++ // type
		expectName := true
		depth := 0
		for ; j < len(tokens) && tokens[j].text != ";"; j++ {
			switch tokens[j].text {
			case "[", "(":
				depth++
			case "]", ")":
				depth--
			case ",":
				if depth == 0 {
					expectName = true
				}
			default:
				if expectName && tokens[j].kind == tokIdent {
					names = append(names, tokens[j].text)
					expectName = false
				}
			}
		}
		i = j
	}
	return names
}
