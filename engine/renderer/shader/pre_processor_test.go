package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreProcessor_InjectsVersionAndDefines(t *testing.T) {
	pp := NewPreProcessor(WithDefine("NR_LIGHTS", "32"), WithDefine("KERNEL_SIZE", "64"))

	out, err := pp.Process("out vec4 color;\nvoid main() {}\n")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "#version "+DefaultVersion, lines[0])
	assert.Equal(t, "#define KERNEL_SIZE 64", lines[1])
	assert.Equal(t, "#define NR_LIGHTS 32", lines[2])
}

func TestPreProcessor_KeepsExistingVersion(t *testing.T) {
	pp := NewPreProcessor(WithDefine("N", "4"))

	out, err := pp.Process("\n#version 330 core\nvoid main() {}\n")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "#version 330 core\n#define N 4\n"))
	assert.Equal(t, 1, strings.Count(out, "#version"))
}

func TestPreProcessor_ExpandsIncludesOnce(t *testing.T) {
	pp := NewPreProcessor()

	out, err := pp.Process("//@oxy:include point_light\n//@oxy:include point_light\nuniform PointLight light;\n")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "struct PointLight"))
	assert.NotContains(t, out, "@oxy:")
}

func TestPreProcessor_UnknownInclude(t *testing.T) {
	pp := NewPreProcessor()

	_, err := pp.Process("void main() {}\n  //@oxy:include spot_light\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), `"spot_light"`)
}

func TestPreProcessor_CustomInclude(t *testing.T) {
	pp := NewPreProcessor(WithInclude("tone", "vec3 reinhard(vec3 c) { return c / (c + vec3(1.0)); }"))

	out, err := pp.Process("//@oxy:include tone\n")
	require.NoError(t, err)
	assert.Contains(t, out, "vec3 reinhard")
}

func TestPreProcessor_CollectsDeclarations(t *testing.T) {
	pp := NewPreProcessor()

	_, err := pp.Process("//@oxy:uniform model view\n//@oxy:sampler g_normal 1\n")
	require.NoError(t, err)

	decls := pp.Declarations()
	require.Len(t, decls, 2)
	assert.Equal(t, AnnotationTypeUniform, decls[0].Type)
	assert.Equal(t, []string{"model", "view"}, decls[0].Args)
	assert.Equal(t, AnnotationTypeSampler, decls[1].Type)
	require.NotNil(t, decls[1].Unit)
	assert.Equal(t, 1, *decls[1].Unit)
	assert.Equal(t, 2, decls[1].Line)

	// declarations reset per call
	_, err = pp.Process("void main() {}\n")
	require.NoError(t, err)
	assert.Empty(t, pp.Declarations())
}

func TestParseAnnotation(t *testing.T) {
	cases := []struct {
		name    string
		line    string
		want    AnnotationType
		wantErr string
	}{
		{name: "plain comment", line: "// just a comment"},
		{name: "code", line: "uniform mat4 model;"},
		{name: "include", line: "//@oxy:include pbr_material", want: AnnotationTypeInclude},
		{name: "spaced", line: "  // @oxy:uniform a", want: AnnotationTypeUniform},
		{name: "empty", line: "//@oxy:", wantErr: "empty @oxy annotation"},
		{name: "unknown", line: "//@oxy:binding 0", wantErr: `unknown @oxy annotation type "binding"`},
		{name: "include arity", line: "//@oxy:include a b", wantErr: "exactly one argument"},
		{name: "sampler unit", line: "//@oxy:sampler s x", wantErr: `invalid unit "x"`},
		{name: "sampler range", line: "//@oxy:sampler s 16", wantErr: "out of range"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, err := parseAnnotation(tc.line, 7)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "line 7")
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			if tc.want == "" {
				assert.Nil(t, a)
				return
			}
			require.NotNil(t, a)
			assert.Equal(t, tc.want, a.Type)
		})
	}
}
