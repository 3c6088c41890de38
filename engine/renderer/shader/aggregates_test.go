package shader_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const litFragment = `//@oxy:include directional_light
//@oxy:include point_light
//@oxy:include flash_light
//@oxy:include phong_material
out vec4 frag_color;
in vec2 tex_coords;
uniform DirectionalLight sun;
uniform PointLight light;
uniform FlashLight flash;
uniform Material material;
void main() {
    vec3 base = texture(material.diffuse_map, tex_coords).rgb * texture(material.specular_map, tex_coords).r;
    float facing = max(dot(-sun.direction, vec3(0.0, 1.0, 0.0)), 0.0);
    frag_color = vec4(base * (sun.color * facing + light.color * flash.color), 1.0);
}
`

func TestSetPointLight_DecomposesFields(t *testing.T) {
	rec, ctx := newContext()
	p, err := shader.NewProgram(ctx, mvpVertex, litFragment)
	require.NoError(t, err)

	l := light.NewPointLight(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{1, 1, 1})
	require.NoError(t, p.SetPointLight("light", l))

	threes := 0
	for _, c := range rec.UniformCalls() {
		if c.Kind == "3f" {
			threes++
		}
	}
	position := rec.UniformCallsNamed("light.position")
	require.Len(t, position, 1)
	assert.Equal(t, "3f", position[0].Kind)
	assert.Equal(t, []float32{1, 2, 3}, position[0].Values)
	assert.Equal(t, 2, threes)

	linear := rec.UniformCallsNamed("light.linear")
	require.Len(t, linear, 1)
	assert.InDelta(t, light.DefaultLinear, linear[0].Values[0], 1e-6)
}

func TestSetDirectionalLight_DecomposesFields(t *testing.T) {
	rec, ctx := newContext()
	p, err := shader.NewProgram(ctx, mvpVertex, litFragment)
	require.NoError(t, err)

	sun := light.DirectionalLight{Direction: mgl32.Vec3{-0.2, -1, -0.3}, Color: mgl32.Vec3{0.4, 0.4, 0.4}}
	require.NoError(t, p.SetDirectionalLight("sun", sun))

	direction := rec.UniformCallsNamed("sun.direction")
	require.Len(t, direction, 1)
	assert.Equal(t, "3f", direction[0].Kind)
	assert.Equal(t, []float32{-0.2, -1, -0.3}, direction[0].Values)
	color := rec.UniformCallsNamed("sun.color")
	require.Len(t, color, 1)
	assert.Equal(t, []float32{0.4, 0.4, 0.4}, color[0].Values)
	assert.Len(t, rec.UniformCalls(), 2)
}

func TestSetFlashLight_WritesCosines(t *testing.T) {
	rec, ctx := newContext()
	p, err := shader.NewProgram(ctx, mvpVertex, litFragment)
	require.NoError(t, err)

	f := light.NewFlashLight(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{1, 1, 1}, 12.5, 17.5)
	require.NoError(t, p.SetFlashLight("flash", f))

	cut := rec.UniformCallsNamed("flash.cut_off")
	require.Len(t, cut, 1)
	assert.InDelta(t, 0.976296, cut[0].Values[0], 1e-5)
	outer := rec.UniformCallsNamed("flash.outer_cut_off")
	require.Len(t, outer, 1)
	assert.InDelta(t, 0.953717, outer[0].Values[0], 1e-5)
}

func TestSetPhongMaterial_BindsConsecutiveUnits(t *testing.T) {
	rec, ctx := newContext()
	p, err := shader.NewProgram(ctx, mvpVertex, litFragment)
	require.NoError(t, err)

	diffuse, err := texture.Create2D(ctx, 4, 4, gpu.FormatRGBA8, nil, texture.WithTag(texture.TagDiffuse))
	require.NoError(t, err)
	specular, err := texture.Create2D(ctx, 4, 4, gpu.FormatR8, nil, texture.WithTag(texture.TagSpecular))
	require.NoError(t, err)

	m := material.NewPhong(diffuse, material.WithSpecularMap(specular), material.WithShininess(64))
	next, err := p.SetPhongMaterial("material", m, 0)
	require.NoError(t, err)
	assert.Equal(t, texture.Unit(2), next)

	// unit 0 is the sampler default, so only the specular map needs its integer written
	assert.Empty(t, rec.UniformCallsNamed("material.diffuse_map"))
	spec := rec.UniformCallsNamed("material.specular_map")
	require.Len(t, spec, 1)
	assert.Equal(t, []float32{1}, spec[0].Values)
	assert.Equal(t, specular.ID(), ctx.State().Texture(1, gpu.Texture2D))

	hasNormal := rec.UniformCallsNamed("material.has_normal_map")
	require.Len(t, hasNormal, 1)
	assert.Equal(t, []float32{0}, hasNormal[0].Values)
	shininess := rec.UniformCallsNamed("material.shininess")
	require.Len(t, shininess, 1)
	assert.Equal(t, []float32{64}, shininess[0].Values)
}

func TestSetPhongMaterial_RejectsWrongSlot(t *testing.T) {
	_, ctx := newContext()
	p, err := shader.NewProgram(ctx, mvpVertex, litFragment)
	require.NoError(t, err)

	depth, err := texture.Create2D(ctx, 4, 4, gpu.FormatDepth24, nil)
	require.NoError(t, err)

	_, err = p.SetPhongMaterial("material", material.NewPhong(depth), 0)
	assert.ErrorIs(t, err, texture.ErrDepthInColorSlot)
}
