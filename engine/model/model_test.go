package model_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gputest"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	meshVertex = `layout (location = 0) in vec3 a_pos;
layout (location = 1) in vec3 a_normal;
layout (location = 2) in vec2 a_uv;
uniform mat4 mvp;
out vec2 uv;
void main() {
    uv = a_uv + a_normal.xy * 0.0;
    gl_Position = mvp * vec4(a_pos, 1.0);
}
`
	meshFragment = `in vec2 uv;
out vec4 color;
void main() {
    color = vec4(uv, 0.0, 1.0);
}
`
)

func newContext() (*gputest.Recorder, *gpu.RenderContext) {
	rec := gputest.NewRecorder()
	return rec, gpu.NewRenderContext(rec, 800, 600)
}

func triangle() common.MeshData {
	return common.MeshData{
		Name:          "tri",
		Positions:     []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 2, 0}},
		UVs:           []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}},
		Indices:       []uint32{0, 1, 2},
		MaterialIndex: 0,
	}
}

func TestCubeVertices_OutwardNormals(t *testing.T) {
	vertices := model.CubeVertices()
	require.Len(t, vertices, 36)
	for i := 0; i < len(vertices); i += 3 {
		a := mgl32.Vec3(vertices[i].Position)
		b := mgl32.Vec3(vertices[i+1].Position)
		c := mgl32.Vec3(vertices[i+2].Position)
		n := mgl32.Vec3(vertices[i].Normal)
		face := b.Sub(a).Cross(c.Sub(a)).Normalize()
		assert.InDelta(t, 1, face.Dot(n), 1e-5, "triangle %d winds against its normal", i/3)
		assert.InDelta(t, 1, a.Dot(n), 1e-5)
	}
}

func TestSphereGeometry_Counts(t *testing.T) {
	vertices, indices := model.SphereGeometry(model.DefaultSphereSegments, model.DefaultSphereSegments)
	assert.Len(t, vertices, 65*65)
	assert.Len(t, indices, 64*65*2)
	for _, v := range vertices {
		p := mgl32.Vec3(v.Position)
		assert.InDelta(t, 1, p.Len(), 1e-5)
	}
	for _, i := range indices {
		require.Less(t, int(i), len(vertices))
	}
}

func TestNewQuad_Layout(t *testing.T) {
	rec, ctx := newContext()
	quad, err := model.NewQuad(ctx)
	require.NoError(t, err)

	assert.Equal(t, gpu.TriangleStrip, quad.Mode())
	assert.Equal(t, 4, quad.Count())
	assert.False(t, quad.Indexed())
	pointers := rec.CallsNamed("VertexAttribPointer")
	require.Len(t, pointers, 2)
	assert.Equal(t, int32(model.QuadVertexSize), pointers[1].Args[4])
	assert.Equal(t, 12, pointers[1].Args[5])
}

func TestUpload_InterleavesAndIndexes(t *testing.T) {
	rec, ctx := newContext()
	mesh, err := model.Upload(ctx, triangle())
	require.NoError(t, err)

	assert.True(t, mesh.Indexed())
	assert.Equal(t, 3, mesh.Count())
	assert.InDelta(t, 2, mesh.BoundingRadius(), 1e-6)
	assert.Equal(t, 0, mesh.MaterialIndex())

	sizes := map[int]bool{}
	for _, c := range rec.CallsNamed("BufferData") {
		sizes[c.Args[1].(int)] = true
	}
	assert.True(t, sizes[3*model.VertexSize])
	assert.True(t, sizes[3*4])
}

func TestUpload_Validation(t *testing.T) {
	_, ctx := newContext()

	_, err := model.Upload(ctx, common.MeshData{Name: "empty"})
	assert.ErrorIs(t, err, model.ErrEmptyMesh)

	bad := triangle()
	bad.Indices = []uint32{0, 1, 3}
	_, err = model.Upload(ctx, bad)
	assert.ErrorContains(t, err, "out of range")

	bad = triangle()
	bad.Normals = []mgl32.Vec3{{0, 0, 1}}
	_, err = model.Upload(ctx, bad)
	assert.ErrorContains(t, err, "1 normals for 3 positions")
}

func TestMesh_DrawRequiresProgram(t *testing.T) {
	_, ctx := newContext()
	cube, err := model.NewCube(ctx)
	require.NoError(t, err)

	assert.ErrorIs(t, cube.Draw(), gpu.ErrNoProgram)
}

func TestModel_DrawBindsMaterialPerMesh(t *testing.T) {
	rec, ctx := newContext()
	p, err := shader.NewProgram(ctx, meshVertex, meshFragment)
	require.NoError(t, err)
	p.Bind()

	imported := &common.ImportedModel{
		Name:   "pair",
		Meshes: []common.MeshData{triangle(), {Name: "loose", Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, MaterialIndex: -1}},
	}
	m, err := model.FromImported(ctx, imported, model.WithMaterials([]material.Phong{{Name: "red", Shininess: 8}}))
	require.NoError(t, err)

	var seen []string
	err = m.Draw(func(mat *material.Phong) error {
		if mat == nil {
			seen = append(seen, "")
			return nil
		}
		seen = append(seen, mat.Name)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"red", ""}, seen)
	assert.Equal(t, 1, rec.CountCalls("DrawElements"))
	assert.Equal(t, 1, rec.CountCalls("DrawArrays"))
	assert.Equal(t, 2, ctx.Stats().DrawCalls)

	m.Destroy()
	assert.Equal(t, 0, rec.Live(gpu.HandleBuffer))
	assert.Equal(t, 0, rec.Live(gpu.HandleVertexArray))
}

func TestFromImported_ReleasesOnFailure(t *testing.T) {
	rec, ctx := newContext()
	imported := &common.ImportedModel{
		Name:   "broken",
		Meshes: []common.MeshData{triangle(), {Name: "empty"}},
	}
	_, err := model.FromImported(ctx, imported)
	require.ErrorIs(t, err, model.ErrEmptyMesh)
	assert.Equal(t, 0, rec.Live(gpu.HandleBuffer))
	assert.Equal(t, 0, rec.Live(gpu.HandleVertexArray))
}
