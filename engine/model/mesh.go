package model

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
)

// ErrEmptyMesh is returned when uploading a mesh without positions.
var ErrEmptyMesh = errors.New("mesh has no positions")

// Mesh is uploaded geometry: a vertex array, its vertex buffer and an optional index buffer.
type Mesh struct {
	ctx *gpu.RenderContext

	name     string
	vao      *gpu.VertexArray
	vertices *gpu.Buffer
	indices  *gpu.Buffer
	mode     gpu.Enum
	count    int

	materialIndex  int
	boundingRadius float32
}

// newMesh uploads vertex bytes in layout and, when indices is non-empty, an index buffer. Every
// object created before a failure is released.
func newMesh(ctx *gpu.RenderContext, name string, layout *gpu.VertexLayout, data []byte, indices []uint32, mode gpu.Enum) (*Mesh, error) {
	m := &Mesh{ctx: ctx, name: name, mode: mode, materialIndex: -1}

	var err error
	if m.vao, err = gpu.NewVertexArray(ctx); err != nil {
		return nil, fmt.Errorf("mesh %q: %w", name, err)
	}
	if m.vertices, err = gpu.NewBuffer(ctx, gpu.BufferKindVertex, gpu.UsageStatic); err != nil {
		m.Destroy()
		return nil, fmt.Errorf("mesh %q: %w", name, err)
	}
	m.vertices.SetData(data)
	layout.BindTo(m.vertices, m.vao)
	m.count = len(data) / layout.Stride()

	if len(indices) > 0 {
		if m.indices, err = gpu.NewBuffer(ctx, gpu.BufferKindIndex, gpu.UsageStatic); err != nil {
			m.Destroy()
			return nil, fmt.Errorf("mesh %q: %w", name, err)
		}
		// the element binding is recorded by the bound vertex array
		m.indices.SetData(common.SliceToBytes(indices))
		m.count = len(indices)
	}
	return m, nil
}

// Upload interleaves parsed mesh data into the MeshLayout and uploads it. Missing normals or
// texture coordinates are zero-filled.
//
// Parameters:
//   - ctx: the render context
//   - data: the parsed mesh
//
// Returns:
//   - *Mesh: the uploaded triangle mesh
//   - error: a validation error or *gpu.CreationError
func Upload(ctx *gpu.RenderContext, data common.MeshData) (*Mesh, error) {
	n := len(data.Positions)
	if n == 0 {
		return nil, fmt.Errorf("mesh %q: %w", data.Name, ErrEmptyMesh)
	}
	if len(data.Normals) != 0 && len(data.Normals) != n {
		return nil, fmt.Errorf("mesh %q: %d normals for %d positions", data.Name, len(data.Normals), n)
	}
	if len(data.UVs) != 0 && len(data.UVs) != n {
		return nil, fmt.Errorf("mesh %q: %d texture coordinates for %d positions", data.Name, len(data.UVs), n)
	}
	for i, idx := range data.Indices {
		if int(idx) >= n {
			return nil, fmt.Errorf("mesh %q: index %d at %d out of range [0, %d)", data.Name, idx, i, n)
		}
	}

	vertices := make([]Vertex, n)
	for i, p := range data.Positions {
		vertices[i].Position = p
		if len(data.Normals) > 0 {
			vertices[i].Normal = data.Normals[i]
		}
		if len(data.UVs) > 0 {
			vertices[i].TexCoord = data.UVs[i]
		}
	}

	m, err := newMesh(ctx, data.Name, MeshLayout(), marshalVertices(vertices), data.Indices, gpu.Triangles)
	if err != nil {
		return nil, err
	}
	m.materialIndex = data.MaterialIndex
	m.boundingRadius = ComputeBoundingRadius(data.Positions)
	return m, nil
}

// Name returns the mesh name.
func (m *Mesh) Name() string { return m.name }

// Mode returns the primitive topology the mesh is drawn with.
func (m *Mesh) Mode() gpu.Enum { return m.mode }

// Count returns the number of vertices or indices a draw consumes.
func (m *Mesh) Count() int { return m.count }

// Indexed reports whether the mesh draws through an index buffer.
func (m *Mesh) Indexed() bool { return m.indices != nil }

// MaterialIndex returns the index into the owning model's materials, or -1.
func (m *Mesh) MaterialIndex() int { return m.materialIndex }

// BoundingRadius returns the distance of the farthest vertex from the mesh origin.
func (m *Mesh) BoundingRadius() float32 { return m.boundingRadius }

// Draw binds the vertex array and issues the draw. The caller binds the program and target.
func (m *Mesh) Draw() error {
	m.vao.Bind()
	if m.indices != nil {
		return m.ctx.DrawElements(m.mode, m.count, gpu.TypeUnsignedInt, 0)
	}
	return m.ctx.DrawArrays(m.mode, 0, m.count)
}

// Destroy releases the vertex array and buffers.
func (m *Mesh) Destroy() {
	if m.indices != nil {
		m.indices.Destroy()
	}
	if m.vertices != nil {
		m.vertices.Destroy()
	}
	if m.vao != nil {
		m.vao.Destroy()
	}
}
