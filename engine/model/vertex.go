package model

import (
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// VertexSize is the byte size of an interleaved Vertex.
const VertexSize = 32

// QuadVertexSize is the byte size of an interleaved QuadVertex.
const QuadVertexSize = 20

// Vertex is the interleaved layout of lit meshes, matching MeshLayout:
// location 0 position, location 1 normal, location 2 texture coordinate.
type Vertex struct {
	Position [3]float32 // offset  0
	Normal   [3]float32 // offset 12
	TexCoord [2]float32 // offset 24
}

// Marshal serializes the vertex for upload.
//
// Returns:
//   - []byte: 32-byte little-endian buffer
func (v *Vertex) Marshal() []byte {
	buf := make([]byte, VertexSize)
	v.put(buf)
	return buf
}

func (v *Vertex) put(buf []byte) {
	putFloats(buf[0:12], v.Position[:])
	putFloats(buf[12:24], v.Normal[:])
	putFloats(buf[24:32], v.TexCoord[:])
}

// QuadVertex is the layout of screen-space quads: location 0 position, location 1 texture
// coordinate.
type QuadVertex struct {
	Position [3]float32 // offset  0
	TexCoord [2]float32 // offset 12
}

// Marshal serializes the vertex for upload.
func (v *QuadVertex) Marshal() []byte {
	buf := make([]byte, QuadVertexSize)
	putFloats(buf[0:12], v.Position[:])
	putFloats(buf[12:20], v.TexCoord[:])
	return buf
}

func putFloats(buf []byte, values []float32) {
	for i, f := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
}

// MeshLayout describes Vertex.
func MeshLayout() *gpu.VertexLayout {
	return gpu.NewVertexLayout().
		AddAttribute(gpu.ComponentFloat, 3).
		AddAttribute(gpu.ComponentFloat, 3).
		AddAttribute(gpu.ComponentFloat, 2)
}

// QuadLayout describes QuadVertex.
func QuadLayout() *gpu.VertexLayout {
	return gpu.NewVertexLayout().
		AddAttribute(gpu.ComponentFloat, 3).
		AddAttribute(gpu.ComponentFloat, 2)
}

// marshalVertices packs vertices into one upload buffer.
func marshalVertices(vertices []Vertex) []byte {
	buf := make([]byte, len(vertices)*VertexSize)
	for i := range vertices {
		vertices[i].put(buf[i*VertexSize:])
	}
	return buf
}

// ComputeBoundingRadius returns the largest distance of any position from the origin.
//
// Parameters:
//   - positions: the vertex positions
//
// Returns:
//   - float32: the bounding sphere radius around the origin
func ComputeBoundingRadius(positions []mgl32.Vec3) float32 {
	var maxDistSq float32
	for _, p := range positions {
		maxDistSq = max(maxDistSq, p.Dot(p))
	}
	return math32.Sqrt(maxDistSq)
}
