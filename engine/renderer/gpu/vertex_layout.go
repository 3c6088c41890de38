package gpu

import "fmt"

// VertexAttribute describes one vertex shader input.
type VertexAttribute struct {
	Type      ComponentType
	Count     int
	Normalize bool
}

// Size returns the attribute size in bytes.
func (a VertexAttribute) Size() int { return a.Count * a.Type.Size() }

// VertexLayout is an ordered list of attributes bound to consecutive locations. Attribute i is
// bound to `layout (location = i)` and starts at the prefix sum of the sizes before it.
type VertexLayout struct {
	attributes []VertexAttribute
	stride     int
}

// NewVertexLayout returns an empty layout.
func NewVertexLayout() *VertexLayout {
	return &VertexLayout{}
}

// AddAttribute appends a non-normalized attribute and returns the layout for chaining.
func (l *VertexLayout) AddAttribute(componentType ComponentType, count int) *VertexLayout {
	return l.add(VertexAttribute{Type: componentType, Count: count})
}

// AddNormalizedAttribute appends an attribute whose integer components are normalized to [0,1]
// or [-1,1].
func (l *VertexLayout) AddNormalizedAttribute(componentType ComponentType, count int) *VertexLayout {
	return l.add(VertexAttribute{Type: componentType, Count: count, Normalize: true})
}

func (l *VertexLayout) add(a VertexAttribute) *VertexLayout {
	if a.Count < 1 || a.Count > 4 {
		panic(fmt.Sprintf("gpu: vertex attribute component count %d out of range [1, 4]", a.Count))
	}
	l.attributes = append(l.attributes, a)
	l.stride += a.Size()
	return l
}

// Attributes returns the attributes in location order.
func (l *VertexLayout) Attributes() []VertexAttribute { return l.attributes }

// Stride returns the total size of one vertex in bytes.
func (l *VertexLayout) Stride() int { return l.stride }

// Offset returns the byte offset of attribute i within a vertex.
func (l *VertexLayout) Offset(i int) int {
	offset := 0
	for _, a := range l.attributes[:i] {
		offset += a.Size()
	}
	return offset
}

// BindTo binds the vertex array and buffer, then points and enables every attribute. The buffer
// must hold vertex data; binding an index buffer is a contract violation and panics.
//
// Parameters:
//   - buffer: the vertex buffer holding interleaved data in this layout
//   - vertexArray: the vertex array that records the attribute setup
func (l *VertexLayout) BindTo(buffer *Buffer, vertexArray *VertexArray) {
	if buffer.Kind() != BufferKindVertex {
		panic(fmt.Sprintf("gpu: VertexLayout.BindTo called with %s buffer %s", buffer.Kind(), buffer.Handle()))
	}
	vertexArray.Bind()
	buffer.Bind()
	driver := vertexArray.ctx.driver
	offset := 0
	for i, a := range l.attributes {
		driver.VertexAttribPointer(uint32(i), int32(a.Count), a.Type.Enum(), a.Normalize, int32(l.stride), offset)
		driver.EnableVertexAttribArray(uint32(i))
		offset += a.Size()
	}
}
