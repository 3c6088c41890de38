package gpu

// VertexArray owns a vertex array object.
type VertexArray struct {
	Object
}

// NewVertexArray creates a vertex array object.
func NewVertexArray(ctx *RenderContext) (*VertexArray, error) {
	obj, err := NewObject(ctx, HandleVertexArray)
	if err != nil {
		return nil, err
	}
	return &VertexArray{Object: obj}, nil
}

// Bind makes the vertex array current.
func (v *VertexArray) Bind() {
	v.ctx.BindVertexArray(v.ID())
}
