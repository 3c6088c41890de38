package gpu

import "fmt"

// Buffer owns a vertex or index buffer object.
type Buffer struct {
	Object
	kind  BufferKind
	usage Usage
	size  int
}

// NewBuffer creates an empty buffer of the given kind. Storage is allocated by SetData.
//
// Parameters:
//   - ctx: the render context
//   - kind: vertex or index data
//   - usage: the driver usage hint
//
// Returns:
//   - *Buffer: the buffer
//   - error: *CreationError if the driver returned a null id
func NewBuffer(ctx *RenderContext, kind BufferKind, usage Usage) (*Buffer, error) {
	obj, err := NewObject(ctx, HandleBuffer)
	if err != nil {
		return nil, err
	}
	return &Buffer{Object: obj, kind: kind, usage: usage}, nil
}

// Kind returns whether the buffer holds vertex or index data.
func (b *Buffer) Kind() BufferKind { return b.kind }

// Usage returns the usage hint.
func (b *Buffer) Usage() Usage { return b.usage }

// Size returns the allocated size in bytes.
func (b *Buffer) Size() int { return b.size }

// Bind binds the buffer to the target of its kind.
func (b *Buffer) Bind() {
	b.ctx.BindBuffer(b.kind, b.ID())
}

// SetData replaces the buffer storage with data, resizing it to len(data).
func (b *Buffer) SetData(data []byte) {
	b.Bind()
	b.ctx.driver.BufferData(b.kind.Target(), data, len(data), b.usage.Enum())
	b.size = len(data)
}

// Allocate resizes the storage to size bytes without uploading data.
func (b *Buffer) Allocate(size int) {
	b.Bind()
	b.ctx.driver.BufferData(b.kind.Target(), nil, size, b.usage.Enum())
	b.size = size
}

// SetSubData overwrites part of the existing storage.
//
// Parameters:
//   - offset: byte offset into the buffer
//   - data: the bytes to write
//
// Returns:
//   - error: an error if the write would overflow the current storage
func (b *Buffer) SetSubData(offset int, data []byte) error {
	if offset < 0 || offset+len(data) > b.size {
		return fmt.Errorf("buffer %s: sub data [%d, %d) exceeds size %d", b.handle, offset, offset+len(data), b.size)
	}
	b.Bind()
	b.ctx.driver.BufferSubData(b.kind.Target(), offset, data)
	return nil
}
