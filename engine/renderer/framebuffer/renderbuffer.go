package framebuffer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
)

// Renderbuffer owns a renderbuffer object, typically a depth buffer that is never sampled.
type Renderbuffer struct {
	gpu.Object
	format        gpu.Format
	width, height int
}

// NewRenderbuffer allocates renderbuffer storage.
//
// Parameters:
//   - ctx: the render context
//   - format: the storage format
//   - width, height: size in pixels
//
// Returns:
//   - *Renderbuffer: the renderbuffer
//   - error: a creation error, or an error for a non-positive size
func NewRenderbuffer(ctx *gpu.RenderContext, format gpu.Format, width, height int) (*Renderbuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("create renderbuffer: invalid size %dx%d", width, height)
	}
	obj, err := gpu.NewObject(ctx, gpu.HandleRenderbuffer)
	if err != nil {
		return nil, err
	}
	rb := &Renderbuffer{Object: obj, format: format}
	rb.Resize(width, height)
	return rb, nil
}

// Bind makes the renderbuffer current.
func (r *Renderbuffer) Bind() {
	r.Context().BindRenderbuffer(r.ID())
}

// Resize reallocates the storage. Contents are discarded.
func (r *Renderbuffer) Resize(width, height int) {
	r.Bind()
	r.Context().Driver().RenderbufferStorage(r.format.Info().InternalFormat, int32(width), int32(height))
	r.width, r.height = width, height
}

// Format returns the storage format.
func (r *Renderbuffer) Format() gpu.Format { return r.format }

// Size returns the storage size.
func (r *Renderbuffer) Size() (width, height int) { return r.width, r.height }
