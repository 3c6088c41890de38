package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
)

// colorSpec describes one colour texture of a screen-sized target.
type colorSpec struct {
	name   string
	format gpu.Format
	filter gpu.Filter
}

// screenTarget is a framebuffer whose colour textures and optional depth renderbuffer follow the
// window size.
type screenTarget struct {
	fb     *framebuffer.Framebuffer
	colors []*texture.Texture
	depth  *framebuffer.Renderbuffer
}

// newScreenTarget creates and checks a window-sized target. Every object is owned by b, so a
// failure part way is cleaned up by b.fail.
//
// Parameters:
//   - b: the owning technique
//   - name: the framebuffer name
//   - withDepth: attach a Depth24 renderbuffer
//   - specs: the colour attachments in draw buffer order
//
// Returns:
//   - *screenTarget: the complete target
//   - error: a creation error or *gpu.FramebufferIncompleteError
func newScreenTarget(b *base, name string, withDepth bool, specs ...colorSpec) (*screenTarget, error) {
	t := &screenTarget{}
	fb, err := framebuffer.New(b.ctx, framebuffer.WithName(name))
	if err != nil {
		return nil, err
	}
	b.own(fb)
	t.fb = fb

	for i, spec := range specs {
		tex, err := texture.Create2D(b.ctx, b.width, b.height, spec.format, nil,
			texture.WithName(name+"."+spec.name),
			texture.WithFilter(spec.filter, spec.filter),
			texture.WithWrap(gpu.WrapClampToEdge),
		)
		if err != nil {
			return nil, err
		}
		b.own(tex)
		if err := fb.AttachTexture(framebuffer.ColorAttachment(i), tex, 0); err != nil {
			return nil, err
		}
		t.colors = append(t.colors, tex)
	}

	if withDepth {
		rb, err := framebuffer.NewRenderbuffer(b.ctx, gpu.FormatDepth24, b.width, b.height)
		if err != nil {
			return nil, err
		}
		b.own(rb)
		if err := fb.AttachRenderbuffer(gpu.DepthAttachment, rb); err != nil {
			return nil, err
		}
		t.depth = rb
	}

	if err := fb.Check(); err != nil {
		return nil, err
	}
	return t, nil
}

// resize reallocates every attachment and checks the framebuffer again.
func (t *screenTarget) resize(width, height int) error {
	if err := t.fb.Reconfigure(); err != nil {
		return err
	}
	for _, tex := range t.colors {
		if err := tex.Resize(width, height); err != nil {
			return err
		}
	}
	if t.depth != nil {
		t.depth.Resize(width, height)
	}
	if err := t.fb.Check(); err != nil {
		return fmt.Errorf("resize %s to %dx%d: %w", t.fb.Name(), width, height, err)
	}
	return nil
}

// resizeTargets records the new size on b and resizes every target.
func resizeTargets(b *base, width, height int, targets ...*screenTarget) error {
	if err := b.check(); err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%s: invalid size %dx%d", b.name, width, height)
	}
	if width == b.width && height == b.height {
		return nil
	}
	b.width, b.height = width, height
	for _, t := range targets {
		if err := t.resize(width, height); err != nil {
			return err
		}
	}
	return nil
}
