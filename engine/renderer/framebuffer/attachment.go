package framebuffer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
)

// MaxColorAttachments is the number of colour attachment points the engine addresses.
const MaxColorAttachments = 8

// ColorAttachment returns colour attachment point i.
func ColorAttachment(i int) gpu.Enum {
	if i < 0 || i >= MaxColorAttachments {
		panic(fmt.Sprintf("framebuffer: colour attachment %d out of range [0, %d)", i, MaxColorAttachments))
	}
	return gpu.ColorAttachment0 + gpu.Enum(i)
}

// IsDepthPoint reports whether an attachment point takes depth data.
func IsDepthPoint(point gpu.Enum) bool {
	return point == gpu.DepthAttachment || point == gpu.DepthStencilAttachment
}

// PointName returns a readable name for an attachment point.
func PointName(point gpu.Enum) string {
	switch {
	case point == gpu.DepthAttachment:
		return "depth"
	case point == gpu.DepthStencilAttachment:
		return "depth_stencil"
	case point == gpu.StencilAttachment:
		return "stencil"
	case point >= gpu.ColorAttachment0 && point < gpu.ColorAttachment0+MaxColorAttachments:
		return fmt.Sprintf("color%d", point-gpu.ColorAttachment0)
	}
	return fmt.Sprintf("0x%04X", uint32(point))
}

// Attachment is one image attached to a framebuffer: a texture level (and cubemap face) or a
// renderbuffer.
type Attachment struct {
	Point        gpu.Enum
	Texture      *texture.Texture
	Face         int
	Level        int
	Renderbuffer *Renderbuffer

	// size of the image when the framebuffer was last checked
	checkedWidth, checkedHeight int
}

// Size returns the size of the attached image.
func (a Attachment) Size() (width, height int) {
	if a.Renderbuffer != nil {
		return a.Renderbuffer.Size()
	}
	return a.Texture.LevelSize(a.Level)
}

// resized reports whether the image changed size since the framebuffer was checked.
func (a Attachment) resized() bool {
	w, h := a.Size()
	return w != a.checkedWidth || h != a.checkedHeight
}

// Format returns the format of the attached image.
func (a Attachment) Format() gpu.Format {
	if a.Renderbuffer != nil {
		return a.Renderbuffer.Format()
	}
	return a.Texture.Format()
}

func (a Attachment) imageTarget() gpu.Enum {
	if a.Texture.Dimension() == texture.DimensionCubemap {
		return texture.FaceTarget(a.Face)
	}
	return gpu.Texture2D
}

func (a Attachment) String() string {
	w, h := a.Size()
	if a.Renderbuffer != nil {
		return fmt.Sprintf("%s=%s %s %dx%d", PointName(a.Point), a.Renderbuffer.Handle(), a.Format(), w, h)
	}
	src := a.Texture.Handle().String()
	if a.Texture.Dimension() == texture.DimensionCubemap {
		src = fmt.Sprintf("%s face %d", src, a.Face)
	}
	return fmt.Sprintf("%s=%s level %d %s %dx%d", PointName(a.Point), src, a.Level, a.Format(), w, h)
}
