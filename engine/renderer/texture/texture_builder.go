package texture

import "github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"

// TextureBuilderOption is a function that configures a texture during construction.
type TextureBuilderOption func(*Texture)

// WithName sets the name used in logs and errors.
//
// Parameters:
//   - name: the texture name
//
// Returns:
//   - TextureBuilderOption: a function that applies the name to a texture
func WithName(name string) TextureBuilderOption {
	return func(t *Texture) {
		t.name = name
	}
}

// WithTag sets the semantic role of the texture.
//
// Parameters:
//   - tag: the role
//
// Returns:
//   - TextureBuilderOption: a function that applies the tag to a texture
func WithTag(tag Tag) TextureBuilderOption {
	return func(t *Texture) {
		t.tag = tag
	}
}

// WithFilter sets the minification and magnification filters.
func WithFilter(minFilter, magFilter gpu.Filter) TextureBuilderOption {
	return func(t *Texture) {
		t.sampler.MinFilter = minFilter
		t.sampler.MagFilter = magFilter
	}
}

// WithWrap sets the same wrap mode on every axis.
func WithWrap(wrap gpu.Wrap) TextureBuilderOption {
	return func(t *Texture) {
		t.sampler.WrapS, t.sampler.WrapT, t.sampler.WrapR = wrap, wrap, wrap
	}
}

// WithBorderColor switches every axis to clamp-to-border with the given border colour.
//
// Parameters:
//   - color: the RGBA border colour
//
// Returns:
//   - TextureBuilderOption: a function that applies the border to a texture
func WithBorderColor(color [4]float32) TextureBuilderOption {
	return func(t *Texture) {
		t.sampler.WrapS, t.sampler.WrapT, t.sampler.WrapR = gpu.WrapClampToBorder, gpu.WrapClampToBorder, gpu.WrapClampToBorder
		t.sampler.Border = &color
	}
}

// WithMipmaps generates the full mip chain once the base level is uploaded and switches the
// minification filter to trilinear.
func WithMipmaps() TextureBuilderOption {
	return func(t *Texture) {
		t.mipmaps = true
		t.sampler.MinFilter = gpu.FilterLinearMipmapLinear
	}
}
