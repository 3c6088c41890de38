// Package texture manages 2D and cubemap textures: storage allocation per format, sampler
// parameters, mip chains and semantic tags.
package texture

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
)

// Dimension is the shape of a texture.
type Dimension int

const (
	Dimension2D Dimension = iota
	DimensionCubemap
)

// Target returns the driver bind target for the dimension.
func (d Dimension) Target() gpu.Enum {
	if d == DimensionCubemap {
		return gpu.TextureCubeMap
	}
	return gpu.Texture2D
}

func (d Dimension) String() string {
	if d == DimensionCubemap {
		return "cubemap"
	}
	return "2d"
}

// CubeFaces is the number of faces of a cubemap.
const CubeFaces = 6

// FaceTarget returns the image target of cubemap face i (+X, -X, +Y, -Y, +Z, -Z).
func FaceTarget(face int) gpu.Enum { return gpu.TextureCubeMapPositiveX + gpu.Enum(face) }

// Sampler holds the sampling parameters of a texture.
type Sampler struct {
	MinFilter gpu.Filter
	MagFilter gpu.Filter
	WrapS     gpu.Wrap
	WrapT     gpu.Wrap
	WrapR     gpu.Wrap
	Border    *[4]float32
}

// Texture owns a texture object and records what was allocated for it.
type Texture struct {
	gpu.Object
	name          string
	dim           Dimension
	format        gpu.Format
	tag           Tag
	sampler       Sampler
	width, height int
	levels        int
	mipmaps       bool
}

func newTexture(ctx *gpu.RenderContext, dim Dimension, width, height int, format gpu.Format, opts []TextureBuilderOption) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("create %s texture: invalid size %dx%d", dim, width, height)
	}
	t := &Texture{
		dim:    dim,
		format: format,
		width:  width,
		height: height,
		levels: 1,
		sampler: Sampler{
			MinFilter: gpu.FilterLinear,
			MagFilter: gpu.FilterLinear,
			WrapS:     gpu.WrapRepeat,
			WrapT:     gpu.WrapRepeat,
			WrapR:     gpu.WrapRepeat,
		},
	}
	if dim == DimensionCubemap {
		t.sampler.WrapS, t.sampler.WrapT, t.sampler.WrapR = gpu.WrapClampToEdge, gpu.WrapClampToEdge, gpu.WrapClampToEdge
	}
	if format.IsDepth() {
		t.sampler.MinFilter, t.sampler.MagFilter = gpu.FilterNearest, gpu.FilterNearest
	}
	for _, opt := range opts {
		opt(t)
	}
	obj, err := gpu.NewObject(ctx, gpu.HandleTexture)
	if err != nil {
		return nil, err
	}
	t.Object = obj
	return t, nil
}

// Create2D allocates a 2D texture and uploads data into level 0. A nil data slice leaves the
// storage uninitialised, which is what render targets use.
//
// Parameters:
//   - ctx: the render context
//   - width, height: size in texels
//   - format: the storage format
//   - data: tightly packed pixels in the format's upload layout, or nil
//   - opts: texture builder options
//
// Returns:
//   - *Texture: the texture
//   - error: a creation or driver error; nothing is leaked on failure
func Create2D(ctx *gpu.RenderContext, width, height int, format gpu.Format, data []byte, opts ...TextureBuilderOption) (*Texture, error) {
	t, err := newTexture(ctx, Dimension2D, width, height, format, opts)
	if err != nil {
		return nil, err
	}
	if data != nil && len(data) < width*height*format.Info().BytesPerPixel {
		t.Destroy()
		return nil, fmt.Errorf("create texture %q: %d bytes for %dx%d %s", t.name, len(data), width, height, format)
	}
	t.bindForUpdate()
	t.upload(gpu.Texture2D, 0, width, height, data)
	t.applySampler()
	if t.mipmaps {
		t.GenerateMipmaps()
	}
	if err := ctx.CheckError("create texture " + t.name); err != nil {
		t.Destroy()
		return nil, err
	}
	return t, nil
}

// CreateCubemap allocates six square faces with matching format and sampler parameters.
//
// Parameters:
//   - ctx: the render context
//   - size: face edge length in texels
//   - format: the storage format
//   - opts: texture builder options
//
// Returns:
//   - *Texture: the cubemap
//   - error: a creation or driver error
func CreateCubemap(ctx *gpu.RenderContext, size int, format gpu.Format, opts ...TextureBuilderOption) (*Texture, error) {
	t, err := newTexture(ctx, DimensionCubemap, size, size, format, opts)
	if err != nil {
		return nil, err
	}
	t.bindForUpdate()
	for face := range CubeFaces {
		t.upload(FaceTarget(face), 0, size, size, nil)
	}
	t.applySampler()
	if t.mipmaps {
		t.GenerateMipmaps()
	}
	if err := ctx.CheckError("create cubemap " + t.name); err != nil {
		t.Destroy()
		return nil, err
	}
	return t, nil
}

// FormatFor maps a decoded image to a storage format. 8-bit colour images use the sRGB formats
// when srgb is set.
//
// Returns:
//   - gpu.Format: the format
//   - error: *gpu.UnsupportedFormatError when no format matches
func FormatFor(img *common.ImageData, srgb bool) (gpu.Format, error) {
	if img.HDR {
		switch img.Channels {
		case 3:
			return gpu.FormatRGB16F, nil
		case 4:
			return gpu.FormatRGBA16F, nil
		}
		return 0, &gpu.UnsupportedFormatError{Name: img.Name, Channels: img.Channels, HDR: true}
	}
	switch img.Channels {
	case 1:
		return gpu.FormatR8, nil
	case 2:
		return gpu.FormatRG8, nil
	case 3:
		if srgb {
			return gpu.FormatSRGB8, nil
		}
		return gpu.FormatRGB8, nil
	case 4:
		if srgb {
			return gpu.FormatSRGB8A8, nil
		}
		return gpu.FormatRGBA8, nil
	}
	return 0, &gpu.UnsupportedFormatError{Name: img.Name, Channels: img.Channels}
}

// FromImage uploads a decoded image as a mipmapped 2D texture. HDR images are stored as float
// and are not mipmapped unless WithMipmaps is passed.
//
// Parameters:
//   - ctx: the render context
//   - img: the decoded image
//   - tag: the semantic role of the texture
//   - opts: texture builder options applied after the defaults
//
// Returns:
//   - *Texture: the texture
//   - error: *gpu.UnsupportedFormatError, or a creation or driver error
func FromImage(ctx *gpu.RenderContext, img *common.ImageData, tag Tag, opts ...TextureBuilderOption) (*Texture, error) {
	format, err := FormatFor(img, false)
	if err != nil {
		return nil, err
	}
	defaults := []TextureBuilderOption{WithName(img.Name), WithTag(tag)}
	if img.HDR {
		defaults = append(defaults, WithWrap(gpu.WrapClampToEdge))
	} else {
		defaults = append(defaults, WithMipmaps())
	}
	return Create2D(ctx, img.Width, img.Height, format, img.Bytes(), append(defaults, opts...)...)
}

func (t *Texture) bindForUpdate() {
	t.Context().BindTextureForUpdate(t.dim.Target(), t.ID())
}

func (t *Texture) upload(target gpu.Enum, level, width, height int, data []byte) {
	info := t.format.Info()
	t.Context().Driver().TexImage2D(target, int32(level), info.InternalFormat, int32(width), int32(height), info.PixelFormat, info.PixelType, data)
}

func (t *Texture) applySampler() {
	d := t.Context().Driver()
	target := t.dim.Target()
	s := t.sampler
	d.TexParameteri(target, gpu.TextureMinFilter, int32(s.MinFilter.Enum()))
	d.TexParameteri(target, gpu.TextureMagFilter, int32(s.MagFilter.Enum()))
	d.TexParameteri(target, gpu.TextureWrapS, int32(s.WrapS.Enum()))
	d.TexParameteri(target, gpu.TextureWrapT, int32(s.WrapT.Enum()))
	if t.dim == DimensionCubemap {
		d.TexParameteri(target, gpu.TextureWrapR, int32(s.WrapR.Enum()))
	}
	if s.Border != nil {
		d.TexParameterfv(target, gpu.TextureBorderColor, s.Border[:])
	}
}

// Name returns the texture name.
func (t *Texture) Name() string { return t.name }

// Dimension returns 2D or cubemap.
func (t *Texture) Dimension() Dimension { return t.dim }

// Target returns the driver bind target.
func (t *Texture) Target() gpu.Enum { return t.dim.Target() }

// Format returns the storage format.
func (t *Texture) Format() gpu.Format { return t.format }

// Tag returns the semantic role.
func (t *Texture) Tag() Tag { return t.tag }

// SetTag changes the semantic role.
func (t *Texture) SetTag(tag Tag) { t.tag = tag }

// Sampler returns the sampling parameters.
func (t *Texture) Sampler() Sampler { return t.sampler }

// Width returns the level 0 width.
func (t *Texture) Width() int { return t.width }

// Height returns the level 0 height.
func (t *Texture) Height() int { return t.height }

// Levels returns the number of allocated mip levels.
func (t *Texture) Levels() int { return t.levels }

// LevelSize returns the size of a mip level.
func (t *Texture) LevelSize(level int) (width, height int) {
	return common.MipSize(t.width, level), common.MipSize(t.height, level)
}

// Bind binds the texture on a unit for sampling.
func (t *Texture) Bind(unit Unit) {
	t.Context().BindTexture(unit.Int(), t.dim.Target(), t.ID())
}

// GenerateMipmaps has the driver build every level below the base and records the full chain.
func (t *Texture) GenerateMipmaps() {
	t.bindForUpdate()
	t.Context().Driver().GenerateMipmap(t.dim.Target())
	t.levels = common.MipLevelCount(t.width, t.height)
}

// NeedsMipmaps reports whether the minification filter samples mip levels the texture does not
// have.
func (t *Texture) NeedsMipmaps() bool {
	return t.sampler.MinFilter.UsesMipmaps() && t.levels == 1
}

// SetFilter changes the filters after creation.
func (t *Texture) SetFilter(minFilter, magFilter gpu.Filter) {
	t.sampler.MinFilter, t.sampler.MagFilter = minFilter, magFilter
	t.bindForUpdate()
	t.applySampler()
}

// Upload replaces the pixels of one level. Face is ignored for 2D textures.
//
// Parameters:
//   - face: the cubemap face index, 0 for 2D textures
//   - level: the mip level
//   - data: tightly packed pixels for the level size
//
// Returns:
//   - error: an error if face or level is out of range
func (t *Texture) Upload(face, level int, data []byte) error {
	if level < 0 || level >= max(t.levels, 1) {
		return fmt.Errorf("texture %q: level %d out of range [0, %d)", t.name, level, t.levels)
	}
	target := gpu.Texture2D
	if t.dim == DimensionCubemap {
		if face < 0 || face >= CubeFaces {
			return fmt.Errorf("texture %q: face %d out of range", t.name, face)
		}
		target = FaceTarget(face)
	}
	w, h := t.LevelSize(level)
	t.bindForUpdate()
	t.upload(target, level, w, h, data)
	return nil
}

// Resize reallocates level 0 at a new size, discarding contents and mip levels. Render targets
// use it when the window size changes.
func (t *Texture) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("texture %q: invalid size %dx%d", t.name, width, height)
	}
	if t.dim == DimensionCubemap && width != height {
		return fmt.Errorf("texture %q: cubemap faces must be square, got %dx%d", t.name, width, height)
	}
	t.width, t.height, t.levels = width, height, 1
	t.bindForUpdate()
	if t.dim == DimensionCubemap {
		for face := range CubeFaces {
			t.upload(FaceTarget(face), 0, width, height, nil)
		}
	} else {
		t.upload(gpu.Texture2D, 0, width, height, nil)
	}
	if t.mipmaps {
		t.GenerateMipmaps()
	}
	return nil
}
