package texture_test

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gputest"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() (*gputest.Recorder, *gpu.RenderContext) {
	rec := gputest.NewRecorder()
	return rec, gpu.NewRenderContext(rec, 800, 600)
}

func TestGenerateMipmaps_LevelCount(t *testing.T) {
	cases := []struct {
		w, h   int
		levels int
	}{
		{1, 1, 1},
		{2, 2, 2},
		{256, 256, 9},
		{512, 128, 10},
		{300, 17, 9},
		{3, 1024, 11},
	}
	for _, tc := range cases {
		rec, ctx := newContext()
		tex, err := texture.Create2D(ctx, tc.w, tc.h, gpu.FormatRGBA8, nil)
		require.NoError(t, err)

		tex.GenerateMipmaps()

		assert.Equal(t, tc.levels, tex.Levels(), "%dx%d", tc.w, tc.h)
		assert.Equal(t, tc.levels, rec.TextureLevels(tex.ID()), "%dx%d", tc.w, tc.h)
		w, h := tex.LevelSize(tc.levels - 1)
		assert.Equal(t, 1, max(w, h))
	}
}

func TestNeedsMipmaps(t *testing.T) {
	_, ctx := newContext()
	tex, err := texture.Create2D(ctx, 4, 4, gpu.FormatRGBA8, nil, texture.WithFilter(gpu.FilterLinearMipmapLinear, gpu.FilterLinear))
	require.NoError(t, err)
	assert.True(t, tex.NeedsMipmaps())

	tex.GenerateMipmaps()
	assert.False(t, tex.NeedsMipmaps())
}

func TestCreateCubemap_AllocatesSixFaces(t *testing.T) {
	rec, ctx := newContext()
	cube, err := texture.CreateCubemap(ctx, 32, gpu.FormatRGB16F, texture.WithTag(texture.TagIrradiance))
	require.NoError(t, err)

	for face := range texture.CubeFaces {
		w, h, ok := rec.TextureLevelSize(cube.ID(), face, 0)
		require.True(t, ok, "face %d", face)
		assert.Equal(t, 32, w)
		assert.Equal(t, 32, h)
	}
	wrap, ok := rec.TextureParam(cube.ID(), gpu.TextureWrapR)
	require.True(t, ok)
	assert.Equal(t, int32(gpu.ClampToEdge), wrap)
	assert.Equal(t, gpu.TextureCubeMap, cube.Target())
	assert.Error(t, cube.Resize(16, 8))
}

func TestCreate2D_BorderColor(t *testing.T) {
	rec, ctx := newContext()
	tex, err := texture.Create2D(ctx, 1024, 1024, gpu.FormatDepth24, nil, texture.WithBorderColor([4]float32{1, 1, 1, 1}))
	require.NoError(t, err)

	assert.Equal(t, []float32{1, 1, 1, 1}, rec.TextureBorder(tex.ID()))
	wrap, _ := rec.TextureParam(tex.ID(), gpu.TextureWrapS)
	assert.Equal(t, int32(gpu.ClampToBorder), wrap)
	filter, _ := rec.TextureParam(tex.ID(), gpu.TextureMinFilter)
	assert.Equal(t, int32(gpu.Nearest), filter)
}

func TestCreate2D_ShortDataIsRejected(t *testing.T) {
	rec, ctx := newContext()
	_, err := texture.Create2D(ctx, 4, 4, gpu.FormatRGBA8, make([]byte, 10))
	assert.Error(t, err)
	assert.Zero(t, rec.Live(gpu.HandleTexture))
}

func TestCreate2D_CreationFailure(t *testing.T) {
	rec, ctx := newContext()
	rec.FailNext(gpu.HandleTexture, gpu.OutOfMemory)

	_, err := texture.Create2D(ctx, 4, 4, gpu.FormatRGBA8, nil)

	assert.ErrorIs(t, err, gpu.ErrResourceExhausted)
}

func TestFromImage(t *testing.T) {
	rec, ctx := newContext()
	img := &common.ImageData{Name: "brick", Width: 8, Height: 4, Channels: 3, Pixels: make([]byte, 8*4*3)}

	tex, err := texture.FromImage(ctx, img, texture.TagDiffuse)
	require.NoError(t, err)

	assert.Equal(t, gpu.FormatRGB8, tex.Format())
	assert.Equal(t, texture.TagDiffuse, tex.Tag())
	assert.Equal(t, 4, tex.Levels())
	assert.Equal(t, gpu.RGB8, rec.TextureFormat(tex.ID()))

	_, err = texture.FromImage(ctx, &common.ImageData{Name: "odd", Width: 1, Height: 1, Channels: 5, Pixels: make([]byte, 5)}, texture.TagUnknown)
	var unsupported *gpu.UnsupportedFormatError
	assert.True(t, errors.As(err, &unsupported))
}

func TestFromImage_HDR(t *testing.T) {
	_, ctx := newContext()
	img := &common.ImageData{Name: "sky", Width: 4, Height: 2, Channels: 3, HDR: true, Floats: make([]float32, 4*2*3)}

	tex, err := texture.FromImage(ctx, img, texture.TagEnvironment)
	require.NoError(t, err)

	assert.Equal(t, gpu.FormatRGB16F, tex.Format())
	assert.Equal(t, 1, tex.Levels())
}

func TestCheckSlot(t *testing.T) {
	_, ctx := newContext()
	depth, err := texture.Create2D(ctx, 4, 4, gpu.FormatDepth24, nil, texture.WithName("shadow"))
	require.NoError(t, err)
	spec, err := texture.Create2D(ctx, 4, 4, gpu.FormatRGBA8, nil, texture.WithTag(texture.TagSpecular))
	require.NoError(t, err)
	plain, err := texture.Create2D(ctx, 4, 4, gpu.FormatRGBA8, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, texture.CheckSlot(depth, texture.TagDiffuse), texture.ErrDepthInColorSlot)
	assert.ErrorIs(t, texture.CheckSlot(spec, texture.TagDiffuse), texture.ErrTagMismatch)
	assert.NoError(t, texture.CheckSlot(spec, texture.TagSpecular))
	assert.NoError(t, texture.CheckSlot(plain, texture.TagNormal))
}

func TestUnitNextWraps(t *testing.T) {
	assert.Equal(t, texture.Unit(1), texture.Unit(0).Next())
	assert.Equal(t, texture.Unit(0), texture.Unit(gpu.MaxTextureUnits-1).Next())
}
