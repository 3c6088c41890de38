package gpu_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/stretchr/testify/assert"
)

func TestFormatInfo(t *testing.T) {
	info := gpu.FormatRGBA16F.Info()
	assert.Equal(t, gpu.RGBA16F, info.InternalFormat)
	assert.Equal(t, gpu.RGBA, info.PixelFormat)
	assert.Equal(t, gpu.TypeFloat, info.PixelType)
	assert.True(t, info.Float)
	assert.False(t, info.Depth)

	assert.True(t, gpu.FormatDepth24.IsDepth())
	assert.True(t, gpu.IsDepthInternalFormat(gpu.DepthComponent24))
	assert.False(t, gpu.IsDepthInternalFormat(gpu.RGB16F))
}

func TestFilterUsesMipmaps(t *testing.T) {
	assert.True(t, gpu.FilterLinearMipmapLinear.UsesMipmaps())
	assert.False(t, gpu.FilterLinear.UsesMipmaps())
	assert.Equal(t, gpu.ClampToBorder, gpu.WrapClampToBorder.Enum())
}

func TestClearFlagsMask(t *testing.T) {
	flags := gpu.ClearColor | gpu.ClearDepth
	assert.Equal(t, gpu.ColorBufferBit|gpu.DepthBufferBit, flags.Mask())
}

func TestErrorCodeString(t *testing.T) {
	assert.Equal(t, "InvalidFramebufferOperation", gpu.ErrorCode(gpu.InvalidFramebufferOperation).String())
	assert.Equal(t, "UnknownError(0x1234)", gpu.ErrorCode(0x1234).String())
	assert.Equal(t, "Fragment Compile Error: 0:1(1): error", (&gpu.CompileError{Stage: gpu.StageFragment, Log: "0:1(1): error\n"}).Error())
	assert.Equal(t, "INCOMPLETE_MISSING_ATTACHMENT", gpu.FramebufferStatusName(gpu.FramebufferIncompleteMissingAttachment))
}
