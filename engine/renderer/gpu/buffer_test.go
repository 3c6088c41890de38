package gpu_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_SetDataAndSubData(t *testing.T) {
	rec, ctx := newContext()
	buf, err := gpu.NewBuffer(ctx, gpu.BufferKindVertex, gpu.UsageDynamic)
	require.NoError(t, err)

	buf.SetData(make([]byte, 64))
	assert.Equal(t, 64, buf.Size())
	assert.Equal(t, 64, rec.BufferSize(buf.ID()))

	assert.NoError(t, buf.SetSubData(32, make([]byte, 32)))
	assert.Error(t, buf.SetSubData(48, make([]byte, 32)))
	assert.Error(t, buf.SetSubData(-1, make([]byte, 1)))
	assert.Equal(t, 1, rec.CountCalls("BufferSubData"))

	buf.Allocate(128)
	assert.Equal(t, 128, rec.BufferSize(buf.ID()))
	assert.NoError(t, ctx.CheckError("buffer"))
}

func TestVertexLayout_StrideAndOffsets(t *testing.T) {
	layout := gpu.NewVertexLayout().
		AddAttribute(gpu.ComponentFloat, 3).
		AddAttribute(gpu.ComponentFloat, 3).
		AddAttribute(gpu.ComponentFloat, 2).
		AddNormalizedAttribute(gpu.ComponentUnsignedByte, 4)

	assert.Equal(t, 36, layout.Stride())
	assert.Equal(t, 0, layout.Offset(0))
	assert.Equal(t, 12, layout.Offset(1))
	assert.Equal(t, 24, layout.Offset(2))
	assert.Equal(t, 32, layout.Offset(3))
	assert.True(t, layout.Attributes()[3].Normalize)
	assert.Panics(t, func() { gpu.NewVertexLayout().AddAttribute(gpu.ComponentFloat, 5) })
}

func TestVertexLayout_BindTo(t *testing.T) {
	rec, ctx := newContext()
	vbo, err := gpu.NewBuffer(ctx, gpu.BufferKindVertex, gpu.UsageStatic)
	require.NoError(t, err)
	vao, err := gpu.NewVertexArray(ctx)
	require.NoError(t, err)
	layout := gpu.NewVertexLayout().AddAttribute(gpu.ComponentFloat, 3).AddAttribute(gpu.ComponentFloat, 2)

	layout.BindTo(vbo, vao)

	ptrs := rec.CallsNamed("VertexAttribPointer")
	require.Len(t, ptrs, 2)
	assert.Equal(t, []any{uint32(1), int32(2), gpu.TypeFloat, false, int32(20), 12}, ptrs[1].Args)
	assert.Equal(t, 2, rec.CountCalls("EnableVertexAttribArray"))
	assert.NoError(t, ctx.CheckError("layout"))

	ebo, err := gpu.NewBuffer(ctx, gpu.BufferKindIndex, gpu.UsageStatic)
	require.NoError(t, err)
	assert.Panics(t, func() { layout.BindTo(ebo, vao) })
}
