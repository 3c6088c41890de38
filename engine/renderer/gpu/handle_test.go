package gpu_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject_DestroyReleasesOnce(t *testing.T) {
	rec, ctx := newContext()
	buf, err := gpu.NewBuffer(ctx, gpu.BufferKindVertex, gpu.UsageStatic)
	require.NoError(t, err)
	id := buf.ID()
	buf.Bind()

	buf.Destroy()
	buf.Destroy()

	assert.Equal(t, 1, rec.DeleteCount(gpu.HandleBuffer, id))
	assert.False(t, buf.Alive())
	assert.Zero(t, ctx.State().ArrayBuffer)
	assert.Equal(t, fmt.Sprintf("buffer#%d", id), buf.Handle().String())
	assert.Panics(t, func() { buf.ID() })
}

func TestObject_NullHandleIsCreationError(t *testing.T) {
	rec, ctx := newContext()
	rec.FailNext(gpu.HandleFramebuffer, gpu.OutOfMemory)

	_, err := gpu.NewObject(ctx, gpu.HandleFramebuffer)

	var cerr *gpu.CreationError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, gpu.HandleFramebuffer, cerr.Kind)
	assert.ErrorIs(t, err, gpu.ErrResourceExhausted)
}

func TestObject_NullHandleWithoutCauseIsNotExhaustion(t *testing.T) {
	rec, ctx := newContext()
	rec.FailNext(gpu.HandleTexture, gpu.NoError)

	_, err := gpu.NewObject(ctx, gpu.HandleTexture)

	require.Error(t, err)
	assert.NotErrorIs(t, err, gpu.ErrResourceExhausted)
	assert.Equal(t, "create texture: driver returned a null handle", err.Error())
}

func TestObject_DestroyingProgramUnbindsIt(t *testing.T) {
	rec, ctx := newContext()
	obj, err := gpu.NewObject(ctx, gpu.HandleProgram)
	require.NoError(t, err)
	ctx.UseProgram(obj.ID())

	obj.Destroy()

	assert.Zero(t, ctx.State().Program)
	assert.Equal(t, 1, rec.DeleteCount(gpu.HandleProgram, obj.Handle().ID))
}
