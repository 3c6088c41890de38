// Package gldriver implements gpu.Driver on top of the OpenGL 4.1 core profile.
//
// The driver issues calls on whatever context is current on the calling thread. Create it after
// the window made its context current, and only use it from that thread.
package gldriver

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// Driver forwards gpu.Driver calls to OpenGL.
type Driver struct{}

var _ gpu.Driver = &Driver{}

// New loads the OpenGL function pointers for the current context and sets the unpack alignment
// to 1, since decoded images are tightly packed.
//
// Returns:
//   - *Driver: the driver
//   - error: an error if the function pointers could not be loaded
func New() (*Driver, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initialize OpenGL: %w", err)
	}
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	return &Driver{}, nil
}

func ptr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Pointer(&data[0])
}

func (d *Driver) Version() string { return gl.GoStr(gl.GetString(gl.VERSION)) }

func (d *Driver) GetError() gpu.Enum { return gpu.Enum(gl.GetError()) }

func (d *Driver) GenBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

func (d *Driver) DeleteBuffer(id uint32) { gl.DeleteBuffers(1, &id) }

func (d *Driver) BindBuffer(target gpu.Enum, id uint32) { gl.BindBuffer(uint32(target), id) }

func (d *Driver) BufferData(target gpu.Enum, data []byte, size int, usage gpu.Enum) {
	gl.BufferData(uint32(target), size, ptr(data), uint32(usage))
}

func (d *Driver) BufferSubData(target gpu.Enum, offset int, data []byte) {
	gl.BufferSubData(uint32(target), offset, len(data), ptr(data))
}

func (d *Driver) GenVertexArray() uint32 {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return id
}

func (d *Driver) DeleteVertexArray(id uint32) { gl.DeleteVertexArrays(1, &id) }

func (d *Driver) BindVertexArray(id uint32) { gl.BindVertexArray(id) }

func (d *Driver) VertexAttribPointer(index uint32, size int32, xtype gpu.Enum, normalized bool, stride int32, offset int) {
	gl.VertexAttribPointerWithOffset(index, size, uint32(xtype), normalized, stride, uintptr(offset))
}

func (d *Driver) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

func (d *Driver) CreateShader(stage gpu.Enum) uint32 { return gl.CreateShader(uint32(stage)) }

func (d *Driver) ShaderSource(id uint32, source string) {
	sources, free := gl.Strs(source + "\x00")
	defer free()
	gl.ShaderSource(id, 1, sources, nil)
}

func (d *Driver) CompileShader(id uint32) { gl.CompileShader(id) }

func (d *Driver) ShaderCompiled(id uint32) bool {
	var status int32
	gl.GetShaderiv(id, gl.COMPILE_STATUS, &status)
	return status == gl.TRUE
}

func (d *Driver) ShaderInfoLog(id uint32) string {
	var length int32
	gl.GetShaderiv(id, gl.INFO_LOG_LENGTH, &length)
	if length == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(length+1))
	gl.GetShaderInfoLog(id, length, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (d *Driver) DeleteShader(id uint32) { gl.DeleteShader(id) }

func (d *Driver) CreateProgram() uint32 { return gl.CreateProgram() }

func (d *Driver) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }

func (d *Driver) DetachShader(program, shader uint32) { gl.DetachShader(program, shader) }

func (d *Driver) LinkProgram(program uint32) { gl.LinkProgram(program) }

func (d *Driver) ProgramLinked(program uint32) bool {
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	return status == gl.TRUE
}

func (d *Driver) ProgramInfoLog(program uint32) string {
	var length int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &length)
	if length == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(length+1))
	gl.GetProgramInfoLog(program, length, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (d *Driver) UseProgram(program uint32) { gl.UseProgram(program) }

func (d *Driver) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (d *Driver) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *Driver) Uniform1i(location int32, v int32) { gl.Uniform1i(location, v) }

func (d *Driver) Uniform1f(location int32, v float32) { gl.Uniform1f(location, v) }

func (d *Driver) Uniform2f(location int32, x, y float32) { gl.Uniform2f(location, x, y) }

func (d *Driver) Uniform3f(location int32, x, y, z float32) { gl.Uniform3f(location, x, y, z) }

func (d *Driver) Uniform4f(location int32, x, y, z, w float32) { gl.Uniform4f(location, x, y, z, w) }

func (d *Driver) UniformMatrix3fv(location int32, m [9]float32) {
	gl.UniformMatrix3fv(location, 1, false, &m[0])
}

func (d *Driver) UniformMatrix4fv(location int32, m [16]float32) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (d *Driver) GenTexture() uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	return id
}

func (d *Driver) DeleteTexture(id uint32) { gl.DeleteTextures(1, &id) }

func (d *Driver) ActiveTexture(unit gpu.Enum) { gl.ActiveTexture(uint32(unit)) }

func (d *Driver) BindTexture(target gpu.Enum, id uint32) { gl.BindTexture(uint32(target), id) }

func (d *Driver) TexImage2D(target gpu.Enum, level int32, internalFormat gpu.Enum, width, height int32, format, xtype gpu.Enum, pixels []byte) {
	gl.TexImage2D(uint32(target), level, int32(internalFormat), width, height, 0, uint32(format), uint32(xtype), ptr(pixels))
}

func (d *Driver) TexParameteri(target, pname gpu.Enum, param int32) {
	gl.TexParameteri(uint32(target), uint32(pname), param)
}

func (d *Driver) TexParameterfv(target, pname gpu.Enum, params []float32) {
	if len(params) == 0 {
		return
	}
	gl.TexParameterfv(uint32(target), uint32(pname), &params[0])
}

func (d *Driver) GenerateMipmap(target gpu.Enum) { gl.GenerateMipmap(uint32(target)) }

func (d *Driver) GenFramebuffer() uint32 {
	var id uint32
	gl.GenFramebuffers(1, &id)
	return id
}

func (d *Driver) DeleteFramebuffer(id uint32) { gl.DeleteFramebuffers(1, &id) }

func (d *Driver) BindFramebuffer(target gpu.Enum, id uint32) { gl.BindFramebuffer(uint32(target), id) }

func (d *Driver) FramebufferTexture2D(target, attachment, texTarget gpu.Enum, texture uint32, level int32) {
	gl.FramebufferTexture2D(uint32(target), uint32(attachment), uint32(texTarget), texture, level)
}

func (d *Driver) FramebufferRenderbuffer(target, attachment, rbTarget gpu.Enum, renderbuffer uint32) {
	gl.FramebufferRenderbuffer(uint32(target), uint32(attachment), uint32(rbTarget), renderbuffer)
}

func (d *Driver) CheckFramebufferStatus(target gpu.Enum) gpu.Enum {
	return gpu.Enum(gl.CheckFramebufferStatus(uint32(target)))
}

func (d *Driver) DrawBuffers(buffers []gpu.Enum) {
	if len(buffers) == 0 {
		gl.DrawBuffer(gl.NONE)
		return
	}
	raw := make([]uint32, len(buffers))
	for i, b := range buffers {
		raw[i] = uint32(b)
	}
	if len(raw) == 1 {
		gl.DrawBuffer(raw[0])
		return
	}
	gl.DrawBuffers(int32(len(raw)), &raw[0])
}

func (d *Driver) ReadBuffer(mode gpu.Enum) { gl.ReadBuffer(uint32(mode)) }

func (d *Driver) BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int32, mask gpu.Enum, filter gpu.Enum) {
	gl.BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1, uint32(mask), uint32(filter))
}

func (d *Driver) GenRenderbuffer() uint32 {
	var id uint32
	gl.GenRenderbuffers(1, &id)
	return id
}

func (d *Driver) DeleteRenderbuffer(id uint32) { gl.DeleteRenderbuffers(1, &id) }

func (d *Driver) BindRenderbuffer(id uint32) { gl.BindRenderbuffer(gl.RENDERBUFFER, id) }

func (d *Driver) RenderbufferStorage(internalFormat gpu.Enum, width, height int32) {
	gl.RenderbufferStorage(gl.RENDERBUFFER, uint32(internalFormat), width, height)
}

func (d *Driver) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (d *Driver) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

func (d *Driver) Clear(mask gpu.Enum) { gl.Clear(uint32(mask)) }

func (d *Driver) Enable(capability gpu.Enum) { gl.Enable(uint32(capability)) }

func (d *Driver) Disable(capability gpu.Enum) { gl.Disable(uint32(capability)) }

func (d *Driver) DepthFunc(fn gpu.Enum) { gl.DepthFunc(uint32(fn)) }

func (d *Driver) DepthMask(write bool) { gl.DepthMask(write) }

func (d *Driver) CullFace(mode gpu.Enum) { gl.CullFace(uint32(mode)) }

func (d *Driver) BlendFunc(src, dst gpu.Enum) { gl.BlendFunc(uint32(src), uint32(dst)) }

func (d *Driver) DrawArrays(mode gpu.Enum, first, count int32) {
	gl.DrawArrays(uint32(mode), first, count)
}

func (d *Driver) DrawElements(mode gpu.Enum, count int32, xtype gpu.Enum, offset int) {
	gl.DrawElementsWithOffset(uint32(mode), count, uint32(xtype), uintptr(offset))
}
