package gpu

// Driver describes the subset of graphics driver entry points the engine issues. Implementations
// wrap a concrete API binding (see the gldriver package) or simulate one for tests (see the
// gputest package). All methods operate on the context current on the calling thread.
//
// Object creation methods return 0 when the driver fails to allocate a name.
type Driver interface {
	// Version returns a human readable description of the driver and API version.
	Version() string

	// GetError pops the oldest pending error code, or NoError when the queue is empty.
	GetError() Enum

	GenBuffer() uint32
	DeleteBuffer(id uint32)
	BindBuffer(target Enum, id uint32)
	BufferData(target Enum, data []byte, size int, usage Enum)
	BufferSubData(target Enum, offset int, data []byte)

	GenVertexArray() uint32
	DeleteVertexArray(id uint32)
	BindVertexArray(id uint32)
	VertexAttribPointer(index uint32, size int32, xtype Enum, normalized bool, stride int32, offset int)
	EnableVertexAttribArray(index uint32)

	CreateShader(stage Enum) uint32
	ShaderSource(id uint32, source string)
	CompileShader(id uint32)
	ShaderCompiled(id uint32) bool
	ShaderInfoLog(id uint32) string
	DeleteShader(id uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)
	LinkProgram(program uint32)
	ProgramLinked(program uint32) bool
	ProgramInfoLog(program uint32) string
	UseProgram(program uint32)
	DeleteProgram(program uint32)

	// GetUniformLocation returns -1 when the program has no active uniform with the name.
	GetUniformLocation(program uint32, name string) int32
	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)
	Uniform2f(location int32, x, y float32)
	Uniform3f(location int32, x, y, z float32)
	Uniform4f(location int32, x, y, z, w float32)
	UniformMatrix3fv(location int32, m [9]float32)
	UniformMatrix4fv(location int32, m [16]float32)

	GenTexture() uint32
	DeleteTexture(id uint32)
	ActiveTexture(unit Enum)
	BindTexture(target Enum, id uint32)
	TexImage2D(target Enum, level int32, internalFormat Enum, width, height int32, format, xtype Enum, pixels []byte)
	TexParameteri(target, pname Enum, param int32)
	TexParameterfv(target, pname Enum, params []float32)
	GenerateMipmap(target Enum)

	GenFramebuffer() uint32
	DeleteFramebuffer(id uint32)
	BindFramebuffer(target Enum, id uint32)
	FramebufferTexture2D(target, attachment, texTarget Enum, texture uint32, level int32)
	FramebufferRenderbuffer(target, attachment, rbTarget Enum, renderbuffer uint32)
	CheckFramebufferStatus(target Enum) Enum
	DrawBuffers(buffers []Enum)
	ReadBuffer(mode Enum)
	BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int32, mask Enum, filter Enum)

	GenRenderbuffer() uint32
	DeleteRenderbuffer(id uint32)
	BindRenderbuffer(id uint32)
	RenderbufferStorage(internalFormat Enum, width, height int32)

	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear(mask Enum)
	Enable(capability Enum)
	Disable(capability Enum)
	DepthFunc(fn Enum)
	DepthMask(write bool)
	CullFace(mode Enum)
	BlendFunc(src, dst Enum)

	DrawArrays(mode Enum, first, count int32)
	DrawElements(mode Enum, count int32, xtype Enum, offset int)
}
