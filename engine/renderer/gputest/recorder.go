// Package gputest provides an in-memory gpu.Driver that records every call and simulates the
// subset of driver behavior the engine depends on: object lifetimes, shader compile and link
// results, uniform lookup, texture level storage, renderbuffer storage and framebuffer
// completeness. It lets renderer code be tested without a window or a driver context.
package gputest

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
)

// Call is one recorded driver call.
type Call struct {
	Name string
	Args []any
}

func (c Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = fmt.Sprint(a)
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}

// UniformCall is one recorded uniform upload, resolved back to the uniform name it was
// looked up with.
type UniformCall struct {
	Program uint32
	Name    string
	Kind    string
	Values  []float32
}

type levelSize struct {
	width, height  int32
	internalFormat gpu.Enum
}

type textureObject struct {
	target gpu.Enum
	faces  [6]map[int32]levelSize
	params map[gpu.Enum]int32
	border []float32
}

type shaderObject struct {
	stage    gpu.Enum
	source   string
	compiled bool
	log      string
}

type programObject struct {
	shaders   []uint32
	linked    bool
	log       string
	uniforms  map[string]bool
	locations map[string]int32
	names     map[int32]string
}

type attachment struct {
	renderbuffer bool
	id           uint32
	texTarget    gpu.Enum
	level        int32
}

type framebufferObject struct {
	attachments map[gpu.Enum]attachment
	drawBuffers []gpu.Enum
	readBuffer  gpu.Enum
}

type renderbufferObject struct {
	internalFormat gpu.Enum
	width, height  int32
}

// Recorder implements gpu.Driver in memory.
type Recorder struct {
	nextID uint32

	calls    []Call
	uniforms []UniformCall
	errors   []gpu.Enum
	failNext map[gpu.HandleKind]gpu.Enum
	deletes  map[gpu.HandleKind]map[uint32]int

	buffers       map[uint32]int
	vertexArrays  map[uint32]bool
	shaders       map[uint32]*shaderObject
	programs      map[uint32]*programObject
	textures      map[uint32]*textureObject
	framebuffers  map[uint32]*framebufferObject
	renderbuffers map[uint32]*renderbufferObject

	boundBuffers      map[gpu.Enum]uint32
	vertexArray       uint32
	program           uint32
	activeUnit        int
	unitTextures      [gpu.MaxTextureUnits]map[gpu.Enum]uint32
	drawFramebuffer   uint32
	readFramebuffer   uint32
	renderbuffer      uint32
	viewport          [4]int32
	enabled           map[gpu.Enum]bool
	compileOverrides  map[string]string
	linkFailure       string
	contextLostOnDraw bool
}

var _ gpu.Driver = &Recorder{}

// NewRecorder creates an empty recorder with the default framebuffer bound.
func NewRecorder() *Recorder {
	r := &Recorder{
		failNext:         make(map[gpu.HandleKind]gpu.Enum),
		deletes:          make(map[gpu.HandleKind]map[uint32]int),
		buffers:          make(map[uint32]int),
		vertexArrays:     make(map[uint32]bool),
		shaders:          make(map[uint32]*shaderObject),
		programs:         make(map[uint32]*programObject),
		textures:         make(map[uint32]*textureObject),
		framebuffers:     make(map[uint32]*framebufferObject),
		renderbuffers:    make(map[uint32]*renderbufferObject),
		boundBuffers:     make(map[gpu.Enum]uint32),
		enabled:          make(map[gpu.Enum]bool),
		compileOverrides: make(map[string]string),
	}
	for i := range r.unitTextures {
		r.unitTextures[i] = make(map[gpu.Enum]uint32)
	}
	return r
}

func (r *Recorder) record(name string, args ...any) {
	r.calls = append(r.calls, Call{Name: name, Args: args})
}

func (r *Recorder) raise(code gpu.Enum) {
	r.errors = append(r.errors, code)
}

func (r *Recorder) allocate(kind gpu.HandleKind) uint32 {
	if code, ok := r.failNext[kind]; ok {
		delete(r.failNext, kind)
		if code != gpu.NoError {
			r.raise(code)
		}
		return 0
	}
	r.nextID++
	return r.nextID
}

func (r *Recorder) countDelete(kind gpu.HandleKind, id uint32) {
	if id == 0 {
		return
	}
	if r.deletes[kind] == nil {
		r.deletes[kind] = make(map[uint32]int)
	}
	r.deletes[kind][id]++
}

// Calls returns every recorded call in issue order.
func (r *Recorder) Calls() []Call { return slices.Clone(r.calls) }

// CallsNamed returns the recorded calls with the given name.
func (r *Recorder) CallsNamed(name string) []Call {
	var out []Call
	for _, c := range r.calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// CountCalls returns how many calls with the given name were recorded.
func (r *Recorder) CountCalls(name string) int { return len(r.CallsNamed(name)) }

// CallNames returns the names of the recorded calls in issue order.
func (r *Recorder) CallNames() []string {
	names := make([]string, len(r.calls))
	for i, c := range r.calls {
		names[i] = c.Name
	}
	return names
}

// ResetCalls clears the call and uniform logs while keeping all simulated objects.
func (r *Recorder) ResetCalls() {
	r.calls = nil
	r.uniforms = nil
}

// UniformCalls returns every recorded uniform upload.
func (r *Recorder) UniformCalls() []UniformCall { return slices.Clone(r.uniforms) }

// UniformCallsNamed returns the uniform uploads for one uniform name.
func (r *Recorder) UniformCallsNamed(name string) []UniformCall {
	var out []UniformCall
	for _, u := range r.uniforms {
		if u.Name == name {
			out = append(out, u)
		}
	}
	return out
}

// InjectError queues an error code that the next GetError calls report.
func (r *Recorder) InjectError(codes ...gpu.Enum) {
	r.errors = append(r.errors, codes...)
}

// FailNext makes the next allocation of kind return the null id. A non-zero code is queued as
// the driver error that caused it.
func (r *Recorder) FailNext(kind gpu.HandleKind, code gpu.Enum) {
	r.failNext[kind] = code
}

// OverrideCompileLog forces any shader whose source contains marker to fail with log.
func (r *Recorder) OverrideCompileLog(marker, log string) {
	r.compileOverrides[marker] = log
}

// FailNextLink makes the next LinkProgram call fail with log.
func (r *Recorder) FailNextLink(log string) {
	r.linkFailure = log
}

// DeleteCount returns how many times id of kind was deleted.
func (r *Recorder) DeleteCount(kind gpu.HandleKind, id uint32) int {
	return r.deletes[kind][id]
}

// Live returns the number of live objects of kind.
func (r *Recorder) Live(kind gpu.HandleKind) int {
	switch kind {
	case gpu.HandleBuffer:
		return len(r.buffers)
	case gpu.HandleVertexArray:
		return len(r.vertexArrays)
	case gpu.HandleShader:
		return len(r.shaders)
	case gpu.HandleProgram:
		return len(r.programs)
	case gpu.HandleTexture:
		return len(r.textures)
	case gpu.HandleFramebuffer:
		return len(r.framebuffers)
	case gpu.HandleRenderbuffer:
		return len(r.renderbuffers)
	}
	return 0
}

// BufferSize returns the allocated size of a buffer, or -1 when it does not exist.
func (r *Recorder) BufferSize(id uint32) int {
	size, ok := r.buffers[id]
	if !ok {
		return -1
	}
	return size
}

// TextureLevels returns the number of consecutive levels, starting at 0, that have storage on
// the first face of a texture.
func (r *Recorder) TextureLevels(id uint32) int {
	t, ok := r.textures[id]
	if !ok || t.faces[0] == nil {
		return 0
	}
	n := 0
	for {
		if _, ok := t.faces[0][int32(n)]; !ok {
			return n
		}
		n++
	}
}

// TextureLevelSize returns the size of one level of one face of a texture. Face is 0 for 2D
// textures.
func (r *Recorder) TextureLevelSize(id uint32, face int, level int) (width, height int, ok bool) {
	t, found := r.textures[id]
	if !found || face < 0 || face >= 6 || t.faces[face] == nil {
		return 0, 0, false
	}
	l, found := t.faces[face][int32(level)]
	if !found {
		return 0, 0, false
	}
	return int(l.width), int(l.height), true
}

// TextureFormat returns the internal format of level 0 of the first face.
func (r *Recorder) TextureFormat(id uint32) gpu.Enum {
	t, ok := r.textures[id]
	if !ok || t.faces[0] == nil {
		return gpu.None
	}
	return t.faces[0][0].internalFormat
}

// TextureParam returns an integer texture parameter.
func (r *Recorder) TextureParam(id uint32, pname gpu.Enum) (int32, bool) {
	t, ok := r.textures[id]
	if !ok {
		return 0, false
	}
	v, ok := t.params[pname]
	return v, ok
}

// TextureBorder returns the border color set on a texture.
func (r *Recorder) TextureBorder(id uint32) []float32 {
	if t, ok := r.textures[id]; ok {
		return slices.Clone(t.border)
	}
	return nil
}

// RenderbufferSize returns the storage size of a renderbuffer.
func (r *Recorder) RenderbufferSize(id uint32) (width, height int, ok bool) {
	rb, found := r.renderbuffers[id]
	if !found {
		return 0, 0, false
	}
	return int(rb.width), int(rb.height), true
}

// DrawBuffersOf returns the draw buffer list of a framebuffer.
func (r *Recorder) DrawBuffersOf(id uint32) []gpu.Enum {
	if fb, ok := r.framebuffers[id]; ok {
		return slices.Clone(fb.drawBuffers)
	}
	return nil
}

// ReadBufferOf returns the read buffer of a framebuffer.
func (r *Recorder) ReadBufferOf(id uint32) gpu.Enum {
	if fb, ok := r.framebuffers[id]; ok {
		return fb.readBuffer
	}
	return gpu.None
}

// CurrentViewport returns the last viewport set.
func (r *Recorder) CurrentViewport() [4]int32 { return r.viewport }

// CurrentProgram returns the program in use.
func (r *Recorder) CurrentProgram() uint32 { return r.program }

// CurrentDrawFramebuffer returns the bound draw framebuffer.
func (r *Recorder) CurrentDrawFramebuffer() uint32 { return r.drawFramebuffer }

// IsEnabled reports whether a capability was enabled.
func (r *Recorder) IsEnabled(capability gpu.Enum) bool { return r.enabled[capability] }

// LoseContextOnDraw makes every following draw raise ContextLost.
func (r *Recorder) LoseContextOnDraw() { r.contextLostOnDraw = true }

func (r *Recorder) Version() string { return "4.1 gputest" }

func (r *Recorder) GetError() gpu.Enum {
	if len(r.errors) == 0 {
		return gpu.NoError
	}
	code := r.errors[0]
	r.errors = r.errors[1:]
	return code
}

func (r *Recorder) GenBuffer() uint32 {
	id := r.allocate(gpu.HandleBuffer)
	r.record("GenBuffer", id)
	if id != 0 {
		r.buffers[id] = 0
	}
	return id
}

func (r *Recorder) DeleteBuffer(id uint32) {
	r.record("DeleteBuffer", id)
	r.countDelete(gpu.HandleBuffer, id)
	delete(r.buffers, id)
	for target, bound := range r.boundBuffers {
		if bound == id {
			delete(r.boundBuffers, target)
		}
	}
}

func (r *Recorder) BindBuffer(target gpu.Enum, id uint32) {
	r.record("BindBuffer", target, id)
	if _, ok := r.buffers[id]; id != 0 && !ok {
		r.raise(gpu.InvalidOperation)
		return
	}
	r.boundBuffers[target] = id
}

func (r *Recorder) BufferData(target gpu.Enum, data []byte, size int, usage gpu.Enum) {
	r.record("BufferData", target, size, usage)
	id := r.boundBuffers[target]
	if id == 0 {
		r.raise(gpu.InvalidOperation)
		return
	}
	r.buffers[id] = size
}

func (r *Recorder) BufferSubData(target gpu.Enum, offset int, data []byte) {
	r.record("BufferSubData", target, offset, len(data))
	id := r.boundBuffers[target]
	if id == 0 || offset+len(data) > r.buffers[id] {
		r.raise(gpu.InvalidValue)
	}
}

func (r *Recorder) GenVertexArray() uint32 {
	id := r.allocate(gpu.HandleVertexArray)
	r.record("GenVertexArray", id)
	if id != 0 {
		r.vertexArrays[id] = true
	}
	return id
}

func (r *Recorder) DeleteVertexArray(id uint32) {
	r.record("DeleteVertexArray", id)
	r.countDelete(gpu.HandleVertexArray, id)
	delete(r.vertexArrays, id)
	if r.vertexArray == id {
		r.vertexArray = 0
	}
}

func (r *Recorder) BindVertexArray(id uint32) {
	r.record("BindVertexArray", id)
	if id != 0 && !r.vertexArrays[id] {
		r.raise(gpu.InvalidOperation)
		return
	}
	r.vertexArray = id
}

func (r *Recorder) VertexAttribPointer(index uint32, size int32, xtype gpu.Enum, normalized bool, stride int32, offset int) {
	r.record("VertexAttribPointer", index, size, xtype, normalized, stride, offset)
	if r.vertexArray == 0 || r.boundBuffers[gpu.ArrayBuffer] == 0 {
		r.raise(gpu.InvalidOperation)
	}
}

func (r *Recorder) EnableVertexAttribArray(index uint32) {
	r.record("EnableVertexAttribArray", index)
}

func (r *Recorder) CreateShader(stage gpu.Enum) uint32 {
	id := r.allocate(gpu.HandleShader)
	r.record("CreateShader", stage, id)
	if id != 0 {
		r.shaders[id] = &shaderObject{stage: stage}
	}
	return id
}

func (r *Recorder) ShaderSource(id uint32, source string) {
	r.record("ShaderSource", id)
	if s, ok := r.shaders[id]; ok {
		s.source = source
		s.compiled = false
	}
}

func (r *Recorder) CompileShader(id uint32) {
	r.record("CompileShader", id)
	s, ok := r.shaders[id]
	if !ok {
		r.raise(gpu.InvalidValue)
		return
	}
	for marker, log := range r.compileOverrides {
		if strings.Contains(s.source, marker) {
			s.compiled, s.log = false, log
			return
		}
	}
	if !strings.HasPrefix(strings.TrimSpace(s.source), "#version") {
		s.compiled, s.log = false, "0:1(1): error: no #version directive"
		return
	}
	problems := checkGLSL(s.source)
	s.compiled = len(problems) == 0
	s.log = strings.Join(problems, "\n")
}

func (r *Recorder) ShaderCompiled(id uint32) bool {
	s, ok := r.shaders[id]
	return ok && s.compiled
}

func (r *Recorder) ShaderInfoLog(id uint32) string {
	if s, ok := r.shaders[id]; ok {
		return s.log
	}
	return ""
}

func (r *Recorder) DeleteShader(id uint32) {
	r.record("DeleteShader", id)
	r.countDelete(gpu.HandleShader, id)
	delete(r.shaders, id)
}

func (r *Recorder) CreateProgram() uint32 {
	id := r.allocate(gpu.HandleProgram)
	r.record("CreateProgram", id)
	if id != 0 {
		r.programs[id] = &programObject{}
	}
	return id
}

func (r *Recorder) AttachShader(program, shader uint32) {
	r.record("AttachShader", program, shader)
	p, ok := r.programs[program]
	if !ok {
		r.raise(gpu.InvalidValue)
		return
	}
	p.shaders = append(p.shaders, shader)
}

func (r *Recorder) DetachShader(program, shader uint32) {
	r.record("DetachShader", program, shader)
	if p, ok := r.programs[program]; ok {
		p.shaders = slices.DeleteFunc(p.shaders, func(s uint32) bool { return s == shader })
	}
}

func (r *Recorder) LinkProgram(program uint32) {
	r.record("LinkProgram", program)
	p, ok := r.programs[program]
	if !ok {
		r.raise(gpu.InvalidValue)
		return
	}
	p.linked, p.log = false, ""
	p.uniforms = make(map[string]bool)
	p.locations = make(map[string]int32)
	p.names = make(map[int32]string)
	stages := make(map[gpu.Enum]bool)
	for _, sid := range p.shaders {
		s, ok := r.shaders[sid]
		if !ok || !s.compiled {
			p.log = fmt.Sprintf("error: linking with uncompiled/unspecialized shader %d", sid)
			return
		}
		stages[s.stage] = true
		for _, name := range uniformNames(s.source) {
			p.uniforms[name] = true
		}
	}
	if !stages[gpu.VertexShader] || !stages[gpu.FragmentShader] {
		p.log = "error: program lacks a vertex or fragment shader"
		return
	}
	if r.linkFailure != "" {
		p.log, r.linkFailure = r.linkFailure, ""
		return
	}
	p.linked = true
}

func (r *Recorder) ProgramLinked(program uint32) bool {
	p, ok := r.programs[program]
	return ok && p.linked
}

func (r *Recorder) ProgramInfoLog(program uint32) string {
	if p, ok := r.programs[program]; ok {
		return p.log
	}
	return ""
}

func (r *Recorder) UseProgram(program uint32) {
	r.record("UseProgram", program)
	if program != 0 {
		p, ok := r.programs[program]
		if !ok || !p.linked {
			r.raise(gpu.InvalidOperation)
			return
		}
	}
	r.program = program
}

func (r *Recorder) DeleteProgram(program uint32) {
	r.record("DeleteProgram", program)
	r.countDelete(gpu.HandleProgram, program)
	delete(r.programs, program)
	if r.program == program {
		r.program = 0
	}
}

// GetUniformLocation resolves a uniform by the root of its name. "lights[3].color" resolves
// when "lights" was declared as a uniform in any attached stage.
func (r *Recorder) GetUniformLocation(program uint32, name string) int32 {
	r.record("GetUniformLocation", program, name)
	p, ok := r.programs[program]
	if !ok || !p.linked {
		r.raise(gpu.InvalidOperation)
		return -1
	}
	root := name
	if i := strings.IndexAny(root, "[."); i >= 0 {
		root = root[:i]
	}
	if !p.uniforms[root] {
		return -1
	}
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := int32(len(p.locations))
	p.locations[name] = loc
	p.names[loc] = name
	return loc
}

func (r *Recorder) uniform(kind string, location int32, values ...float32) {
	r.record("Uniform"+kind, location)
	if location < 0 {
		return
	}
	p, ok := r.programs[r.program]
	if !ok {
		r.raise(gpu.InvalidOperation)
		return
	}
	name, ok := p.names[location]
	if !ok {
		r.raise(gpu.InvalidOperation)
		return
	}
	r.uniforms = append(r.uniforms, UniformCall{Program: r.program, Name: name, Kind: kind, Values: values})
}

func (r *Recorder) Uniform1i(location int32, v int32) { r.uniform("1i", location, float32(v)) }

func (r *Recorder) Uniform1f(location int32, v float32) { r.uniform("1f", location, v) }

func (r *Recorder) Uniform2f(location int32, x, y float32) { r.uniform("2f", location, x, y) }

func (r *Recorder) Uniform3f(location int32, x, y, z float32) { r.uniform("3f", location, x, y, z) }

func (r *Recorder) Uniform4f(location int32, x, y, z, w float32) {
	r.uniform("4f", location, x, y, z, w)
}

func (r *Recorder) UniformMatrix3fv(location int32, m [9]float32) {
	r.uniform("Matrix3fv", location, m[:]...)
}

func (r *Recorder) UniformMatrix4fv(location int32, m [16]float32) {
	r.uniform("Matrix4fv", location, m[:]...)
}

func (r *Recorder) GenTexture() uint32 {
	id := r.allocate(gpu.HandleTexture)
	r.record("GenTexture", id)
	if id != 0 {
		r.textures[id] = &textureObject{params: make(map[gpu.Enum]int32)}
	}
	return id
}

func (r *Recorder) DeleteTexture(id uint32) {
	r.record("DeleteTexture", id)
	r.countDelete(gpu.HandleTexture, id)
	delete(r.textures, id)
	for _, unit := range r.unitTextures {
		for target, bound := range unit {
			if bound == id {
				delete(unit, target)
			}
		}
	}
}

func (r *Recorder) ActiveTexture(unit gpu.Enum) {
	r.record("ActiveTexture", unit)
	idx := int(unit - gpu.Texture0)
	if idx < 0 || idx >= gpu.MaxTextureUnits {
		r.raise(gpu.InvalidEnum)
		return
	}
	r.activeUnit = idx
}

func (r *Recorder) BindTexture(target gpu.Enum, id uint32) {
	r.record("BindTexture", target, id)
	if id != 0 {
		t, ok := r.textures[id]
		if !ok {
			r.raise(gpu.InvalidOperation)
			return
		}
		if t.target == 0 {
			t.target = target
		} else if t.target != target {
			r.raise(gpu.InvalidOperation)
			return
		}
	}
	r.unitTextures[r.activeUnit][target] = id
}

// faceOf maps an image target to the bind target and face index it addresses.
func faceOf(target gpu.Enum) (gpu.Enum, int) {
	if target >= gpu.TextureCubeMapPositiveX && target < gpu.TextureCubeMapPositiveX+6 {
		return gpu.TextureCubeMap, int(target - gpu.TextureCubeMapPositiveX)
	}
	return target, 0
}

func (r *Recorder) boundTexture(target gpu.Enum) *textureObject {
	return r.textures[r.unitTextures[r.activeUnit][target]]
}

func (r *Recorder) TexImage2D(target gpu.Enum, level int32, internalFormat gpu.Enum, width, height int32, format, xtype gpu.Enum, pixels []byte) {
	r.record("TexImage2D", target, level, internalFormat, width, height, format, xtype, len(pixels))
	bindTarget, face := faceOf(target)
	t := r.boundTexture(bindTarget)
	if t == nil {
		r.raise(gpu.InvalidOperation)
		return
	}
	if width < 0 || height < 0 || level < 0 {
		r.raise(gpu.InvalidValue)
		return
	}
	if t.faces[face] == nil {
		t.faces[face] = make(map[int32]levelSize)
	}
	t.faces[face][level] = levelSize{width: width, height: height, internalFormat: internalFormat}
}

func (r *Recorder) TexParameteri(target, pname gpu.Enum, param int32) {
	r.record("TexParameteri", target, pname, param)
	t := r.boundTexture(target)
	if t == nil {
		r.raise(gpu.InvalidOperation)
		return
	}
	t.params[pname] = param
}

func (r *Recorder) TexParameterfv(target, pname gpu.Enum, params []float32) {
	r.record("TexParameterfv", target, pname, slices.Clone(params))
	t := r.boundTexture(target)
	if t == nil {
		r.raise(gpu.InvalidOperation)
		return
	}
	if pname == gpu.TextureBorderColor {
		t.border = slices.Clone(params)
	}
}

// GenerateMipmap fills every level below the base on every face that has a base level.
func (r *Recorder) GenerateMipmap(target gpu.Enum) {
	r.record("GenerateMipmap", target)
	t := r.boundTexture(target)
	if t == nil {
		r.raise(gpu.InvalidOperation)
		return
	}
	filled := false
	for face := range t.faces {
		base, ok := t.faces[face][0]
		if !ok {
			continue
		}
		filled = true
		levels := common.MipLevelCount(int(base.width), int(base.height))
		for l := 1; l < levels; l++ {
			t.faces[face][int32(l)] = levelSize{
				width:          int32(common.MipSize(int(base.width), l)),
				height:         int32(common.MipSize(int(base.height), l)),
				internalFormat: base.internalFormat,
			}
		}
	}
	if !filled {
		r.raise(gpu.InvalidOperation)
	}
}

func (r *Recorder) GenFramebuffer() uint32 {
	id := r.allocate(gpu.HandleFramebuffer)
	r.record("GenFramebuffer", id)
	if id != 0 {
		r.framebuffers[id] = &framebufferObject{
			attachments: make(map[gpu.Enum]attachment),
			drawBuffers: []gpu.Enum{gpu.ColorAttachment0},
			readBuffer:  gpu.ColorAttachment0,
		}
	}
	return id
}

func (r *Recorder) DeleteFramebuffer(id uint32) {
	r.record("DeleteFramebuffer", id)
	r.countDelete(gpu.HandleFramebuffer, id)
	delete(r.framebuffers, id)
	if r.drawFramebuffer == id {
		r.drawFramebuffer = 0
	}
	if r.readFramebuffer == id {
		r.readFramebuffer = 0
	}
}

func (r *Recorder) BindFramebuffer(target gpu.Enum, id uint32) {
	r.record("BindFramebuffer", target, id)
	if _, ok := r.framebuffers[id]; id != 0 && !ok {
		r.raise(gpu.InvalidOperation)
		return
	}
	if target == gpu.FramebufferTarget || target == gpu.DrawFramebuffer {
		r.drawFramebuffer = id
	}
	if target == gpu.FramebufferTarget || target == gpu.ReadFramebuffer {
		r.readFramebuffer = id
	}
}

func (r *Recorder) targetFramebuffer(target gpu.Enum) *framebufferObject {
	if target == gpu.ReadFramebuffer {
		return r.framebuffers[r.readFramebuffer]
	}
	return r.framebuffers[r.drawFramebuffer]
}

func (r *Recorder) FramebufferTexture2D(target, attachmentPoint, texTarget gpu.Enum, texture uint32, level int32) {
	r.record("FramebufferTexture2D", target, attachmentPoint, texTarget, texture, level)
	fb := r.targetFramebuffer(target)
	if fb == nil {
		r.raise(gpu.InvalidOperation)
		return
	}
	if texture == 0 {
		delete(fb.attachments, attachmentPoint)
		return
	}
	if _, ok := r.textures[texture]; !ok {
		r.raise(gpu.InvalidOperation)
		return
	}
	fb.attachments[attachmentPoint] = attachment{id: texture, texTarget: texTarget, level: level}
}

func (r *Recorder) FramebufferRenderbuffer(target, attachmentPoint, rbTarget gpu.Enum, renderbuffer uint32) {
	r.record("FramebufferRenderbuffer", target, attachmentPoint, rbTarget, renderbuffer)
	fb := r.targetFramebuffer(target)
	if fb == nil {
		r.raise(gpu.InvalidOperation)
		return
	}
	if renderbuffer == 0 {
		delete(fb.attachments, attachmentPoint)
		return
	}
	if _, ok := r.renderbuffers[renderbuffer]; !ok {
		r.raise(gpu.InvalidOperation)
		return
	}
	fb.attachments[attachmentPoint] = attachment{renderbuffer: true, id: renderbuffer}
}

func (r *Recorder) attachmentImage(a attachment) (levelSize, bool) {
	if a.renderbuffer {
		rb, ok := r.renderbuffers[a.id]
		if !ok {
			return levelSize{}, false
		}
		return levelSize{width: rb.width, height: rb.height, internalFormat: rb.internalFormat}, true
	}
	t, ok := r.textures[a.id]
	if !ok {
		return levelSize{}, false
	}
	_, face := faceOf(a.texTarget)
	if t.faces[face] == nil {
		return levelSize{}, false
	}
	l, ok := t.faces[face][a.level]
	return l, ok
}

// CheckFramebufferStatus follows the driver rules: a framebuffer needs at least one image, every
// image needs storage of non-zero size and a format matching its attachment point, and every
// draw buffer must name an attached image. Differing attachment sizes are allowed, as they are
// in the driver.
func (r *Recorder) CheckFramebufferStatus(target gpu.Enum) gpu.Enum {
	r.record("CheckFramebufferStatus", target)
	id := r.drawFramebuffer
	if target == gpu.ReadFramebuffer {
		id = r.readFramebuffer
	}
	if id == 0 {
		return gpu.FramebufferComplete
	}
	fb := r.framebuffers[id]
	if len(fb.attachments) == 0 {
		return gpu.FramebufferIncompleteMissingAttachment
	}
	for point, a := range fb.attachments {
		img, ok := r.attachmentImage(a)
		if !ok || img.width == 0 || img.height == 0 {
			return gpu.FramebufferIncompleteAttachment
		}
		depth := gpu.IsDepthInternalFormat(img.internalFormat)
		isDepthPoint := point == gpu.DepthAttachment || point == gpu.DepthStencilAttachment
		if depth != isDepthPoint {
			return gpu.FramebufferIncompleteAttachment
		}
	}
	for _, buf := range fb.drawBuffers {
		if buf == gpu.None {
			continue
		}
		if _, ok := fb.attachments[buf]; !ok {
			return gpu.FramebufferIncompleteDrawBuffer
		}
	}
	if fb.readBuffer != gpu.None {
		if _, ok := fb.attachments[fb.readBuffer]; !ok {
			return gpu.FramebufferIncompleteReadBuffer
		}
	}
	return gpu.FramebufferComplete
}

func (r *Recorder) DrawBuffers(buffers []gpu.Enum) {
	r.record("DrawBuffers", slices.Clone(buffers))
	fb := r.framebuffers[r.drawFramebuffer]
	if fb == nil {
		r.raise(gpu.InvalidOperation)
		return
	}
	fb.drawBuffers = slices.Clone(buffers)
}

func (r *Recorder) ReadBuffer(mode gpu.Enum) {
	r.record("ReadBuffer", mode)
	fb := r.framebuffers[r.readFramebuffer]
	if fb == nil {
		r.raise(gpu.InvalidOperation)
		return
	}
	fb.readBuffer = mode
}

func (r *Recorder) BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int32, mask gpu.Enum, filter gpu.Enum) {
	r.record("BlitFramebuffer", srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1, mask, filter)
	if mask&(gpu.DepthBufferBit|gpu.StencilBufferBit) != 0 && filter != gpu.Nearest {
		r.raise(gpu.InvalidOperation)
	}
}

func (r *Recorder) GenRenderbuffer() uint32 {
	id := r.allocate(gpu.HandleRenderbuffer)
	r.record("GenRenderbuffer", id)
	if id != 0 {
		r.renderbuffers[id] = &renderbufferObject{}
	}
	return id
}

func (r *Recorder) DeleteRenderbuffer(id uint32) {
	r.record("DeleteRenderbuffer", id)
	r.countDelete(gpu.HandleRenderbuffer, id)
	delete(r.renderbuffers, id)
	if r.renderbuffer == id {
		r.renderbuffer = 0
	}
}

func (r *Recorder) BindRenderbuffer(id uint32) {
	r.record("BindRenderbuffer", id)
	if _, ok := r.renderbuffers[id]; id != 0 && !ok {
		r.raise(gpu.InvalidOperation)
		return
	}
	r.renderbuffer = id
}

func (r *Recorder) RenderbufferStorage(internalFormat gpu.Enum, width, height int32) {
	r.record("RenderbufferStorage", internalFormat, width, height)
	rb := r.renderbuffers[r.renderbuffer]
	if rb == nil {
		r.raise(gpu.InvalidOperation)
		return
	}
	rb.internalFormat, rb.width, rb.height = internalFormat, width, height
}

func (r *Recorder) Viewport(x, y, width, height int32) {
	r.record("Viewport", x, y, width, height)
	r.viewport = [4]int32{x, y, width, height}
}

func (r *Recorder) ClearColor(red, green, blue, alpha float32) {
	r.record("ClearColor", red, green, blue, alpha)
}

func (r *Recorder) Clear(mask gpu.Enum) {
	r.record("Clear", mask)
	if r.drawFramebuffer != 0 && r.CheckFramebufferStatusQuiet() != gpu.FramebufferComplete {
		r.raise(gpu.InvalidFramebufferOperation)
	}
}

// CheckFramebufferStatusQuiet evaluates the draw framebuffer without recording a call.
func (r *Recorder) CheckFramebufferStatusQuiet() gpu.Enum {
	n := len(r.calls)
	status := r.CheckFramebufferStatus(gpu.DrawFramebuffer)
	r.calls = r.calls[:n]
	return status
}

func (r *Recorder) Enable(capability gpu.Enum) {
	r.record("Enable", capability)
	r.enabled[capability] = true
}

func (r *Recorder) Disable(capability gpu.Enum) {
	r.record("Disable", capability)
	r.enabled[capability] = false
}

func (r *Recorder) DepthFunc(fn gpu.Enum) { r.record("DepthFunc", fn) }

func (r *Recorder) DepthMask(write bool) { r.record("DepthMask", write) }

func (r *Recorder) CullFace(mode gpu.Enum) { r.record("CullFace", mode) }

func (r *Recorder) BlendFunc(src, dst gpu.Enum) { r.record("BlendFunc", src, dst) }

func (r *Recorder) checkDraw() {
	if r.contextLostOnDraw {
		r.raise(gpu.ContextLost)
		return
	}
	if r.program == 0 || r.vertexArray == 0 {
		r.raise(gpu.InvalidOperation)
		return
	}
	if r.drawFramebuffer != 0 && r.CheckFramebufferStatusQuiet() != gpu.FramebufferComplete {
		r.raise(gpu.InvalidFramebufferOperation)
	}
}

func (r *Recorder) DrawArrays(mode gpu.Enum, first, count int32) {
	r.record("DrawArrays", mode, first, count)
	r.checkDraw()
}

func (r *Recorder) DrawElements(mode gpu.Enum, count int32, xtype gpu.Enum, offset int) {
	r.record("DrawElements", mode, count, xtype, offset)
	r.checkDraw()
}
