package gpu

import "fmt"

// HandleKind tags a driver id with the object type it names.
type HandleKind int

const (
	HandleBuffer HandleKind = iota
	HandleVertexArray
	HandleTexture
	HandleShader
	HandleProgram
	HandleFramebuffer
	HandleRenderbuffer
)

var handleKindNames = [...]string{
	HandleBuffer:       "buffer",
	HandleVertexArray:  "vertex array",
	HandleTexture:      "texture",
	HandleShader:       "shader",
	HandleProgram:      "program",
	HandleFramebuffer:  "framebuffer",
	HandleRenderbuffer: "renderbuffer",
}

func (k HandleKind) String() string {
	if int(k) < len(handleKindNames) {
		return handleKindNames[k]
	}
	return fmt.Sprintf("HandleKind(%d)", int(k))
}

// Handle is an opaque driver id plus its kind. The zero id denotes a failed creation and is
// never bound.
type Handle struct {
	ID   uint32
	Kind HandleKind
}

// IsNull reports whether the handle names no object.
func (h Handle) IsNull() bool { return h.ID == 0 }

func (h Handle) String() string { return fmt.Sprintf("%s#%d", h.Kind, h.ID) }

// Object owns exactly one driver handle. Wrapper types embed it to get creation checks,
// use-after-destroy detection and a single release path through the RenderContext.
type Object struct {
	ctx       *RenderContext
	handle    Handle
	destroyed bool
}

// NewObject allocates a driver object of the given kind through the context.
//
// Parameters:
//   - ctx: the render context that owns the driver
//   - kind: the kind of object to allocate (shaders go through NewShaderObject)
//
// Returns:
//   - Object: the owning wrapper
//   - error: *CreationError if the driver returned a null id
func NewObject(ctx *RenderContext, kind HandleKind) (Object, error) {
	id := ctx.gen(kind)
	if id == 0 {
		return Object{}, ctx.creationError(kind)
	}
	return Object{ctx: ctx, handle: Handle{ID: id, Kind: kind}}, nil
}

// NewShaderObject allocates a shader stage object.
func NewShaderObject(ctx *RenderContext, stage ShaderStage) (Object, error) {
	id := ctx.driver.CreateShader(stage.Enum())
	if id == 0 {
		return Object{}, ctx.creationError(HandleShader)
	}
	return Object{ctx: ctx, handle: Handle{ID: id, Kind: HandleShader}}, nil
}

// Handle returns the owned handle. The handle stays readable after Destroy for diagnostics.
func (o *Object) Handle() Handle { return o.handle }

// ID returns the driver id for issuing calls. It panics when the object was destroyed, since
// issuing calls on a released name is a programmer error.
func (o *Object) ID() uint32 {
	if o.destroyed {
		panic(fmt.Sprintf("gpu: use of %s after Destroy", o.handle))
	}
	return o.handle.ID
}

// Alive reports whether the object holds a live handle.
func (o *Object) Alive() bool { return !o.destroyed && !o.handle.IsNull() }

// Context returns the render context the object was created on.
func (o *Object) Context() *RenderContext { return o.ctx }

// Destroy releases the handle. Only the first call issues the driver delete.
func (o *Object) Destroy() {
	if o.destroyed || o.handle.IsNull() {
		return
	}
	o.ctx.release(o.handle)
	o.destroyed = true
}
