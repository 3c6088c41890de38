package gpu

import (
	"fmt"
	"log/slog"
)

// maxPolledErrors bounds a single error drain. A lost context can report errors indefinitely.
const maxPolledErrors = 32

// Viewport is a rectangle in window coordinates.
type Viewport struct {
	X, Y, Width, Height int32
}

// UnitBinding records the textures bound to each target of one texture unit.
type UnitBinding struct {
	Texture2D      uint32
	TextureCubeMap uint32
}

// BindingState mirrors the driver context state that the engine mutates. It is a plain value so
// callers and tests can snapshot it and compare.
type BindingState struct {
	Program         uint32
	VertexArray     uint32
	ArrayBuffer     uint32
	ElementBuffer   uint32
	DrawFramebuffer uint32
	ReadFramebuffer uint32
	Renderbuffer    uint32
	ActiveUnit      int
	Units           [MaxTextureUnits]UnitBinding
	Viewport        Viewport
	Enabled         [FramebufferSRGB + 1]bool
	DepthFunc       Enum
	DepthWrite      bool
	CullMode        Enum
	BlendSrc        Enum
	BlendDst        Enum
	ClearColor      [4]float32
}

// IsEnabled reports whether a capability is on.
func (s BindingState) IsEnabled(c Capability) bool { return s.Enabled[c] }

// Texture returns the texture bound to target on unit.
func (s BindingState) Texture(unit int, target Enum) uint32 {
	if target == TextureCubeMap {
		return s.Units[unit].TextureCubeMap
	}
	return s.Units[unit].Texture2D
}

// Stats counts driver traffic issued through a RenderContext since the last reset.
type Stats struct {
	DrawCalls    int
	StateChanges int
	ElidedBinds  int
}

type framebufferRecord struct {
	name     string
	complete bool
	intact   func() bool
}

// RenderContext is the single owner of driver binding state. Every bind, state toggle and draw
// goes through it, so what is currently bound is inspectable instead of being an invisible side
// effect of call order.
//
// A RenderContext is not safe for concurrent use. It must only be used from the thread that owns
// the driver context.
type RenderContext struct {
	driver Driver
	logger *slog.Logger

	state      BindingState
	vaoIndices map[uint32]uint32

	defaultWidth, defaultHeight int32

	framebuffers map[uint32]framebufferRecord
	pass         string
	stats        Stats
}

// ContextOption is a functional option applied to a RenderContext during construction.
type ContextOption func(*RenderContext)

// WithLogger sets the structured logger used for driver error reports.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - ContextOption: a function that applies the logger to a context
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *RenderContext) {
		c.logger = logger
	}
}

// NewRenderContext wraps a driver whose context was just created for a backbuffer of the given
// size. The mirrored state starts at the driver defaults.
//
// Parameters:
//   - driver: the driver to issue calls through
//   - width, height: the default framebuffer size in pixels
//   - opts: functional options
//
// Returns:
//   - *RenderContext: the context
func NewRenderContext(driver Driver, width, height int, opts ...ContextOption) *RenderContext {
	c := &RenderContext{
		driver:        driver,
		logger:        slog.Default(),
		vaoIndices:    make(map[uint32]uint32),
		defaultWidth:  int32(width),
		defaultHeight: int32(height),
		framebuffers:  make(map[uint32]framebufferRecord),
	}
	c.state.Viewport = Viewport{0, 0, int32(width), int32(height)}
	c.state.DepthFunc = FuncLess
	c.state.DepthWrite = true
	c.state.CullMode = Back
	c.state.BlendSrc = One
	c.state.BlendDst = Zero
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Driver returns the wrapped driver for non-binding calls such as uploads.
func (c *RenderContext) Driver() Driver { return c.driver }

// Logger returns the context logger.
func (c *RenderContext) Logger() *slog.Logger { return c.logger }

// State returns a snapshot of the mirrored binding state.
func (c *RenderContext) State() BindingState { return c.state }

// Stats returns the traffic counters.
func (c *RenderContext) Stats() Stats { return c.stats }

// ResetStats zeroes the traffic counters.
func (c *RenderContext) ResetStats() { c.stats = Stats{} }

// DefaultSize returns the size of the default framebuffer.
func (c *RenderContext) DefaultSize() (width, height int) {
	return int(c.defaultWidth), int(c.defaultHeight)
}

// SetDefaultSize records a new default framebuffer size after a window resize.
func (c *RenderContext) SetDefaultSize(width, height int) {
	c.defaultWidth, c.defaultHeight = int32(width), int32(height)
}

// BeginPass labels subsequent error reports with the pass name.
func (c *RenderContext) BeginPass(name string) { c.pass = name }

// EndPass clears the pass label.
func (c *RenderContext) EndPass() { c.pass = "" }

// Pass returns the current pass label.
func (c *RenderContext) Pass() string { return c.pass }

func (c *RenderContext) changed() { c.stats.StateChanges++ }

func (c *RenderContext) elided() { c.stats.ElidedBinds++ }

// UseProgram makes a program current.
func (c *RenderContext) UseProgram(id uint32) {
	if c.state.Program == id {
		c.elided()
		return
	}
	c.driver.UseProgram(id)
	c.state.Program = id
	c.changed()
}

// BindVertexArray makes a vertex array current. The element buffer binding follows the vertex
// array, as it does in the driver.
func (c *RenderContext) BindVertexArray(id uint32) {
	if c.state.VertexArray == id {
		c.elided()
		return
	}
	c.driver.BindVertexArray(id)
	c.state.VertexArray = id
	c.state.ElementBuffer = c.vaoIndices[id]
	c.changed()
}

// BindBuffer binds a buffer to the target of its kind.
func (c *RenderContext) BindBuffer(kind BufferKind, id uint32) {
	switch kind {
	case BufferKindIndex:
		if c.state.ElementBuffer == id {
			c.elided()
			return
		}
		c.driver.BindBuffer(kind.Target(), id)
		c.state.ElementBuffer = id
		c.vaoIndices[c.state.VertexArray] = id
	default:
		if c.state.ArrayBuffer == id {
			c.elided()
			return
		}
		c.driver.BindBuffer(kind.Target(), id)
		c.state.ArrayBuffer = id
	}
	c.changed()
}

// BindFramebuffer binds a framebuffer. FramebufferTarget sets both the draw and read bindings.
func (c *RenderContext) BindFramebuffer(target Enum, id uint32) {
	draw := target == FramebufferTarget || target == DrawFramebuffer
	read := target == FramebufferTarget || target == ReadFramebuffer
	if (!draw || c.state.DrawFramebuffer == id) && (!read || c.state.ReadFramebuffer == id) {
		c.elided()
		return
	}
	c.driver.BindFramebuffer(target, id)
	if draw {
		c.state.DrawFramebuffer = id
	}
	if read {
		c.state.ReadFramebuffer = id
	}
	c.changed()
}

// BindRenderbuffer binds a renderbuffer.
func (c *RenderContext) BindRenderbuffer(id uint32) {
	if c.state.Renderbuffer == id {
		c.elided()
		return
	}
	c.driver.BindRenderbuffer(id)
	c.state.Renderbuffer = id
	c.changed()
}

// ActiveTexture selects the texture unit that texture binds and parameter calls apply to.
func (c *RenderContext) ActiveTexture(unit int) {
	if unit < 0 || unit >= MaxTextureUnits {
		panic(fmt.Sprintf("gpu: texture unit %d out of range [0, %d)", unit, MaxTextureUnits))
	}
	if c.state.ActiveUnit == unit {
		c.elided()
		return
	}
	c.driver.ActiveTexture(Texture0 + Enum(unit))
	c.state.ActiveUnit = unit
	c.changed()
}

// BindTexture activates unit and binds texture id to target on it.
func (c *RenderContext) BindTexture(unit int, target Enum, id uint32) {
	c.ActiveTexture(unit)
	slot := &c.state.Units[unit]
	current := &slot.Texture2D
	if target == TextureCubeMap {
		current = &slot.TextureCubeMap
	}
	if *current == id {
		c.elided()
		return
	}
	c.driver.BindTexture(target, id)
	*current = id
	c.changed()
}

// BindTextureForUpdate binds a texture on the currently active unit, for uploads and parameter
// changes.
func (c *RenderContext) BindTextureForUpdate(target Enum, id uint32) {
	c.BindTexture(c.state.ActiveUnit, target, id)
}

// Viewport sets the viewport rectangle.
func (c *RenderContext) Viewport(x, y, width, height int) {
	v := Viewport{int32(x), int32(y), int32(width), int32(height)}
	if c.state.Viewport == v {
		c.elided()
		return
	}
	c.driver.Viewport(v.X, v.Y, v.Width, v.Height)
	c.state.Viewport = v
	c.changed()
}

// SetCapability enables or disables a capability.
func (c *RenderContext) SetCapability(capability Capability, on bool) {
	if c.state.Enabled[capability] == on {
		c.elided()
		return
	}
	if on {
		c.driver.Enable(capability.Enum())
	} else {
		c.driver.Disable(capability.Enum())
	}
	c.state.Enabled[capability] = on
	c.changed()
}

// DepthFunc sets the depth comparison function.
func (c *RenderContext) DepthFunc(fn Enum) {
	if c.state.DepthFunc == fn {
		c.elided()
		return
	}
	c.driver.DepthFunc(fn)
	c.state.DepthFunc = fn
	c.changed()
}

// DepthMask toggles depth writes.
func (c *RenderContext) DepthMask(write bool) {
	if c.state.DepthWrite == write {
		c.elided()
		return
	}
	c.driver.DepthMask(write)
	c.state.DepthWrite = write
	c.changed()
}

// CullFace selects which faces are culled when culling is enabled.
func (c *RenderContext) CullFace(mode Enum) {
	if c.state.CullMode == mode {
		c.elided()
		return
	}
	c.driver.CullFace(mode)
	c.state.CullMode = mode
	c.changed()
}

// BlendFunc sets the blend factors.
func (c *RenderContext) BlendFunc(src, dst Enum) {
	if c.state.BlendSrc == src && c.state.BlendDst == dst {
		c.elided()
		return
	}
	c.driver.BlendFunc(src, dst)
	c.state.BlendSrc, c.state.BlendDst = src, dst
	c.changed()
}

// ClearColor sets the colour used by Clear.
func (c *RenderContext) ClearColor(r, g, b, a float32) {
	col := [4]float32{r, g, b, a}
	if c.state.ClearColor == col {
		c.elided()
		return
	}
	c.driver.ClearColor(r, g, b, a)
	c.state.ClearColor = col
	c.changed()
}

// Clear resets the selected buffers of the bound draw framebuffer.
func (c *RenderContext) Clear(flags ClearFlags) {
	if flags == 0 {
		return
	}
	c.driver.Clear(flags.Mask())
}

// RegisterFramebuffer records the outcome of a framebuffer completeness check. Draws into a
// framebuffer that is not registered complete are refused.
func (c *RenderContext) RegisterFramebuffer(id uint32, name string, complete bool) {
	rec := c.framebuffers[id]
	rec.name, rec.complete = name, complete
	c.framebuffers[id] = rec
}

// WatchFramebuffer installs a callback consulted on every completeness query for id. A complete
// framebuffer whose callback returns false is treated as incomplete, which covers attachments
// reallocated at a different size after the check.
func (c *RenderContext) WatchFramebuffer(id uint32, intact func() bool) {
	rec := c.framebuffers[id]
	rec.intact = intact
	c.framebuffers[id] = rec
}

// FramebufferComplete reports whether the framebuffer id may be rendered into. The default
// framebuffer is always complete.
func (c *RenderContext) FramebufferComplete(id uint32) bool {
	if id == 0 {
		return true
	}
	rec := c.framebuffers[id]
	return rec.complete && (rec.intact == nil || rec.intact())
}

func (c *RenderContext) checkDrawable() error {
	if c.state.Program == 0 {
		return ErrNoProgram
	}
	if c.state.VertexArray == 0 {
		return ErrNoVertexArray
	}
	if !c.FramebufferComplete(c.state.DrawFramebuffer) {
		return fmt.Errorf("%w: %q", ErrIncompleteTarget, c.framebuffers[c.state.DrawFramebuffer].name)
	}
	return nil
}

// DrawArrays issues a non-indexed draw after validating the bound program, vertex array and target.
func (c *RenderContext) DrawArrays(mode Enum, first, count int) error {
	if err := c.checkDrawable(); err != nil {
		return err
	}
	c.driver.DrawArrays(mode, int32(first), int32(count))
	c.stats.DrawCalls++
	return nil
}

// DrawElements issues an indexed draw after validating the bound program, vertex array and target.
func (c *RenderContext) DrawElements(mode Enum, count int, xtype Enum, offset int) error {
	if err := c.checkDrawable(); err != nil {
		return err
	}
	if c.state.ElementBuffer == 0 {
		return fmt.Errorf("indexed draw: vertex array %d has no element buffer", c.state.VertexArray)
	}
	c.driver.DrawElements(mode, int32(count), xtype, offset)
	c.stats.DrawCalls++
	return nil
}

// Blit copies a rectangle between framebuffers. The read binding is left at src and the draw
// binding at dst.
//
// Parameters:
//   - src, dst: framebuffer ids (0 is the default framebuffer)
//   - srcRect, dstRect: source and destination rectangles
//   - flags: which buffers to copy
//   - filter: FilterNearest or FilterLinear (depth copies require nearest)
//
// Returns:
//   - error: ErrIncompleteTarget if either framebuffer is not complete
func (c *RenderContext) Blit(src, dst uint32, srcRect, dstRect Viewport, flags ClearFlags, filter Filter) error {
	if !c.FramebufferComplete(src) || !c.FramebufferComplete(dst) {
		return ErrIncompleteTarget
	}
	c.BindFramebuffer(ReadFramebuffer, src)
	c.BindFramebuffer(DrawFramebuffer, dst)
	c.driver.BlitFramebuffer(
		srcRect.X, srcRect.Y, srcRect.X+srcRect.Width, srcRect.Y+srcRect.Height,
		dstRect.X, dstRect.Y, dstRect.X+dstRect.Width, dstRect.Y+dstRect.Height,
		flags.Mask(), filter.Enum(),
	)
	return nil
}

// RestoreDefaultTarget binds the default framebuffer and resets the viewport to its size.
func (c *RenderContext) RestoreDefaultTarget() {
	c.BindFramebuffer(FramebufferTarget, 0)
	c.Viewport(0, 0, int(c.defaultWidth), int(c.defaultHeight))
}

// CheckError drains pending driver errors. When any were pending it logs them with the current
// pass and the given call and returns a *DriverError.
//
// Parameters:
//   - call: the call or step that preceded the poll
//
// Returns:
//   - error: nil, or *DriverError listing every drained code
func (c *RenderContext) CheckError(call string) error {
	codes := c.drain()
	if len(codes) == 0 {
		return nil
	}
	err := &DriverError{Codes: codes, Pass: c.pass, Call: call}
	c.logger.Error("driver error", "pass", c.pass, "call", call, "codes", joinCodes(codes))
	return err
}

// ClearErrors discards pending driver errors without reporting them.
func (c *RenderContext) ClearErrors() { c.drain() }

func (c *RenderContext) drain() []ErrorCode {
	var codes []ErrorCode
	for range maxPolledErrors {
		code := c.driver.GetError()
		if code == NoError {
			break
		}
		codes = append(codes, ErrorCode(code))
	}
	return codes
}

func (c *RenderContext) gen(kind HandleKind) uint32 {
	switch kind {
	case HandleBuffer:
		return c.driver.GenBuffer()
	case HandleVertexArray:
		return c.driver.GenVertexArray()
	case HandleTexture:
		return c.driver.GenTexture()
	case HandleProgram:
		return c.driver.CreateProgram()
	case HandleFramebuffer:
		return c.driver.GenFramebuffer()
	case HandleRenderbuffer:
		return c.driver.GenRenderbuffer()
	default:
		panic(fmt.Sprintf("gpu: cannot generate %s through NewObject", kind))
	}
}

func (c *RenderContext) creationError(kind HandleKind) error {
	err := &CreationError{Kind: kind, Codes: c.drain()}
	c.logger.Error("object creation failed", "kind", kind.String(), "pass", c.pass, "error", err)
	return err
}

// release deletes a handle and drops every binding that referenced it.
func (c *RenderContext) release(h Handle) {
	id := h.ID
	switch h.Kind {
	case HandleBuffer:
		c.driver.DeleteBuffer(id)
		if c.state.ArrayBuffer == id {
			c.state.ArrayBuffer = 0
		}
		if c.state.ElementBuffer == id {
			c.state.ElementBuffer = 0
		}
		for vao, ebo := range c.vaoIndices {
			if ebo == id {
				delete(c.vaoIndices, vao)
			}
		}
	case HandleVertexArray:
		c.driver.DeleteVertexArray(id)
		delete(c.vaoIndices, id)
		if c.state.VertexArray == id {
			c.state.VertexArray = 0
			c.state.ElementBuffer = 0
		}
	case HandleTexture:
		c.driver.DeleteTexture(id)
		for i := range c.state.Units {
			if c.state.Units[i].Texture2D == id {
				c.state.Units[i].Texture2D = 0
			}
			if c.state.Units[i].TextureCubeMap == id {
				c.state.Units[i].TextureCubeMap = 0
			}
		}
	case HandleShader:
		c.driver.DeleteShader(id)
	case HandleProgram:
		if c.state.Program == id {
			c.UseProgram(0)
		}
		c.driver.DeleteProgram(id)
	case HandleFramebuffer:
		c.driver.DeleteFramebuffer(id)
		delete(c.framebuffers, id)
		if c.state.DrawFramebuffer == id {
			c.state.DrawFramebuffer = 0
		}
		if c.state.ReadFramebuffer == id {
			c.state.ReadFramebuffer = 0
		}
	case HandleRenderbuffer:
		c.driver.DeleteRenderbuffer(id)
		if c.state.Renderbuffer == id {
			c.state.Renderbuffer = 0
		}
	}
}
