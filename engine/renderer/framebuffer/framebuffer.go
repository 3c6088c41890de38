// Package framebuffer manages offscreen render targets. A framebuffer moves through a small
// state machine: attachments are added while it is Unconfigured or Attaching, Check validates
// the combination once, and only a Complete framebuffer can be rendered into. A failed Check is
// terminal.
package framebuffer

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
)

// State is the configuration state of a framebuffer.
type State int

const (
	StateUnconfigured State = iota
	StateAttaching
	StateComplete
	StateIncomplete
)

func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateAttaching:
		return "attaching"
	case StateComplete:
		return "complete"
	case StateIncomplete:
		return "incomplete"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	// ErrFramebufferTerminal is returned by any operation on a framebuffer whose check failed.
	ErrFramebufferTerminal = errors.New("framebuffer failed its completeness check")

	// ErrNotComplete is returned when binding a framebuffer that has not been checked.
	ErrNotComplete = errors.New("framebuffer has not been checked complete")
)

// Framebuffer owns a framebuffer object. It references, but does not own, its attachments.
type Framebuffer struct {
	gpu.Object
	name        string
	state       State
	depthOnly   bool
	attachments map[gpu.Enum]Attachment
}

// New creates an unconfigured framebuffer.
//
// Parameters:
//   - ctx: the render context
//   - opts: framebuffer builder options
//
// Returns:
//   - *Framebuffer: the framebuffer
//   - error: a creation error
func New(ctx *gpu.RenderContext, opts ...FramebufferBuilderOption) (*Framebuffer, error) {
	f := &Framebuffer{attachments: make(map[gpu.Enum]Attachment)}
	for _, opt := range opts {
		opt(f)
	}
	obj, err := gpu.NewObject(ctx, gpu.HandleFramebuffer)
	if err != nil {
		return nil, err
	}
	f.Object = obj
	if f.name == "" {
		f.name = obj.Handle().String()
	}
	ctx.RegisterFramebuffer(obj.Handle().ID, f.name, false)
	ctx.WatchFramebuffer(obj.Handle().ID, func() bool { return f.resizedAttachment() == "" })
	return f, nil
}

// Name returns the framebuffer name.
func (f *Framebuffer) Name() string { return f.name }

// State returns the configuration state.
func (f *Framebuffer) State() State { return f.state }

// Attachment returns the image attached at point.
func (f *Framebuffer) Attachment(point gpu.Enum) (Attachment, bool) {
	a, ok := f.attachments[point]
	return a, ok
}

// Size returns the size shared by the attachments, or zero when nothing is attached.
func (f *Framebuffer) Size() (width, height int) {
	points := f.points()
	if len(points) == 0 {
		return 0, 0
	}
	return f.attachments[points[0]].Size()
}

func (f *Framebuffer) points() []gpu.Enum {
	points := make([]gpu.Enum, 0, len(f.attachments))
	for p := range f.attachments {
		points = append(points, p)
	}
	slices.Sort(points)
	return points
}

func (f *Framebuffer) colorPoints() []gpu.Enum {
	var points []gpu.Enum
	for _, p := range f.points() {
		if !IsDepthPoint(p) && p != gpu.StencilAttachment {
			points = append(points, p)
		}
	}
	return points
}

func (f *Framebuffer) beginAttach() error {
	switch f.state {
	case StateIncomplete:
		return fmt.Errorf("attach to %q: %w", f.name, ErrFramebufferTerminal)
	case StateComplete:
		return fmt.Errorf("attach to %q: framebuffer is complete, call Reconfigure first", f.name)
	}
	f.state = StateAttaching
	f.Context().BindFramebuffer(gpu.FramebufferTarget, f.ID())
	return nil
}

func (f *Framebuffer) attach(a Attachment) {
	d := f.Context().Driver()
	if a.Renderbuffer != nil {
		d.FramebufferRenderbuffer(gpu.FramebufferTarget, a.Point, gpu.RenderbufferTarget, a.Renderbuffer.ID())
	} else {
		d.FramebufferTexture2D(gpu.FramebufferTarget, a.Point, a.imageTarget(), a.Texture.ID(), int32(a.Level))
	}
	f.attachments[a.Point] = a
}

// AttachTexture attaches a level of a 2D texture.
//
// Parameters:
//   - point: the attachment point (ColorAttachment(i), gpu.DepthAttachment, ...)
//   - tex: the texture
//   - level: the mip level
//
// Returns:
//   - error: ErrFramebufferTerminal, or an error when the framebuffer is complete
func (f *Framebuffer) AttachTexture(point gpu.Enum, tex *texture.Texture, level int) error {
	if err := f.beginAttach(); err != nil {
		return err
	}
	f.attach(Attachment{Point: point, Texture: tex, Level: level})
	return nil
}

// AttachCubeFace attaches one face level of a cubemap.
func (f *Framebuffer) AttachCubeFace(point gpu.Enum, cube *texture.Texture, face, level int) error {
	if cube.Dimension() != texture.DimensionCubemap {
		return fmt.Errorf("attach to %q: %s is not a cubemap", f.name, cube.Handle())
	}
	if err := f.beginAttach(); err != nil {
		return err
	}
	f.attach(Attachment{Point: point, Texture: cube, Face: face, Level: level})
	return nil
}

// AttachRenderbuffer attaches a renderbuffer.
func (f *Framebuffer) AttachRenderbuffer(point gpu.Enum, rb *Renderbuffer) error {
	if err := f.beginAttach(); err != nil {
		return err
	}
	f.attach(Attachment{Point: point, Renderbuffer: rb})
	return nil
}

func (f *Framebuffer) describe() []string {
	out := make([]string, 0, len(f.attachments))
	for _, p := range f.points() {
		out = append(out, f.attachments[p].String())
	}
	return out
}

func (f *Framebuffer) validate() string {
	if len(f.attachments) == 0 {
		return "no attachments"
	}
	if !f.depthOnly && len(f.colorPoints()) == 0 {
		return "no colour attachment"
	}
	var w0, h0 int
	for i, p := range f.points() {
		a := f.attachments[p]
		depth := a.Format().IsDepth()
		if depth && !IsDepthPoint(p) {
			return fmt.Sprintf("depth format %s at %s", a.Format(), PointName(p))
		}
		if !depth && IsDepthPoint(p) {
			return fmt.Sprintf("colour format %s at %s", a.Format(), PointName(p))
		}
		w, h := a.Size()
		if i == 0 {
			w0, h0 = w, h
			continue
		}
		if w != w0 || h != h0 {
			return fmt.Sprintf("attachment size mismatch: %dx%d vs %dx%d", w0, h0, w, h)
		}
	}
	return ""
}

// Check validates the attachments, configures the draw and read buffers and asks the driver for
// the completeness status. It moves the framebuffer to Complete or, on any failure, to the
// terminal Incomplete state.
//
// Returns:
//   - error: *gpu.FramebufferIncompleteError describing the attachments, or ErrFramebufferTerminal
func (f *Framebuffer) Check() error {
	switch f.state {
	case StateIncomplete:
		return fmt.Errorf("check %q: %w", f.name, ErrFramebufferTerminal)
	case StateComplete:
		return nil
	}
	ctx := f.Context()
	if reason := f.validate(); reason != "" {
		return f.fail(&gpu.FramebufferIncompleteError{Framebuffer: f.name, Attachments: f.describe(), Reason: reason})
	}

	ctx.BindFramebuffer(gpu.FramebufferTarget, f.ID())
	d := ctx.Driver()
	if colors := f.colorPoints(); len(colors) > 0 {
		d.DrawBuffers(colors)
		d.ReadBuffer(colors[0])
	} else {
		d.DrawBuffers([]gpu.Enum{gpu.None})
		d.ReadBuffer(gpu.None)
	}
	if status := d.CheckFramebufferStatus(gpu.FramebufferTarget); status != gpu.FramebufferComplete {
		return f.fail(&gpu.FramebufferIncompleteError{Framebuffer: f.name, Attachments: f.describe(), Status: status})
	}
	if err := ctx.CheckError("check framebuffer " + f.name); err != nil {
		return f.fail(&gpu.FramebufferIncompleteError{Framebuffer: f.name, Attachments: f.describe(), Reason: err.Error()})
	}
	for p, a := range f.attachments {
		a.checkedWidth, a.checkedHeight = a.Size()
		f.attachments[p] = a
	}
	f.state = StateComplete
	ctx.RegisterFramebuffer(f.ID(), f.name, true)
	ctx.Logger().Debug("framebuffer complete", "framebuffer", f.name, "attachments", f.describe())
	return nil
}

// resizedAttachment describes the first attachment whose image was reallocated at a different
// size after Check, or returns "" when every attachment still has its checked size.
func (f *Framebuffer) resizedAttachment() string {
	if f.state != StateComplete {
		return ""
	}
	for p, a := range f.attachments {
		if a.resized() {
			w, h := a.Size()
			return fmt.Sprintf("%s resized from %dx%d to %dx%d", PointName(p), a.checkedWidth, a.checkedHeight, w, h)
		}
	}
	return ""
}

// demote moves a complete framebuffer with a resized attachment back to Attaching.
func (f *Framebuffer) demote(op, reason string) error {
	f.state = StateAttaching
	f.Context().RegisterFramebuffer(f.ID(), f.name, false)
	return fmt.Errorf("%s %q: %s: %w", op, f.name, reason, ErrNotComplete)
}

func (f *Framebuffer) fail(err *gpu.FramebufferIncompleteError) error {
	f.state = StateIncomplete
	ctx := f.Context()
	ctx.RegisterFramebuffer(f.ID(), f.name, false)
	ctx.Logger().Error("framebuffer incomplete", "framebuffer", f.name, "error", err)
	return err
}

// Bind makes the framebuffer the draw and read target. A complete framebuffer with an
// attachment resized since Check drops back to Attaching and must be checked again.
//
// Returns:
//   - error: ErrFramebufferTerminal or ErrNotComplete when it cannot be rendered into
func (f *Framebuffer) Bind() error {
	switch f.state {
	case StateIncomplete:
		return fmt.Errorf("bind %q: %w", f.name, ErrFramebufferTerminal)
	case StateComplete:
		if reason := f.resizedAttachment(); reason != "" {
			return f.demote("bind", reason)
		}
		f.Context().BindFramebuffer(gpu.FramebufferTarget, f.ID())
		return nil
	}
	return fmt.Errorf("bind %q in state %s: %w", f.name, f.state, ErrNotComplete)
}

// Reconfigure moves a complete framebuffer back to Attaching so attachments of a different
// size can be swapped in. Check must be called again before rendering.
func (f *Framebuffer) Reconfigure() error {
	switch f.state {
	case StateIncomplete:
		return fmt.Errorf("reconfigure %q: %w", f.name, ErrFramebufferTerminal)
	case StateComplete:
		f.state = StateAttaching
		f.Context().RegisterFramebuffer(f.ID(), f.name, false)
	}
	return nil
}

// RetargetColor swaps the image at a colour attachment of a complete framebuffer. The new image
// must have the same size as the one it replaces, so completeness is preserved.
//
// Parameters:
//   - index: the colour attachment index
//   - tex: the new texture
//   - face: the cubemap face, ignored for 2D textures
//   - level: the mip level
//
// Returns:
//   - error: an error when the framebuffer is not complete or the size differs
func (f *Framebuffer) RetargetColor(index int, tex *texture.Texture, face, level int) error {
	if f.state != StateComplete {
		if f.state == StateIncomplete {
			return fmt.Errorf("retarget %q: %w", f.name, ErrFramebufferTerminal)
		}
		return fmt.Errorf("retarget %q in state %s: %w", f.name, f.state, ErrNotComplete)
	}
	if reason := f.resizedAttachment(); reason != "" {
		return f.demote("retarget", reason)
	}
	point := ColorAttachment(index)
	old, ok := f.attachments[point]
	if !ok {
		return fmt.Errorf("retarget %q: nothing attached at %s", f.name, PointName(point))
	}
	next := Attachment{Point: point, Texture: tex, Face: face, Level: level,
		checkedWidth: old.checkedWidth, checkedHeight: old.checkedHeight}
	ow, oh := old.Size()
	nw, nh := next.Size()
	if ow != nw || oh != nh {
		return fmt.Errorf("retarget %q: %s is %dx%d, attachment is %dx%d", f.name, tex.Handle(), nw, nh, ow, oh)
	}
	if next.Format().IsDepth() {
		return fmt.Errorf("retarget %q: depth texture %s at %s", f.name, tex.Handle(), PointName(point))
	}
	f.Context().BindFramebuffer(gpu.FramebufferTarget, f.ID())
	f.attach(next)
	return nil
}

// Blit copies buffers from src to dst. A nil framebuffer is the default framebuffer. The full
// extent of each side is used.
//
// Parameters:
//   - ctx: the render context
//   - src, dst: the framebuffers, nil for the default framebuffer
//   - flags: which buffers to copy
//   - filter: gpu.FilterNearest for depth copies
//
// Returns:
//   - error: gpu.ErrIncompleteTarget when either side is not complete
func Blit(ctx *gpu.RenderContext, src, dst *Framebuffer, flags gpu.ClearFlags, filter gpu.Filter) error {
	rect := func(f *Framebuffer) (uint32, gpu.Viewport) {
		if f == nil {
			w, h := ctx.DefaultSize()
			return 0, gpu.Viewport{Width: int32(w), Height: int32(h)}
		}
		w, h := f.Size()
		return f.ID(), gpu.Viewport{Width: int32(w), Height: int32(h)}
	}
	srcID, srcRect := rect(src)
	dstID, dstRect := rect(dst)
	if err := ctx.Blit(srcID, dstID, srcRect, dstRect, flags, filter); err != nil {
		return err
	}
	return ctx.CheckError("blit")
}
