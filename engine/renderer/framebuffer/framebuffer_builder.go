package framebuffer

// FramebufferBuilderOption is a function that configures a framebuffer during construction.
type FramebufferBuilderOption func(*Framebuffer)

// WithName sets the name used in logs and errors.
//
// Parameters:
//   - name: the framebuffer name
//
// Returns:
//   - FramebufferBuilderOption: a function that applies the name to a framebuffer
func WithName(name string) FramebufferBuilderOption {
	return func(f *Framebuffer) {
		f.name = name
	}
}

// WithDepthOnly marks the framebuffer as having no colour output. Check sets the draw and read
// buffers to none instead of requiring a colour attachment.
func WithDepthOnly() FramebufferBuilderOption {
	return func(f *Framebuffer) {
		f.depthOnly = true
	}
}
