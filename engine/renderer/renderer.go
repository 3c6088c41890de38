package renderer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
)

// DefaultMaxFrameErrors is the number of consecutive failed frames after which Render gives up.
const DefaultMaxFrameErrors = 3

// ErrTooManyFrameErrors is returned by Render once consecutive frame failures reach the limit.
var ErrTooManyFrameErrors = errors.New("too many consecutive frame errors")

// renderer is the implementation of the Renderer interface.
type renderer struct {
	backendType RendererBackendType
	driver      gpu.Driver
	ctx         *gpu.RenderContext
	programs    *pipeline.ProgramCache
	watcher     *shader.Watcher
	logger      *slog.Logger

	// Pre-creation config collected from builder options
	shaderDir      string
	hotReload      bool
	maxFrameErrors int

	frame        uint64
	frameErrors  int
	inFrame      bool
	lastFrameErr error
}

// Renderer owns the driver, the render context and the program cache shared by techniques.
// It frames each technique render with BeginFrame and EndFrame, which poll driver errors so a
// failing frame is reported instead of silently corrupting the next one.
type Renderer interface {
	// Backend returns the driver implementation in use.
	Backend() RendererBackendType

	// Context returns the render context every GPU object is created on.
	Context() *gpu.RenderContext

	// Programs returns the program cache shared by the techniques.
	Programs() *pipeline.ProgramCache

	// Version returns the driver version string.
	Version() string

	// Resize records a new default framebuffer size.
	//
	// Parameters:
	//   - width: the new width of the backbuffer in pixels
	//   - height: the new height of the backbuffer in pixels
	Resize(width, height int)

	// BeginFrame binds the default framebuffer, applies pending shader reloads and drains
	// driver errors left from outside a frame.
	//
	// Returns:
	//   - error: an error if a frame is already open
	BeginFrame() error

	// EndFrame polls the driver for errors raised during the frame.
	//
	// Returns:
	//   - error: a *gpu.DriverError when the driver reported errors
	EndFrame() error

	// Render draws one frame of t between BeginFrame and EndFrame. A failed frame is logged and
	// returned; after the configured number of consecutive failures the error wraps
	// ErrTooManyFrameErrors.
	//
	// Parameters:
	//   - t: an initialized technique
	//   - frame: the per-frame inputs
	//
	// Returns:
	//   - error: the frame error
	Render(t pipeline.Technique, frame pipeline.Frame) error

	// Frames returns the number of frames ended so far.
	Frames() uint64

	// Destroy releases the cached programs and stops the shader watcher.
	Destroy()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer for the given backend. For BackendTypeOpenGL the window's
// context must be current on the calling thread.
//
// Parameters:
//   - backendType: the driver implementation
//   - width, height: the default framebuffer size in pixels
//   - options: variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if the driver or the shader watcher could not be created
func NewRenderer(backendType RendererBackendType, width, height int, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		backendType:    backendType,
		logger:         slog.Default(),
		maxFrameErrors: DefaultMaxFrameErrors,
	}
	for _, opt := range options {
		opt(r)
	}

	if r.driver == nil {
		d, err := newDriver(backendType)
		if err != nil {
			return nil, fmt.Errorf("create %s driver: %w", backendType, err)
		}
		r.driver = d
	}
	r.ctx = gpu.NewRenderContext(r.driver, width, height, gpu.WithLogger(r.logger))

	var cacheOpts []pipeline.ProgramCacheOption
	if r.shaderDir != "" {
		cacheOpts = append(cacheOpts, pipeline.WithShaderDir(r.shaderDir))
		if r.hotReload {
			w, err := shader.NewWatcher(r.logger)
			if err != nil {
				return nil, fmt.Errorf("create shader watcher: %w", err)
			}
			r.watcher = w
			cacheOpts = append(cacheOpts, pipeline.WithWatcher(w))
		}
	}
	r.programs = pipeline.NewProgramCache(r.ctx, cacheOpts...)

	r.logger.Info("renderer created", "backend", backendType.String(), "version", r.driver.Version(),
		"width", width, "height", height, "shader_dir", r.shaderDir, "hot_reload", r.watcher != nil)
	return r, nil
}

func (r *renderer) Backend() RendererBackendType {
	return r.backendType
}

func (r *renderer) Context() *gpu.RenderContext {
	return r.ctx
}

func (r *renderer) Programs() *pipeline.ProgramCache {
	return r.programs
}

func (r *renderer) Version() string {
	return r.driver.Version()
}

func (r *renderer) Resize(width, height int) {
	r.ctx.SetDefaultSize(width, height)
	if r.ctx.State().DrawFramebuffer == 0 {
		r.ctx.Viewport(0, 0, width, height)
	}
}

func (r *renderer) BeginFrame() error {
	if r.inFrame {
		return fmt.Errorf("frame %d is already open", r.frame)
	}
	r.inFrame = true
	if err := r.ctx.CheckError("begin frame"); err != nil {
		r.logger.Warn("driver errors outside a frame", "frame", r.frame, "error", err)
	}
	if r.watcher != nil && r.watcher.Pending() {
		for _, err := range r.watcher.Drain() {
			r.logger.Error("shader reload failed", "error", err)
		}
	}
	r.ctx.RestoreDefaultTarget()
	return nil
}

func (r *renderer) EndFrame() error {
	if !r.inFrame {
		return errors.New("no open frame")
	}
	r.inFrame = false
	r.frame++
	return r.ctx.CheckError("end frame")
}

func (r *renderer) Render(t pipeline.Technique, frame pipeline.Frame) error {
	if err := r.BeginFrame(); err != nil {
		return err
	}
	renderErr := t.Render(frame)
	endErr := r.EndFrame()
	if err := errors.Join(renderErr, endErr); err != nil {
		r.frameErrors++
		r.lastFrameErr = err
		r.logger.Error("frame failed", "technique", t.Name(), "frame", r.frame, "consecutive", r.frameErrors, "error", err)
		if r.maxFrameErrors > 0 && r.frameErrors >= r.maxFrameErrors {
			return fmt.Errorf("%s: %w: %w", t.Name(), ErrTooManyFrameErrors, err)
		}
		return err
	}
	r.frameErrors = 0
	return nil
}

func (r *renderer) Frames() uint64 {
	return r.frame
}

func (r *renderer) Destroy() {
	r.programs.Destroy()
	if r.watcher != nil {
		if err := r.watcher.Close(); err != nil {
			r.logger.Warn("close shader watcher", "error", err)
		}
		r.watcher = nil
	}
}
