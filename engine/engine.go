package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
)

// engine implements the Engine interface.
// Everything runs on the thread that owns the GL context.
type engine struct {
	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window    window.Window
	renderer  renderer.Renderer
	technique pipeline.Technique
	camera    camera.Camera
	logger    *slog.Logger

	profiler         *profiler.Profiler
	profilingEnabled bool

	updateCallback func(deltaTime float32)

	clock     func() float64
	startTime float64
	lastTime  float64

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	maxFrames        uint64
	err              error
	destroyed        bool
}

// Engine drives one technique: it polls the window, moves the camera, renders a frame through
// the renderer and presents it, until the window closes, Quit is called, the frame limit is
// reached or the renderer gives up after consecutive frame failures.
type Engine interface {
	// Window returns the window, or nil for a headless engine.
	Window() window.Window

	// Renderer returns the renderer frames are drawn through.
	Renderer() renderer.Renderer

	// Technique returns the running technique.
	Technique() pipeline.Technique

	// Camera returns the camera passed to every frame.
	Camera() camera.Camera

	// EnableProfiler enables the periodic profile record.
	EnableProfiler()

	// DisableProfiler disables the periodic profile record.
	DisableProfiler()

	// SetUpdateCallback registers the function called each frame before rendering.
	//
	// Parameters:
	//   - callback: function to call each frame, receiving the delta time in seconds
	SetUpdateCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// HandleEvent routes ev to the technique first and to the camera when the technique does
	// not use it.
	//
	// Parameters:
	//   - ev: the input event
	//
	// Returns:
	//   - bool: true if the technique or the camera consumed the event
	HandleEvent(ev common.InputEvent) bool

	// Resize resizes the default framebuffer, the camera aspect and the technique's targets.
	Resize(width, height int) error

	// Run blocks until the engine stops.
	//
	// Returns:
	//   - error: the error that stopped the engine, or nil for a normal shutdown
	Run() error

	// Quit asks the loop to stop after the current frame. It is safe to call from any goroutine
	// and more than once.
	Quit()

	// Destroy releases the technique, the renderer and the window.
	Destroy()
}

var _ Engine = &engine{}

// NewEngine creates an Engine and initializes its technique on the renderer's context.
// WithRenderer and WithTechnique are required.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: an error if a required option is missing or the technique fails to initialize
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		quitChannel: make(chan struct{}),
		logger:      slog.Default(),
	}
	for _, opt := range options {
		opt(e)
	}

	if e.renderer == nil {
		return nil, errors.New("engine: no renderer")
	}
	if e.technique == nil {
		return nil, errors.New("engine: no technique")
	}

	width, height := e.renderer.Context().DefaultSize()
	if e.camera == nil {
		e.camera = camera.NewCamera()
	}
	if height > 0 {
		e.camera.SetAspect(float32(width) / float32(height))
	}
	if e.clock == nil {
		if e.window != nil {
			e.clock = e.window.Time
		} else {
			start := time.Now()
			e.clock = func() float64 { return time.Since(start).Seconds() }
		}
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger), profiler.WithStats(e.renderer.Context()))
	}

	if err := e.technique.Init(e.renderer.Context()); err != nil {
		return nil, err
	}

	if e.window != nil {
		e.window.SetInputCallback(func(ev common.InputEvent) {
			e.HandleEvent(ev)
		})
		e.window.SetResizeCallback(func(width, height int) {
			if err := e.Resize(width, height); err != nil {
				e.logger.Error("resize failed", "width", width, "height", height, "error", err)
			}
		})
	}

	e.logger.Info("engine ready", "technique", e.technique.Name(), "renderer", e.renderer.Version(),
		"width", width, "height", height, "headless", e.window == nil)
	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Technique() pipeline.Technique {
	return e.technique
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) HandleEvent(ev common.InputEvent) bool {
	if h, ok := e.technique.(pipeline.InputHandler); ok && h.HandleEvent(ev) {
		return true
	}
	return e.camera.HandleEvent(ev)
}

func (e *engine) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid size %dx%d", width, height)
	}
	e.renderer.Resize(width, height)
	e.camera.SetAspect(float32(width) / float32(height))
	return e.technique.Resize(width, height)
}

func (e *engine) Run() error {
	e.startTime = e.clock()
	e.lastTime = e.startTime

	if e.window == nil {
		for e.frame() {
		}
		return e.err
	}

	e.window.SetUpdateCallback(func() {
		if !e.frame() {
			e.window.RequestClose()
		}
	})
	e.window.ProcessMessages()
	return e.err
}

// frame runs one iteration of the loop and reports whether the loop continues.
// Recovers from panics to avoid crashing the process and stops the loop on recovery.
func (e *engine) frame() (more bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("frame panicked", "panic", r)
			e.err = fmt.Errorf("frame panicked: %v", r)
			more = false
		}
	}()

	select {
	case <-e.quitChannel:
		return false
	default:
	}

	frameStart := time.Now()
	now := e.clock()
	dt := float32(now - e.lastTime)
	e.lastTime = now

	e.camera.Update(dt)
	if e.updateCallback != nil {
		e.updateCallback(dt)
	}

	err := e.renderer.Render(e.technique, pipeline.Frame{
		Camera: e.camera,
		Time:   float32(now - e.startTime),
		Delta:  dt,
	})
	if errors.Is(err, renderer.ErrTooManyFrameErrors) {
		e.err = err
		return false
	}

	if e.window != nil {
		e.window.SwapBuffers()
	}
	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}
	if e.maxFrames > 0 && e.renderer.Frames() >= e.maxFrames {
		return false
	}

	// Frame rate limiting
	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(frameStart); remaining > 0 {
			time.Sleep(remaining)
		}
	}
	return true
}

// Quit signals the loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetUpdateCallback registers the function called each frame.
func (e *engine) SetUpdateCallback(callback func(deltaTime float32)) {
	e.updateCallback = callback
}

// SetRenderFrameLimit sets an optional frame rate cap.
// Pass 0 to uncap the loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true
	e.technique.Destroy()
	e.renderer.Destroy()
	if e.window != nil {
		if err := e.window.Close(); err != nil {
			e.logger.Warn("close window", "error", err)
		}
	}
	e.logger.Info("engine stopped", "frames", e.renderer.Frames())
}
