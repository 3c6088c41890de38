package window

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
)

// Window provides the OpenGL context, the swap chain and input events. It wraps GLFW with an
// OpenGL 4.1 core profile context.
//
// Every method must be called from the thread that created the window.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetInputCallback sets the function receiving key, mouse and scroll events.
	//
	// Parameters:
	//   - callback: function receiving each event (or nil to disable)
	SetInputCallback(callback func(ev common.InputEvent))

	// MakeContextCurrent binds the window's OpenGL context to the calling thread.
	MakeContextCurrent()

	// SwapBuffers presents the back buffer.
	SwapBuffers()

	// SetVSync sets whether SwapBuffers waits for the vertical blank.
	SetVSync(enabled bool)

	// Time returns the number of seconds since the window was created.
	Time() float64

	// FramebufferSize returns the backbuffer size in pixels.
	FramebufferSize() (width, height int)

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// RequestClose asks the message loop to stop after the current iteration.
	RequestClose()

	// Close destroys the window and releases GLFW.
	//
	// Returns:
	//   - error: error if the window was never created
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls the update callback each iteration.
	ProcessMessages()

	// Width returns the current backbuffer width in pixels.
	Width() int

	// Height returns the current backbuffer height in pixels.
	Height() int
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title string

	// Size limits applied to interactive resizing, zero for unbounded.
	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int

	// width and height hold the backbuffer size in pixels once the window exists.
	width  int
	height int

	vsync   bool
	samples int
	hidden  bool

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onUpdate func()
	onResize func(width, height int)
	onInput  func(ev common.InputEvent)
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a window with a current OpenGL 4.1 core context.
// Applies default values first, then each option in order. It panics when GLFW or the context
// cannot be created, since nothing can run without them.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the window
func NewWindow(options ...WindowBuilderOption) Window {
	w, err := newWindow(options...)
	if err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

// TryNewWindow is NewWindow returning the creation error instead of panicking.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the window, nil on error
//   - error: an error if GLFW or the OpenGL context could not be created
func TryNewWindow(options ...WindowBuilderOption) (Window, error) {
	w, err := newWindow(options...)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func newWindow(options ...WindowBuilderOption) (*engineWindow, error) {
	w := &engineWindow{
		title:     "oxy-gl",
		minWidth:  320,
		minHeight: 240,
		width:     800,
		height:    600,
		vsync:     true,
	}
	for _, opt := range options {
		opt(w)
	}
	if w.width <= 0 || w.height <= 0 {
		return nil, fmt.Errorf("invalid window size %dx%d", w.width, w.height)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetInputCallback(callback func(ev common.InputEvent)) {
	w.onInput = callback
}

// emit forwards ev to the input callback.
func (w *engineWindow) emit(ev common.InputEvent) {
	if w.onInput != nil {
		w.onInput(ev)
	}
}

func (w *engineWindow) MakeContextCurrent() {
	platformMakeContextCurrent(w)
}

func (w *engineWindow) SwapBuffers() {
	platformSwapBuffers(w)
}

func (w *engineWindow) SetVSync(enabled bool) {
	w.vsync = enabled
	platformSetVSync(w)
}

func (w *engineWindow) Time() float64 {
	return platformTime()
}

func (w *engineWindow) FramebufferSize() (int, int) {
	return w.width, w.height
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
