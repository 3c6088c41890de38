package engine_test

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gputest"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTechnique records what the engine asks of it.
type fakeTechnique struct {
	initErr   error
	renderErr error
	inits     int
	frames    []pipeline.Frame
	resized   [2]int
	events    []common.InputEvent
	destroyed int
}

func (f *fakeTechnique) Name() string { return "fake" }

func (f *fakeTechnique) Init(*gpu.RenderContext) error {
	f.inits++
	return f.initErr
}

func (f *fakeTechnique) Resize(w, h int) error {
	f.resized = [2]int{w, h}
	return nil
}

func (f *fakeTechnique) Render(frame pipeline.Frame) error {
	f.frames = append(f.frames, frame)
	return f.renderErr
}

func (f *fakeTechnique) Destroy() { f.destroyed++ }

func (f *fakeTechnique) HandleEvent(ev common.InputEvent) bool {
	if ev.Type == common.InputKeyDown && ev.Key == common.KeyB {
		f.events = append(f.events, ev)
		return true
	}
	return false
}

// fakeWindow runs the message loop in memory.
type fakeWindow struct {
	running  bool
	time     float64
	swaps    int
	closed   bool
	onUpdate func()
	onResize func(int, int)
	onInput  func(common.InputEvent)
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) SetUpdateCallback(cb func()) { w.onUpdate = cb }
func (w *fakeWindow) SetResizeCallback(cb func(int, int)) { w.onResize = cb }
func (w *fakeWindow) SetInputCallback(cb func(common.InputEvent)) { w.onInput = cb }
func (w *fakeWindow) MakeContextCurrent() {}
func (w *fakeWindow) SwapBuffers() { w.swaps++ }
func (w *fakeWindow) SetVSync(bool) {}
func (w *fakeWindow) Time() float64 { return w.time }
func (w *fakeWindow) FramebufferSize() (int, int) { return 640, 480 }
func (w *fakeWindow) IsRunning() bool { return w.running }
func (w *fakeWindow) RequestClose() { w.running = false }
func (w *fakeWindow) Width() int { return 640 }
func (w *fakeWindow) Height() int { return 480 }

func (w *fakeWindow) Close() error {
	w.closed = true
	return nil
}

func (w *fakeWindow) ProcessMessages() {
	for w.running {
		w.time += 0.25
		if w.onUpdate != nil {
			w.onUpdate()
		}
	}
}

func newHeadless(t *testing.T) (*gputest.Recorder, renderer.Renderer) {
	t.Helper()
	rec := gputest.NewRecorder()
	r, err := renderer.NewRenderer(renderer.BackendTypeHeadless, 640, 480, renderer.WithDriver(rec))
	require.NoError(t, err)
	return rec, r
}

// steppingClock advances by step on every read.
func steppingClock(step float64) func() float64 {
	now := -step
	return func() float64 {
		now += step
		return now
	}
}

func TestNewEngine_RequiresRendererAndTechnique(t *testing.T) {
	_, err := engine.NewEngine(engine.WithTechnique(&fakeTechnique{}))
	assert.ErrorContains(t, err, "no renderer")

	_, r := newHeadless(t)
	defer r.Destroy()
	_, err = engine.NewEngine(engine.WithRenderer(r))
	assert.ErrorContains(t, err, "no technique")
}

func TestNewEngine_InitFailure(t *testing.T) {
	_, r := newHeadless(t)
	defer r.Destroy()
	boom := errors.New("boom")

	_, err := engine.NewEngine(engine.WithRenderer(r), engine.WithTechnique(&fakeTechnique{initErr: boom}))
	assert.ErrorIs(t, err, boom)
}

func TestRun_HeadlessStopsAfterMaxFrames(t *testing.T) {
	_, r := newHeadless(t)
	tech := &fakeTechnique{}
	e, err := engine.NewEngine(
		engine.WithRenderer(r),
		engine.WithTechnique(tech),
		engine.WithMaxFrames(3),
		engine.WithClock(steppingClock(0.5)),
	)
	require.NoError(t, err)

	require.NoError(t, e.Run())
	assert.Equal(t, 1, tech.inits)
	assert.Equal(t, uint64(3), r.Frames())
	require.Len(t, tech.frames, 3)
	for i, f := range tech.frames {
		assert.Same(t, e.Camera(), f.Camera)
		assert.InDelta(t, 0.5, f.Delta, 1e-6)
		assert.InDelta(t, 0.5*float32(i+1), f.Time, 1e-6)
	}

	e.Destroy()
	e.Destroy()
	assert.Equal(t, 1, tech.destroyed)
}

func TestRun_WindowLoop(t *testing.T) {
	_, r := newHeadless(t)
	win := &fakeWindow{running: true}
	tech := &fakeTechnique{}
	e, err := engine.NewEngine(
		engine.WithRenderer(r),
		engine.WithTechnique(tech),
		engine.WithWindow(win),
		engine.WithMaxFrames(4),
	)
	require.NoError(t, err)

	require.NoError(t, e.Run())
	assert.Equal(t, 4, win.swaps)
	assert.False(t, win.running)
	assert.InDelta(t, 0.25, tech.frames[1].Delta, 1e-6)

	e.Destroy()
	assert.True(t, win.closed)
}

func TestRun_QuitFromUpdateCallback(t *testing.T) {
	_, r := newHeadless(t)
	tech := &fakeTechnique{}
	e, err := engine.NewEngine(engine.WithRenderer(r), engine.WithTechnique(tech))
	require.NoError(t, err)
	defer e.Destroy()

	calls := 0
	e.SetUpdateCallback(func(float32) {
		calls++
		if calls == 2 {
			e.Quit()
			e.Quit()
		}
	})
	require.NoError(t, e.Run())
	assert.Len(t, tech.frames, 2)
}

func TestRun_StopsOnRepeatedFrameErrors(t *testing.T) {
	rec := gputest.NewRecorder()
	r, err := renderer.NewRenderer(renderer.BackendTypeHeadless, 640, 480,
		renderer.WithDriver(rec), renderer.WithMaxFrameErrors(2))
	require.NoError(t, err)
	boom := errors.New("boom")
	tech := &fakeTechnique{renderErr: boom}

	e, err := engine.NewEngine(engine.WithRenderer(r), engine.WithTechnique(tech))
	require.NoError(t, err)
	defer e.Destroy()

	err = e.Run()
	assert.ErrorIs(t, err, renderer.ErrTooManyFrameErrors)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, tech.frames, 2)
}

func TestRun_RecoversFromPanic(t *testing.T) {
	_, r := newHeadless(t)
	e, err := engine.NewEngine(engine.WithRenderer(r), engine.WithTechnique(&fakeTechnique{}))
	require.NoError(t, err)
	defer e.Destroy()

	e.SetUpdateCallback(func(float32) { panic("bad frame") })
	assert.ErrorContains(t, e.Run(), "bad frame")
}

func TestHandleEvent_TechniqueBeforeCamera(t *testing.T) {
	_, r := newHeadless(t)
	win := &fakeWindow{}
	tech := &fakeTechnique{}
	e, err := engine.NewEngine(engine.WithRenderer(r), engine.WithTechnique(tech), engine.WithWindow(win))
	require.NoError(t, err)
	defer e.Destroy()

	win.onInput(common.KeyDown(common.KeyB))
	assert.Len(t, tech.events, 1)

	assert.True(t, e.HandleEvent(common.KeyDown(common.KeyW)))
	assert.Len(t, tech.events, 1)
	assert.False(t, e.HandleEvent(common.KeyDown(common.KeyQ)))
}

func TestResize_PropagatesToEveryPart(t *testing.T) {
	rec, r := newHeadless(t)
	win := &fakeWindow{}
	tech := &fakeTechnique{}
	e, err := engine.NewEngine(engine.WithRenderer(r), engine.WithTechnique(tech), engine.WithWindow(win))
	require.NoError(t, err)
	defer e.Destroy()

	win.onResize(1000, 500)
	assert.Equal(t, [2]int{1000, 500}, tech.resized)
	assert.InDelta(t, 2.0, e.Camera().Aspect(), 1e-6)
	assert.Equal(t, [4]int32{0, 0, 1000, 500}, rec.CurrentViewport())

	assert.Error(t, e.Resize(0, 10))
}

func TestRun_RealTechniqueHeadless(t *testing.T) {
	_, r := newHeadless(t)
	tech, err := pipeline.New("bloom", pipeline.Assets{}, r.Programs())
	require.NoError(t, err)

	e, err := engine.NewEngine(engine.WithRenderer(r), engine.WithTechnique(tech), engine.WithMaxFrames(2))
	require.NoError(t, err)
	defer e.Destroy()

	require.NoError(t, e.Run())
	assert.Equal(t, uint64(2), r.Frames())
}
