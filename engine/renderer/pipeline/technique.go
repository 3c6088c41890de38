package pipeline

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
)

var (
	// ErrNotInitialized is returned by Render and Resize before Init succeeded.
	ErrNotInitialized = errors.New("technique is not initialized")

	// ErrNoCamera is returned by Render for a frame without a camera.
	ErrNoCamera = errors.New("frame has no camera")
)

// Frame carries the per-frame inputs of a technique.
type Frame struct {
	// Camera provides the view and projection.
	Camera camera.Camera

	// Time is the number of seconds since the engine started.
	Time float32

	// Delta is the number of seconds since the previous frame.
	Delta float32
}

// Technique is a multi-pass rendering algorithm. Init creates every GPU resource the technique
// needs and either succeeds completely or releases everything it created. Render runs a fixed
// sequence of passes and stops at the first failing one.
type Technique interface {
	// Name returns the registry name of the technique.
	Name() string

	// Init creates programs, targets and geometry.
	//
	// Parameters:
	//   - ctx: the render context
	//
	// Returns:
	//   - error: the first setup failure; nothing created is left alive
	Init(ctx *gpu.RenderContext) error

	// Resize reallocates the screen-sized targets.
	Resize(width, height int) error

	// Render draws one frame.
	Render(frame Frame) error

	// Destroy releases everything Init created. It is safe to call more than once.
	Destroy()
}

// InputHandler is implemented by techniques with runtime toggles.
type InputHandler interface {
	// HandleEvent consumes ev and reports whether it was used.
	HandleEvent(ev common.InputEvent) bool
}

// destroyer is any owner of GPU objects.
type destroyer interface {
	Destroy()
}

// base carries what every technique shares: the context, the objects it owns and the program
// cache it builds through.
type base struct {
	name     string
	ctx      *gpu.RenderContext
	programs *ProgramCache
	ownCache bool
	owned    []destroyer
	ready    bool
	width    int
	height   int
}

// begin starts an Init. A technique can be initialized again after Destroy.
func (b *base) begin(ctx *gpu.RenderContext) {
	b.release()
	b.ctx = ctx
	b.width, b.height = ctx.DefaultSize()
	if b.programs == nil || b.ownCache {
		b.programs = NewProgramCache(ctx)
		b.ownCache = true
	}
}

// own records d for release in reverse creation order.
func (b *base) own(d destroyer) {
	b.owned = append(b.owned, d)
}

// fail releases everything created during a failed Init and wraps err with the technique name.
func (b *base) fail(err error) error {
	b.release()
	b.ctx.Logger().Error("technique setup failed", "technique", b.name, "error", err)
	return fmt.Errorf("init %s: %w", b.name, err)
}

// done marks a successful Init.
func (b *base) done() error {
	b.ready = true
	b.ctx.Logger().Info("technique initialized", "technique", b.name, "width", b.width, "height", b.height)
	return nil
}

func (b *base) release() {
	for _, d := range slices.Backward(b.owned) {
		d.Destroy()
	}
	b.owned = nil
	if b.ownCache && b.programs != nil {
		b.programs.Destroy()
	}
	b.ready = false
}

// check reports ErrNotInitialized before a successful Init.
func (b *base) check() error {
	if !b.ready {
		return fmt.Errorf("%s: %w", b.name, ErrNotInitialized)
	}
	return nil
}

// beginFrame validates the technique state and the frame before any pass runs.
func (b *base) beginFrame(frame Frame) error {
	if err := b.check(); err != nil {
		return err
	}
	if frame.Camera == nil {
		return fmt.Errorf("%s: %w", b.name, ErrNoCamera)
	}
	return nil
}

func (b *base) Name() string {
	return b.name
}

func (b *base) Destroy() {
	b.release()
}

// Constructor creates a technique from decoded assets.
type Constructor func(assets Assets, programs *ProgramCache) Technique

var registry = map[string]Constructor{
	"shadow": func(a Assets, pc *ProgramCache) Technique {
		return NewShadow(WithShadowDiffuse(a.Diffuse), WithShadowPrograms(pc))
	},
	"deferred": func(a Assets, pc *ProgramCache) Technique {
		return NewDeferred(WithDeferredModel(a.Model), WithDeferredPrograms(pc))
	},
	"ssao": func(a Assets, pc *ProgramCache) Technique {
		return NewSSAO(WithSSAOModel(a.Model), WithSSAOPrograms(pc))
	},
	"bloom": func(a Assets, pc *ProgramCache) Technique {
		return NewBloom(WithBloomTextures(a.Diffuse, a.Container), WithBloomPrograms(pc))
	},
	"ibl": func(a Assets, pc *ProgramCache) Technique {
		return NewIBL(WithEnvironment(a.Environment), WithIBLPrograms(pc))
	},
	"pbr": func(a Assets, pc *ProgramCache) Technique {
		return NewPBR(WithPBREnvironment(a.Environment), WithPBRPrograms(pc))
	},
	"phong": func(a Assets, pc *ProgramCache) Technique {
		return NewPhong(WithPhongDiffuse(a.Container), WithPhongPrograms(pc))
	},
}

// Names returns the registered technique names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New creates the named technique.
//
// Parameters:
//   - name: a name from Names
//   - assets: decoded images and models, missing entries fall back to procedural stand-ins
//   - programs: a shared program cache, or nil for a private one
//
// Returns:
//   - Technique: the uninitialized technique
//   - error: an error for an unknown name
func New(name string, assets Assets, programs *ProgramCache) (Technique, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown technique %q (known: %v)", name, Names())
	}
	return ctor(assets, programs), nil
}
