package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/loader"
	"github.com/Carmen-Shannon/oxy-gl/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

// FromConfig builds the window, renderer, assets, technique and camera described by cfg and
// returns an engine ready to Run. The headless backend skips the window.
//
// Parameters:
//   - cfg: a validated configuration
//   - logger: the logger shared by every component
//
// Returns:
//   - Engine: the engine; the caller must Destroy it
//   - error: the first setup failure; everything created so far is released
func FromConfig(cfg Config, logger *slog.Logger) (eng Engine, err error) {
	backend, err := renderer.ParseBackendType(cfg.Renderer.Backend)
	if err != nil {
		return nil, err
	}

	var cleanup []func()
	defer func() {
		if err != nil {
			for i := len(cleanup) - 1; i >= 0; i-- {
				cleanup[i]()
			}
		}
	}()

	width, height := cfg.Window.Width, cfg.Window.Height
	var win window.Window
	if backend != renderer.BackendTypeHeadless {
		win, err = window.TryNewWindow(
			window.WithTitle(cfg.Window.Title),
			window.WithSize(width, height),
			window.WithVSync(cfg.Window.VSync),
			window.WithSamples(cfg.Window.Samples),
			window.WithHidden(cfg.Window.Hidden),
		)
		if err != nil {
			return nil, err
		}
		cleanup = append(cleanup, func() { _ = win.Close() })
		width, height = win.FramebufferSize()
	}

	r, err := renderer.NewRenderer(backend, width, height,
		renderer.WithLogger(logger),
		renderer.WithShaderDir(cfg.Renderer.ShaderDir),
		renderer.WithHotReload(cfg.Renderer.HotReload),
		renderer.WithMaxFrameErrors(cfg.Renderer.MaxFrameErrors),
	)
	if err != nil {
		return nil, err
	}
	cleanup = append(cleanup, r.Destroy)

	assets, err := LoadAssets(cfg.Assets, logger)
	if err != nil {
		return nil, err
	}

	tech, err := pipeline.New(cfg.Technique, assets, r.Programs())
	if err != nil {
		return nil, err
	}

	cam := camera.NewCamera(
		camera.WithPosition(mgl32.Vec3(cfg.Camera.Position)),
		camera.WithOrientation(cfg.Camera.Yaw, cfg.Camera.Pitch),
		camera.WithFov(cfg.Camera.Fov),
		camera.WithClip(cfg.Camera.Near, cfg.Camera.Far),
		camera.WithController(camera.NewCameraController(camera.WithMoveSpeed(cfg.Camera.MoveSpeed))),
	)

	opts := []EngineBuilderOption{
		WithRenderer(r),
		WithTechnique(tech),
		WithCamera(cam),
		WithLogger(logger),
		WithMaxFrames(cfg.Frames),
		WithRenderFrameLimit(cfg.FrameLimit),
		WithProfiling(cfg.Profiler.Enabled),
		WithProfiler(profiler.NewProfiler(
			profiler.WithLogger(logger),
			profiler.WithInterval(cfg.Profiler.Interval),
			profiler.WithStats(r.Context()),
		)),
	}
	if win != nil {
		opts = append(opts, WithWindow(win))
	}
	return NewEngine(opts...)
}

// LoadAssets decodes the configured images on the loader's worker pool and parses the model.
// Empty paths leave the matching field nil so techniques fall back to built-in stand-ins.
//
// Parameters:
//   - cfg: the asset paths and loader settings
//   - logger: the logger for decode records
//
// Returns:
//   - pipeline.Assets: the decoded assets
//   - error: the joined errors of every asset that failed
func LoadAssets(cfg AssetsConfig, logger *slog.Logger) (pipeline.Assets, error) {
	opts := []loader.LoaderBuilderOption{loader.WithLogger(logger)}
	if cfg.Workers > 0 {
		opts = append(opts, loader.WithWorkers(cfg.Workers))
	}
	if cfg.Progress {
		opts = append(opts, loader.WithProgress(os.Stderr))
	}
	l := loader.NewLoader(opts...)
	defer l.Close()

	var paths []string
	for _, p := range []string{cfg.Diffuse, cfg.Container, cfg.Environment} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	images, imgErr := l.LoadImages(paths...)

	var assets pipeline.Assets
	if cfg.Diffuse != "" {
		assets.Diffuse = images[cfg.Diffuse]
	}
	if cfg.Container != "" {
		assets.Container = images[cfg.Container]
	}
	if cfg.Environment != "" {
		assets.Environment = images[cfg.Environment]
		if assets.Environment != nil && !assets.Environment.HDR {
			imgErr = errors.Join(imgErr, fmt.Errorf("environment %s is not an HDR image", cfg.Environment))
		}
	}

	var modelErr error
	if cfg.Model != "" {
		assets.Model, modelErr = l.LoadModel(cfg.Model)
	}
	if err := errors.Join(imgErr, modelErr); err != nil {
		return pipeline.Assets{}, fmt.Errorf("load assets: %w", err)
	}
	return assets, nil
}
