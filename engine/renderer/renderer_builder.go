package renderer

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithLogger sets the structured logger shared by the renderer and its render context.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(logger *slog.Logger) RendererBuilderOption {
	return func(r *renderer) {
		r.logger = logger
	}
}

// WithShaderDir loads shader sources from dir instead of the copies built into the binary.
//
// Parameters:
//   - dir: a directory holding the shader files
//
// Returns:
//   - RendererBuilderOption: a function that applies the shader directory option to a renderer
func WithShaderDir(dir string) RendererBuilderOption {
	return func(r *renderer) {
		r.shaderDir = dir
	}
}

// WithHotReload watches the shader directory and relinks changed programs at the start of the
// next frame. It has no effect without WithShaderDir.
func WithHotReload(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.hotReload = enabled
	}
}

// WithMaxFrameErrors sets how many consecutive failed frames Render tolerates. Zero never gives up.
func WithMaxFrameErrors(n int) RendererBuilderOption {
	return func(r *renderer) {
		r.maxFrameErrors = n
	}
}

// WithDriver uses d instead of creating the driver for the backend type.
//
// Parameters:
//   - d: the driver to issue calls through
//
// Returns:
//   - RendererBuilderOption: a function that applies the driver option to a renderer
func WithDriver(d gpu.Driver) RendererBuilderOption {
	return func(r *renderer) {
		r.driver = d
	}
}
