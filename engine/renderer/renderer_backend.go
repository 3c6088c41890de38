package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gldriver"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gputest"
)

// RendererBackendType identifies the driver implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeOpenGL issues calls to the OpenGL context current on the calling thread.
	BackendTypeOpenGL RendererBackendType = iota

	// BackendTypeHeadless simulates the driver in memory. Shaders are still checked, objects
	// are still tracked, nothing is drawn. It needs no window.
	BackendTypeHeadless
)

func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeOpenGL:
		return "opengl"
	case BackendTypeHeadless:
		return "headless"
	}
	return fmt.Sprintf("backend(%d)", int(t))
}

// ParseBackendType maps a configuration name to a backend type.
//
// Parameters:
//   - name: "opengl" or "headless"
//
// Returns:
//   - RendererBackendType: the backend type
//   - error: an error for an unknown name
func ParseBackendType(name string) (RendererBackendType, error) {
	switch name {
	case "", "opengl", "gl":
		return BackendTypeOpenGL, nil
	case "headless":
		return BackendTypeHeadless, nil
	}
	return 0, fmt.Errorf("unknown backend %q", name)
}

// newDriver creates the driver for backendType. The OpenGL backend requires a current context.
func newDriver(backendType RendererBackendType) (gpu.Driver, error) {
	switch backendType {
	case BackendTypeOpenGL:
		d, err := gldriver.New()
		if err != nil {
			return nil, err
		}
		return d, nil
	case BackendTypeHeadless:
		return gputest.NewRecorder(), nil
	}
	return nil, fmt.Errorf("unsupported backend %s", backendType)
}
