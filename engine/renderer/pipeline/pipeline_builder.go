package pipeline

import "github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithDepthTestEnabled sets whether depth testing is enabled for this pipeline.
//
// Parameters:
//   - enabled: a boolean indicating whether depth testing should be enabled
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth test enabled state for this pipeline
func WithDepthTestEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthTestEnabled = enabled
	}
}

// WithDepthWriteEnabled sets whether depth writing is enabled for this pipeline.
//
// Parameters:
//   - enabled: a boolean indicating whether depth writing should be enabled
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth write enabled state for this pipeline
func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthWriteEnabled = enabled
	}
}

// WithDepthFunc sets the depth comparison function. Skyboxes drawn at the far plane use
// gpu.FuncLequal.
//
// Parameters:
//   - fn: the comparison function
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth function for this pipeline
func WithDepthFunc(fn gpu.Enum) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthFunc = fn
	}
}

// WithCullMode enables face culling of the given face (gpu.Back or gpu.Front).
//
// Parameters:
//   - mode: the face to cull
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode for this pipeline
func WithCullMode(mode gpu.Enum) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullEnabled = true
		p.cullMode = mode
	}
}

// WithBlendEnabled sets whether blending is enabled for this pipeline.
//
// Parameters:
//   - enabled: a boolean indicating whether blending should be enabled
//
// Returns:
//   - PipelineBuilderOption: a function that sets the blend enabled state for this pipeline
func WithBlendEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = enabled
	}
}

// WithBlendFunc enables blending with the given factors.
func WithBlendFunc(src, dst gpu.Enum) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = true
		p.blendSrc, p.blendDst = src, dst
	}
}

// WithTopology sets the primitive topology for this pipeline.
//
// Parameters:
//   - topology: the primitive topology (gpu.Triangles, gpu.TriangleStrip, ...)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the primitive topology for this pipeline
func WithTopology(topology gpu.Enum) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}

// WithSeamlessCubemap turns on filtering across cubemap face edges while the pipeline is applied.
func WithSeamlessCubemap() PipelineBuilderOption {
	return func(p *pipeline) {
		p.seamlessCubemap = true
	}
}
