package light

import _ "embed"

// DirectionalLightSource is the GLSL definition of the DirectionalLight struct. Field names match
// the uniform names the shader binder writes.
//
//go:embed assets/directional_light.glsl
var DirectionalLightSource string

// PointLightSource is the GLSL definition of the PointLight struct.
//
//go:embed assets/point_light.glsl
var PointLightSource string

// FlashLightSource is the GLSL definition of the FlashLight struct.
//
//go:embed assets/flash_light.glsl
var FlashLightSource string
