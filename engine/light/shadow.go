package light

import "github.com/go-gl/mathgl/mgl32"

// ShadowMapResolution is the width and height in texels of the shadow depth texture.
const ShadowMapResolution = 1024

// Defaults for the directional shadow caster.
const (
	DefaultShadowHalfExtent float32 = 10
	DefaultShadowNear       float32 = 1
	DefaultShadowFar        float32 = 7.5
)

// DefaultShadowLightPosition is where the shadow-casting light sits, looking at the origin.
var DefaultShadowLightPosition = mgl32.Vec3{-2, 4, -1}

// ShadowCaster describes the orthographic light frustum a shadow map is rendered from.
type ShadowCaster struct {
	Position   mgl32.Vec3
	Target     mgl32.Vec3
	HalfExtent float32
	Near, Far  float32
}

// DefaultShadowCaster returns the caster used by the shadow technique.
func DefaultShadowCaster() ShadowCaster {
	return ShadowCaster{
		Position:   DefaultShadowLightPosition,
		HalfExtent: DefaultShadowHalfExtent,
		Near:       DefaultShadowNear,
		Far:        DefaultShadowFar,
	}
}

// LightSpaceMatrix returns projection * view for rendering from the light.
func (s ShadowCaster) LightSpaceMatrix() mgl32.Mat4 {
	h := s.HalfExtent
	projection := mgl32.Ortho(-h, h, -h, h, s.Near, s.Far)
	view := mgl32.LookAtV(s.Position, s.Target, mgl32.Vec3{0, 1, 0})
	return projection.Mul4(view)
}

// Direction returns the normalised direction the light travels.
func (s ShadowCaster) Direction() mgl32.Vec3 {
	return s.Target.Sub(s.Position).Normalize()
}
