// Package light defines the light aggregates pushed to shaders and the helpers techniques use
// to place them.
package light

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Default attenuation terms, tuned for a range of roughly 50 units.
const (
	DefaultLinear    float32 = 0.09
	DefaultQuadratic float32 = 0.032
)

// DirectionalLight lights every fragment from one direction.
type DirectionalLight struct {
	Direction mgl32.Vec3
	Color     mgl32.Vec3
}

// PointLight radiates from a position with quadratic falloff.
type PointLight struct {
	Position  mgl32.Vec3
	Color     mgl32.Vec3
	Linear    float32
	Quadratic float32
}

// FlashLight is a spot light. CutOff and OuterCutOff are cosines of the inner and outer cone
// half-angles.
type FlashLight struct {
	Position    mgl32.Vec3
	Direction   mgl32.Vec3
	Color       mgl32.Vec3
	CutOff      float32
	OuterCutOff float32
	Linear      float32
	Quadratic   float32
}

// NewPointLight creates a point light with the default attenuation.
//
// Parameters:
//   - position: world-space position
//   - color: RGB colour, may exceed 1 for HDR
//   - opts: light builder options
//
// Returns:
//   - PointLight: the light
func NewPointLight(position, color mgl32.Vec3, opts ...PointLightBuilderOption) PointLight {
	l := PointLight{Position: position, Color: color, Linear: DefaultLinear, Quadratic: DefaultQuadratic}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

// NewFlashLight creates a spot light with cones given in degrees.
//
// Parameters:
//   - position: world-space position
//   - direction: the cone axis, normalised on store
//   - color: RGB colour
//   - innerDeg, outerDeg: cone half-angles in degrees
//
// Returns:
//   - FlashLight: the light
func NewFlashLight(position, direction, color mgl32.Vec3, innerDeg, outerDeg float32) FlashLight {
	return FlashLight{
		Position:    position,
		Direction:   direction.Normalize(),
		Color:       color,
		CutOff:      math32.Cos(common.Radians(innerDeg)),
		OuterCutOff: math32.Cos(common.Radians(outerDeg)),
		Linear:      DefaultLinear,
		Quadratic:   DefaultQuadratic,
	}
}

// Radius returns the distance at which the light's contribution falls below 5/256 of its
// brightest channel, i.e. where it stops being visible in 8-bit output.
func (l PointLight) Radius() float32 {
	brightest := max(l.Color.X(), l.Color.Y(), l.Color.Z())
	if l.Quadratic == 0 {
		if l.Linear == 0 {
			return math32.Inf(1)
		}
		return (256.0/5.0*brightest - 1) / l.Linear
	}
	c := 1 - 256.0/5.0*brightest
	return (-l.Linear + math32.Sqrt(l.Linear*l.Linear-4*l.Quadratic*c)) / (2 * l.Quadratic)
}

// Attenuation returns the falloff factor at distance d.
func (l PointLight) Attenuation(d float32) float32 {
	return 1 / (1 + l.Linear*d + l.Quadratic*d*d)
}

// ViewSpace returns a copy of the light with its position transformed by view.
func (l PointLight) ViewSpace(view mgl32.Mat4) PointLight {
	l.Position = common.TransformPoint(view, l.Position)
	return l
}
