package light_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestPointLightRadius(t *testing.T) {
	l := light.NewPointLight(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, light.WithAttenuation(0.7, 1.8))

	r := l.Radius()

	assert.Greater(t, r, float32(0))
	assert.InDelta(t, 5.0/256.0, l.Attenuation(r), 1e-4)
}

func TestFlashLightCones(t *testing.T) {
	l := light.NewFlashLight(mgl32.Vec3{}, mgl32.Vec3{0, 0, -2}, mgl32.Vec3{1, 1, 1}, 12.5, 17.5)

	assert.InDelta(t, 0.976296, l.CutOff, 1e-5)
	assert.InDelta(t, 0.953717, l.OuterCutOff, 1e-5)
	assert.InDelta(t, 1, l.Direction.Len(), 1e-6)
	assert.Greater(t, l.CutOff, l.OuterCutOff)
}

func TestCullPointLights(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(45), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	frustum := common.ExtractFrustum(proj.Mul4(view))
	lights := []light.PointLight{
		light.NewPointLight(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}, light.WithAttenuation(0.7, 1.8)),
		light.NewPointLight(mgl32.Vec3{0, 0, 50}, mgl32.Vec3{1, 1, 1}, light.WithAttenuation(0.7, 1.8)),
		light.NewPointLight(mgl32.Vec3{2, 0, -10}, mgl32.Vec3{1, 1, 1}, light.WithAttenuation(0.7, 1.8)),
	}

	assert.Equal(t, []int{0, 2}, light.CullPointLights(lights, frustum))
}

func TestShadowCasterLightSpace(t *testing.T) {
	caster := light.DefaultShadowCaster()
	m := caster.LightSpaceMatrix()

	// The light target maps to the centre of the light's clip space.
	p := m.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, p.X(), 1e-5)
	assert.InDelta(t, 0, p.Y(), 1e-5)
	assert.Less(t, p.Z(), float32(1))
	assert.Greater(t, p.Z(), float32(-1))
}
