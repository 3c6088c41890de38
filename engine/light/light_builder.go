package light

// PointLightBuilderOption is a function that configures a PointLight during construction.
type PointLightBuilderOption func(*PointLight)

// WithAttenuation sets the linear and quadratic attenuation terms.
//
// Parameters:
//   - linear: the linear term
//   - quadratic: the quadratic term
//
// Returns:
//   - PointLightBuilderOption: a function that applies the attenuation to a light
func WithAttenuation(linear, quadratic float32) PointLightBuilderOption {
	return func(l *PointLight) {
		l.Linear = linear
		l.Quadratic = quadratic
	}
}
