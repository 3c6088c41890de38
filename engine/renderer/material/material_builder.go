package material

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// PhongBuilderOption is a function that configures a Phong material during construction.
type PhongBuilderOption func(*Phong)

// PBRBuilderOption is a function that configures a PBR material during construction.
type PBRBuilderOption func(*PBR)

// WithName sets the material name used in errors.
//
// Parameters:
//   - name: the material name
//
// Returns:
//   - PhongBuilderOption: a function that applies the name to a material
func WithName(name string) PhongBuilderOption {
	return func(m *Phong) {
		m.Name = name
	}
}

// WithSpecularMap sets the specular map.
func WithSpecularMap(tex *texture.Texture) PhongBuilderOption {
	return func(m *Phong) {
		m.Specular = tex
	}
}

// WithNormalMap sets the tangent-space normal map.
func WithNormalMap(tex *texture.Texture) PhongBuilderOption {
	return func(m *Phong) {
		m.Normal = tex
	}
}

// WithEmissionMap sets the emission map.
func WithEmissionMap(tex *texture.Texture) PhongBuilderOption {
	return func(m *Phong) {
		m.Emission = tex
	}
}

// WithShininess sets the specular exponent.
//
// Parameters:
//   - shininess: the exponent, typically a power of two between 2 and 256
//
// Returns:
//   - PhongBuilderOption: a function that applies the exponent to a material
func WithShininess(shininess float32) PhongBuilderOption {
	return func(m *Phong) {
		m.Shininess = shininess
	}
}

// WithPBRName sets the material name used in errors.
func WithPBRName(name string) PBRBuilderOption {
	return func(m *PBR) {
		m.Name = name
	}
}

// WithMaps sets all five PBR maps.
//
// Parameters:
//   - albedo, normal, metallic, roughness, ao: the maps
//
// Returns:
//   - PBRBuilderOption: a function that applies the maps to a material
func WithMaps(albedo, normal, metallic, roughness, ao *texture.Texture) PBRBuilderOption {
	return func(m *PBR) {
		m.Albedo, m.Normal, m.Metallic, m.Roughness, m.AO = albedo, normal, metallic, roughness, ao
	}
}

// WithScalars sets the values used when maps are absent.
func WithScalars(albedo mgl32.Vec3, metallic, roughness, ao float32) PBRBuilderOption {
	return func(m *PBR) {
		m.AlbedoValue, m.MetallicValue, m.RoughnessValue, m.AOValue = albedo, metallic, roughness, ao
	}
}
