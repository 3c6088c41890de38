// Package material defines the material aggregates pushed to shaders: a texture-mapped Phong
// material and a metallic-roughness PBR material with scalar fallbacks.
package material

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultShininess is the Phong specular exponent used when none is given.
const DefaultShininess float32 = 32

// ErrMissingDiffuse is returned when a Phong material has no diffuse map.
var ErrMissingDiffuse = errors.New("phong material has no diffuse map")

// Phong is a texture-mapped Blinn-Phong material. Diffuse is required; the other maps are
// optional.
type Phong struct {
	Name      string
	Diffuse   *texture.Texture
	Specular  *texture.Texture
	Normal    *texture.Texture
	Emission  *texture.Texture
	Shininess float32
}

// PBR is a metallic-roughness material. When every map is present the maps are sampled,
// otherwise the scalar values are used.
type PBR struct {
	Name           string
	Albedo         *texture.Texture
	Normal         *texture.Texture
	Metallic       *texture.Texture
	Roughness      *texture.Texture
	AO             *texture.Texture
	AlbedoValue    mgl32.Vec3
	MetallicValue  float32
	RoughnessValue float32
	AOValue        float32
}

// NewPhong creates a Phong material around its diffuse map.
//
// Parameters:
//   - diffuse: the diffuse map
//   - opts: material builder options
//
// Returns:
//   - Phong: the material
func NewPhong(diffuse *texture.Texture, opts ...PhongBuilderOption) Phong {
	m := Phong{Diffuse: diffuse, Shininess: DefaultShininess}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// NewPBR creates a PBR material. Without options it is a white dielectric of medium roughness.
func NewPBR(opts ...PBRBuilderOption) PBR {
	m := PBR{AlbedoValue: mgl32.Vec3{1, 1, 1}, RoughnessValue: 0.5, AOValue: 1}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

type slot struct {
	name string
	tex  *texture.Texture
	tag  texture.Tag
}

func checkSlots(material string, slots []slot) error {
	var errs []error
	for _, s := range slots {
		if s.tex == nil {
			continue
		}
		if err := texture.CheckSlot(s.tex, s.tag); err != nil {
			errs = append(errs, fmt.Errorf("material %q slot %s: %w", material, s.name, err))
		}
	}
	return errors.Join(errs...)
}

// Validate checks that every map is a colour texture whose tag fits its slot.
func (m Phong) Validate() error {
	if m.Diffuse == nil {
		return fmt.Errorf("material %q: %w", m.Name, ErrMissingDiffuse)
	}
	return checkSlots(m.Name, []slot{
		{"diffuse_map", m.Diffuse, texture.TagDiffuse},
		{"specular_map", m.Specular, texture.TagSpecular},
		{"normal_map", m.Normal, texture.TagNormal},
		{"emission_map", m.Emission, texture.TagEmission},
	})
}

// Validate checks that every map is a colour texture whose tag fits its slot.
func (m PBR) Validate() error {
	return checkSlots(m.Name, []slot{
		{"albedo_map", m.Albedo, texture.TagPBRAlbedo},
		{"normal_map", m.Normal, texture.TagNormal},
		{"metallic_map", m.Metallic, texture.TagPBRMetallic},
		{"roughness_map", m.Roughness, texture.TagPBRRoughness},
		{"ao_map", m.AO, texture.TagPBRAO},
	})
}

// UseMaps reports whether all five maps are present.
func (m PBR) UseMaps() bool {
	return m.Albedo != nil && m.Normal != nil && m.Metallic != nil && m.Roughness != nil && m.AO != nil
}
