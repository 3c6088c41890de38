package shader

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
)

// SetDirectionalLight writes a DirectionalLight struct uniform.
func (p *Program) SetDirectionalLight(prefix string, l light.DirectionalLight) error {
	return errors.Join(
		p.SetVec3(prefix+".direction", l.Direction),
		p.SetVec3(prefix+".color", l.Color),
	)
}

// SetPointLight writes a PointLight struct uniform, one call per field.
//
// Parameters:
//   - prefix: the uniform path of the struct, e.g. "lights[3]"
//   - l: the light to write
//
// Returns:
//   - error: the joined setter failures
func (p *Program) SetPointLight(prefix string, l light.PointLight) error {
	return errors.Join(
		p.SetVec3(prefix+".position", l.Position),
		p.SetVec3(prefix+".color", l.Color),
		p.Set1f(prefix+".linear", l.Linear),
		p.Set1f(prefix+".quadratic", l.Quadratic),
	)
}

// SetFlashLight writes a FlashLight struct uniform. The cut-offs are already cosines.
func (p *Program) SetFlashLight(prefix string, l light.FlashLight) error {
	return errors.Join(
		p.SetVec3(prefix+".position", l.Position),
		p.SetVec3(prefix+".direction", l.Direction),
		p.SetVec3(prefix+".color", l.Color),
		p.Set1f(prefix+".cut_off", l.CutOff),
		p.Set1f(prefix+".outer_cut_off", l.OuterCutOff),
		p.Set1f(prefix+".linear", l.Linear),
		p.Set1f(prefix+".quadratic", l.Quadratic),
	)
}

// SetPhongMaterial validates m and binds its maps to consecutive units starting at first.
//
// Parameters:
//   - prefix: the uniform path of the Material struct
//   - m: the material to bind
//   - first: the first texture unit to use
//
// Returns:
//   - texture.Unit: the next free unit
//   - error: a slot validation error or the joined setter failures
func (p *Program) SetPhongMaterial(prefix string, m material.Phong, first texture.Unit) (texture.Unit, error) {
	if err := m.Validate(); err != nil {
		return first, err
	}
	unit := first
	var errs []error
	bind := func(field string, tex *texture.Texture) {
		if tex == nil {
			return
		}
		errs = append(errs, p.SetTextureUnit(prefix+"."+field, tex, unit))
		unit = unit.Next()
	}
	bind("diffuse_map", m.Diffuse)
	bind("specular_map", m.Specular)
	bind("normal_map", m.Normal)
	bind("emission_map", m.Emission)
	errs = append(errs,
		p.Set1f(prefix+".shininess", m.Shininess),
		p.SetBool(prefix+".has_normal_map", m.Normal != nil),
		p.SetBool(prefix+".has_emission_map", m.Emission != nil),
	)
	return unit, errors.Join(errs...)
}

// SetPBRMaterial validates m, binds whichever maps it carries and writes the scalar fallbacks.
func (p *Program) SetPBRMaterial(prefix string, m material.PBR, first texture.Unit) (texture.Unit, error) {
	if err := m.Validate(); err != nil {
		return first, err
	}
	unit := first
	var errs []error
	bind := func(field string, tex *texture.Texture) {
		if tex == nil {
			return
		}
		errs = append(errs, p.SetTextureUnit(prefix+"."+field, tex, unit))
		unit = unit.Next()
	}
	if m.UseMaps() {
		bind("albedo_map", m.Albedo)
		bind("normal_map", m.Normal)
		bind("metallic_map", m.Metallic)
		bind("roughness_map", m.Roughness)
		bind("ao_map", m.AO)
	}
	errs = append(errs,
		p.SetVec3(prefix+".albedo", m.AlbedoValue),
		p.Set1f(prefix+".metallic", m.MetallicValue),
		p.Set1f(prefix+".roughness", m.RoughnessValue),
		p.Set1f(prefix+".ao", m.AOValue),
		p.SetBool(prefix+".use_maps", m.UseMaps()),
	)
	return unit, errors.Join(errs...)
}
