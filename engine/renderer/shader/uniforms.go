package shader

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// location binds the program and resolves name. A NotFound location with a nil error means the
// setter has nothing to do.
func (p *Program) location(name string) (int32, error) {
	loc, err := p.UniformLocation(name)
	if err != nil {
		return NotFound, err
	}
	p.Bind()
	return loc, nil
}

// Set1i sets an int or sampler uniform.
func (p *Program) Set1i(name string, v int32) error {
	loc, err := p.location(name)
	if err != nil || loc == NotFound {
		return err
	}
	p.ctx.Driver().Uniform1i(loc, v)
	return nil
}

// SetBool sets a bool uniform as 0 or 1.
func (p *Program) SetBool(name string, v bool) error {
	var i int32
	if v {
		i = 1
	}
	return p.Set1i(name, i)
}

// Set1f sets a float uniform.
func (p *Program) Set1f(name string, v float32) error {
	loc, err := p.location(name)
	if err != nil || loc == NotFound {
		return err
	}
	p.ctx.Driver().Uniform1f(loc, v)
	return nil
}

// Set2f sets a vec2 uniform.
func (p *Program) Set2f(name string, x, y float32) error {
	loc, err := p.location(name)
	if err != nil || loc == NotFound {
		return err
	}
	p.ctx.Driver().Uniform2f(loc, x, y)
	return nil
}

// Set3f sets a vec3 uniform.
func (p *Program) Set3f(name string, x, y, z float32) error {
	loc, err := p.location(name)
	if err != nil || loc == NotFound {
		return err
	}
	p.ctx.Driver().Uniform3f(loc, x, y, z)
	return nil
}

// SetVec3 sets a vec3 uniform from a vector.
func (p *Program) SetVec3(name string, v mgl32.Vec3) error {
	return p.Set3f(name, v[0], v[1], v[2])
}

// Set4f sets a vec4 uniform.
func (p *Program) Set4f(name string, x, y, z, w float32) error {
	loc, err := p.location(name)
	if err != nil || loc == NotFound {
		return err
	}
	p.ctx.Driver().Uniform4f(loc, x, y, z, w)
	return nil
}

// SetVec4 sets a vec4 uniform from a vector.
func (p *Program) SetVec4(name string, v mgl32.Vec4) error {
	return p.Set4f(name, v[0], v[1], v[2], v[3])
}

// SetMat3 sets a mat3 uniform. mgl32 matrices are column-major, as the driver expects.
func (p *Program) SetMat3(name string, m mgl32.Mat3) error {
	loc, err := p.location(name)
	if err != nil || loc == NotFound {
		return err
	}
	p.ctx.Driver().UniformMatrix3fv(loc, m)
	return nil
}

// SetMat4 sets a mat4 uniform.
func (p *Program) SetMat4(name string, m mgl32.Mat4) error {
	loc, err := p.location(name)
	if err != nil || loc == NotFound {
		return err
	}
	p.ctx.Driver().UniformMatrix4fv(loc, m)
	return nil
}

// SetTextureUnit binds tex to unit and points the sampler uniform at it. Samplers default to
// unit 0, so the integer uniform is only written for other units.
//
// Parameters:
//   - name: the sampler uniform name
//   - tex: the texture to sample
//   - unit: the texture unit to bind
//
// Returns:
//   - error: ErrProgramNotLinked when the program was destroyed
func (p *Program) SetTextureUnit(name string, tex *texture.Texture, unit texture.Unit) error {
	if _, err := p.UniformLocation(name); err != nil {
		return err
	}
	if tex.NeedsMipmaps() && !p.warned[tex.ID()] {
		p.warned[tex.ID()] = true
		p.logger().Warn("sampling texture with a mipmap filter but no mip chain",
			"texture", tex.Name(), "uniform", name)
	}
	tex.Bind(unit)
	if unit == 0 {
		return nil
	}
	return p.Set1i(name, int32(unit.Int()))
}
