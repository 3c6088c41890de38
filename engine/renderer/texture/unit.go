package texture

import "github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"

// Unit is a texture unit index in [0, gpu.MaxTextureUnits).
type Unit int

// Next returns the following unit, wrapping after the last one.
func (u Unit) Next() Unit { return (u + 1) % gpu.MaxTextureUnits }

// Int returns the unit as an int for driver calls.
func (u Unit) Int() int { return int(u) }
