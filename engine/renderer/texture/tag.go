package texture

import (
	"errors"
	"fmt"
)

// Tag names the semantic role of a texture. Material setters use it to catch a texture bound
// to the wrong slot.
type Tag int

const (
	TagUnknown Tag = iota
	TagDiffuse
	TagSpecular
	TagNormal
	TagEmission
	TagPBRAlbedo
	TagPBRMetallic
	TagPBRRoughness
	TagPBRAO
	TagEnvironment
	TagIrradiance
	TagPrefilteredEnv
	TagBRDFLUT
	TagShadow
)

var tagNames = [...]string{
	TagUnknown:        "unknown",
	TagDiffuse:        "diffuse",
	TagSpecular:       "specular",
	TagNormal:         "normal",
	TagEmission:       "emission",
	TagPBRAlbedo:      "pbr_albedo",
	TagPBRMetallic:    "pbr_metallic",
	TagPBRRoughness:   "pbr_roughness",
	TagPBRAO:          "pbr_ao",
	TagEnvironment:    "environment",
	TagIrradiance:     "irradiance",
	TagPrefilteredEnv: "prefiltered_env",
	TagBRDFLUT:        "brdf_lut",
	TagShadow:         "shadow",
}

func (t Tag) String() string {
	if t >= 0 && int(t) < len(tagNames) {
		return tagNames[t]
	}
	return fmt.Sprintf("Tag(%d)", int(t))
}

var (
	// ErrDepthInColorSlot is returned when a depth texture is bound as a material colour map.
	ErrDepthInColorSlot = errors.New("depth texture bound to a colour slot")

	// ErrTagMismatch is returned when a tagged texture is bound to a slot of another role.
	ErrTagMismatch = errors.New("texture tag does not match slot")
)

// CheckSlot validates that tex may be bound to a material slot expecting slot. Untagged
// textures are accepted.
//
// Parameters:
//   - tex: the texture to bind
//   - slot: the role the slot expects
//
// Returns:
//   - error: ErrDepthInColorSlot or ErrTagMismatch wrapped with the texture name, or nil
func CheckSlot(tex *Texture, slot Tag) error {
	if tex.Format().IsDepth() {
		return fmt.Errorf("texture %q (%s) in %s slot: %w", tex.Name(), tex.Format(), slot, ErrDepthInColorSlot)
	}
	if tex.Tag() != TagUnknown && tex.Tag() != slot {
		return fmt.Errorf("texture %q tagged %s in %s slot: %w", tex.Name(), tex.Tag(), slot, ErrTagMismatch)
	}
	return nil
}
