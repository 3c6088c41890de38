package material

import _ "embed"

// PhongMaterialSource is the GLSL definition of the Phong Material struct, followed by the
// phong_normal helper that applies its normal map. Field names match the uniform names the
// shader binder writes. The helper uses derivatives, so only fragment stages may include it.
//
//go:embed assets/phong_material.glsl
var PhongMaterialSource string

// PBRMaterialSource is the GLSL definition of the PBRMaterial struct.
//
//go:embed assets/pbr_material.glsl
var PBRMaterialSource string
