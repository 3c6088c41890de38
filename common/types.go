// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "github.com/go-gl/mathgl/mgl32"

// ImageData is a decoded image ready for texture upload. Exactly one of Pixels or Floats is set:
// 8-bit images fill Pixels, HDR images fill Floats.
type ImageData struct {
	// Name is the identifier the image was loaded under (usually its path).
	Name string

	// Width is the image width in pixels.
	Width int

	// Height is the image height in pixels.
	Height int

	// Channels is the number of components per pixel (1, 2, 3 or 4).
	Channels int

	// HDR is true when the pixel data is stored as float32 components in Floats.
	HDR bool

	// Pixels holds 8-bit components, row-major, Channels bytes per pixel.
	Pixels []byte

	// Floats holds float32 components, row-major, Channels floats per pixel.
	Floats []float32
}

// Bytes returns the pixel storage as raw bytes regardless of component type.
func (i *ImageData) Bytes() []byte {
	if i.HDR {
		return SliceToBytes(i.Floats)
	}
	return i.Pixels
}

// MeshData is parsed geometry for one mesh, ready to be interleaved and uploaded.
type MeshData struct {
	// Name identifies the mesh within its model.
	Name string

	// Positions holds one position per vertex.
	Positions []mgl32.Vec3

	// Normals holds one normal per vertex, or is empty.
	Normals []mgl32.Vec3

	// UVs holds one texture coordinate per vertex, or is empty.
	UVs []mgl32.Vec2

	// Indices holds triangle list indices into the vertex arrays, or is empty for non-indexed meshes.
	Indices []uint32

	// MaterialIndex is the index into the owning model's material list, or -1.
	MaterialIndex int
}

// ImportedMaterial represents material properties from an imported model file.
type ImportedMaterial struct {
	// Name is the material identifier.
	Name string

	// DiffuseColor is the Kd colour used when no diffuse map is present.
	DiffuseColor mgl32.Vec3

	// Shininess is the Phong specular exponent (Ns).
	Shininess float32

	// DiffuseTexturePath is the file path for the diffuse texture (map_Kd).
	DiffuseTexturePath string

	// SpecularTexturePath is the file path for the specular texture (map_Ks).
	SpecularTexturePath string

	// NormalTexturePath is the file path for the normal map texture (map_Bump, bump, norm).
	NormalTexturePath string

	// EmissionTexturePath is the file path for the emission texture (map_Ke).
	EmissionTexturePath string
}

// ImportedModel is the CPU-side result of parsing a model file.
type ImportedModel struct {
	Name      string
	Meshes    []MeshData
	Materials []ImportedMaterial

	// Images holds the decoded material textures keyed by the paths in Materials. Paths with
	// no entry are drawn without that map.
	Images map[string]*ImageData
}

// TexturePaths returns the distinct non-empty texture paths referenced by the materials, in
// material order.
func (m *ImportedModel) TexturePaths() []string {
	seen := make(map[string]bool)
	var paths []string
	for _, mat := range m.Materials {
		for _, p := range []string{mat.DiffuseTexturePath, mat.SpecularTexturePath, mat.NormalTexturePath, mat.EmissionTexturePath} {
			if p != "" && !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	return paths
}
