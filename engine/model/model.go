package model

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
)

// model is the implementation of the Model interface.
type model struct {
	name              string
	meshes            []*Mesh
	importedMaterials []common.ImportedMaterial
	materials         []material.Phong
}

// Model defines the interface for a loaded 3D model.
// A Model owns its uploaded meshes and the materials they reference by index. It is produced by
// the Loader after parsing a model file, or assembled from procedural meshes.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Meshes retrieves the uploaded meshes in draw order.
	//
	// Returns:
	//   - []*Mesh: the meshes
	Meshes() []*Mesh

	// ImportedMaterials retrieves the raw material properties imported from the model file.
	//
	// Returns:
	//   - []common.ImportedMaterial: the imported materials
	ImportedMaterials() []common.ImportedMaterial

	// Materials retrieves the render-ready materials, indexed like ImportedMaterials.
	//
	// Returns:
	//   - []material.Phong: the render-ready materials
	Materials() []material.Phong

	// SetMaterials replaces the render-ready material list.
	//
	// Parameters:
	//   - mats: the render-ready materials to set
	SetMaterials(mats []material.Phong)

	// MaterialFor returns the material a mesh references.
	//
	// Parameters:
	//   - mesh: one of the model's meshes
	//
	// Returns:
	//   - *material.Phong: the material, or nil when the mesh has none or it was not resolved
	MaterialFor(mesh *Mesh) *material.Phong

	// BoundingRadius returns the largest mesh bounding radius. Used by frustum culling.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32

	// Draw draws every mesh in order. bind is called before each mesh with its material (nil
	// when it has none) to push material uniforms; a bind error aborts the draw.
	//
	// Parameters:
	//   - bind: the per-mesh material callback, may be nil
	//
	// Returns:
	//   - error: the first bind or draw error
	Draw(bind func(mat *material.Phong) error) error

	// Destroy releases every mesh.
	Destroy()
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// FromImported uploads every mesh of a parsed model. Materials are left to the caller, which
// resolves texture paths through the loader.
//
// Parameters:
//   - ctx: the render context
//   - imported: the parsed model
//   - options: additional builder options
//
// Returns:
//   - Model: the uploaded model
//   - error: the first upload failure, after releasing the meshes uploaded before it
func FromImported(ctx *gpu.RenderContext, imported *common.ImportedModel, options ...ModelBuilderOption) (Model, error) {
	meshes := make([]*Mesh, 0, len(imported.Meshes))
	for _, data := range imported.Meshes {
		mesh, err := Upload(ctx, data)
		if err != nil {
			for _, m := range meshes {
				m.Destroy()
			}
			return nil, fmt.Errorf("model %q: %w", imported.Name, err)
		}
		meshes = append(meshes, mesh)
	}
	opts := append([]ModelBuilderOption{
		WithName(imported.Name),
		WithMeshes(meshes...),
		WithImportedMaterials(imported.Materials),
	}, options...)
	return NewModel(opts...), nil
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Meshes() []*Mesh {
	return m.meshes
}

func (m *model) ImportedMaterials() []common.ImportedMaterial {
	return m.importedMaterials
}

func (m *model) Materials() []material.Phong {
	return m.materials
}

func (m *model) SetMaterials(mats []material.Phong) {
	m.materials = mats
}

func (m *model) MaterialFor(mesh *Mesh) *material.Phong {
	i := mesh.MaterialIndex()
	if i < 0 || i >= len(m.materials) {
		return nil
	}
	return &m.materials[i]
}

func (m *model) BoundingRadius() float32 {
	var r float32
	for _, mesh := range m.meshes {
		r = max(r, mesh.BoundingRadius())
	}
	return r
}

func (m *model) Draw(bind func(mat *material.Phong) error) error {
	for _, mesh := range m.meshes {
		if bind != nil {
			if err := bind(m.MaterialFor(mesh)); err != nil {
				return fmt.Errorf("model %q mesh %q: %w", m.name, mesh.Name(), err)
			}
		}
		if err := mesh.Draw(); err != nil {
			return fmt.Errorf("model %q mesh %q: %w", m.name, mesh.Name(), err)
		}
	}
	return nil
}

func (m *model) Destroy() {
	for _, mesh := range m.meshes {
		mesh.Destroy()
	}
}
