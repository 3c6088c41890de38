package model

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultSphereSegments is the sphere tessellation used by the PBR scenes.
const DefaultSphereSegments = 64

// NewQuad creates the full-screen quad used by screen-space passes: four QuadVertex corners in
// normalised device coordinates drawn as a triangle strip.
func NewQuad(ctx *gpu.RenderContext) (*Mesh, error) {
	corners := []QuadVertex{
		{Position: [3]float32{-1, 1, 0}, TexCoord: [2]float32{0, 1}},
		{Position: [3]float32{-1, -1, 0}, TexCoord: [2]float32{0, 0}},
		{Position: [3]float32{1, 1, 0}, TexCoord: [2]float32{1, 1}},
		{Position: [3]float32{1, -1, 0}, TexCoord: [2]float32{1, 0}},
	}
	var data []byte
	for i := range corners {
		data = append(data, corners[i].Marshal()...)
	}
	m, err := newMesh(ctx, "quad", QuadLayout(), data, nil, gpu.TriangleStrip)
	if err != nil {
		return nil, err
	}
	m.boundingRadius = math32.Sqrt2
	return m, nil
}

// cubeFace spans one face of the unit cube. u cross v equals normal, so corners emitted in
// (-1,-1) (1,-1) (1,1) order wind counter-clockwise seen from outside.
type cubeFace struct {
	normal, u, v mgl32.Vec3
}

var cubeFaces = []cubeFace{
	{normal: mgl32.Vec3{0, 0, -1}, u: mgl32.Vec3{-1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
	{normal: mgl32.Vec3{0, 0, 1}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
	{normal: mgl32.Vec3{-1, 0, 0}, u: mgl32.Vec3{0, 0, 1}, v: mgl32.Vec3{0, 1, 0}},
	{normal: mgl32.Vec3{1, 0, 0}, u: mgl32.Vec3{0, 0, -1}, v: mgl32.Vec3{0, 1, 0}},
	{normal: mgl32.Vec3{0, -1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, 1}},
	{normal: mgl32.Vec3{0, 1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, -1}},
}

// cubeCorners is the two-triangle order of face corners in (u, v) coordinates.
var cubeCorners = [6][2]float32{{-1, -1}, {1, -1}, {1, 1}, {1, 1}, {-1, 1}, {-1, -1}}

// CubeVertices returns the 36 vertices of a 2x2x2 cube centred on the origin, outward normals,
// one 0..1 texture square per face.
func CubeVertices() []Vertex {
	vertices := make([]Vertex, 0, len(cubeFaces)*len(cubeCorners))
	for _, f := range cubeFaces {
		for _, c := range cubeCorners {
			p := f.normal.Add(f.u.Mul(c[0])).Add(f.v.Mul(c[1]))
			vertices = append(vertices, Vertex{
				Position: p,
				Normal:   f.normal,
				TexCoord: [2]float32{(c[0] + 1) / 2, (c[1] + 1) / 2},
			})
		}
	}
	return vertices
}

// NewCube uploads CubeVertices as a triangle list. It serves as scene geometry, the light
// marker boxes and the capture cube of the environment passes.
func NewCube(ctx *gpu.RenderContext) (*Mesh, error) {
	m, err := newMesh(ctx, "cube", MeshLayout(), marshalVertices(CubeVertices()), nil, gpu.Triangles)
	if err != nil {
		return nil, err
	}
	m.boundingRadius = math32.Sqrt(3)
	return m, nil
}

// SphereGeometry returns the vertices and triangle strip indices of a unit UV sphere.
//
// Parameters:
//   - segmentsX: segments around the equator
//   - segmentsY: segments from pole to pole
//
// Returns:
//   - []Vertex: (segmentsX+1)*(segmentsY+1) vertices, normals equal to positions
//   - []uint32: strip indices, alternating row direction so rows join without degenerate jumps
func SphereGeometry(segmentsX, segmentsY int) ([]Vertex, []uint32) {
	vertices := make([]Vertex, 0, (segmentsX+1)*(segmentsY+1))
	for y := 0; y <= segmentsY; y++ {
		for x := 0; x <= segmentsX; x++ {
			xSeg := float32(x) / float32(segmentsX)
			ySeg := float32(y) / float32(segmentsY)
			p := [3]float32{
				math32.Cos(xSeg*2*math32.Pi) * math32.Sin(ySeg*math32.Pi),
				math32.Cos(ySeg * math32.Pi),
				math32.Sin(xSeg*2*math32.Pi) * math32.Sin(ySeg*math32.Pi),
			}
			vertices = append(vertices, Vertex{Position: p, Normal: p, TexCoord: [2]float32{xSeg, ySeg}})
		}
	}

	row := uint32(segmentsX + 1)
	indices := make([]uint32, 0, segmentsY*(segmentsX+1)*2)
	for y := range uint32(segmentsY) {
		if y%2 == 0 {
			for x := range row {
				indices = append(indices, y*row+x, (y+1)*row+x)
			}
			continue
		}
		for x := int(row) - 1; x >= 0; x-- {
			indices = append(indices, (y+1)*row+uint32(x), y*row+uint32(x))
		}
	}
	return vertices, indices
}

// NewSphere uploads a unit UV sphere drawn as an indexed triangle strip.
func NewSphere(ctx *gpu.RenderContext, segmentsX, segmentsY int) (*Mesh, error) {
	vertices, indices := SphereGeometry(segmentsX, segmentsY)
	m, err := newMesh(ctx, "sphere", MeshLayout(), marshalVertices(vertices), indices, gpu.TriangleStrip)
	if err != nil {
		return nil, err
	}
	m.boundingRadius = 1
	return m, nil
}

// NewPlane uploads a horizontal square at y = 0 facing +y.
//
// Parameters:
//   - ctx: the render context
//   - halfExtent: half the side length
//   - uvRepeat: how many times textures tile across the plane
//
// Returns:
//   - *Mesh: the two-triangle plane
//   - error: *gpu.CreationError
func NewPlane(ctx *gpu.RenderContext, halfExtent, uvRepeat float32) (*Mesh, error) {
	e, r := halfExtent, uvRepeat
	up := [3]float32{0, 1, 0}
	vertices := []Vertex{
		{Position: [3]float32{e, 0, e}, Normal: up, TexCoord: [2]float32{r, 0}},
		{Position: [3]float32{-e, 0, -e}, Normal: up, TexCoord: [2]float32{0, r}},
		{Position: [3]float32{-e, 0, e}, Normal: up, TexCoord: [2]float32{0, 0}},
		{Position: [3]float32{e, 0, e}, Normal: up, TexCoord: [2]float32{r, 0}},
		{Position: [3]float32{e, 0, -e}, Normal: up, TexCoord: [2]float32{r, r}},
		{Position: [3]float32{-e, 0, -e}, Normal: up, TexCoord: [2]float32{0, r}},
	}
	m, err := newMesh(ctx, "plane", MeshLayout(), marshalVertices(vertices), nil, gpu.Triangles)
	if err != nil {
		return nil, err
	}
	m.boundingRadius = e * math32.Sqrt2
	return m, nil
}
