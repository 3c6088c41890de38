package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrMalformedOBJ is wrapped by every OBJ and MTL parse error.
var ErrMalformedOBJ = errors.New("malformed obj")

// objBackend parses Wavefront OBJ geometry with MTL material libraries. Faces are triangulated as
// fans, vertices are deduplicated per mesh, and a new mesh starts at every object, group or
// material change.
type objBackend struct{}

var _ modelBackend = objBackend{}

// objVertex is one face corner: 1-based indices into the position, uv and normal lists, 0 when
// absent.
type objVertex struct {
	p, t, n int
}

// objMesh accumulates one mesh while parsing.
type objMesh struct {
	data     common.MeshData
	material string
	index    map[objVertex]uint32
	hasUV    bool
	hasN     bool
	missingN bool
}

func newObjMesh(name, material string) *objMesh {
	return &objMesh{
		data:     common.MeshData{Name: name, MaterialIndex: -1},
		material: material,
		index:    make(map[objVertex]uint32),
	}
}

// objState is the running state of one OBJ parse.
type objState struct {
	positions []mgl32.Vec3
	uvs       []mgl32.Vec2
	normals   []mgl32.Vec3

	group    string
	material string
	current  *objMesh
	meshes   []*objMesh

	materials     []common.ImportedMaterial
	materialIndex map[string]int
}

func (objBackend) Parse(name string, r io.Reader, open func(path string) (io.ReadCloser, error)) (*common.ImportedModel, error) {
	s := &objState{materialIndex: make(map[string]int)}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(stripComment(sc.Text()))
		if len(fields) == 0 {
			continue
		}
		if err := s.record(fields, open); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	imported := &common.ImportedModel{
		Name:      name,
		Materials: s.materials,
	}
	for _, m := range s.meshes {
		if len(m.data.Indices) == 0 {
			continue
		}
		if idx, ok := s.materialIndex[m.material]; ok {
			m.data.MaterialIndex = idx
		}
		if !m.hasUV {
			m.data.UVs = nil
		}
		if !m.hasN || m.missingN {
			m.data.Normals = smoothNormals(m.data.Positions, m.data.Indices)
		}
		imported.Meshes = append(imported.Meshes, m.data)
	}
	if len(imported.Meshes) == 0 {
		return nil, fmt.Errorf("%s: %w: no faces", name, ErrMalformedOBJ)
	}
	return imported, nil
}

func (s *objState) record(fields []string, open func(string) (io.ReadCloser, error)) error {
	args := fields[1:]
	switch fields[0] {
	case "v":
		v, err := parseFloats(args, 3)
		if err != nil {
			return err
		}
		s.positions = append(s.positions, mgl32.Vec3{v[0], v[1], v[2]})
	case "vt":
		v, err := parseFloats(args, 2)
		if err != nil {
			return err
		}
		s.uvs = append(s.uvs, mgl32.Vec2{v[0], v[1]})
	case "vn":
		v, err := parseFloats(args, 3)
		if err != nil {
			return err
		}
		s.normals = append(s.normals, mgl32.Vec3{v[0], v[1], v[2]}.Normalize())
	case "f":
		return s.face(args)
	case "o", "g":
		s.group = strings.Join(args, " ")
		s.current = nil
	case "usemtl":
		if len(args) == 0 {
			return fmt.Errorf("%w: usemtl without a name", ErrMalformedOBJ)
		}
		s.material = args[0]
		s.current = nil
	case "mtllib":
		for _, lib := range args {
			if err := s.loadMaterialLibrary(lib, open); err != nil {
				return err
			}
		}
	}
	// s, l, and curve records carry nothing the renderer draws.
	return nil
}

func (s *objState) face(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: face with %d vertices", ErrMalformedOBJ, len(args))
	}
	if s.current == nil {
		name := s.group
		if name == "" {
			name = fmt.Sprintf("mesh%d", len(s.meshes))
		}
		s.current = newObjMesh(name, s.material)
		s.meshes = append(s.meshes, s.current)
	}

	corners := make([]uint32, len(args))
	for i, arg := range args {
		v, err := s.parseCorner(arg)
		if err != nil {
			return err
		}
		corners[i] = s.current.add(v, s)
	}
	for i := 1; i+1 < len(corners); i++ {
		s.current.data.Indices = append(s.current.data.Indices, corners[0], corners[i], corners[i+1])
	}
	return nil
}

// parseCorner parses "p", "p/t", "p//n" or "p/t/n", resolving negative (relative) indices.
func (s *objState) parseCorner(arg string) (objVertex, error) {
	parts := strings.Split(arg, "/")
	if len(parts) > 3 {
		return objVertex{}, fmt.Errorf("%w: bad face vertex %q", ErrMalformedOBJ, arg)
	}
	var v objVertex
	var err error
	if v.p, err = resolveIndex(parts[0], len(s.positions)); err != nil || v.p == 0 {
		return objVertex{}, fmt.Errorf("%w: bad position index in %q", ErrMalformedOBJ, arg)
	}
	if len(parts) > 1 && parts[1] != "" {
		if v.t, err = resolveIndex(parts[1], len(s.uvs)); err != nil {
			return objVertex{}, fmt.Errorf("%w: bad uv index in %q", ErrMalformedOBJ, arg)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if v.n, err = resolveIndex(parts[2], len(s.normals)); err != nil {
			return objVertex{}, fmt.Errorf("%w: bad normal index in %q", ErrMalformedOBJ, arg)
		}
	}
	return v, nil
}

func resolveIndex(field string, count int) (int, error) {
	i, err := strconv.Atoi(field)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		i = count + i + 1
	}
	if i < 1 || i > count {
		return 0, fmt.Errorf("index %s out of range", field)
	}
	return i, nil
}

// add returns the mesh-local index of v, appending it on first use.
func (m *objMesh) add(v objVertex, s *objState) uint32 {
	if idx, ok := m.index[v]; ok {
		return idx
	}
	idx := uint32(len(m.data.Positions))
	m.index[v] = idx
	m.data.Positions = append(m.data.Positions, s.positions[v.p-1])

	var uv mgl32.Vec2
	if v.t > 0 {
		uv = s.uvs[v.t-1]
		m.hasUV = true
	}
	m.data.UVs = append(m.data.UVs, uv)

	var n mgl32.Vec3
	if v.n > 0 {
		n = s.normals[v.n-1]
		m.hasN = true
	} else {
		m.missingN = true
	}
	m.data.Normals = append(m.data.Normals, n)
	return idx
}

// smoothNormals averages area-weighted face normals at each vertex.
func smoothNormals(positions []mgl32.Vec3, indices []uint32) []mgl32.Vec3 {
	normals := make([]mgl32.Vec3, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		n := positions[b].Sub(positions[a]).Cross(positions[c].Sub(positions[a]))
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}
	for i, n := range normals {
		if n.Len() > 0 {
			normals[i] = n.Normalize()
		} else {
			normals[i] = mgl32.Vec3{0, 1, 0}
		}
	}
	return normals
}

// loadMaterialLibrary parses an MTL file. Texture paths are rewritten relative to the model.
func (s *objState) loadMaterialLibrary(lib string, open func(string) (io.ReadCloser, error)) error {
	if open == nil {
		return fmt.Errorf("mtllib %s: no resolver for referenced files", lib)
	}
	rc, err := open(lib)
	if err != nil {
		return fmt.Errorf("mtllib %s: %w", lib, err)
	}
	defer rc.Close()

	dir := path.Dir(lib)
	texture := func(args []string) string {
		// The path is the last token; options such as "-bm 1.0" come before it.
		if len(args) == 0 {
			return ""
		}
		return path.Join(dir, args[len(args)-1])
	}

	var cur *common.ImportedMaterial
	flush := func() {
		if cur == nil {
			return
		}
		s.materialIndex[cur.Name] = len(s.materials)
		s.materials = append(s.materials, *cur)
	}

	sc := bufio.NewScanner(rc)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(stripComment(sc.Text()))
		if len(fields) == 0 {
			continue
		}
		args := fields[1:]
		if fields[0] == "newmtl" {
			if len(args) == 0 {
				return fmt.Errorf("%s:%d: %w: newmtl without a name", lib, lineNo, ErrMalformedOBJ)
			}
			flush()
			cur = &common.ImportedMaterial{Name: args[0], DiffuseColor: mgl32.Vec3{1, 1, 1}}
			continue
		}
		if cur == nil {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "kd":
			v, err := parseFloats(args, 3)
			if err != nil {
				return fmt.Errorf("%s:%d: %w", lib, lineNo, err)
			}
			cur.DiffuseColor = mgl32.Vec3{v[0], v[1], v[2]}
		case "ns":
			v, err := parseFloats(args, 1)
			if err != nil {
				return fmt.Errorf("%s:%d: %w", lib, lineNo, err)
			}
			cur.Shininess = v[0]
		case "map_kd":
			cur.DiffuseTexturePath = texture(args)
		case "map_ks":
			cur.SpecularTexturePath = texture(args)
		case "map_bump", "bump", "norm":
			cur.NormalTexturePath = texture(args)
		case "map_ke":
			cur.EmissionTexturePath = texture(args)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", lib, err)
	}
	flush()
	return nil
}

func parseFloats(args []string, n int) ([]float32, error) {
	if len(args) < n {
		return nil, fmt.Errorf("%w: want %d numbers, got %d", ErrMalformedOBJ, n, len(args))
	}
	out := make([]float32, n)
	for i := range out {
		f, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrMalformedOBJ, args[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}
