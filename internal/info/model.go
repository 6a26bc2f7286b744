package info

// Geometry is the primitive type of a submesh.
type Geometry uint8

const (
	GeometryUnknown Geometry = iota
	GeometryPoints
	GeometryLines
	GeometryTriangles
	GeometryTriangleStrip
	GeometryQuads
	GeometryVariable
)

// GeometryFromCode maps the numeric primitive codes used by mesh containers
// (0 points .. 5 variable). Any other code is GeometryUnknown.
func GeometryFromCode(code int) Geometry {
	if code < 0 || code > 5 {
		return GeometryUnknown
	}
	return Geometry(code + 1)
}

func (g Geometry) String() string {
	switch g {
	case GeometryPoints:
		return "points"
	case GeometryLines:
		return "lines"
	case GeometryTriangles:
		return "triangles"
	case GeometryTriangleStrip:
		return "triangle strip"
	case GeometryQuads:
		return "quads"
	case GeometryVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// Submesh is a run of primitives sharing one material.
type Submesh struct {
	Name     string
	Material *string
	Geometry Geometry
}

// Mesh is one object of a model file.
type Mesh struct {
	Name                 string
	VertexCount          int
	HasNormals           bool
	HasTangent           bool
	HasTextureCoordinate bool
	HasVertexColor       bool
	HasOcclusion         bool
	Submeshes            []Submesh
}

// ModelInfo describes a 3-D model file. Aggregates are computed from Meshes.
type ModelInfo struct {
	File
	Meshes []Mesh
}

// VertexCount is the total over all meshes.
func (m *ModelInfo) VertexCount() int {
	n := 0
	for _, mesh := range m.Meshes {
		n += mesh.VertexCount
	}
	return n
}

// HasNormals reports whether any mesh carries normals.
func (m *ModelInfo) HasNormals() bool { return m.any(func(x *Mesh) bool { return x.HasNormals }) }

// HasTangent reports whether any mesh carries tangents.
func (m *ModelInfo) HasTangent() bool { return m.any(func(x *Mesh) bool { return x.HasTangent }) }

// HasTextureCoordinate reports whether any mesh carries UVs.
func (m *ModelInfo) HasTextureCoordinate() bool {
	return m.any(func(x *Mesh) bool { return x.HasTextureCoordinate })
}

// HasVertexColor reports whether any mesh carries per-vertex colour.
func (m *ModelInfo) HasVertexColor() bool {
	return m.any(func(x *Mesh) bool { return x.HasVertexColor })
}

// HasOcclusion reports whether any mesh carries ambient occlusion.
func (m *ModelInfo) HasOcclusion() bool { return m.any(func(x *Mesh) bool { return x.HasOcclusion }) }

func (m *ModelInfo) any(f func(*Mesh) bool) bool {
	for i := range m.Meshes {
		if f(&m.Meshes[i]) {
			return true
		}
	}
	return false
}
