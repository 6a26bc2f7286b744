package mesh

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
)

// objKeywords are the statements accepted without effect on the counts.
var objKeywords = map[string]bool{
	"mtllib": true, "s": true, "vp": true, "cstype": true, "deg": true,
	"bmat": true, "step": true, "curv": true, "curv2": true, "surf": true,
	"parm": true, "trim": true, "hole": true, "scrv": true, "sp": true,
	"end": true, "con": true, "mg": true, "bevel": true, "c_interp": true,
	"d_interp": true, "lod": true, "shadow_obj": true, "trace_obj": true,
	"ctech": true, "stech": true, "maplib": true, "usemap": true,
}

var minRefs = map[string]int{"f": 3, "l": 2, "p": 1}

// objBuilder accumulates meshes ("o") and their submeshes (a "g" group or
// a "usemtl" switch starts a new one).
type objBuilder struct {
	meshes   []info.Mesh
	mesh     *info.Mesh
	sub      *info.Submesh
	group    string
	material *string
}

func (b *objBuilder) startMesh(name string) {
	b.finishMesh()
	b.meshes = append(b.meshes, info.Mesh{Name: name})
	b.mesh = &b.meshes[len(b.meshes)-1]
	b.sub = nil
}

func (b *objBuilder) current() *info.Mesh {
	if b.mesh == nil {
		b.startMesh("")
	}
	return b.mesh
}

// primitive records one face, line or point in the current submesh.
func (b *objBuilder) primitive(g info.Geometry) {
	m := b.current()
	if b.sub == nil {
		m.Submeshes = append(m.Submeshes, info.Submesh{Name: b.group, Material: b.material})
		b.sub = &m.Submeshes[len(m.Submeshes)-1]
	}
	b.sub.Geometry = merge(b.sub.Geometry, g)
}

// newSubmesh makes the next primitive open a fresh submesh.
func (b *objBuilder) newSubmesh() { b.sub = nil }

// finishMesh drops a trailing mesh that received nothing.
func (b *objBuilder) finishMesh() {
	if b.mesh != nil && b.mesh.VertexCount == 0 && len(b.mesh.Submeshes) == 0 {
		b.meshes = b.meshes[:len(b.meshes)-1]
	}
	b.mesh = nil
}

// ReadOBJ parses a Wavefront OBJ stream. Vertex counts are per "o" block
// since OBJ vertex lists are global. A file with no recognised statement
// at all is not applicable; a recognised statement with bad operands is
// corrupted.
func ReadOBJ(ctx context.Context, r io.Reader) (*info.ModelInfo, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLine)

	var b objBuilder
	recognised := false
	for line := 1; sc.Scan(); line++ {
		if line%ctxEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		f := strings.Fields(text)
		if len(f) == 0 {
			continue
		}
		switch f[0] {
		case "v":
			if len(f) < 4 || !numbers(f[1:]) {
				return nil, objError(recognised, line, "bad vertex")
			}
			m := b.current()
			m.VertexCount++
			// "v x y z r g b" carries a colour.
			if len(f) == 7 || len(f) == 8 {
				m.HasVertexColor = true
			}
		case "vn":
			if len(f) != 4 || !numbers(f[1:]) {
				return nil, objError(recognised, line, "bad normal")
			}
		case "vt":
			if len(f) < 2 || len(f) > 4 || !numbers(f[1:]) {
				return nil, objError(recognised, line, "bad texture coordinate")
			}
		case "f", "l", "p":
			refs := f[1:]
			if len(refs) < minRefs[f[0]] {
				return nil, objError(recognised, line, "too few vertices")
			}
			hasUV, hasNormal, ok := objRefs(refs)
			if !ok {
				return nil, objError(recognised, line, "bad vertex reference")
			}
			m := b.current()
			m.HasTextureCoordinate = m.HasTextureCoordinate || hasUV
			m.HasNormals = m.HasNormals || hasNormal
			switch f[0] {
			case "f":
				b.primitive(faceGeometry(len(refs)))
			case "l":
				b.primitive(info.GeometryLines)
			default:
				b.primitive(info.GeometryPoints)
			}
		case "o":
			b.startMesh(strings.Join(f[1:], " "))
		case "g":
			b.group = strings.Join(f[1:], " ")
			b.newSubmesh()
		case "usemtl":
			b.material = info.String(strings.Join(f[1:], " "))
			b.newSubmesh()
		default:
			if !objKeywords[f[0]] {
				if !recognised {
					return nil, probe.NotApplicablef(NameOBJ, "line %d: unknown statement %q", line, f[0])
				}
				return nil, probe.Corruptedf(NameOBJ, "line %d: unknown statement %q", line, f[0])
			}
		}
		recognised = true
	}
	if err := sc.Err(); err != nil {
		return nil, probe.Corrupted(NameOBJ, err)
	}
	b.finishMesh()
	return &info.ModelInfo{Meshes: b.meshes}, nil
}

func objError(recognised bool, line int, msg string) error {
	if !recognised {
		return probe.NotApplicablef(NameOBJ, "line %d: %s", line, msg)
	}
	return probe.Corruptedf(NameOBJ, "line %d: %s", line, msg)
}

func numbers(f []string) bool {
	for _, s := range f {
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return false
		}
	}
	return true
}

// objRefs checks "v", "v/vt", "v//vn" and "v/vt/vn" references. Indices
// may be negative (relative) but never zero.
func objRefs(refs []string) (hasUV, hasNormal, ok bool) {
	for _, ref := range refs {
		parts := strings.Split(ref, "/")
		if len(parts) > 3 {
			return false, false, false
		}
		for i, p := range parts {
			if p == "" {
				if i == 0 {
					return false, false, false
				}
				continue
			}
			n, err := strconv.Atoi(p)
			if err != nil || n == 0 {
				return false, false, false
			}
			switch i {
			case 1:
				hasUV = true
			case 2:
				hasNormal = true
			}
		}
	}
	return hasUV, hasNormal, true
}
