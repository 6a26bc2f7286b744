package mesh

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
)

const (
	plyMaxHeader = 64 << 10
	plyMaxElems  = 1 << 31
)

var plyTypeSize = map[string]int{
	"char": 1, "int8": 1, "uchar": 1, "uint8": 1,
	"short": 2, "int16": 2, "ushort": 2, "uint16": 2,
	"int": 4, "int32": 4, "uint": 4, "uint32": 4,
	"float": 4, "float32": 4, "double": 8, "float64": 8,
}

type plyProp struct {
	name      string
	size      int    // Scalar size, or list item size.
	countType string // Set for list properties.
}

type plyElement struct {
	name  string
	count int64
	props []plyProp
}

func (e *plyElement) has(names ...string) bool {
	for _, p := range e.props {
		for _, n := range names {
			if p.name == n {
				return true
			}
		}
	}
	return false
}

// recordSize is the byte size of a binary record, or -1 when the element
// has list properties.
func (e *plyElement) recordSize() int64 {
	var n int64
	for _, p := range e.props {
		if p.countType != "" {
			return -1
		}
		n += int64(p.size)
	}
	return n
}

type plyHeader struct {
	format   string
	elements []plyElement
	length   int64
}

// ReadPLY parses a PLY stream of the given total size. The file holds one
// unnamed mesh with one submesh; face list sizes decide its geometry.
func ReadPLY(ctx context.Context, r io.Reader, size int64) (*info.ModelInfo, error) {
	br := bufio.NewReader(r)
	h, err := readPLYHeader(br)
	if err != nil {
		return nil, err
	}

	mesh := info.Mesh{}
	geometry := info.GeometryUnknown
	var faces, edges int64
	for i := range h.elements {
		e := &h.elements[i]
		switch e.name {
		case "vertex":
			mesh.VertexCount = int(e.count)
			mesh.HasNormals = e.has("nx", "normal_x")
			mesh.HasTangent = e.has("tangent_x")
			mesh.HasTextureCoordinate = e.has("s", "u", "texture_u", "texture_s")
			mesh.HasVertexColor = e.has("red", "r", "diffuse_red")
			mesh.HasOcclusion = e.has("occlusion", "ambient_occlusion")
		case "face":
			faces = e.count
		case "edge":
			edges = e.count
		}
	}

	remaining := size - h.length
	visit := func(e *plyElement, listLen int64) {
		switch e.name {
		case "face":
			geometry = merge(geometry, faceGeometry(int(listLen)))
		case "tristrips":
			geometry = info.GeometryTriangleStrip
		}
	}
	switch h.format {
	case "ascii":
		err = readPLYASCII(ctx, br, h, visit)
	default:
		order := binary.ByteOrder(binary.LittleEndian)
		if h.format == "binary_big_endian" {
			order = binary.BigEndian
		}
		err = readPLYBinary(ctx, br, h, order, remaining, visit)
	}
	if err != nil {
		return nil, err
	}

	if geometry == info.GeometryUnknown {
		switch {
		case faces > 0:
			geometry = info.GeometryVariable
		case edges > 0:
			geometry = info.GeometryLines
		case mesh.VertexCount > 0:
			geometry = info.GeometryPoints
		}
	}
	if geometry != info.GeometryUnknown {
		mesh.Submeshes = []info.Submesh{{Geometry: geometry}}
	}
	return &info.ModelInfo{Meshes: []info.Mesh{mesh}}, nil
}

func readPLYHeader(br *bufio.Reader) (*plyHeader, error) {
	h := &plyHeader{}
	first := true
	for {
		line, err := br.ReadString('\n')
		h.length += int64(len(line))
		if h.length > plyMaxHeader {
			return nil, probe.Corruptedf(NamePLY, "header exceeds %d bytes", plyMaxHeader)
		}
		if err != nil {
			if first {
				return nil, probe.NotApplicable(NamePLY, err)
			}
			return nil, probe.Corruptedf(NamePLY, "header: %v", err)
		}
		f := strings.Fields(line)
		if first {
			if len(f) != 1 || f[0] != "ply" {
				return nil, probe.NotApplicablef(NamePLY, "no ply magic")
			}
			first = false
			continue
		}
		if len(f) == 0 {
			continue
		}
		switch f[0] {
		case "format":
			if len(f) < 2 {
				return nil, probe.Corruptedf(NamePLY, "bad format line")
			}
			switch f[1] {
			case "ascii", "binary_little_endian", "binary_big_endian":
				h.format = f[1]
			default:
				return nil, probe.Corruptedf(NamePLY, "unknown format %q", f[1])
			}
		case "comment", "obj_info":
		case "element":
			if len(f) != 3 {
				return nil, probe.Corruptedf(NamePLY, "bad element line %q", strings.TrimSpace(line))
			}
			n, err := strconv.ParseInt(f[2], 10, 64)
			if err != nil || n < 0 || n > plyMaxElems {
				return nil, probe.Corruptedf(NamePLY, "bad element count %q", f[2])
			}
			h.elements = append(h.elements, plyElement{name: f[1], count: n})
		case "property":
			if len(h.elements) == 0 {
				return nil, probe.Corruptedf(NamePLY, "property before element")
			}
			p, err := parsePLYProp(f)
			if err != nil {
				return nil, err
			}
			e := &h.elements[len(h.elements)-1]
			e.props = append(e.props, p)
		case "end_header":
			if h.format == "" {
				return nil, probe.Corruptedf(NamePLY, "missing format line")
			}
			return h, nil
		default:
			return nil, probe.Corruptedf(NamePLY, "unknown header keyword %q", f[0])
		}
	}
}

func parsePLYProp(f []string) (plyProp, error) {
	if len(f) == 5 && f[1] == "list" {
		cs, ok1 := plyTypeSize[f[2]]
		is, ok2 := plyTypeSize[f[3]]
		if !ok1 || !ok2 || cs > 4 || f[2] == "float" || f[2] == "float32" {
			return plyProp{}, probe.Corruptedf(NamePLY, "bad list types %s %s", f[2], f[3])
		}
		return plyProp{name: f[4], size: is, countType: f[2]}, nil
	}
	if len(f) != 3 {
		return plyProp{}, probe.Corruptedf(NamePLY, "bad property line")
	}
	s, ok := plyTypeSize[f[1]]
	if !ok {
		return plyProp{}, probe.Corruptedf(NamePLY, "unknown type %q", f[1])
	}
	return plyProp{name: f[2], size: s}, nil
}

// listLenProp returns the index of the first list property, or -1.
func listLenProp(e *plyElement) int {
	for i, p := range e.props {
		if p.countType != "" {
			return i
		}
	}
	return -1
}

func readPLYASCII(ctx context.Context, br *bufio.Reader, h *plyHeader, visit func(*plyElement, int64)) error {
	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 0, 64<<10), maxLine)
	for i := range h.elements {
		e := &h.elements[i]
		list := listLenProp(e)
		for n := int64(0); n < e.count; n++ {
			if n%ctxEvery == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			if !sc.Scan() {
				if err := sc.Err(); err != nil {
					return probe.Corrupted(NamePLY, err)
				}
				return probe.Corruptedf(NamePLY, "element %s: %d of %d records", e.name, n, e.count)
			}
			if list < 0 {
				continue
			}
			f := strings.Fields(sc.Text())
			// Scalars before the list take one field each.
			if len(f) <= list {
				return probe.Corruptedf(NamePLY, "element %s: short record", e.name)
			}
			k, err := strconv.ParseInt(f[list], 10, 64)
			if err != nil || k < 0 {
				return probe.Corruptedf(NamePLY, "element %s: bad list length %q", e.name, f[list])
			}
			visit(e, k)
		}
	}
	return nil
}

func readPLYBinary(ctx context.Context, br *bufio.Reader, h *plyHeader, order binary.ByteOrder, remaining int64, visit func(*plyElement, int64)) error {
	var buf [4]byte
	for i := range h.elements {
		e := &h.elements[i]
		if rs := e.recordSize(); rs >= 0 {
			total := rs * e.count
			if rs > 0 && (e.count > remaining/rs || total > remaining) {
				return probe.Corruptedf(NamePLY, "element %s needs %d records of %d bytes, %d left", e.name, e.count, rs, remaining)
			}
			if err := discard(br, total); err != nil {
				return err
			}
			remaining -= total
			continue
		}
		if e.count > remaining {
			return probe.Corruptedf(NamePLY, "element %s: %d records, %d bytes left", e.name, e.count, remaining)
		}
		for n := int64(0); n < e.count; n++ {
			if n%ctxEvery == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			first := int64(-1)
			for _, p := range e.props {
				if p.countType == "" {
					if err := take(br, &remaining, int64(p.size)); err != nil {
						return err
					}
					continue
				}
				cs := plyTypeSize[p.countType]
				if remaining < int64(cs) {
					return probe.Corruptedf(NamePLY, "element %s: truncated", e.name)
				}
				if _, err := io.ReadFull(br, buf[:cs]); err != nil {
					return probe.Corrupted(NamePLY, err)
				}
				remaining -= int64(cs)
				k := listCount(buf[:cs], p.countType, order)
				if k < 0 {
					return probe.Corruptedf(NamePLY, "element %s: negative list length", e.name)
				}
				if err := take(br, &remaining, k*int64(p.size)); err != nil {
					return err
				}
				if first < 0 {
					first = k
				}
			}
			if first >= 0 {
				visit(e, first)
			}
		}
	}
	return nil
}

func take(br *bufio.Reader, remaining *int64, n int64) error {
	if n > *remaining {
		return probe.Corruptedf(NamePLY, "record overruns the file")
	}
	*remaining -= n
	return discard(br, n)
}

func discard(br *bufio.Reader, n int64) error {
	for n > 0 {
		step := n
		if step > 1<<30 {
			step = 1 << 30
		}
		d, err := br.Discard(int(step))
		n -= int64(d)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return probe.Corruptedf(NamePLY, "body truncated")
			}
			return probe.Corrupted(NamePLY, err)
		}
	}
	return nil
}

func listCount(b []byte, typ string, order binary.ByteOrder) int64 {
	switch typ {
	case "char", "int8":
		return int64(int8(b[0]))
	case "uchar", "uint8":
		return int64(b[0])
	case "short", "int16":
		return int64(int16(order.Uint16(b)))
	case "ushort", "uint16":
		return int64(order.Uint16(b))
	case "int", "int32":
		return int64(int32(order.Uint32(b)))
	default:
		return int64(order.Uint32(b))
	}
}
