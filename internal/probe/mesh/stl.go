package mesh

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
)

const (
	stlHeader   = 80
	stlTriangle = 50
)

// ReadSTL parses an STL stream of the given total size. A file whose size
// matches the binary triangle count is binary even when its header starts
// with "solid"; otherwise it must be ascii.
func ReadSTL(ctx context.Context, r io.Reader, size int64) (*info.ModelInfo, error) {
	br := bufio.NewReaderSize(r, 64<<10)
	head, _ := br.Peek(stlHeader + 4)
	if len(head) == stlHeader+4 {
		n := int64(binary.LittleEndian.Uint32(head[stlHeader:]))
		if size == stlHeader+4+n*stlTriangle {
			return readSTLBinary(ctx, br, n)
		}
	}
	if !bytes.HasPrefix(bytes.TrimLeft(head, " \t\r\n"), []byte("solid")) {
		return nil, probe.NotApplicablef(NameSTL, "neither binary nor ascii STL")
	}
	return readSTLASCII(ctx, br)
}

func readSTLBinary(ctx context.Context, br *bufio.Reader, n int64) (*info.ModelInfo, error) {
	if _, err := br.Discard(stlHeader + 4); err != nil {
		return nil, probe.Corrupted(NameSTL, err)
	}
	mesh := info.Mesh{VertexCount: int(n * 3)}
	var rec [stlTriangle]byte
	for i := int64(0); i < n; i++ {
		if i%ctxEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if _, err := io.ReadFull(br, rec[:]); err != nil {
			return nil, probe.Corrupted(NameSTL, err)
		}
		if !mesh.HasNormals && !zeroVector(rec[0:12]) {
			mesh.HasNormals = true
		}
		// Bit 15 of the attribute word flags a valid 15-bit colour.
		if binary.LittleEndian.Uint16(rec[48:50])&0x8000 != 0 {
			mesh.HasVertexColor = true
		}
	}
	if n > 0 {
		mesh.Submeshes = []info.Submesh{{Geometry: info.GeometryTriangles}}
	}
	return &info.ModelInfo{Meshes: []info.Mesh{mesh}}, nil
}

func zeroVector(b []byte) bool {
	for i := 0; i < 3; i++ {
		if math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:])) != 0 {
			return false
		}
	}
	return true
}

func zeroText(f []string) bool {
	for _, s := range f {
		if v, err := strconv.ParseFloat(s, 64); err != nil || v != 0 {
			return false
		}
	}
	return true
}

// readSTLASCII reads "solid" blocks; each becomes one mesh.
func readSTLASCII(ctx context.Context, br *bufio.Reader) (*info.ModelInfo, error) {
	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 0, 64<<10), maxLine)
	out := &info.ModelInfo{}
	var cur *info.Mesh
	var facets int
	closeSolid := func() {
		if facets > 0 {
			cur.Submeshes = []info.Submesh{{Geometry: info.GeometryTriangles}}
		}
		out.Meshes = append(out.Meshes, *cur)
		cur, facets = nil, 0
	}
	for line := 0; sc.Scan(); line++ {
		if line%ctxEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		f := strings.Fields(sc.Text())
		if len(f) == 0 {
			continue
		}
		switch f[0] {
		case "solid":
			if cur != nil {
				return nil, probe.Corruptedf(NameSTL, "line %d: nested solid", line+1)
			}
			cur = &info.Mesh{Name: strings.Join(f[1:], " ")}
			continue
		case "endsolid":
			if cur == nil {
				return nil, probe.Corruptedf(NameSTL, "line %d: endsolid without solid", line+1)
			}
			closeSolid()
			continue
		}
		if cur == nil {
			return nil, probe.Corruptedf(NameSTL, "line %d: %q outside solid", line+1, f[0])
		}
		switch f[0] {
		case "facet":
			facets++
			if len(f) == 5 && f[1] == "normal" && !zeroText(f[2:5]) {
				cur.HasNormals = true
			}
		case "vertex":
			if len(f) != 4 {
				return nil, probe.Corruptedf(NameSTL, "line %d: bad vertex", line+1)
			}
			cur.VertexCount++
		case "outer", "endloop", "endfacet":
		default:
			return nil, probe.Corruptedf(NameSTL, "line %d: unknown keyword %q", line+1, f[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, probe.Corrupted(NameSTL, err)
	}
	if cur != nil {
		// Tolerate a missing final endsolid.
		closeSolid()
	}
	if len(out.Meshes) == 0 {
		return nil, probe.Corruptedf(NameSTL, "no solid")
	}
	return out, nil
}
