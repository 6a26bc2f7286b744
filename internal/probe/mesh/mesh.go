// Package mesh reads 3-D model files into meshes and submeshes: PLY
// (ascii and binary), STL (ascii and binary) and Wavefront OBJ.
//
// Readers only count; vertex data is skipped, never stored. Element counts
// are checked against the file size before anything is skipped, so a
// header that promises more data than the file holds fails as corrupted.
package mesh

import (
	"context"
	"io"
	"os"

	"github.com/backmassage/mediainfo/internal/info"
	"github.com/backmassage/mediainfo/internal/probe"
)

// Probe names used in attempt traces.
const (
	NamePLY = "ply"
	NameSTL = "stl"
	NameOBJ = "obj"
)

// maxLine bounds a single text line in ascii formats.
const maxLine = 1 << 20

// ctxEvery is how many records are read between context checks.
const ctxEvery = 1 << 14

type readFunc func(ctx context.Context, r io.Reader, size int64) (*info.ModelInfo, error)

func readFile(ctx context.Context, name, path string, read readFunc) (*info.ModelInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, probe.NotApplicable(name, err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, probe.NotApplicable(name, err)
	}
	return read(ctx, f, st.Size())
}

// PLY reads a Stanford polygon file.
func PLY(ctx context.Context, path string) (*info.ModelInfo, error) {
	return readFile(ctx, NamePLY, path, ReadPLY)
}

// STL reads a stereolithography file.
func STL(ctx context.Context, path string) (*info.ModelInfo, error) {
	return readFile(ctx, NameSTL, path, ReadSTL)
}

// OBJ reads a Wavefront object file.
func OBJ(ctx context.Context, path string) (*info.ModelInfo, error) {
	return readFile(ctx, NameOBJ, path, func(ctx context.Context, r io.Reader, _ int64) (*info.ModelInfo, error) {
		return ReadOBJ(ctx, r)
	})
}

// faceGeometry maps a polygon's vertex count to its primitive type.
func faceGeometry(n int) info.Geometry {
	switch n {
	case 1:
		return info.GeometryPoints
	case 2:
		return info.GeometryLines
	case 3:
		return info.GeometryTriangles
	case 4:
		return info.GeometryQuads
	default:
		return info.GeometryVariable
	}
}

// merge folds one more primitive type into an accumulated one. Unknown is
// the empty accumulator; mixed types become variable.
func merge(acc, g info.Geometry) info.Geometry {
	switch {
	case acc == info.GeometryUnknown:
		return g
	case acc == g:
		return acc
	default:
		return info.GeometryVariable
	}
}
