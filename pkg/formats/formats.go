// Package formats provides encoders and parsers for polyhedron shape data.
package formats

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/polymesh/pkg/mesh"
)

// Shape data errors.
var (
	ErrUnsupportedGeometryType = errors.New("unsupported geometry type")
	ErrUnsupportedVersion      = errors.New("unsupported shape data version")
	ErrTruncatedData           = errors.New("truncated shape data")
	ErrInvalidFaceMarker       = errors.New("invalid face marker")
	ErrInvalidTextRecord       = errors.New("invalid text record")
	ErrIndexOutOfRange         = errors.New("vertex index out of range")
	ErrCountMismatch           = errors.New("header count does not match data")
	ErrTooLarge                = errors.New("mesh too large to encode")
)

// GeometryType is the shape data encoding, stored as the format byte of a ShapeGeometry.
type GeometryType byte

const (
	Polyhedron       GeometryType = 1 // text encoding
	PolyhedronBinary GeometryType = 2 // binary encoding
)

// String returns the configuration name of the geometry type.
func (g GeometryType) String() string {
	switch g {
	case Polyhedron:
		return "text"
	case PolyhedronBinary:
		return "binary"
	default:
		return fmt.Sprintf("Unknown(%d)", byte(g))
	}
}

// ParseGeometryType maps a configuration name to a geometry type.
func ParseGeometryType(name string) (GeometryType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "text", "polyhedron":
		return Polyhedron, nil
	case "binary", "polyhedron_binary", "polyhedronbinary":
		return PolyhedronBinary, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedGeometryType, name)
	}
}

// ShapeGeometry is encoded shape data with its format tag and bounding box
// (minX, minY, minZ, maxX, maxY, maxZ).
type ShapeGeometry struct {
	Format      GeometryType
	BoundingBox [6]float32
	ShapeData   []byte
}

// Encode serializes the meshes, in order, with the given encoding.
func Encode(format GeometryType, meshes []*mesh.Mesh) (*ShapeGeometry, error) {
	var data []byte
	var err error
	switch format {
	case Polyhedron:
		data = EncodeText(meshes)
	case PolyhedronBinary:
		data, err = EncodeBinary(meshes)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedGeometryType, byte(format))
	}
	if err != nil {
		return nil, err
	}

	return &ShapeGeometry{
		Format:      format,
		BoundingBox: mesh.Summarize(meshes).Bounds.Floats(),
		ShapeData:   data,
	}, nil
}

// Decode parses ShapeData according to Format.
func (s *ShapeGeometry) Decode() (*PolyhedronData, error) {
	switch s.Format {
	case Polyhedron:
		return ParseText(s.ShapeData)
	case PolyhedronBinary:
		return ParseBinary(s.ShapeData)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedGeometryType, byte(s.Format))
	}
}

// PolyhedronData is decoded shape data.
type PolyhedronData struct {
	Version    int
	Vertices   []r3.Vec
	Faces      []FaceRecord
	IndexWidth int // bytes per index, binary encoding only
}

// FaceRecord holds the triangles of one face group.
type FaceRecord struct {
	Triangles []TriangleRecord
}

// TriangleRecord is one encoded triangle.
type TriangleRecord struct {
	Corners [3]CornerRecord
}

// CornerRecord is a vertex index with its packed normal.
type CornerRecord struct {
	Index  uint32
	Normal mesh.PackedNormal
}

// TriangleCount returns the number of triangles over all faces.
func (p *PolyhedronData) TriangleCount() int {
	n := 0
	for _, f := range p.Faces {
		n += len(f.Triangles)
	}
	return n
}

// Bounds returns the box of all decoded vertices.
func (p *PolyhedronData) Bounds() mesh.Bounds {
	var b mesh.Bounds
	for _, v := range p.Vertices {
		b.Add(v)
	}
	return b
}
