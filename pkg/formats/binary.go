package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/polymesh/pkg/mesh"
)

// BinaryVersion is the leading format byte of the binary encoding.
const BinaryVersion = 1

// indexCodec reads and writes vertex indices at one fixed width.
type indexCodec struct {
	width  int
	append func(b []byte, idx uint32) []byte
	read   func(b []byte) uint32
}

// indexCodecFor picks the narrowest index width that can address vertexCount vertices.
func indexCodecFor(vertexCount uint32) indexCodec {
	switch {
	case vertexCount <= 0xFF:
		return indexCodec{
			width:  1,
			append: func(b []byte, idx uint32) []byte { return append(b, byte(idx)) },
			read:   func(b []byte) uint32 { return uint32(b[0]) },
		}
	case vertexCount <= 0xFFFF:
		return indexCodec{
			width:  2,
			append: func(b []byte, idx uint32) []byte { return binary.LittleEndian.AppendUint16(b, uint16(idx)) },
			read:   func(b []byte) uint32 { return uint32(binary.LittleEndian.Uint16(b)) },
		}
	default:
		return indexCodec{
			width:  4,
			append: binary.LittleEndian.AppendUint32,
			read:   binary.LittleEndian.Uint32,
		}
	}
}

// EncodeBinary writes meshes in the little-endian binary polyhedron encoding:
//
//	uint8   version (1)
//	uint32  vertex count
//	uint32  triangle count
//	float64 x, y, z per vertex
//	uint32  face count
//	per face: int32 -triangles, then per corner: index, uint8 U, uint8 V
//
// Index width is 1, 2 or 4 bytes, fixed for the whole stream by the vertex count.
// Vertices of all meshes are concatenated in order and indices are offset to match.
func EncodeBinary(meshes []*mesh.Mesh) ([]byte, error) {
	s := mesh.Summarize(meshes)
	if uint64(s.Vertices) > math.MaxUint32 || uint64(s.Triangles) > math.MaxUint32 || uint64(s.Faces) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d vertices, %d triangles", ErrTooLarge, s.Vertices, s.Triangles)
	}
	vertexCount := uint32(s.Vertices)
	idx := indexCodecFor(vertexCount)

	le := binary.LittleEndian
	buf := make([]byte, 0, 9+s.Vertices*24+4+s.Faces*4+s.Triangles*3*(idx.width+2))

	buf = append(buf, BinaryVersion)
	buf = le.AppendUint32(buf, vertexCount)
	buf = le.AppendUint32(buf, uint32(s.Triangles))

	for _, m := range meshes {
		for _, v := range m.Vertices() {
			buf = le.AppendUint64(buf, math.Float64bits(v.X))
			buf = le.AppendUint64(buf, math.Float64bits(v.Y))
			buf = le.AppendUint64(buf, math.Float64bits(v.Z))
		}
	}

	buf = le.AppendUint32(buf, uint32(s.Faces))
	offset := uint32(0)
	for _, m := range meshes {
		for _, g := range m.Groups() {
			if len(g.Triangles) > math.MaxInt32 {
				return nil, fmt.Errorf("%w: face %d has %d triangles", ErrTooLarge, g.ID, len(g.Triangles))
			}
			// A negative count marks the start of a face.
			buf = le.AppendUint32(buf, uint32(int32(-len(g.Triangles))))
			for _, tri := range g.Triangles {
				for k := 0; k < 3; k++ {
					vi, pn := tri.Corner(k)
					buf = idx.append(buf, uint32(vi)+offset)
					buf = append(buf, pn.U(), pn.V())
				}
			}
		}
		offset += uint32(m.VertexCount())
	}
	return buf, nil
}

// ParseBinary decodes the binary polyhedron encoding.
func ParseBinary(data []byte) (*PolyhedronData, error) {
	if len(data) < 9 {
		return nil, ErrTruncatedData
	}
	version := data[0]
	if version != BinaryVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	vertexCount := binary.LittleEndian.Uint32(data[1:5])
	triangleCount := binary.LittleEndian.Uint32(data[5:9])
	r := bytes.NewReader(data[9:])

	if uint64(vertexCount)*24 > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: %d vertices declared", ErrTruncatedData, vertexCount)
	}
	idx := indexCodecFor(vertexCount)
	p := &PolyhedronData{
		Version:    int(version),
		Vertices:   make([]r3.Vec, vertexCount),
		IndexWidth: idx.width,
	}
	for i := range p.Vertices {
		var c [3]float64
		if err := binary.Read(r, binary.LittleEndian, &c); err != nil {
			return nil, truncated(err)
		}
		p.Vertices[i] = r3.Vec{X: c[0], Y: c[1], Z: c[2]}
	}

	var faceCount uint32
	if err := binary.Read(r, binary.LittleEndian, &faceCount); err != nil {
		return nil, truncated(err)
	}

	corner := make([]byte, idx.width+2)
	total := 0
	for f := uint32(0); f < faceCount; f++ {
		var marker int32
		if err := binary.Read(r, binary.LittleEndian, &marker); err != nil {
			return nil, truncated(err)
		}
		if marker >= 0 {
			return nil, fmt.Errorf("%w: %d at face %d", ErrInvalidFaceMarker, marker, f)
		}
		n := int(-int64(marker))
		if n > r.Len()/(3*len(corner)) {
			return nil, fmt.Errorf("%w: face %d declares %d triangles", ErrTruncatedData, f, n)
		}

		face := FaceRecord{Triangles: make([]TriangleRecord, n)}
		for t := 0; t < n; t++ {
			for c := 0; c < 3; c++ {
				if _, err := io.ReadFull(r, corner); err != nil {
					return nil, truncated(err)
				}
				vi := idx.read(corner[:idx.width])
				if vi >= vertexCount {
					return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, vi)
				}
				pn := mesh.PackedNormal(uint16(corner[idx.width])<<8 | uint16(corner[idx.width+1]))
				face.Triangles[t].Corners[c] = CornerRecord{Index: vi, Normal: pn}
			}
		}
		total += n
		p.Faces = append(p.Faces, face)
	}

	if total != int(triangleCount) {
		return nil, fmt.Errorf("%w: %d triangles, header says %d", ErrCountMismatch, total, triangleCount)
	}
	return p, nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncatedData
	}
	return err
}
