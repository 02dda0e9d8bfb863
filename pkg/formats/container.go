package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrInvalidShapeMagic is returned when a shape file does not start with "PMSH".
var ErrInvalidShapeMagic = errors.New("invalid shape file magic: expected 'PMSH'")

const shapeMagic = "PMSH"

// shapeHeader is the fixed part of a stored shape file.
type shapeHeader struct {
	Magic       [4]byte
	Format      GeometryType
	BoundingBox [6]float32
	DataLength  uint32
}

// WriteTo stores the geometry as a shape file: the "PMSH" magic, the format
// byte, the bounding box as six little-endian float32 values, the data length
// and the shape data.
func (s *ShapeGeometry) WriteTo(w io.Writer) (int64, error) {
	if uint64(len(s.ShapeData)) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d bytes of shape data", ErrTooLarge, len(s.ShapeData))
	}
	h := shapeHeader{
		Format:      s.Format,
		BoundingBox: s.BoundingBox,
		DataLength:  uint32(len(s.ShapeData)),
	}
	copy(h.Magic[:], shapeMagic)

	var buf bytes.Buffer
	buf.Grow(binary.Size(h) + len(s.ShapeData))
	if err := binary.Write(&buf, binary.LittleEndian, &h); err != nil {
		return 0, err
	}
	buf.Write(s.ShapeData)
	return buf.WriteTo(w)
}

// ReadShapeGeometry reads a shape file written by WriteTo.
func ReadShapeGeometry(r io.Reader) (*ShapeGeometry, error) {
	var h shapeHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, truncated(err)
	}
	if string(h.Magic[:]) != shapeMagic {
		return nil, ErrInvalidShapeMagic
	}
	if h.Format != Polyhedron && h.Format != PolyhedronBinary {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedGeometryType, byte(h.Format))
	}

	data, err := io.ReadAll(io.LimitReader(r, int64(h.DataLength)))
	if err != nil {
		return nil, err
	}
	if len(data) != int(h.DataLength) {
		return nil, fmt.Errorf("%w: %d of %d bytes", ErrTruncatedData, len(data), h.DataLength)
	}
	return &ShapeGeometry{
		Format:      h.Format,
		BoundingBox: h.BoundingBox,
		ShapeData:   data,
	}, nil
}
