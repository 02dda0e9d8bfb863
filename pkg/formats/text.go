package formats

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/polymesh/pkg/mesh"
)

// TextVersion is the version written in the text header.
const TextVersion = 2

// EncodeText writes meshes in the text polyhedron encoding:
//
//	P <version> <vertices> <faces> <triangles> 0
//	V x,y,z x,y,z ...
//	T i/n,j,k i,j/n,k ...      (one line per face group)
//
// Vertices of all meshes are concatenated in order and indices are offset to
// match. A corner carries "/normal" only when its packed normal differs from
// the previous corner on the line. The encoding assumes flat shading.
func EncodeText(meshes []*mesh.Mesh) []byte {
	s := mesh.Summarize(meshes)

	var buf bytes.Buffer
	buf.Grow(0x4000)
	fmt.Fprintf(&buf, "P %d %d %d %d %d\n", TextVersion, s.Vertices, s.Faces, s.Triangles, 0)

	buf.WriteByte('V')
	for _, m := range meshes {
		for _, v := range m.Vertices() {
			buf.WriteByte(' ')
			buf.WriteString(formatFloat(v.X))
			buf.WriteByte(',')
			buf.WriteString(formatFloat(v.Y))
			buf.WriteByte(',')
			buf.WriteString(formatFloat(v.Z))
		}
	}
	buf.WriteByte('\n')

	offset := 0
	for _, m := range meshes {
		for _, g := range m.Groups() {
			buf.WriteByte('T')
			current := -1
			for _, tri := range g.Triangles {
				buf.WriteByte(' ')
				for k := 0; k < 3; k++ {
					if k > 0 {
						buf.WriteByte(',')
					}
					idx, pn := tri.Corner(k)
					buf.WriteString(strconv.Itoa(idx + offset))
					if int(pn) != current {
						buf.WriteByte('/')
						buf.WriteString(strconv.Itoa(int(pn)))
						current = int(pn)
					}
				}
			}
			buf.WriteByte('\n')
		}
		offset += m.VertexCount()
	}
	return buf.Bytes()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ParseText decodes the text polyhedron encoding.
func ParseText(data []byte) (*PolyhedronData, error) {
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) < 2 {
		return nil, ErrTruncatedData
	}

	header := strings.Fields(lines[0])
	if len(header) != 6 || header[0] != "P" {
		return nil, fmt.Errorf("%w: header %q", ErrInvalidTextRecord, lines[0])
	}
	var counts [5]int
	for i := range counts {
		n, err := strconv.Atoi(header[i+1])
		if err != nil {
			return nil, fmt.Errorf("%w: header field %d: %v", ErrInvalidTextRecord, i+1, err)
		}
		counts[i] = n
	}
	if counts[0] != TextVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, counts[0])
	}
	vertexCount, faceCount, triangleCount := counts[1], counts[2], counts[3]

	p := &PolyhedronData{Version: counts[0]}

	vline := strings.Fields(lines[1])
	if len(vline) == 0 || vline[0] != "V" {
		return nil, fmt.Errorf("%w: expected vertex line", ErrInvalidTextRecord)
	}
	p.Vertices = make([]r3.Vec, 0, len(vline)-1)
	for _, tok := range vline[1:] {
		v, err := parseVertex(tok)
		if err != nil {
			return nil, err
		}
		p.Vertices = append(p.Vertices, v)
	}
	if len(p.Vertices) != vertexCount {
		return nil, fmt.Errorf("%w: %d vertices, header says %d", ErrCountMismatch, len(p.Vertices), vertexCount)
	}

	for _, line := range lines[2:] {
		if line == "" {
			continue
		}
		face, err := parseFaceLine(line, uint32(len(p.Vertices)))
		if err != nil {
			return nil, err
		}
		p.Faces = append(p.Faces, face)
	}
	if len(p.Faces) != faceCount {
		return nil, fmt.Errorf("%w: %d faces, header says %d", ErrCountMismatch, len(p.Faces), faceCount)
	}
	if p.TriangleCount() != triangleCount {
		return nil, fmt.Errorf("%w: %d triangles, header says %d", ErrCountMismatch, p.TriangleCount(), triangleCount)
	}
	return p, nil
}

func parseVertex(tok string) (r3.Vec, error) {
	parts := strings.Split(tok, ",")
	if len(parts) != 3 {
		return r3.Vec{}, fmt.Errorf("%w: vertex %q", ErrInvalidTextRecord, tok)
	}
	var c [3]float64
	for i, s := range parts {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return r3.Vec{}, fmt.Errorf("%w: vertex %q: %v", ErrInvalidTextRecord, tok, err)
		}
		c[i] = f
	}
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

func parseFaceLine(line string, vertexCount uint32) (FaceRecord, error) {
	tokens := strings.Fields(line)
	if len(tokens) < 2 || tokens[0] != "T" {
		return FaceRecord{}, fmt.Errorf("%w: face line %q", ErrInvalidTextRecord, line)
	}

	var face FaceRecord
	current := -1
	for _, tok := range tokens[1:] {
		corners := strings.Split(tok, ",")
		if len(corners) != 3 {
			return FaceRecord{}, fmt.Errorf("%w: triangle %q", ErrInvalidTextRecord, tok)
		}
		var tri TriangleRecord
		for i, c := range corners {
			idxStr, normalStr, hasNormal := strings.Cut(c, "/")
			idx, err := strconv.ParseUint(idxStr, 10, 32)
			if err != nil {
				return FaceRecord{}, fmt.Errorf("%w: corner %q: %v", ErrInvalidTextRecord, c, err)
			}
			if uint32(idx) >= vertexCount {
				return FaceRecord{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, idx)
			}
			if hasNormal {
				n, err := strconv.ParseUint(normalStr, 10, 16)
				if err != nil {
					return FaceRecord{}, fmt.Errorf("%w: corner %q: %v", ErrInvalidTextRecord, c, err)
				}
				current = int(n)
			} else if current < 0 {
				return FaceRecord{}, fmt.Errorf("%w: corner %q has no normal to inherit", ErrInvalidTextRecord, c)
			}
			tri.Corners[i] = CornerRecord{Index: uint32(idx), Normal: mesh.PackedNormal(current)}
		}
		face.Triangles = append(face.Triangles, tri)
	}
	return face, nil
}
