package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/polymesh/pkg/brep"
	"github.com/Faultbox/polymesh/pkg/mesh"
)

func face(pts ...brep.Point) brep.Face {
	return brep.Face{Bounds: []brep.FaceBound{{
		Loop:        &brep.PolyLoop{Polygon: pts},
		Orientation: true,
		Outer:       true,
	}}}
}

func triangleShell(x float64) []brep.Face {
	return []brep.Face{face(brep.Pt(x, 0, 0), brep.Pt(x+1, 0, 0), brep.Pt(x, 1, 0))}
}

// cube returns an axis-aligned unit cube with outward-wound quad faces.
func cube(o float64) []brep.Face {
	p := func(x, y, z float64) brep.Point { return brep.Pt(o+x, o+y, o+z) }
	return []brep.Face{
		face(p(0, 0, 0), p(0, 1, 0), p(1, 1, 0), p(1, 0, 0)), // -Z
		face(p(0, 0, 1), p(1, 0, 1), p(1, 1, 1), p(0, 1, 1)), // +Z
		face(p(0, 0, 0), p(1, 0, 0), p(1, 0, 1), p(0, 0, 1)), // -Y
		face(p(0, 1, 0), p(0, 1, 1), p(1, 1, 1), p(1, 1, 0)), // +Y
		face(p(0, 0, 0), p(0, 0, 1), p(0, 1, 1), p(0, 1, 0)), // -X
		face(p(1, 0, 0), p(1, 1, 0), p(1, 1, 1), p(1, 0, 1)), // +X
	}
}

// meshWithVertices returns a mesh holding n distinct vertices and one triangle.
func meshWithVertices(n int) *mesh.Mesh {
	m := mesh.NewMesh(0)
	for i := 0; i < n; i++ {
		m.AddVertex(r3.Vec{X: float64(i), Y: float64(i % 7), Z: float64(i % 3)})
	}
	m.AddTriangle(0, n-2, n-1, 0)
	return m
}

func TestIndexWidth(t *testing.T) {
	tests := []struct {
		vertices int
		width    int
	}{
		{3, 1},
		{255, 1},
		{256, 2},
		{65535, 2},
		{65536, 4},
	}

	for _, tt := range tests {
		m := meshWithVertices(tt.vertices)
		data, err := EncodeBinary([]*mesh.Mesh{m})
		if err != nil {
			t.Fatalf("%d vertices: EncodeBinary failed: %v", tt.vertices, err)
		}

		wantLen := 9 + tt.vertices*24 + 4 + 4 + 3*(tt.width+2)
		if len(data) != wantLen {
			t.Errorf("%d vertices: expected %d bytes (index width %d), got %d", tt.vertices, wantLen, tt.width, len(data))
		}

		p, err := ParseBinary(data)
		if err != nil {
			t.Fatalf("%d vertices: ParseBinary failed: %v", tt.vertices, err)
		}
		if p.IndexWidth != tt.width {
			t.Errorf("%d vertices: expected index width %d, got %d", tt.vertices, tt.width, p.IndexWidth)
		}
		last := p.Faces[0].Triangles[0].Corners[2].Index
		if last != uint32(tt.vertices-1) {
			t.Errorf("%d vertices: expected last index %d, got %d", tt.vertices, tt.vertices-1, last)
		}
	}
}

func TestEncodeBinary_SingleTriangle(t *testing.T) {
	meshes := mesh.Build([][]brep.Face{triangleShell(0)}, mesh.Options{})
	data, err := EncodeBinary(meshes)
	if err != nil {
		t.Fatalf("EncodeBinary failed: %v", err)
	}

	if data[0] != 1 {
		t.Errorf("expected version byte 1, got %d", data[0])
	}
	if vc := binary.LittleEndian.Uint32(data[1:5]); vc != 3 {
		t.Errorf("expected vertex count 3, got %d", vc)
	}
	if tc := binary.LittleEndian.Uint32(data[5:9]); tc != 1 {
		t.Errorf("expected triangle count 1, got %d", tc)
	}
	if x := math.Float64frombits(binary.LittleEndian.Uint64(data[9+24 : 9+32])); x != 1 {
		t.Errorf("expected second vertex x=1, got %f", x)
	}

	faces := data[9+3*24:]
	if fc := binary.LittleEndian.Uint32(faces[0:4]); fc != 1 {
		t.Errorf("expected face count 1, got %d", fc)
	}
	if marker := int32(binary.LittleEndian.Uint32(faces[4:8])); marker != -1 {
		t.Errorf("expected face marker -1, got %d", marker)
	}
	// Three 1-byte indices each followed by the +Z packed normal (0, 0).
	want := []byte{0, 0, 0, 1, 0, 0, 2, 0, 0}
	if !bytes.Equal(faces[8:], want) {
		t.Errorf("triangle bytes = %v, want %v", faces[8:], want)
	}
}

func TestEncodeBinary_QuadLayout(t *testing.T) {
	meshes := mesh.Build([][]brep.Face{{face(
		brep.Pt(0, 0, 0), brep.Pt(2, 0, 0), brep.Pt(2, 1, 0), brep.Pt(0, 1, -0.5),
	)}}, mesh.Options{})
	data, err := EncodeBinary(meshes)
	if err != nil {
		t.Fatalf("EncodeBinary failed: %v", err)
	}

	if want := 9 + 4*24 + 4 + 4 + 2*3*3; len(data) != want {
		t.Fatalf("expected %d bytes, got %d", want, len(data))
	}
	if tc := binary.LittleEndian.Uint32(data[5:9]); tc != 2 {
		t.Errorf("expected triangle count 2, got %d", tc)
	}
	if z := math.Float64frombits(binary.LittleEndian.Uint64(data[9+3*24+16:])); z != -0.5 {
		t.Errorf("expected fourth vertex z=-0.5, got %f", z)
	}
	faces := data[9+4*24:]
	if fc := binary.LittleEndian.Uint32(faces); fc != 1 {
		t.Errorf("expected face count 1, got %d", fc)
	}
	if marker := int32(binary.LittleEndian.Uint32(faces[4:])); marker != -2 {
		t.Errorf("expected face marker -2, got %d", marker)
	}
	// Corners of the first triangle are 0, 1, 3 in order.
	if got := []byte{faces[8], faces[11], faces[14]}; !bytes.Equal(got, []byte{0, 1, 3}) {
		t.Errorf("first triangle indices = %v, want [0 1 3]", got)
	}
}

func TestEncodeBinary_TwoShellsOffset(t *testing.T) {
	meshes := mesh.Build([][]brep.Face{triangleShell(0), triangleShell(10)}, mesh.Options{})
	data, err := EncodeBinary(meshes)
	if err != nil {
		t.Fatalf("EncodeBinary failed: %v", err)
	}

	p, err := ParseBinary(data)
	if err != nil {
		t.Fatalf("ParseBinary failed: %v", err)
	}
	if len(p.Vertices) != 6 || p.TriangleCount() != 2 {
		t.Fatalf("expected 6 vertices and 2 triangles, got %d and %d", len(p.Vertices), p.TriangleCount())
	}
	second := p.Faces[1].Triangles[0]
	for i, c := range second.Corners {
		if c.Index != uint32(3+i) {
			t.Errorf("corner %d: expected index %d, got %d", i, 3+i, c.Index)
		}
	}
	if p.Vertices[3] != (r3.Vec{X: 10}) {
		t.Errorf("expected second shell vertices after the first, got %v", p.Vertices[3])
	}
}

func TestBinaryRoundTrip_Counts(t *testing.T) {
	meshes := mesh.Build([][]brep.Face{cube(0), cube(5)}, mesh.Options{})
	data, err := EncodeBinary(meshes)
	if err != nil {
		t.Fatalf("EncodeBinary failed: %v", err)
	}
	p, err := ParseBinary(data)
	if err != nil {
		t.Fatalf("ParseBinary failed: %v", err)
	}

	s := mesh.Summarize(meshes)
	if len(p.Vertices) != s.Vertices || s.Vertices != 16 {
		t.Errorf("expected 16 vertices, got %d decoded, %d pooled", len(p.Vertices), s.Vertices)
	}
	if p.TriangleCount() != s.Triangles || s.Triangles != 24 {
		t.Errorf("expected 24 triangles, got %d decoded, %d built", p.TriangleCount(), s.Triangles)
	}
	if len(p.Faces) != 12 {
		t.Errorf("expected 12 face groups, got %d", len(p.Faces))
	}
	for fi, f := range p.Faces {
		if len(f.Triangles) != 2 {
			t.Errorf("face %d: expected 2 triangles, got %d", fi, len(f.Triangles))
		}
	}

	// +Z face of the first cube packs to 0.
	if n := p.Faces[1].Triangles[0].Corners[0].Normal; n != 0 {
		t.Errorf("expected +Z packed normal 0, got %d", n)
	}
	if p.Bounds().Floats() != s.Bounds.Floats() {
		t.Errorf("decoded bounds %v differ from mesh bounds %v", p.Bounds().Floats(), s.Bounds.Floats())
	}
}

func TestParseBinary_Errors(t *testing.T) {
	meshes := mesh.Build([][]brep.Face{triangleShell(0)}, mesh.Options{})
	valid, err := EncodeBinary(meshes)
	if err != nil {
		t.Fatalf("EncodeBinary failed: %v", err)
	}

	badVersion := append([]byte(nil), valid...)
	badVersion[0] = 9

	badMarker := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(badMarker[9+72+4:], 1)

	badIndex := append([]byte(nil), valid...)
	badIndex[len(badIndex)-3] = 7

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, ErrTruncatedData},
		{"short header", valid[:5], ErrTruncatedData},
		{"truncated vertices", valid[:30], ErrTruncatedData},
		{"truncated faces", valid[:len(valid)-2], ErrTruncatedData},
		{"bad version", badVersion, ErrUnsupportedVersion},
		{"positive marker", badMarker, ErrInvalidFaceMarker},
		{"index out of range", badIndex, ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBinary(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	meshes := mesh.Build([][]brep.Face{triangleShell(0), cube(-3)}, mesh.Options{})

	for _, format := range []GeometryType{Polyhedron, PolyhedronBinary} {
		t.Run(format.String(), func(t *testing.T) {
			sg, err := Encode(format, meshes)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if sg.Format != format {
				t.Errorf("expected format %d, got %d", format, sg.Format)
			}
			want := [6]float32{-3, -3, -3, 1, 1, 0}
			if sg.BoundingBox != want {
				t.Errorf("bounding box = %v, want %v", sg.BoundingBox, want)
			}

			p, err := sg.Decode()
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if len(p.Vertices) != 11 || p.TriangleCount() != 13 || len(p.Faces) != 7 {
				t.Errorf("expected 11 vertices, 13 triangles, 7 faces; got %d, %d, %d",
					len(p.Vertices), p.TriangleCount(), len(p.Faces))
			}
		})
	}

	if _, err := Encode(GeometryType(7), meshes); !errors.Is(err, ErrUnsupportedGeometryType) {
		t.Errorf("expected ErrUnsupportedGeometryType, got %v", err)
	}
	if _, err := (&ShapeGeometry{Format: 0}).Decode(); !errors.Is(err, ErrUnsupportedGeometryType) {
		t.Errorf("expected ErrUnsupportedGeometryType from Decode, got %v", err)
	}
}

func TestParseGeometryType(t *testing.T) {
	tests := []struct {
		name    string
		want    GeometryType
		wantErr bool
	}{
		{"text", Polyhedron, false},
		{"Polyhedron", Polyhedron, false},
		{" binary ", PolyhedronBinary, false},
		{"polyhedron_binary", PolyhedronBinary, false},
		{"gltf", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGeometryType(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseGeometryType(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnsupportedGeometryType) {
				t.Errorf("expected ErrUnsupportedGeometryType, got %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseGeometryType(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
