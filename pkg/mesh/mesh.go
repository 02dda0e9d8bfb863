package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle is three pooled vertex indices belonging to one face group.
// Corners 0, 1, 2 follow the winding of the polygon the triangle was cut from.
type Triangle struct {
	Vertices [3]int
	Normal   r3.Vec // unit plane normal, zero for degenerate triangles
	FaceID   int
}

// Corner returns the vertex index and packed normal of corner i.
// All corners share the plane normal.
func (t Triangle) Corner(i int) (int, PackedNormal) {
	return t.Vertices[i], PackNormal(t.Normal)
}

// Degenerate reports whether the triangle has no defined normal.
func (t Triangle) Degenerate() bool {
	return t.Normal == (r3.Vec{})
}

// Flip reverses the winding and the normal.
func (t *Triangle) Flip() {
	t.Vertices[1], t.Vertices[2] = t.Vertices[2], t.Vertices[1]
	t.Normal = r3.Scale(-1, t.Normal)
}

// FaceGroup holds the triangles cut from one input face.
type FaceGroup struct {
	ID        int
	Triangles []Triangle
}

// Bounds is an axis-aligned bounding box. The zero value is empty.
type Bounds struct {
	r3.Box
	set bool
}

// Add grows the box to include p.
func (b *Bounds) Add(p r3.Vec) {
	if !b.set {
		b.Min, b.Max, b.set = p, p, true
		return
	}
	b.Min = r3.Vec{X: min(b.Min.X, p.X), Y: min(b.Min.Y, p.Y), Z: min(b.Min.Z, p.Z)}
	b.Max = r3.Vec{X: max(b.Max.X, p.X), Y: max(b.Max.Y, p.Y), Z: max(b.Max.Z, p.Z)}
}

// Union grows the box to include o.
func (b *Bounds) Union(o Bounds) {
	if !o.set {
		return
	}
	b.Add(o.Min)
	b.Add(o.Max)
}

// IsEmpty reports whether no point was added.
func (b Bounds) IsEmpty() bool {
	return !b.set
}

// Floats returns minX, minY, minZ, maxX, maxY, maxZ. An empty box is all zeros.
func (b Bounds) Floats() [6]float32 {
	if !b.set {
		return [6]float32{}
	}
	return [6]float32{
		float32(b.Min.X), float32(b.Min.Y), float32(b.Min.Z),
		float32(b.Max.X), float32(b.Max.Y), float32(b.Max.Z),
	}
}

// Mesh accumulates welded vertices and face-grouped triangles for one shell.
// It is filled through AddVertex and AddTriangle, finalized with
// UnifyFaceOrientation, and read-only afterwards.
type Mesh struct {
	pool      *VertexPool
	groups    []FaceGroup
	byID      map[int]int
	bounds    Bounds
	triangles int
}

// NewMesh creates an empty mesh whose pool welds with the given tolerance.
func NewMesh(weldTolerance float64) *Mesh {
	return &Mesh{
		pool: NewVertexPool(weldTolerance),
		byID: make(map[int]int),
	}
}

// AddVertex welds p into the pool and returns its index.
func (m *Mesh) AddVertex(p r3.Vec) int {
	idx, added := m.pool.Add(p)
	if added {
		m.bounds.Add(p)
	}
	return idx
}

// AddTriangle appends a triangle to the group of faceID. Zero-area triangles
// are kept with a zero normal. It returns false, adding nothing, when an index
// is not in the pool.
func (m *Mesh) AddTriangle(i0, i1, i2, faceID int) bool {
	n := m.pool.Len()
	for _, i := range [3]int{i0, i1, i2} {
		if i < 0 || i >= n {
			return false
		}
	}

	v0, v1, v2 := m.pool.At(i0), m.pool.At(i1), m.pool.At(i2)
	normal := r3.Cross(r3.Sub(v1, v0), r3.Sub(v2, v0))
	if l := r3.Norm(normal); l > 0 {
		normal = r3.Scale(1/l, normal)
	} else {
		normal = r3.Vec{}
	}

	g, ok := m.byID[faceID]
	if !ok {
		g = len(m.groups)
		m.groups = append(m.groups, FaceGroup{ID: faceID})
		m.byID[faceID] = g
	}
	m.groups[g].Triangles = append(m.groups[g].Triangles, Triangle{
		Vertices: [3]int{i0, i1, i2},
		Normal:   normal,
		FaceID:   faceID,
	})
	m.triangles++
	return true
}

// UnifyFaceOrientation flips every triangle of a group whose normal points
// away (more than 90 degrees) from the group's first non-degenerate triangle.
// Only groups with more than one triangle are touched; the pool is unchanged.
func (m *Mesh) UnifyFaceOrientation() {
	for g := range m.groups {
		tris := m.groups[g].Triangles
		if len(tris) < 2 {
			continue
		}

		ref := -1
		for i := range tris {
			if !tris[i].Degenerate() {
				ref = i
				break
			}
		}
		if ref < 0 {
			continue
		}

		refNormal := tris[ref].Normal
		for i := ref + 1; i < len(tris); i++ {
			if r3.Dot(tris[i].Normal, refNormal) < 0 {
				tris[i].Flip()
			}
		}
	}
}

// VertexCount returns the number of pooled vertices.
func (m *Mesh) VertexCount() int {
	return m.pool.Len()
}

// TriangleCount returns the number of triangles over all groups.
func (m *Mesh) TriangleCount() int {
	return m.triangles
}

// FaceCount returns the number of face groups.
func (m *Mesh) FaceCount() int {
	return len(m.groups)
}

// Vertex returns the pooled position at index i.
func (m *Mesh) Vertex(i int) r3.Vec {
	return m.pool.At(i)
}

// Vertices returns pooled positions in index order. The slice must not be modified.
func (m *Mesh) Vertices() []r3.Vec {
	return m.pool.Points()
}

// Groups returns the face groups in creation order.
func (m *Mesh) Groups() []FaceGroup {
	return m.groups
}

// Group returns the group for faceID.
func (m *Mesh) Group(faceID int) (FaceGroup, bool) {
	g, ok := m.byID[faceID]
	if !ok {
		return FaceGroup{}, false
	}
	return m.groups[g], true
}

// Bounds returns the box of all pooled vertices.
func (m *Mesh) Bounds() Bounds {
	return m.bounds
}
