package mesh

import (
	"go.uber.org/zap"

	"github.com/Faultbox/polymesh/pkg/brep"
	"github.com/Faultbox/polymesh/pkg/tess"
)

// Triangulator cuts faces into triangles and appends them to a mesh. Triangles
// and quads are split directly; everything else goes to the tessellator.
// Each face that yields triangles gets the next face id; faces that yield none
// do not use one up.
type Triangulator struct {
	mesh     *Mesh
	tess     tess.Tessellator
	log      *zap.Logger
	fastPath bool
	nextID   int
}

// NewTriangulator returns a triangulator appending to m.
func NewTriangulator(m *Mesh, opts Options) *Triangulator {
	opts = opts.withDefaults()
	return &Triangulator{
		mesh:     m,
		tess:     opts.Tessellator,
		log:      opts.Logger,
		fastPath: !opts.DisableFastPath,
	}
}

// Faces returns the number of face ids handed out so far.
func (t *Triangulator) Faces() int {
	return t.nextID
}

// Triangulate appends the triangles of face to the mesh and reports whether any were added.
func (t *Triangulator) Triangulate(face brep.Face) bool {
	contours := make([][]tess.ContourVertex, 0, len(face.Bounds))
	for _, bound := range face.Bounds {
		pts := bound.Points()
		if len(pts) < 3 {
			continue
		}
		contour := make([]tess.ContourVertex, len(pts))
		for i, p := range pts {
			contour[i] = tess.ContourVertex{Position: p, Index: t.mesh.AddVertex(p)}
		}
		contours = append(contours, contour)
	}
	if len(contours) == 0 {
		return false
	}

	if t.fastPath && len(contours) == 1 {
		c := contours[0]
		switch len(c) {
		case 3:
			return t.emit([][3]int{{c[0].Index, c[1].Index, c[2].Index}})
		case 4:
			return t.emit([][3]int{
				{c[0].Index, c[1].Index, c[3].Index},
				{c[3].Index, c[1].Index, c[2].Index},
			})
		}
	}

	res, err := t.tess.Tessellate(contours, tess.WindingOdd, tess.ElementTriangles)
	if err != nil {
		t.log.Debug("tessellation failed, face skipped",
			zap.Int("contours", len(contours)),
			zap.Error(err))
		return false
	}
	if res.ElementCount() == 0 {
		t.log.Debug("tessellation produced no triangles, face skipped",
			zap.Int("contours", len(contours)))
		return false
	}

	tris := make([][3]int, 0, res.ElementCount())
	for i := 0; i < res.ElementCount(); i++ {
		var tri [3]int
		for j := 0; j < 3; j++ {
			e := res.Elements[3*i+j]
			if e < 0 || e >= len(res.Vertices) {
				tri[j] = -1
				continue
			}
			v := &res.Vertices[e]
			if v.Index == tess.Inserted {
				// Steiner point: pool it once and reuse the handle for later references.
				v.Index = t.mesh.AddVertex(v.Position)
			}
			tri[j] = v.Index
		}
		tris = append(tris, tri)
	}
	return t.emit(tris)
}

func (t *Triangulator) emit(tris [][3]int) bool {
	added := 0
	for _, tri := range tris {
		if t.mesh.AddTriangle(tri[0], tri[1], tri[2], t.nextID) {
			added++
		}
	}
	if added == 0 {
		return false
	}
	t.nextID++
	return true
}
