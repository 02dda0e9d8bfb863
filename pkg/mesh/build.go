package mesh

import (
	"go.uber.org/zap"

	"github.com/Faultbox/polymesh/pkg/brep"
	"github.com/Faultbox/polymesh/pkg/tess"
)

// Options controls mesh building.
type Options struct {
	// Tessellator handles faces that are not single triangles or quads.
	// Defaults to tess.NewEarClipper().
	Tessellator tess.Tessellator
	// WeldTolerance is the grid size for vertex welding. Zero welds exact coordinates only.
	WeldTolerance float64
	// DisableFastPath sends triangles and quads through the tessellator too.
	DisableFastPath bool
	// Logger receives debug output for skipped faces. Defaults to a no-op logger.
	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Tessellator == nil {
		o.Tessellator = tess.NewEarClipper()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Build triangulates each shell into its own mesh, in shell order, and unifies
// face orientation on every mesh. Meshes never share vertices.
func Build(shells [][]brep.Face, opts Options) []*Mesh {
	opts = opts.withDefaults()

	meshes := make([]*Mesh, 0, len(shells))
	for _, faces := range shells {
		m := NewMesh(opts.WeldTolerance)
		tr := NewTriangulator(m, opts)
		for _, face := range faces {
			tr.Triangulate(face)
		}
		m.UnifyFaceOrientation()
		meshes = append(meshes, m)
	}
	return meshes
}

// Summary aggregates several meshes.
type Summary struct {
	Vertices  int
	Triangles int
	Faces     int
	Bounds    Bounds
}

// Summarize totals vertex, triangle and face counts and unions the bounds.
func Summarize(meshes []*Mesh) Summary {
	var s Summary
	for _, m := range meshes {
		s.Vertices += m.VertexCount()
		s.Triangles += m.TriangleCount()
		s.Faces += m.FaceCount()
		s.Bounds.Union(m.Bounds())
	}
	return s
}
