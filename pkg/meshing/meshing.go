// Package meshing turns boundary-representation items into encoded shape geometry.
package meshing

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/polymesh/pkg/brep"
	"github.com/Faultbox/polymesh/pkg/formats"
	"github.com/Faultbox/polymesh/pkg/mesh"
	"github.com/Faultbox/polymesh/pkg/tess"
)

// Mesher triangulates and encodes surface models. It keeps no per-call state,
// so one Mesher may serve concurrent calls as long as its tessellator can.
type Mesher struct {
	format formats.GeometryType
	opts   mesh.Options
	log    *zap.Logger
}

// Option configures a Mesher.
type Option func(*Mesher)

// WithTessellator replaces the default ear clipping tessellator.
func WithTessellator(t tess.Tessellator) Option {
	return func(m *Mesher) { m.opts.Tessellator = t }
}

// WithLogger sets the logger used for mesh statistics and skipped faces.
func WithLogger(l *zap.Logger) Option {
	return func(m *Mesher) {
		if l != nil {
			m.log = l
		}
	}
}

// WithWeldTolerance welds vertices closer than tol. Zero keeps exact welding.
func WithWeldTolerance(tol float64) Option {
	return func(m *Mesher) { m.opts.WeldTolerance = tol }
}

// WithoutFastPath sends triangles and quads through the tessellator.
func WithoutFastPath() Option {
	return func(m *Mesher) { m.opts.DisableFastPath = true }
}

// New returns a Mesher writing the given encoding.
func New(format formats.GeometryType, opts ...Option) (*Mesher, error) {
	if format != formats.Polyhedron && format != formats.PolyhedronBinary {
		return nil, fmt.Errorf("%w: %d", formats.ErrUnsupportedGeometryType, byte(format))
	}
	m := &Mesher{
		format: format,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.opts.Logger = m.log
	return m, nil
}

// Format returns the encoding the Mesher writes.
func (m *Mesher) Format() formats.GeometryType {
	return m.format
}

// CanMesh reports whether item is a supported representation.
func (m *Mesher) CanMesh(item brep.Item) bool {
	return brep.CanMesh(item)
}

// Mesh triangulates item and encodes the result.
func (m *Mesher) Mesh(item brep.Item) (*formats.ShapeGeometry, error) {
	shells, err := brep.Shells(item)
	if err != nil {
		return nil, err
	}
	return m.MeshShells(shells)
}

// MeshShells triangulates face lists, one mesh per shell, and encodes them as one stream.
func (m *Mesher) MeshShells(shells [][]brep.Face) (*formats.ShapeGeometry, error) {
	meshes := mesh.Build(shells, m.opts)

	sg, err := formats.Encode(m.format, meshes)
	if err != nil {
		return nil, err
	}

	s := mesh.Summarize(meshes)
	m.log.Debug("meshed shape",
		zap.Stringer("format", m.format),
		zap.Int("shells", len(shells)),
		zap.Int("vertices", s.Vertices),
		zap.Int("faces", s.Faces),
		zap.Int("triangles", s.Triangles),
		zap.Int("bytes", len(sg.ShapeData)))
	return sg, nil
}
