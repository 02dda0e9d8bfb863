// Package mesh builds welded, indexed triangle meshes from boundary-representation faces.
package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// VertexPool is an ordered set of unique points. Each point keeps the index it
// was given on first insertion.
//
// With a zero tolerance points weld only when their coordinates are identical.
// A positive tolerance welds points that fall in the same tolerance-sized grid
// cell; the first point inserted into a cell is the one kept.
type VertexPool struct {
	points    []r3.Vec
	index     map[r3.Vec]int
	tolerance float64
}

// NewVertexPool creates an empty pool.
func NewVertexPool(tolerance float64) *VertexPool {
	if tolerance < 0 || math.IsNaN(tolerance) {
		tolerance = 0
	}
	return &VertexPool{
		index:     make(map[r3.Vec]int),
		tolerance: tolerance,
	}
}

// Add returns the index of p, inserting it if no equal point is pooled yet.
// The second result reports whether p was inserted.
func (vp *VertexPool) Add(p r3.Vec) (int, bool) {
	key := vp.key(p)
	if idx, ok := vp.index[key]; ok {
		return idx, false
	}
	idx := len(vp.points)
	vp.points = append(vp.points, p)
	vp.index[key] = idx
	return idx, true
}

// Len returns the number of pooled points.
func (vp *VertexPool) Len() int {
	return len(vp.points)
}

// At returns the point at index i.
func (vp *VertexPool) At(i int) r3.Vec {
	return vp.points[i]
}

// Points returns the pooled points in insertion order. The slice must not be modified.
func (vp *VertexPool) Points() []r3.Vec {
	return vp.points
}

func (vp *VertexPool) key(p r3.Vec) r3.Vec {
	if vp.tolerance == 0 {
		return p
	}
	return r3.Vec{
		X: math.Round(p.X / vp.tolerance),
		Y: math.Round(p.Y / vp.tolerance),
		Z: math.Round(p.Z / vp.tolerance),
	}
}
